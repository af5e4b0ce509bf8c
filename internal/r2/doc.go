// Package r2 provides radare2 binary discovery, version validation, and
// command-line building.
//
// The Discoverer interface locates the radare2 binary:
//
//	discoverer := r2.NewDiscoverer(&r2.Config{
//	    ExePath: "",           // Optional explicit path
//	    Logger:  slog.Default(),
//	})
//	exePath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.ExePath (if provided)
//  2. System PATH ("radare2", then "r2")
//  3. Common installation directories (/usr/local/bin, /usr/bin, ~/.local/bin)
//
// During discovery, the radare2 version is validated against MinimumVersion.
// A warning is logged if the version is below minimum. Version checking can be
// skipped via Config.SkipVersionCheck or the R2PIPE_SKIP_VERSION_CHECK
// environment variable.
//
// BuildArgs assembles the launch arguments; the -q0 quiet flag is owned
// entirely by this package.
package r2
