package r2pipe

import "log/slog"

// SpawnOptions configures how the radare2 subprocess is launched.
// The struct is read once by Spawn; mutating it afterwards has no effect on
// an already-spawned pipe.
type SpawnOptions struct {
	// ExePath is an explicit path to the radare2 binary.
	// If empty, the binary is searched in PATH and common install locations.
	ExePath string

	// Args are extra command-line arguments passed between the quiet-mode
	// flag and the target path.
	Args []string

	// Env provides additional environment variables for the subprocess,
	// merged over the current process environment.
	Env map[string]string

	// Cwd is the working directory for the subprocess.
	Cwd string

	// Logger receives debug output. If nil, logging is disabled.
	Logger *slog.Logger

	// SkipVersionCheck skips the radare2 version probe during discovery.
	SkipVersionCheck bool
}

// Option configures SpawnOptions using the functional options pattern.
type Option func(*SpawnOptions)

// applySpawnOptions applies functional options to a SpawnOptions struct.
func applySpawnOptions(opts []Option) *SpawnOptions {
	options := &SpawnOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithExePath sets the explicit path to the radare2 binary.
// If not set, the binary will be searched in PATH.
func WithExePath(path string) Option {
	return func(o *SpawnOptions) {
		o.ExePath = path
	}
}

// WithArgs provides extra radare2 command-line arguments
// (e.g. "-2" to close stderr, or "-e" key=value config pairs).
func WithArgs(args ...string) Option {
	return func(o *SpawnOptions) {
		o.Args = args
	}
}

// WithEnv provides additional environment variables for the subprocess.
func WithEnv(env map[string]string) Option {
	return func(o *SpawnOptions) {
		o.Env = env
	}
}

// WithCwd sets the working directory for the radare2 process.
func WithCwd(cwd string) Option {
	return func(o *SpawnOptions) {
		o.Cwd = cwd
	}
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *SpawnOptions) {
		o.Logger = logger
	}
}

// WithSkipVersionCheck disables the radare2 version probe during discovery.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *SpawnOptions) {
		o.SkipVersionCheck = skip
	}
}
