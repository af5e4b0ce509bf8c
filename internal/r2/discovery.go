package r2

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/r2pipe-go/internal/errors"
)

const (
	// MinimumVersion is the oldest radare2 release known to support -q0 framing
	// the way this driver expects it.
	MinimumVersion = "5.0.0"

	// VersionCheckTimeout is the timeout for the radare2 version check command.
	VersionCheckTimeout = 2 * time.Second
)

// binaryNames are the executable names searched on PATH, in order.
var binaryNames = []string{"radare2", "r2"}

// Config holds configuration for radare2 discovery.
type Config struct {
	// ExePath is an explicit binary path that skips PATH search.
	// If empty, discovery will search PATH and common locations.
	ExePath string

	// SkipVersionCheck skips version validation during discovery.
	// Can also be controlled via R2PIPE_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and validates the radare2 binary.
type Discoverer interface {
	// Discover locates the radare2 binary and validates its version.
	// Returns the path to the binary or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new radare2 discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the radare2 binary and validates its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering radare2 binary")

	exePath, err := d.findBinary()
	if err != nil {
		d.log.Error("Failed to find radare2", "error", err)

		return "", err
	}

	d.log.Debug("Found radare2 binary", "exe_path", exePath)

	// Check version unless skipped
	d.checkVersion(ctx, exePath)

	return exePath, nil
}

// findBinary locates the radare2 binary.
func (d *discoverer) findBinary() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.ExePath != "" {
		d.log.Debug("Using explicit radare2 path", "exe_path", d.cfg.ExePath)

		if _, err := os.Stat(d.cfg.ExePath); err == nil {
			return d.cfg.ExePath, nil
		}

		d.log.Debug("Explicit radare2 path not found", "exe_path", d.cfg.ExePath)

		return "", &errors.R2NotFoundError{SearchedPaths: []string{d.cfg.ExePath}}
	}

	searchedPaths := make([]string, 0, 8)

	// Search in PATH under both common binary names
	for _, name := range binaryNames {
		d.log.Debug("Searching PATH", "name", name)

		if path, err := exec.LookPath(name); err == nil {
			d.log.Debug("Found in PATH", "path", path)

			return path, nil
		}

		searchedPaths = append(searchedPaths, "$PATH/"+name)
	}

	// Check common locations
	commonPaths := []string{
		"/usr/local/bin/radare2",
		"/usr/bin/radare2",
		"/usr/local/bin/r2",
		"/usr/bin/r2",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin/radare2"))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found radare2 at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("radare2 not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.R2NotFoundError{SearchedPaths: searchedPaths}
}

// checkVersion checks if the radare2 version meets minimum requirements.
// Logs a warning if version is below minimum. Errors are silently ignored.
func (d *discoverer) checkVersion(ctx context.Context, exePath string) {
	// Skip if configured
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping version check (configured)")

		return
	}

	// Skip if env var is set
	if os.Getenv("R2PIPE_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping version check (R2PIPE_SKIP_VERSION_CHECK set)")

		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	// Run radare2 -v
	cmd := exec.CommandContext(ctx, exePath, "-v")

	output, err := cmd.Output()
	if err != nil {
		// Silently ignore errors
		d.log.Debug("Version check failed", "error", err)

		return
	}

	version := parseVersionOutput(string(output))
	if version == "" {
		d.log.Debug("Could not parse radare2 version", "output", strings.TrimSpace(string(output)))

		return
	}

	if versionLess(version, MinimumVersion) {
		d.log.Warn("radare2 version is older than the minimum supported by r2pipe",
			"version", version,
			"minimum_required", MinimumVersion,
		)
	} else {
		d.log.Debug("Version check passed", "version", version, "minimum", MinimumVersion)
	}
}

// versionToken matches a dotted numeric version at the start of a token,
// tolerating suffixes like "5.9.9-git".
var versionToken = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?`)

// parseVersionOutput extracts the dotted version from `radare2 -v` output.
//
// radare2 prints several lines; the first looks like
// "radare2 5.9.8 31798 @ linux-x86-64" and older builds drop the leading
// program name, so every whitespace-separated token of the first line is
// tried until one starts with a version. Returns "" when nothing matches.
func parseVersionOutput(output string) string {
	firstLine, _, _ := strings.Cut(strings.TrimSpace(output), "\n")

	for _, token := range strings.Fields(firstLine) {
		if v := versionToken.FindString(token); v != "" {
			return v
		}
	}

	return ""
}

// versionLess reports whether version a precedes version b in dotted
// numeric order. Missing components count as zero, so "5.9" equals "5.9.0".
func versionLess(a, b string) bool {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := 0; i < len(aParts) || i < len(bParts); i++ {
		var aNum, bNum int

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum != bNum {
			return aNum < bNum
		}
	}

	return false
}
