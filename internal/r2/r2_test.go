package r2

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/r2pipe-go/internal/errors"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		extraArgs []string
		want      []string
	}{
		{
			name:   "no extra args",
			target: "/bin/ls",
			want:   []string{"-q0", "/bin/ls"},
		},
		{
			name:      "extra args before target",
			target:    "/bin/ls",
			extraArgs: []string{"-2", "-e", "bin.cache=true"},
			want:      []string{"-q0", "-2", "-e", "bin.cache=true", "/bin/ls"},
		},
		{
			name:   "empty target still appended",
			target: "",
			want:   []string{"-q0", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildArgs(tt.target, tt.extraArgs))
		})
	}
}

func TestBuildArgs_QuietFlagAlwaysFirst(t *testing.T) {
	args := BuildArgs("target", []string{"-w"})
	require.Equal(t, QuietFlag, args[0])
}

func TestDiscover_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "radare2")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	d := NewDiscoverer(&Config{
		ExePath:          exe,
		SkipVersionCheck: true,
		Logger:           slog.Default(),
	})

	path, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, exe, path)
}

func TestDiscover_ExplicitPathMissing(t *testing.T) {
	d := NewDiscoverer(&Config{
		ExePath:          "/nonexistent/radare2",
		SkipVersionCheck: true,
	})

	_, err := d.Discover(context.Background())
	require.Error(t, err)

	notFound, ok := stderrors.AsType[*errors.R2NotFoundError](err)
	require.True(t, ok)
	require.Equal(t, []string{"/nonexistent/radare2"}, notFound.SearchedPaths)
}

func TestDiscover_SearchMiss(t *testing.T) {
	// Empty PATH so neither binary name resolves.
	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	d := NewDiscoverer(&Config{SkipVersionCheck: true})

	_, err := d.Discover(context.Background())
	if err == nil {
		t.Skip("radare2 installed at a common location")
	}

	notFound, ok := stderrors.AsType[*errors.R2NotFoundError](err)
	require.True(t, ok)
	require.NotEmpty(t, notFound.SearchedPaths)
}

func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{
			name: "full report",
			output: "radare2 5.9.8 31798 @ linux-x86-64\n" +
				"birth: git.5.9.8 2024-09-19__10:38:19\n" +
				"commit: 1234abcd\noptions: gpl release -O1 cs:5 cl:2\n",
			want: "5.9.8",
		},
		{
			name:   "bare version first line",
			output: "5.8.0 31339 @ darwin-arm-64\n",
			want:   "5.8.0",
		},
		{
			name:   "git suffix",
			output: "radare2 6.0.0-git 32001 @ linux-x86-64\n",
			want:   "6.0.0",
		},
		{
			name:   "unparseable",
			output: "command not found\n",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseVersionOutput(tt.output))
		})
	}
}

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"5.0.0", "5.0.0", false},
		{"4.9.9", "5.0.0", true},
		{"5.9.8", "5.0.0", false},
		{"5.0", "5.0.0", false},
		{"9.9.9", "10.0.0", true},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, versionLess(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
