//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	r2pipe "github.com/wagiedev/r2pipe-go"
)

// skipIfR2NotInstalled skips the test if the error indicates radare2 is not
// found.
func skipIfR2NotInstalled(t *testing.T, err error) {
	t.Helper()

	var notFound *r2pipe.R2NotFoundError
	if errors.As(err, &notFound) {
		t.Skip("radare2 not installed")
	}
}

func spawnLS(t *testing.T) r2pipe.Pipe {
	t.Helper()

	pipe, err := r2pipe.Spawn(context.Background(), "/bin/ls")
	if err != nil {
		skipIfR2NotInstalled(t, err)
	}

	require.NoError(t, err)

	return pipe
}

func TestRealR2_CmdjBinaryInfo(t *testing.T) {
	pipe := spawnLS(t)
	defer pipe.Close(context.Background())

	value, err := pipe.Cmdj(context.Background(), "ij")
	require.NoError(t, err)

	obj, ok := value.(map[string]any)
	require.True(t, ok, "ij should decode to a JSON object")
	require.Contains(t, obj, "core")
}

func TestRealR2_CmdjPlaintextBanner(t *testing.T) {
	pipe := spawnLS(t)
	defer pipe.Close(context.Background())

	// "i" returns a multi-line plaintext table, never JSON.
	_, err := pipe.Cmdj(context.Background(), "i")
	require.Error(t, err)

	var decodeErr *r2pipe.JSONDecodeError

	isDecode := errors.As(err, &decodeErr)
	isEmpty := errors.Is(err, r2pipe.ErrEmptyResponse)
	require.True(t, isDecode || isEmpty, "got: %v", err)
}

func TestRealR2_CmdjPathArch(t *testing.T) {
	pipe := spawnLS(t)
	defer pipe.Close(context.Background())

	arch, err := pipe.CmdjPath(context.Background(), "ij", "bin.arch")
	require.NoError(t, err)
	require.True(t, arch.Exists())
	require.NotEmpty(t, arch.String())
}

func TestRealR2_CloseTerminatesProcess(t *testing.T) {
	ctx := context.Background()

	pipe, err := r2pipe.Spawn(ctx, "/bin/ls")
	if err != nil {
		skipIfR2NotInstalled(t, err)
	}

	require.NoError(t, err)

	start := time.Now()

	pipe.Close(ctx)
	pipe.Close(ctx) // Idempotent

	// Close reaps the child, bounded by the kill-after-grace deadline, so a
	// healthy radare2 should be gone well before that.
	require.Less(t, time.Since(start), 30*time.Second)

	// The pipe is single-use afterwards.
	_, err = pipe.Cmd(ctx, "i")
	require.ErrorIs(t, err, r2pipe.ErrPipeClosed)
}
