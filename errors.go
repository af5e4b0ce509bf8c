package r2pipe

import "github.com/wagiedev/r2pipe-go/internal/errors"

// Re-export error types from internal package

// R2NotFoundError indicates the radare2 binary was not found.
type R2NotFoundError = errors.R2NotFoundError

// SpawnError indicates the radare2 process could not be started, or died
// before completing the startup handshake.
type SpawnError = errors.SpawnError

// ProtocolError indicates the child closed its output stream before a frame
// terminator arrived.
type ProtocolError = errors.ProtocolError

// EncodingError indicates a response frame is not valid UTF-8.
type EncodingError = errors.EncodingError

// JSONDecodeError indicates a non-empty response failed to parse as JSON.
type JSONDecodeError = errors.JSONDecodeError

// R2PipeError is the base interface for all r2pipe errors.
type R2PipeError = errors.R2PipeError

// Re-export sentinel errors from internal package.
var (
	// ErrEmptyResponse indicates a JSON command produced no output.
	ErrEmptyResponse = errors.ErrEmptyResponse

	// ErrPipeClosed indicates the pipe has been closed and cannot be reused.
	ErrPipeClosed = errors.ErrPipeClosed
)
