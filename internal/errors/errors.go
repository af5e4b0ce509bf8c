package errors

import (
	"errors"
	"fmt"
)

// R2PipeError is the base interface for all r2pipe errors.
type R2PipeError interface {
	error
	IsR2PipeError() bool
}

// Compile-time verification that all error types implement R2PipeError.
var (
	_ R2PipeError = (*R2NotFoundError)(nil)
	_ R2PipeError = (*SpawnError)(nil)
	_ R2PipeError = (*ProtocolError)(nil)
	_ R2PipeError = (*EncodingError)(nil)
	_ R2PipeError = (*JSONDecodeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrEmptyResponse indicates a JSON command produced no output.
	// radare2 answers unknown or non-JSON commands with empty text, which
	// a JSON parser would otherwise report as a generic syntax error.
	ErrEmptyResponse = errors.New("empty response")

	// ErrPipeClosed indicates the pipe has been closed and cannot be reused.
	ErrPipeClosed = errors.New("pipe closed: pipes are single-use, spawn a new one")
)

// R2NotFoundError indicates the radare2 binary was not found.
type R2NotFoundError struct {
	SearchedPaths []string
}

func (e *R2NotFoundError) Error() string {
	return fmt.Sprintf("radare2 not found in: %v", e.SearchedPaths)
}

// IsR2PipeError implements R2PipeError.
func (e *R2NotFoundError) IsR2PipeError() bool { return true }

// SpawnError indicates the radare2 process could not be started, or died
// before completing the startup handshake.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsR2PipeError implements R2PipeError.
func (e *SpawnError) IsR2PipeError() bool { return true }

// ProtocolError indicates the child violated the framing contract, most
// commonly by closing its output stream before a frame terminator arrived.
type ProtocolError struct {
	// Partial is the number of bytes read before the stream ended.
	Partial int
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("stream ended before frame terminator (%d bytes read): %v", e.Partial, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsR2PipeError implements R2PipeError.
func (e *ProtocolError) IsR2PipeError() bool { return true }

// EncodingError indicates a response frame is not valid UTF-8.
type EncodingError struct {
	Raw []byte
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("response is not valid UTF-8 (%d bytes)", len(e.Raw))
}

// IsR2PipeError implements R2PipeError.
func (e *EncodingError) IsR2PipeError() bool { return true }

// JSONDecodeError indicates a non-empty response failed to parse as JSON.
// This error preserves the original raw text that failed to parse.
type JSONDecodeError struct {
	RawData string
	Err     error
}

func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON from radare2: %v", e.Err)
}

func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}

// IsR2PipeError implements R2PipeError.
func (e *JSONDecodeError) IsR2PipeError() bool { return true }
