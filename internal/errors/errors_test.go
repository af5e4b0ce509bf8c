package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestR2NotFoundError(t *testing.T) {
	err := &R2NotFoundError{
		SearchedPaths: []string{"/usr/bin/radare2", "/opt/bin/r2"},
	}

	require.Equal(
		t,
		"radare2 not found in: [/usr/bin/radare2 /opt/bin/r2]",
		err.Error(),
	)
	require.True(t, err.IsR2PipeError())
}

func TestSpawnError(t *testing.T) {
	root := errors.New("permission denied")
	err := &SpawnError{Path: "/usr/bin/radare2", Err: root}

	require.Equal(t, "failed to spawn /usr/bin/radare2: permission denied", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsR2PipeError())
}

func TestProtocolError(t *testing.T) {
	root := errors.New("EOF")
	err := &ProtocolError{Partial: 17, Err: root}

	require.Equal(t, "stream ended before frame terminator (17 bytes read): EOF", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsR2PipeError())
}

func TestEncodingError(t *testing.T) {
	err := &EncodingError{Raw: []byte{0xff, 0xfe, 0xfd}}

	require.Equal(t, "response is not valid UTF-8 (3 bytes)", err.Error())
	require.True(t, err.IsR2PipeError())
}

func TestJSONDecodeError(t *testing.T) {
	root := errors.New("unexpected end of JSON input")
	err := &JSONDecodeError{
		RawData: `{"core":`,
		Err:     root,
	}

	require.Equal(t, "failed to decode JSON from radare2: unexpected end of JSON input", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsR2PipeError())
}

func TestSentinelErrors(t *testing.T) {
	require.ErrorIs(t, ErrEmptyResponse, ErrEmptyResponse)
	require.NotErrorIs(t, ErrEmptyResponse, ErrPipeClosed)
}
