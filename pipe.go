package r2pipe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"

	"github.com/wagiedev/r2pipe-go/internal/errors"
	"github.com/wagiedev/r2pipe-go/internal/r2"
	"github.com/wagiedev/r2pipe-go/internal/subprocess"
)

// Pipe is a live command channel to one radare2 instance.
//
// The spawned-process transport is the only implementation today; alternative
// bindings would implement this same interface rather than widening it.
//
// A Pipe is not safe for concurrent command issuance: it supports at most one
// in-flight command, and callers sharing a Pipe across goroutines must
// serialize access externally. See the package documentation for the stale
// frame hazard when a round trip is abandoned midway.
type Pipe interface {
	// Cmd runs a radare2 command and returns its response text.
	// The command is trimmed of leading and trailing whitespace before
	// transmission. Either a full request/response round trip completes or
	// an error is returned; a partial response is never handed back.
	Cmd(ctx context.Context, cmd string) (string, error)

	// Cmdj runs a radare2 command and decodes the JSON response.
	// An empty response fails with ErrEmptyResponse; non-empty text that is
	// not valid JSON fails with *JSONDecodeError.
	Cmdj(ctx context.Context, cmd string) (any, error)

	// CmdjPath runs a radare2 command and extracts a single value from the
	// JSON response using gjson path syntax (e.g. "bin.arch").
	CmdjPath(ctx context.Context, cmd, path string) (gjson.Result, error)

	// Close quits radare2 and reaps the process. It is best-effort: the
	// quit command is sent without awaiting a reply (the child may exit
	// before flushing one, or never answer at all), and calling Close on an
	// already-closed or already-exited pipe is a no-op. Close blocks until
	// the child is reaped, bounded by a kill-after-grace deadline.
	Close(ctx context.Context)
}

// transport is the I/O surface the protocol layer drives. It matches
// *subprocess.PipeTransport and exists so tests can substitute a scripted
// fake.
type transport interface {
	SendCommand(text string) error
	ReadFrame() ([]byte, error)
	Shutdown(ctx context.Context)
	Kill()
	Pid() int
}

// pipe implements Pipe over a spawned-process transport.
type pipe struct {
	log       *slog.Logger
	t         transport
	cleanup   runtime.Cleanup
	closeOnce sync.Once
}

// Compile-time verification that pipe implements Pipe.
var _ Pipe = (*pipe)(nil)

// Spawn starts a radare2 subprocess analyzing target and returns a Pipe
// bound to it.
//
// The child is launched as `radare2 -q0 <extra args...> <target>` with stdin
// and stdout piped and stderr inherited. Spawn returns only after the
// startup handshake byte has been consumed, so the returned Pipe is
// immediately ready for commands.
//
// Cancelling ctx after Spawn kills the subprocess; so does garbage
// collection of a Pipe that was never closed.
//
// Returns *R2NotFoundError if no radare2 binary can be located and
// *SpawnError if the process fails to start or dies during the handshake.
func Spawn(ctx context.Context, target string, opts ...Option) (Pipe, error) {
	options := applySpawnOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "r2pipe", "session_id", ulid.Make().String())

	discoverer := r2.NewDiscoverer(&r2.Config{
		ExePath:          options.ExePath,
		SkipVersionCheck: options.SkipVersionCheck,
		Logger:           log,
	})

	exePath, err := discoverer.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover radare2: %w", err)
	}

	args := r2.BuildArgs(target, options.Args)

	tr := subprocess.NewPipeTransport(log, exePath, args, buildEnvironment(options.Env), options.Cwd)
	if err := tr.Start(ctx); err != nil {
		return nil, err
	}

	return newPipe(log, tr), nil
}

// newPipe wires a protocol layer onto a started transport and registers the
// abandonment cleanup.
func newPipe(log *slog.Logger, t transport) *pipe {
	p := &pipe{
		log: log,
		t:   t,
	}

	// Kill the subprocess if the pipe is dropped without Close. The cleanup
	// must not reference p itself or it would never run; the transport does
	// not point back at the pipe, so passing it as the argument is safe.
	p.cleanup = runtime.AddCleanup(p, func(t transport) {
		t.Kill()
	}, t)

	return p
}

// Cmd implements Pipe.
func (p *pipe) Cmd(ctx context.Context, cmd string) (string, error) {
	return p.roundTrip(ctx, strings.TrimSpace(cmd))
}

// Cmdj implements Pipe.
func (p *pipe) Cmdj(ctx context.Context, cmd string) (any, error) {
	text, err := p.Cmd(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if text == "" {
		// radare2 answers unknown and non-JSON commands with empty text.
		// Surfacing that as its own error keeps it distinguishable from a
		// garbled response, which a JSON parser would also reject.
		return nil, errors.ErrEmptyResponse
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, &errors.JSONDecodeError{RawData: text, Err: err}
	}

	return value, nil
}

// CmdjPath implements Pipe.
func (p *pipe) CmdjPath(ctx context.Context, cmd, path string) (gjson.Result, error) {
	text, err := p.Cmd(ctx, cmd)
	if err != nil {
		return gjson.Result{}, err
	}

	if text == "" {
		return gjson.Result{}, errors.ErrEmptyResponse
	}

	// Validate with the standard decoder first so malformed responses carry
	// a parse diagnostic; gjson itself never reports one.
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return gjson.Result{}, &errors.JSONDecodeError{RawData: text, Err: err}
	}

	return gjson.Get(text, path), nil
}

// Close implements Pipe.
func (p *pipe) Close(ctx context.Context) {
	p.closeOnce.Do(func() {
		p.cleanup.Stop()
		p.log.Debug("Closing pipe", "pid", p.t.Pid())

		// Fire-and-forget quit. Awaiting a reply here could block forever on
		// a wedged child that consumes the command and never answers;
		// Shutdown owns the time bound, so nothing before it may wait
		// unboundedly.
		if err := p.t.SendCommand(r2.QuitCommand); err != nil {
			p.log.Debug("Quit command failed", "error", err)
		}

		p.t.Shutdown(ctx)
	})
}

// roundTrip performs one request/response exchange.
func (p *pipe) roundTrip(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := p.t.SendCommand(cmd); err != nil {
		return "", err
	}

	frame, err := p.t.ReadFrame()
	if err != nil {
		return "", err
	}

	if !utf8.Valid(frame) {
		return "", &errors.EncodingError{Raw: frame}
	}

	return string(frame), nil
}

// buildEnvironment merges extra variables over the current process
// environment. A nil map means plain inheritance, which exec expresses as a
// nil slice.
func buildEnvironment(extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}

	env := os.Environ()
	for k, v := range extra {
		env = append(env, k+"="+v)
	}

	return env
}
