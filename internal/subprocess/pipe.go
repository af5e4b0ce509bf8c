package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/wagiedev/r2pipe-go/internal/errors"
)

const (
	// frameTerminator delimits radare2 responses in -q0 mode.
	frameTerminator = 0x00

	// shutdownGrace is how long Shutdown waits for radare2 to exit after the
	// quit command before killing it.
	shutdownGrace = 5 * time.Second
)

// PipeTransport drives a radare2 subprocess over stdin/stdout pipes.
//
// The transport owns the child's write handle and buffered read handle
// exclusively. It supports at most one in-flight command: callers must fully
// pair each SendCommand with a ReadFrame before issuing the next command.
// The transport does not serialize access internally; sharing one transport
// across goroutines without external locking corrupts the protocol state.
type PipeTransport struct {
	log     *slog.Logger
	exePath string
	args    []string
	env     []string
	cwd     string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	reader *bufio.Reader

	mu     sync.Mutex // Protects closed
	closed bool

	waitOnce sync.Once
	waitErr  error
}

// NewPipeTransport creates a transport for the given radare2 invocation.
// Start must be called before any other method.
func NewPipeTransport(log *slog.Logger, exePath string, args, env []string, cwd string) *PipeTransport {
	return &PipeTransport{
		log:     log.With("component", "pipe_transport"),
		exePath: exePath,
		args:    args,
		env:     env,
		cwd:     cwd,
	}
}

// Start spawns the radare2 subprocess and consumes the startup handshake.
//
// The child is launched with stdin and stdout piped and stderr inherited.
// radare2 in -q0 mode emits a single null byte before accepting its first
// command; Start reads and discards that byte synchronously, so a successful
// return means the child is ready for commands.
//
// Cancelling ctx after Start kills the child process.
func (t *PipeTransport) Start(ctx context.Context) error {
	t.log.Info("Starting radare2 subprocess", "exe_path", t.exePath, "args", t.args)

	//nolint:gosec // G204: Subprocess launching with dynamic args is expected for radare2 invocation
	cmd := exec.CommandContext(ctx, t.exePath, t.args...)
	cmd.Dir = t.cwd
	cmd.Env = t.env
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.SpawnError{Path: t.exePath, Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	t.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.SpawnError{Path: t.exePath, Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	t.stdout = stdout

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start radare2 process", "error", err)

		return &errors.SpawnError{Path: t.exePath, Err: err}
	}

	t.cmd = cmd
	t.log.Debug("radare2 subprocess started", "pid", cmd.Process.Pid)

	if err := t.readHandshake(); err != nil {
		// The child is useless without a completed handshake; reap it here
		// so a failed Start never leaks a process.
		_ = cmd.Process.Kill()
		t.reap()

		return err
	}

	t.reader = bufio.NewReader(stdout)
	t.log.Info("radare2 subprocess ready", "pid", cmd.Process.Pid)

	return nil
}

// readHandshake consumes the single null byte radare2 emits on startup.
func (t *PipeTransport) readHandshake() error {
	var buf [1]byte

	if _, err := io.ReadFull(t.stdout, buf[:]); err != nil {
		t.log.Error("Handshake read failed", "error", err)

		if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
			// Child exited before emitting the handshake byte.
			return &errors.SpawnError{Path: t.exePath, Err: fmt.Errorf("handshake: %w", err)}
		}

		return fmt.Errorf("read handshake: %w", err)
	}

	t.log.Debug("Handshake byte consumed")

	return nil
}

// SendCommand writes the command text followed by a newline to the child.
func (t *PipeTransport) SendCommand(text string) error {
	if t.isClosed() {
		return errors.ErrPipeClosed
	}

	t.log.Debug("Sending command", "command", text)

	if _, err := io.WriteString(t.stdin, text+"\n"); err != nil {
		t.log.Error("Failed to write command", "error", err)

		return fmt.Errorf("write command: %w", err)
	}

	return nil
}

// ReadFrame reads response bytes up to the next frame terminator and returns
// them with the terminator stripped. A frame consisting of only the
// terminator yields an empty, non-nil slice.
//
// Once started, the read blocks until a full frame arrives or the stream
// fails; end-of-stream before a terminator is a ProtocolError, never a
// silently returned partial frame.
func (t *PipeTransport) ReadFrame() ([]byte, error) {
	if t.isClosed() {
		return nil, errors.ErrPipeClosed
	}

	frame, err := readFrame(t.reader)
	if err != nil {
		return nil, err
	}

	t.log.Debug("Received frame", "frame_len", len(frame))

	return frame, nil
}

// readFrame reads up to and including the terminator from r and strips it.
func readFrame(r *bufio.Reader) ([]byte, error) {
	frame, err := r.ReadBytes(frameTerminator)
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, &errors.ProtocolError{Partial: len(frame), Err: err}
		}

		return nil, fmt.Errorf("read frame: %w", err)
	}

	return frame[:len(frame)-1], nil
}

// Shutdown closes the child's stdin and waits for it to exit, killing it if
// it is still running after a grace period or once ctx is done. It is
// best-effort, idempotent, and safe to call on an already-exited child.
func (t *PipeTransport) Shutdown(ctx context.Context) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()

		return
	}

	t.closed = true
	t.mu.Unlock()

	if t.stdin != nil {
		_ = t.stdin.Close()
	}

	if t.cmd == nil || t.cmd.Process == nil {
		return
	}

	pid := t.cmd.Process.Pid

	done := make(chan struct{})

	go func() {
		t.reap()
		close(done)
	}()

	timer := time.NewTimer(shutdownGrace)
	defer timer.Stop()

	select {
	case <-done:
		t.log.Debug("radare2 exited", "pid", pid)
	case <-timer.C:
		t.log.Debug("radare2 did not exit within grace period, killing", "pid", pid)
		_ = t.cmd.Process.Kill()
		<-done
	case <-ctx.Done():
		t.log.Debug("Shutdown context done, killing", "pid", pid)
		_ = t.cmd.Process.Kill()
		<-done
	}
}

// Kill forcibly terminates and reaps the child. It is the abandonment path:
// safe to call at any time, including after Shutdown or on an already-exited
// child.
func (t *PipeTransport) Kill() {
	t.mu.Lock()
	alreadyClosed := t.closed
	t.closed = true
	t.mu.Unlock()

	if t.cmd == nil || t.cmd.Process == nil {
		return
	}

	if !alreadyClosed {
		t.log.Debug("Killing radare2 process", "pid", t.cmd.Process.Pid)
	}

	_ = t.cmd.Process.Kill()
	t.reap()
}

// Closed reports whether Shutdown or Kill has been called.
func (t *PipeTransport) Closed() bool {
	return t.isClosed()
}

// Pid returns the child process id, or 0 before Start.
func (t *PipeTransport) Pid() int {
	if t.cmd == nil || t.cmd.Process == nil {
		return 0
	}

	return t.cmd.Process.Pid
}

func (t *PipeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.closed
}

// reap waits for the child exactly once, swallowing the result. The process
// may already be gone by the time anyone cares.
func (t *PipeTransport) reap() {
	t.waitOnce.Do(func() {
		t.waitErr = t.cmd.Wait()
		if t.waitErr != nil {
			t.log.Debug("radare2 wait returned", "error", t.waitErr)
		}
	})
}
