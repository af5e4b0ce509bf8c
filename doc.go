// Package r2pipe provides a Go driver for scripting radare2 over its pipe
// interface.
//
// The driver spawns radare2 as a subprocess in quiet mode (-q0) and exchanges
// commands and responses over the child's stdin/stdout. Requests are
// newline-terminated text; responses are null-byte-terminated frames, which
// radare2 emits exactly one of per command.
//
// # Basic Usage
//
//	ctx := context.Background()
//	pipe, err := r2pipe.Spawn(ctx, "/bin/ls")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pipe.Close(ctx)
//
//	banner, err := pipe.Cmd(ctx, "i")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(banner)
//
// JSON-producing commands (the ones suffixed with "j" in radare2) decode
// directly:
//
//	info, err := pipe.Cmdj(ctx, "ij")
//
// or pluck a single value with a gjson path:
//
//	arch, err := pipe.CmdjPath(ctx, "ij", "bin.arch")
//
// # Concurrency
//
// A Pipe supports exactly one in-flight command: radare2 reads one line at a
// time and answers with exactly one frame. The Pipe does not serialize calls
// internally; callers sharing a Pipe across goroutines must wrap it in their
// own mutual exclusion. Abandoning a command between its write and its read
// (for example by returning on ctx.Done while a response is pending) leaves
// an unread frame in the stream, and the next command will misread that stale
// frame as its own response. There is no recovery short of closing the pipe
// and spawning a new one.
//
// # Lifecycle
//
// Close sends radare2's quit command and reaps the process; it is best-effort
// and never fails. A Pipe that is garbage collected without Close has its
// subprocess killed by a runtime cleanup, so forgotten pipes do not leak
// radare2 processes. Deterministic shutdown still requires calling Close.
package r2pipe
