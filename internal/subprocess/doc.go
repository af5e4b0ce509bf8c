// Package subprocess provides the spawned-process pipe transport for radare2.
//
// This package spawns radare2 in -q0 mode as a child process and implements
// the wire framing over its stdin/stdout: newline-terminated command lines
// out, null-byte-terminated response frames in. It handles the startup
// handshake, process lifecycle, and forced termination on abandonment.
package subprocess
