// Command r2mcp serves radare2 analysis of one target binary as Model
// Context Protocol tools over stdio.
//
// Usage:
//
//	r2mcp [flags] <target>
//
// The server registers r2_cmd and r2_cmd_json; an MCP client (for example a
// coding agent) connects over the process's stdin/stdout and drives radare2
// through them.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	r2pipe "github.com/wagiedev/r2pipe-go"
	"github.com/wagiedev/r2pipe-go/mcpserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "r2mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		exePath = flag.String("exe", "", "explicit path to the radare2 binary")
		verbose = flag.Bool("v", false, "enable debug logging to stderr")
	)

	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: r2mcp [flags] <target>")
	}

	// Logging goes to stderr: stdout belongs to the MCP transport.
	log := r2pipe.NopLogger()
	if *verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipe, err := r2pipe.Spawn(ctx, flag.Arg(0),
		r2pipe.WithExePath(*exePath),
		r2pipe.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer pipe.Close(context.Background())

	return mcpserver.New(log, pipe).Run(ctx)
}
