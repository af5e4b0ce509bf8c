// Command r2q runs a single radare2 command against a target binary and
// prints the response.
//
// Usage:
//
//	r2q [flags] <target> <command>
//
// Examples:
//
//	r2q /bin/ls i
//	r2q -json /bin/ls ij
//	r2q -json -path bin.arch /bin/ls ij
//
// Defaults can be supplied through the environment: R2PIPE_EXE sets the
// radare2 binary path and R2PIPE_ARGS supplies extra launch arguments
// (comma-separated).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/kelseyhightower/envconfig"

	r2pipe "github.com/wagiedev/r2pipe-go"
)

// envDefaults are launch defaults read from R2PIPE_* environment variables.
type envDefaults struct {
	Exe  string   `envconfig:"EXE"`
	Args []string `envconfig:"ARGS"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "r2q:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		jsonMode = flag.Bool("json", false, "decode the response as JSON")
		path     = flag.String("path", "", "gjson path to extract from a JSON response (implies -json)")
		exePath  = flag.String("exe", "", "explicit path to the radare2 binary")
		verbose  = flag.Bool("v", false, "enable debug logging to stderr")
	)

	flag.Parse()

	if flag.NArg() != 2 {
		return fmt.Errorf("usage: r2q [flags] <target> <command>")
	}

	target, command := flag.Arg(0), flag.Arg(1)

	var defaults envDefaults
	if err := envconfig.Process("r2pipe", &defaults); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if *exePath == "" {
		*exePath = defaults.Exe
	}

	log := r2pipe.NopLogger()
	if *verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipe, err := r2pipe.Spawn(ctx, target,
		r2pipe.WithExePath(*exePath),
		r2pipe.WithArgs(defaults.Args...),
		r2pipe.WithLogger(log),
	)
	if err != nil {
		return err
	}
	// Close on a fresh context: once Ctrl-C cancels ctx, closing on it would
	// skip the polite quit and go straight to kill.
	defer pipe.Close(context.Background())

	switch {
	case *path != "":
		result, err := pipe.CmdjPath(ctx, command, *path)
		if err != nil {
			return err
		}

		fmt.Println(result.String())

	case *jsonMode:
		value, err := pipe.Cmdj(ctx, command)
		if err != nil {
			return err
		}

		encoded, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}

		fmt.Println(string(encoded))

	default:
		out, err := pipe.Cmd(ctx, command)
		if err != nil {
			return err
		}

		fmt.Println(out)
	}

	return nil
}
