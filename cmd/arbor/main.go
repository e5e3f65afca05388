package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/arbor/internal/app"
	"github.com/vk/arbor/internal/cli"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/shell"
)

// main is the entrypoint for the arbor CLI.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		// An explicit exit request carries a status code and no message.
		if code, ok := errs.IsExitStatus(err); ok {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(errs.ExitCode(err))
	}
}

// run encapsulates the application logic for easier testing and error
// handling.
func run(outW, errW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	arbor := app.New(outW, errW, opts, shell.NewRunner())
	return arbor.Run(context.Background())
}
