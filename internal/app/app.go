// Package app wires the parsed options, configuration forest, display
// styles, and process runner together and dispatches subcommands.
package app

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/vk/arbor/internal/cli"
	"github.com/vk/arbor/internal/cmds"
	"github.com/vk/arbor/internal/config"
	"github.com/vk/arbor/internal/ctxlog"
	"github.com/vk/arbor/internal/display"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/forest"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/shell"
)

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	opts   *cli.Options
	runner shell.Runner
	styles display.Styles
}

// New constructs an App with its own isolated logger.
func New(out, errOut io.Writer, opts *cli.Options, runner shell.Runner) *App {
	return &App{
		out:    out,
		errOut: errOut,
		logger: newLogger(opts.LogLevel, opts.LogFormat, errOut),
		opts:   opts,
		runner: runner,
		styles: display.NewStyles(opts.ColorMode),
	}
}

// Run dispatches the parsed subcommand. The Command sum type is matched
// exhaustively; unknown names fall through to configuration-defined custom
// commands.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if a.opts.Chdir != "" {
		if err := os.Chdir(a.opts.Chdir); err != nil {
			return errs.Config("could not chdir to %q: %v", a.opts.Chdir, err)
		}
	}

	// Commands that run without a configuration file.
	switch a.opts.Command.Kind {
	case model.CommandHelp:
		cli.Usage(a.out)
		return nil
	case model.CommandInit:
		return a.runInit()
	}

	f, err := a.loadForest(ctx)
	if err != nil {
		return err
	}
	cfg := f.Root()

	args := a.opts.Args
	switch a.opts.Command.Kind {
	case model.CommandCmd:
		if len(args) < 2 {
			return errs.Usage("usage: arbor cmd <query> <command>...")
		}
		return cmds.Cmd(ctx, cfg, a.runner, a.styles, a.errOut,
			args[0], args[1:], a.opts.Quiet, a.opts.Verbose)
	case model.CommandEval:
		expr, tree, garden := argAt(args, 0), argAt(args, 1), argAt(args, 2)
		return cmds.Eval(cfg, a.out, expr, tree, garden)
	case model.CommandExec:
		if len(args) == 0 {
			return errs.Usage("usage: arbor exec <query> <command>...")
		}
		return cmds.Exec(ctx, cfg, a.runner, a.styles, a.errOut,
			args[0], args[1:], a.opts.Quiet, a.opts.Verbose)
	case model.CommandList:
		return cmds.List(cfg, a.styles, a.out, argAt(args, 0), a.opts.Quiet, a.opts.Verbose)
	case model.CommandPlant:
		output, paths, err := parsePlantArgs(args)
		if err != nil {
			return err
		}
		return cmds.Plant(ctx, cfg, a.out, output, paths, a.opts.Verbose)
	case model.CommandShell:
		return cmds.Shell(ctx, cfg, a.runner, argAt(args, 0))
	case model.CommandCustom:
		return cmds.Custom(ctx, cfg, a.runner, a.styles, a.errOut,
			a.opts.Command.Name, args, a.opts.Quiet, a.opts.Verbose)
	case model.CommandHelp, model.CommandInit:
		return nil // handled above
	}
	return nil
}

// loadForest locates and loads the configuration forest, applying the
// --root and --set overrides.
func (a *App) loadForest(ctx context.Context) (*forest.Forest, error) {
	path, err := config.Find(a.opts.Config)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("configuration located", "path", path)
	return config.LoadForest(ctx, path, config.Overrides{
		Root:      a.opts.Root,
		Variables: a.opts.Variables,
	})
}

func (a *App) runInit() error {
	flagSet := flag.NewFlagSet("arbor init", flag.ContinueOnError)
	flagSet.SetOutput(a.errOut)
	force := flagSet.Bool("force", false, "Overwrite an existing configuration.")
	if err := flagSet.Parse(a.opts.Args); err != nil {
		return errs.Usage("%s", err.Error())
	}
	return cmds.Init(a.out, argAt(flagSet.Args(), 0), *force)
}

// parsePlantArgs handles plant's -o/--output option.
func parsePlantArgs(args []string) (string, []string, error) {
	flagSet := flag.NewFlagSet("arbor plant", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	output := flagSet.String("output", "", "File to write.")
	flagSet.StringVar(output, "o", "", "File to write (shorthand).")
	if err := flagSet.Parse(args); err != nil {
		return "", nil, errs.Usage("%s", err.Error())
	}
	return *output, flagSet.Args(), nil
}

func argAt(args []string, idx int) string {
	if idx < len(args) {
		return args[idx]
	}
	return ""
}
