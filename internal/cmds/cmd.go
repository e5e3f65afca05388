package cmds

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/arbor/internal/ctxlog"
	"github.com/vk/arbor/internal/display"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/eval"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/query"
	"github.com/vk/arbor/internal/shell"
)

// Cmd runs configuration-defined commands over every tree resolved from
// the selector. Each name gathers its command lines from the configuration,
// garden, and tree scopes and runs them through the configured shell in the
// tree's directory. Like Exec, failures are folded into the aggregated
// status and never stop the loop.
func Cmd(ctx context.Context, cfg *model.Configuration, runner shell.Runner,
	styles display.Styles, out io.Writer, selector string, names []string,
	quiet, verbose bool) error {

	if len(names) == 0 {
		return errs.Usage("a command name must be specified")
	}

	logger := ctxlog.FromContext(ctx)
	contexts := query.ResolveTrees(cfg, selector)
	logger.Debug("selector resolved", "selector", selector, "contexts", len(contexts))

	exitStatus := 0
	for _, tc := range contexts {
		tree := cfg.Trees[tc.Tree]
		if tree.IsSymlink {
			continue
		}
		cfg.Reset()

		path, err := tree.PathValue()
		if err != nil {
			if !quiet {
				fmt.Fprintln(out, styles.MissingTree(tree, "[invalid-path]", verbose))
			}
			continue
		}
		if !quiet {
			fmt.Fprintln(out, styles.Tree(tree, path, verbose))
		}

		env := environStrings(eval.Environment(cfg, tc))
		for _, name := range names {
			lines := eval.CommandValues(cfg, tc, name)
			if len(lines) == 0 {
				logger.Debug("no commands registered", "name", name, "tree", tree.Name())
				continue
			}
			for _, line := range lines {
				status := runner.Run([]string{cfg.Shell, "-c", line}, path, env)
				if status != 0 {
					exitStatus = status
				}
			}
		}
	}

	return errs.ResultFromExitStatus(exitStatus)
}

// Custom dispatches an arbitrary subcommand name as a configuration-defined
// command: "arbor build <selector>" behaves like "arbor cmd <selector> build".
func Custom(ctx context.Context, cfg *model.Configuration, runner shell.Runner,
	styles display.Styles, out io.Writer, name string, args []string,
	quiet, verbose bool) error {

	selector := "*"
	if len(args) > 0 {
		selector = args[0]
	}
	return Cmd(ctx, cfg, runner, styles, out, selector, []string{name}, quiet, verbose)
}
