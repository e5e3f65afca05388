// Package cmds implements the arbor subcommands over the core packages.
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

// Exec runs one command over every tree resolved from the selector.
//
// Trees run in resolution order. A failing tree never stops the loop; the
// last non-zero exit status observed becomes the aggregated result, wrapped
// in an ExitStatus error so the process exits with the child's code.
// Symlink-only trees have no independent working directory and are skipped
// entirely: no evaluation, no process.
func Exec(ctx context.Context, cfg *model.Configuration, runner shell.Runner,
	styles display.Styles, out io.Writer, selector string, command []string,
	quiet, verbose bool) error {

	if len(command) == 0 {
		return errs.Usage("a command to execute must be specified")
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
		// Clear the previous context's cached values and refresh builtins
		// so nothing leaks between trees.
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

		env := eval.Environment(cfg, tc)
		status := runner.Run(command, path, environStrings(env))
		if status != 0 {
			exitStatus = status
		}
		logger.Debug("tree executed", "tree", tree.Name(), "status", status)
	}

	return errs.ResultFromExitStatus(exitStatus)
}

// environStrings flattens evaluated environment entries into the
// name=value form the process runner overlays onto the inherited
// environment.
func environStrings(env []eval.EnvVar) []string {
	strings := make([]string, 0, len(env))
	for _, entry := range env {
		strings = append(strings, entry.Name+"="+entry.Value)
	}
	return strings
}
