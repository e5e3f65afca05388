package cmds

import (
	"context"

	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/eval"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/query"
	"github.com/vk/arbor/internal/shell"
)

// Shell opens the configured shell inside the first tree resolved from the
// selector, with the tree's evaluated environment applied.
func Shell(ctx context.Context, cfg *model.Configuration, runner shell.Runner, selector string) error {
	if selector == "" {
		return errs.Usage("a tree query must be specified")
	}
	contexts := query.ResolveTrees(cfg, selector)
	if len(contexts) == 0 {
		return errs.Config("no trees matched %q", selector)
	}

	tc := contexts[0]
	tree := cfg.Trees[tc.Tree]
	path, err := tree.PathValue()
	if err != nil {
		return err
	}

	cfg.Reset()
	env := environStrings(eval.Environment(cfg, tc))
	status := runner.Run([]string{cfg.Shell}, path, env)
	return errs.ResultFromExitStatus(status)
}
