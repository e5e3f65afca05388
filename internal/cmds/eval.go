package cmds

import (
	"fmt"
	"io"

	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/eval"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/query"
)

// Eval evaluates an expression and prints its value. Without a tree the
// expression evaluates against the global configuration scope; with a tree
// (and optional garden) it evaluates inside that tree's scope chain.
func Eval(cfg *model.Configuration, out io.Writer, expr, treeName, gardenName string) error {
	if expr == "" {
		return errs.Usage("an expression to evaluate must be specified")
	}

	if treeName == "" {
		fmt.Fprintln(out, eval.Value(cfg, expr))
		return nil
	}

	ctx, err := query.TreeContextForNames(cfg, treeName, gardenName)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, eval.TreeValue(cfg, expr, ctx.Tree, ctx.Garden))
	return nil
}
