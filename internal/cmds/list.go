package cmds

import (
	"io"

	"github.com/vk/arbor/internal/display"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/query"
)

// List prints the trees resolved from the selector, marking trees whose
// directories do not exist. An empty selector lists everything.
func List(cfg *model.Configuration, styles display.Styles, out io.Writer,
	selector string, quiet, verbose bool) error {

	if selector == "" {
		selector = "*"
	}
	for _, tc := range query.ResolveTrees(cfg, selector) {
		styles.PrintTree(out, cfg.Trees[tc.Tree], verbose, quiet)
	}
	return nil
}
