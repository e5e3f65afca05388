package cmds

import (
	"fmt"
	"io"
	"os"

	"github.com/vk/arbor/internal/config"
	"github.com/vk/arbor/internal/errs"
)

const starterDocument = `arbor:
  root: "."

variables: {}

trees: {}

groups: {}

gardens: {}
`

// Init writes a starter configuration document into the current directory.
func Init(out io.Writer, path string, force bool) error {
	if path == "" {
		path = config.DefaultFilename
	}
	if _, err := os.Stat(path); err == nil && !force {
		return errs.Config("%s already exists; use --force to overwrite", path)
	}
	if err := os.WriteFile(path, []byte(starterDocument), 0o644); err != nil {
		return errs.Config("unable to write %s: %v", path, err)
	}
	fmt.Fprintf(out, "created %s\n", path)
	return nil
}
