package cmds

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/arbor/internal/config"
	"github.com/vk/arbor/internal/ctxlog"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/git"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/query"
)

// Plant records pre-existing worktrees in the configuration document. For
// each path it resolves the tree name, gathers the origin url, extra
// remotes, and the bare flag from git, and rewrites the document in place,
// preserving unrelated content. Linked worktrees are recorded as
// worktree/branch references to their parent tree, which must already be
// planted.
func Plant(ctx context.Context, cfg *model.Configuration, out io.Writer,
	output string, paths []string, verbose bool) error {

	if len(paths) == 0 {
		return errs.Usage("at least one tree path must be specified")
	}

	sourcePath, err := cfg.GetPath()
	if err != nil {
		return err
	}
	doc, err := config.ReadDocument(sourcePath)
	if err != nil {
		return err
	}
	if output == "" {
		output = sourcePath
	}

	trees := config.EnsureMapping(doc, "trees")
	for _, path := range paths {
		if err := plantPath(ctx, cfg, out, path, trees, verbose); err != nil {
			return err
		}
	}

	return config.WriteDocument(doc, output)
}

// plantPath records one tree entry under the document's trees mapping.
func plantPath(ctx context.Context, cfg *model.Configuration, out io.Writer,
	rawPath string, trees *yaml.Node, verbose bool) error {

	logger := ctxlog.FromContext(ctx)

	rawPath, ok := locateTree(cfg, rawPath)
	if !ok {
		return errs.Config("invalid tree path: %s", rawPath)
	}
	path, err := filepath.Abs(rawPath)
	if err != nil {
		return errs.Config("unable to resolve %s: %v", rawPath, err)
	}

	details, err := git.Worktree(path)
	if err != nil {
		return errs.Config("%s is not a git repository: %v", rawPath, err)
	}

	// Tree name: reuse an existing entry when the path is already declared,
	// otherwise derive the name from the path relative to the root.
	treePath, err := pathUnderRoot(cfg, path)
	if err != nil {
		return err
	}
	name, known := query.TreeNameFromAbspath(cfg, path)
	if !known {
		name = treePath
	}

	entry := config.MappingEntry(trees, name)
	if entry == nil || entry.Kind != yaml.MappingNode {
		entry = &yaml.Node{Kind: yaml.MappingNode}
	} else if verbose {
		fmt.Fprintf(out, "%s: found existing tree\n", name)
	}

	// Linked worktrees only record a reference to their parent tree.
	if details.IsWorktree {
		parentName, planted := query.TreeNameFromAbspath(cfg, details.Parent)
		if !planted {
			return &errs.WorktreeParentError{Parent: details.Parent, Tree: rawPath}
		}
		config.SetMappingEntry(entry, "worktree", config.ScalarNode(parentName))
		config.SetMappingEntry(entry, "branch", config.ScalarNode(details.Branch))
		config.SetMappingEntry(trees, name, entry)
		logger.Debug("worktree planted", "tree", name, "parent", parentName)
		return nil
	}

	if url, ok := git.RemoteURL(path, "origin"); ok {
		config.SetMappingEntry(entry, "url", config.ScalarNode(url))
	} else if verbose {
		fmt.Fprintf(out, "%s: no url\n", name)
	}

	// Remotes other than origin live under a nested "remotes" mapping.
	if names := git.RemoteNames(path); len(names) > 0 {
		remotes := config.MappingEntry(entry, "remotes")
		if remotes == nil || remotes.Kind != yaml.MappingNode {
			remotes = &yaml.Node{Kind: yaml.MappingNode}
			config.SetMappingEntry(entry, "remotes", remotes)
		}
		for _, remote := range names {
			if url, ok := git.RemoteURL(path, remote); ok {
				config.SetMappingEntry(remotes, remote, config.ScalarNode(url))
			}
		}
	}

	if git.IsBare(path) {
		config.SetMappingEntry(entry, "bare", config.BoolNode(true))
	}

	config.SetMappingEntry(trees, name, entry)
	logger.Debug("tree planted", "tree", name, "path", treePath)
	return nil
}

// locateTree resolves a plant argument to an existing directory. Paths that
// do not exist as given are searched for by name under each tree-search-path
// entry.
func locateTree(cfg *model.Configuration, rawPath string) (string, bool) {
	if _, err := os.Stat(rawPath); err == nil {
		return rawPath, true
	}
	if filepath.IsAbs(rawPath) {
		return rawPath, false
	}
	for _, dir := range cfg.TreeSearchPath {
		candidate := filepath.Join(cfg.TreePath(dir), rawPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return rawPath, false
}

// pathUnderRoot returns path relative to the configuration root.
func pathUnderRoot(cfg *model.Configuration, path string) (string, error) {
	root, err := filepath.Abs(cfg.RootPath)
	if err != nil {
		return "", errs.Config("unable to canonicalize config root: %v", err)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.Config("%s is not under the configuration root %s", path, root)
	}
	return rel, nil
}
