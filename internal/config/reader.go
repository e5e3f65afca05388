// Package config loads arbor YAML documents into Configuration values and
// rewrites them in place for commands that record new trees.
//
// Documents are decoded through yaml.Node traversal rather than map
// unmarshalling so that declaration order is preserved: variables are
// iteratively calculated and may reference earlier ones, and query
// resolution is defined over declaration order.
package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/arbor/internal/ctxlog"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/eval"
	"github.com/vk/arbor/internal/forest"
	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/syntax"
)

// Overrides carries command-line adjustments applied before initialization.
type Overrides struct {
	// Root replaces the document's root path when non-empty.
	Root string
	// Variables holds "name=value" expressions that shadow document
	// variables.
	Variables []string
}

// Load reads one document into an initialized Configuration.
func Load(ctx context.Context, path string, overrides Overrides) (*model.Configuration, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("loading configuration", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Config("unable to read %s: %v", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SetPath(path)
	applyOverrides(cfg, overrides)
	eval.Initialize(cfg)

	logger.Debug("configuration loaded",
		"trees", len(cfg.Trees), "gardens", len(cfg.Gardens), "groups", len(cfg.Groups))
	return cfg, nil
}

// LoadForest loads the root document, then materializes its grafts,
// recursively, by loading each referenced document and attaching it beneath
// its parent node.
func LoadForest(ctx context.Context, path string, overrides Overrides) (*forest.Forest, error) {
	cfg, err := Load(ctx, path, overrides)
	if err != nil {
		return nil, err
	}
	f := forest.New(cfg)
	if err := loadGrafts(ctx, f, cfg.ID(), map[string]bool{path: true}); err != nil {
		return nil, err
	}
	return f, nil
}

// loadGrafts attaches each graft declared by the node. The visited set
// keeps mutually referencing documents from looping.
func loadGrafts(ctx context.Context, f *forest.Forest, id model.ConfigID, visited map[string]bool) error {
	logger := ctxlog.FromContext(ctx)
	cfg := f.Get(id)
	for _, graft := range cfg.Grafts {
		graftPath := cfg.ConfigPath(graft.Config)
		if visited[graftPath] {
			return errs.Config("graft cycle involving %s", graftPath)
		}
		visited[graftPath] = true

		child, err := Load(ctx, graftPath, Overrides{Root: graft.Root})
		if err != nil {
			return err
		}
		graftID := f.AddGraft(id, child)
		graft.SetID(graftID)
		logger.Debug("graft attached", "name", graft.Name(), "id", int(graftID))

		if err := loadGrafts(ctx, f, graftID, visited); err != nil {
			return err
		}
	}
	return nil
}

// applyOverrides applies --root and --set adjustments. Set variables are
// inserted after the builtin slot so they shadow document variables while
// the builtins keep their fixed positions.
func applyOverrides(cfg *model.Configuration, overrides Overrides) {
	if overrides.Root != "" {
		cfg.Root.SetExpr(overrides.Root)
	}
	if len(overrides.Variables) == 0 {
		return
	}
	var extra []*model.NamedVariable
	for _, expr := range overrides.Variables {
		name, value := splitAssignment(expr)
		if name != "" {
			extra = append(extra, model.NewNamedVariable(name, value))
		}
	}
	builtins := 1 // ARBOR_ROOT occupies slot 0
	rest := append(extra, cfg.Variables[builtins:]...)
	cfg.Variables = append(cfg.Variables[:builtins:builtins], rest...)
}

func splitAssignment(expr string) (string, string) {
	for i := 0; i < len(expr); i++ {
		if expr[i] == '=' {
			return expr[:i], expr[i+1:]
		}
	}
	return expr, ""
}

// Parse decodes a document into an uninitialized Configuration.
func Parse(data []byte) (*model.Configuration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Config("invalid configuration document: %v", err)
	}

	cfg := model.NewConfiguration()
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfg, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errs.Config("invalid configuration: top level is not a mapping")
	}

	var parseErr error
	eachPair(root, func(key string, value *yaml.Node) {
		if parseErr != nil {
			return
		}
		switch key {
		case "arbor":
			parseErr = parseHeader(cfg, value)
		case "variables":
			eachPair(value, func(name string, v *yaml.Node) {
				cfg.Variables = append(cfg.Variables, model.NewNamedVariable(name, scalar(v)))
			})
		case "environment":
			cfg.Environment = parseMultiVariables(value)
		case "commands":
			cfg.Commands = parseMultiVariables(value)
		case "gitconfig":
			cfg.Gitconfig = parseNamedVariables(value)
		case "templates":
			eachPair(value, func(name string, v *yaml.Node) {
				cfg.Templates = append(cfg.Templates, parseTemplate(name, v))
			})
		case "trees":
			eachPair(value, func(name string, v *yaml.Node) {
				cfg.Trees = append(cfg.Trees, parseTree(name, v))
			})
		case "groups":
			eachPair(value, func(name string, v *yaml.Node) {
				group := model.NewGroup(name)
				group.Members = stringList(v)
				cfg.Groups = append(cfg.Groups, group)
			})
		case "gardens":
			eachPair(value, func(name string, v *yaml.Node) {
				cfg.Gardens = append(cfg.Gardens, parseGarden(name, v))
			})
		case "grafts":
			eachPair(value, func(name string, v *yaml.Node) {
				cfg.Grafts = append(cfg.Grafts, parseGraft(name, v))
			})
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}

	applyTemplates(cfg)
	return cfg, nil
}

// parseHeader reads the tool section: root, shell, and the tree search
// path.
func parseHeader(cfg *model.Configuration, node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errs.Config("invalid configuration: %q is not a mapping", "arbor")
	}
	eachPair(node, func(key string, value *yaml.Node) {
		switch key {
		case "root":
			cfg.Root.SetExpr(scalar(value))
		case "shell":
			cfg.Shell = scalar(value)
		case "tree-search-path":
			cfg.TreeSearchPath = stringList(value)
		}
	})
	return nil
}

func parseTree(name string, node *yaml.Node) *model.Tree {
	tree := model.NewTree(name)
	// Shorthand: "treename: url" records just the origin remote; the path
	// defaults to the tree name.
	if node.Kind == yaml.ScalarNode {
		tree.Path().SetExpr(name)
		tree.Remotes = append(tree.Remotes, model.NewNamedVariable("origin", scalar(node)))
		return tree
	}

	tree.Path().SetExpr(name)
	eachPair(node, func(key string, value *yaml.Node) {
		switch key {
		case "path":
			tree.Path().SetExpr(scalar(value))
		case "url":
			tree.Remotes = append(tree.Remotes, model.NewNamedVariable("origin", scalar(value)))
		case "symlink":
			tree.IsSymlink = true
			tree.Symlink.SetExpr(scalar(value))
		case "templates":
			tree.Templates = stringList(value)
		case "variables":
			eachPair(value, func(n string, v *yaml.Node) {
				tree.Variables = append(tree.Variables, model.NewNamedVariable(n, scalar(v)))
			})
		case "environment":
			tree.Environment = parseMultiVariables(value)
		case "commands":
			tree.Commands = parseMultiVariables(value)
		case "gitconfig":
			tree.Gitconfig = parseNamedVariables(value)
		case "remotes":
			tree.Remotes = append(tree.Remotes, parseNamedVariables(value)...)
		case "depth":
			fmt.Sscanf(scalar(value), "%d", &tree.CloneDepth)
		}
	})
	return tree
}

func parseTemplate(name string, node *yaml.Node) *model.Template {
	tpl := model.NewTemplate(name)
	eachPair(node, func(key string, value *yaml.Node) {
		switch key {
		case "extends":
			tpl.Extend = stringList(value)
		case "variables":
			eachPair(value, func(n string, v *yaml.Node) {
				tpl.Variables = append(tpl.Variables, model.NewNamedVariable(n, scalar(v)))
			})
		case "environment":
			tpl.Environment = parseMultiVariables(value)
		case "commands":
			tpl.Commands = parseMultiVariables(value)
		case "gitconfig":
			tpl.Gitconfig = parseNamedVariables(value)
		case "remotes":
			tpl.Remotes = append(tpl.Remotes, parseNamedVariables(value)...)
		case "depth":
			fmt.Sscanf(scalar(value), "%d", &tpl.CloneDepth)
		}
	})
	return tpl
}

func parseGarden(name string, node *yaml.Node) *model.Garden {
	garden := model.NewGarden(name)
	eachPair(node, func(key string, value *yaml.Node) {
		switch key {
		case "trees":
			garden.Trees = stringList(value)
		case "groups":
			garden.Groups = stringList(value)
		case "variables":
			eachPair(value, func(n string, v *yaml.Node) {
				garden.Variables = append(garden.Variables, model.NewNamedVariable(n, scalar(v)))
			})
		case "environment":
			garden.Environment = parseMultiVariables(value)
		case "commands":
			garden.Commands = parseMultiVariables(value)
		case "gitconfig":
			garden.Gitconfig = parseNamedVariables(value)
		}
	})
	return garden
}

func parseGraft(name string, node *yaml.Node) *model.Graft {
	// Shorthand: "graftname: path/to/config.yaml".
	if node.Kind == yaml.ScalarNode {
		return model.NewGraft(syntax.Trim(name), "", scalar(node))
	}
	var root, configPath string
	eachPair(node, func(key string, value *yaml.Node) {
		switch key {
		case "root":
			root = scalar(value)
		case "config":
			configPath = scalar(value)
		}
	})
	return model.NewGraft(syntax.Trim(name), root, configPath)
}

// parseMultiVariables reads a mapping whose values are scalars or
// sequences into MultiVariables, one per name, preserving entry order.
func parseMultiVariables(node *yaml.Node) []*model.MultiVariable {
	var multis []*model.MultiVariable
	eachPair(node, func(name string, value *yaml.Node) {
		var entries []*model.Variable
		switch value.Kind {
		case yaml.SequenceNode:
			for _, item := range value.Content {
				entries = append(entries, model.NewVariable(scalar(item)))
			}
		default:
			entries = append(entries, model.NewVariable(scalar(value)))
		}
		multis = append(multis, model.NewMultiVariable(name, entries))
	})
	return multis
}

func parseNamedVariables(node *yaml.Node) []*model.NamedVariable {
	var vars []*model.NamedVariable
	eachPair(node, func(name string, value *yaml.Node) {
		vars = append(vars, model.NewNamedVariable(name, scalar(value)))
	})
	return vars
}

// applyTemplates mixes template bundles into the trees that extend them.
// Template-contributed variables are appended after the tree's own, so
// tree-local definitions win on name conflicts (first match wins during
// lookup). A template's extends chain is applied after its own content for
// the same reason.
func applyTemplates(cfg *model.Configuration) {
	templates := make(map[string]*model.Template, len(cfg.Templates))
	for _, tpl := range cfg.Templates {
		templates[tpl.Name()] = tpl
	}
	for _, tree := range cfg.Trees {
		seen := make(map[string]bool)
		for _, name := range tree.Templates {
			applyTemplate(tree, name, templates, seen)
		}
	}
}

func applyTemplate(tree *model.Tree, name string, templates map[string]*model.Template, seen map[string]bool) {
	if seen[name] {
		return
	}
	seen[name] = true
	tpl, ok := templates[name]
	if !ok {
		return
	}
	for _, nv := range tpl.Variables {
		tree.Variables = append(tree.Variables, model.NewNamedVariable(nv.Name(), nv.Expr()))
	}
	for _, mv := range tpl.Environment {
		tree.Environment = append(tree.Environment, cloneMulti(mv))
	}
	for _, mv := range tpl.Commands {
		tree.Commands = append(tree.Commands, cloneMulti(mv))
	}
	for _, nv := range tpl.Gitconfig {
		tree.Gitconfig = append(tree.Gitconfig, model.NewNamedVariable(nv.Name(), nv.Expr()))
	}
	for _, nv := range tpl.Remotes {
		tree.Remotes = append(tree.Remotes, model.NewNamedVariable(nv.Name(), nv.Expr()))
	}
	if tree.CloneDepth == 0 && tpl.CloneDepth != 0 {
		tree.CloneDepth = tpl.CloneDepth
	}
	for _, parent := range tpl.Extend {
		applyTemplate(tree, parent, templates, seen)
	}
}

// cloneMulti copies a MultiVariable so each tree caches its own values.
func cloneMulti(mv *model.MultiVariable) *model.MultiVariable {
	entries := make([]*model.Variable, 0, mv.Len())
	for _, v := range mv.Variables() {
		entries = append(entries, model.NewVariable(v.Expr()))
	}
	return model.NewMultiVariable(mv.Name(), entries)
}

// eachPair visits a mapping node's key/value pairs in document order.
// Non-mapping nodes are ignored.
func eachPair(node *yaml.Node, visit func(key string, value *yaml.Node)) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		visit(node.Content[i].Value, node.Content[i+1])
	}
}

// scalar returns a node's scalar value, or "" for non-scalars.
func scalar(node *yaml.Node) string {
	if node == nil || node.Kind != yaml.ScalarNode {
		return ""
	}
	return node.Value
}

// stringList accepts either a scalar or a sequence of scalars.
func stringList(node *yaml.Node) []string {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}
	}
	if node.Kind != yaml.SequenceNode {
		return nil
	}
	items := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		items = append(items, item.Value)
	}
	return items
}
