package model

import "github.com/vk/arbor/internal/errs"

// Builtin variable names synthesized into fixed scope slots before each
// evaluation pass.
const (
	// RootVarName occupies the first configuration-scope variable slot.
	RootVarName = "ARBOR_ROOT"
	// TreeNameVarName occupies the first tree-scope variable slot.
	TreeNameVarName = "TREE_NAME"
	// TreePathVarName occupies the second tree-scope variable slot.
	TreePathVarName = "TREE_PATH"
)

// Tree represents a single managed working directory.
type Tree struct {
	Commands    []*MultiVariable
	Environment []*MultiVariable
	Gitconfig   []*NamedVariable
	Remotes     []*NamedVariable
	IsSymlink   bool
	Symlink     *Variable
	Templates   []string
	Variables   []*NamedVariable
	CloneDepth  int

	name string
	path *Variable
}

// NewTree creates a tree with the given name. The TREE_NAME and TREE_PATH
// builtins are seeded into the first two variable slots; their values are
// rewritten before each evaluation pass.
func NewTree(name string) *Tree {
	return &Tree{
		name:    name,
		path:    NewVariable(""),
		Symlink: NewVariable(""),
		Variables: []*NamedVariable{
			NewNamedVariable(TreeNameVarName, ""),
			NewNamedVariable(TreePathVarName, ""),
		},
	}
}

// Name returns the tree's name.
func (t *Tree) Name() string {
	return t.name
}

// SetName renames the tree.
func (t *Tree) SetName(name string) {
	t.name = name
}

// Path returns the tree's path variable. The path is evaluated once during
// configuration initialization and never recomputed by scope resets.
func (t *Tree) Path() *Variable {
	return t.path
}

// PathIsValid reports whether the tree path has been resolved.
func (t *Tree) PathIsValid() bool {
	_, ok := t.path.Value()
	return ok
}

// PathValue returns the resolved absolute path, or a ConfigError when the
// path has not been resolved yet.
func (t *Tree) PathValue() (string, error) {
	if value, ok := t.path.Value(); ok {
		return value, nil
	}
	return "", errs.Config("unset tree path for %s", t.name)
}

// SymlinkValue returns the resolved symlink target, or a ConfigError when
// it has not been resolved.
func (t *Tree) SymlinkValue() (string, error) {
	if value, ok := t.Symlink.Value(); ok {
		return value, nil
	}
	return "", errs.Config("unset symlink path for %s", t.name)
}

// ResetVariables clears the cached values of the tree's scoped data. The
// tree path is deliberately exempt: it is structural, evaluated once when
// the configuration is first read, and never again.
func (t *Tree) ResetVariables() {
	for _, v := range t.Variables {
		v.Reset()
	}
	for _, cfg := range t.Gitconfig {
		cfg.Reset()
	}
	for _, env := range t.Environment {
		env.Reset()
	}
	for _, cmd := range t.Commands {
		cmd.Reset()
	}
}

// Template is a named, reusable bundle of variables, commands, environment,
// gitconfig, and remotes mixed into trees by name reference. Templates may
// extend other templates, forming a chain of inclusion.
type Template struct {
	Commands    []*MultiVariable
	Environment []*MultiVariable
	Extend      []string
	Gitconfig   []*NamedVariable
	Remotes     []*NamedVariable
	Variables   []*NamedVariable
	CloneDepth  int

	name string
}

// NewTemplate creates an empty template with the given name.
func NewTemplate(name string) *Template {
	return &Template{name: name}
}

// Name returns the template's name.
func (t *Template) Name() string {
	return t.name
}
