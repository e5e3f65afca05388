package model

import (
	"path/filepath"

	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/syntax"
)

// DefaultShell runs exec expressions and "arbor shell" sessions when the
// configuration does not name a shell.
const DefaultShell = "sh"

// Configuration is the root aggregate loaded from one document: global
// variables, commands, environment, and gitconfig, plus the trees, gardens,
// groups, templates, and grafts they organize.
type Configuration struct {
	Commands    []*MultiVariable
	Environment []*MultiVariable
	Gitconfig   []*NamedVariable
	Gardens     []*Garden
	Grafts      []*Graft
	Groups      []*Group
	Templates   []*Template
	Trees       []*Tree
	Variables   []*NamedVariable

	// Root is the base path all relative tree paths resolve against.
	Root *Variable
	// RootPath is Root's resolved value, stored after initialization.
	RootPath string
	// Shell runs exec expressions and interactive sessions.
	Shell string
	// Path and Dirname locate the source document, when one exists.
	Path    string
	Dirname string
	// TreeSearchPath lists extra directories consulted when resolving trees.
	TreeSearchPath []string

	id       ConfigID
	parentID ConfigID
}

// NewConfiguration creates an empty configuration with the ARBOR_ROOT
// builtin seeded into the first global variable slot.
func NewConfiguration() *Configuration {
	return &Configuration{
		Root:     NewVariable(""),
		Shell:    DefaultShell,
		id:       InvalidConfigID,
		parentID: InvalidConfigID,
		Variables: []*NamedVariable{
			NewNamedVariable(RootVarName, ""),
		},
	}
}

// ID returns this configuration's forest identity.
func (c *Configuration) ID() ConfigID {
	return c.id
}

// SetID records this configuration's forest identity.
func (c *Configuration) SetID(id ConfigID) {
	c.id = id
}

// ParentID returns the forest identity of the parent configuration, or
// InvalidConfigID for the root.
func (c *Configuration) ParentID() ConfigID {
	return c.parentID
}

// SetParent records the parent configuration's forest identity.
func (c *Configuration) SetParent(id ConfigID) {
	c.parentID = id
}

// SetPath records the source document path and its directory.
func (c *Configuration) SetPath(path string) {
	c.Path = path
	c.Dirname = filepath.Dir(path)
}

// GetPath returns the source document path, or an AssertionError when the
// configuration was not loaded from a file.
func (c *Configuration) GetPath() (string, error) {
	if c.Path == "" {
		return "", errs.Assertion("configuration path is unset")
	}
	return c.Path, nil
}

// TreePath resolves a path string against the configuration root. Absolute
// paths are returned unchanged.
func (c *Configuration) TreePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.RootPath, path)
}

// ConfigPath resolves a path string against the source document's
// directory. Absolute paths are returned unchanged; configurations without
// a source document fall back to the root path.
func (c *Configuration) ConfigPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if c.Dirname != "" {
		return filepath.Join(c.Dirname, path)
	}
	return c.TreePath(path)
}

// UpdateIndexes assigns each group and garden its stable index. Called once
// after load; the indices never change afterwards.
func (c *Configuration) UpdateIndexes() {
	for idx, group := range c.Groups {
		group.index = GroupIndex(idx)
	}
	for idx, garden := range c.Gardens {
		garden.index = GardenIndex(idx)
	}
}

// Reset clears every cached variable value (tree paths exempt) and
// refreshes the builtin variables so a new evaluation pass starts clean.
func (c *Configuration) Reset() {
	c.ResetVariables()
	c.ResetBuiltinVariables()
}

// ResetVariables clears cached values on the global scope and every tree.
func (c *Configuration) ResetVariables() {
	for _, v := range c.Variables {
		v.Reset()
	}
	for _, env := range c.Environment {
		env.Reset()
	}
	for _, cmd := range c.Commands {
		cmd.Reset()
	}
	for _, tree := range c.Trees {
		tree.ResetVariables()
	}
}

// ResetBuiltinVariables rewrites the synthesized variables held in fixed
// scope slots: ARBOR_ROOT in the first global slot and TREE_NAME/TREE_PATH
// in the first two slots of each tree. The underlying Variable objects are
// reused across trees, so the values are written immediately before
// evaluation so environment and commands see the correct ones.
func (c *Configuration) ResetBuiltinVariables() {
	if len(c.Variables) > 0 && c.Variables[0].Name() == RootVarName {
		if value, ok := c.Root.Value(); ok {
			c.Variables[0].SetExpr(value)
			c.Variables[0].SetValue(value)
		}
	}

	for _, tree := range c.Trees {
		if len(tree.Variables) < 2 {
			continue
		}
		// Skip trees whose paths were never resolved.
		treePath, err := tree.PathValue()
		if err != nil {
			continue
		}
		if tree.Variables[0].Name() == TreeNameVarName {
			tree.Variables[0].SetExpr(tree.Name())
			tree.Variables[0].SetValue(tree.Name())
		}
		if tree.Variables[1].Name() == TreePathVarName {
			tree.Variables[1].SetExpr(treePath)
			tree.Variables[1].SetValue(treePath)
		}
	}
}

// ContainsGraft reports whether this configuration declares the named
// graft. Only the declaring configuration's own graft list is searched.
func (c *Configuration) ContainsGraft(name string) bool {
	graftName := syntax.Trim(name)
	for _, graft := range c.Grafts {
		if graft.Name() == graftName {
			return true
		}
	}
	return false
}

// GetGraft returns the named graft, or a "no such graft" ConfigError.
func (c *Configuration) GetGraft(name string) (*Graft, error) {
	graftName := syntax.Trim(name)
	for _, graft := range c.Grafts {
		if graft.Name() == graftName {
			return graft, nil
		}
	}
	return nil, errs.Config("%s: no such graft", name)
}
