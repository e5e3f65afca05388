// Package eval implements variable and expression evaluation.
//
// Expressions are literal text containing zero or more ${name} placeholders.
// Names are resolved by scanning scopes in precedence order: the tree scope
// when the context has a tree, then the garden scope, then the global
// configuration scope. An unresolved name expands to the empty string, so
// evaluation is total. A substituted expression beginning with the exec
// marker ("$ ") is run through the configured shell and its trimmed stdout
// becomes the value.
//
// Each Variable caches its computed value; re-evaluating without a reset
// returns the cache without launching any subprocess.
package eval

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/arbor/internal/model"
	"github.com/vk/arbor/internal/shell"
	"github.com/vk/arbor/internal/syntax"
)

// EnvVar is one evaluated environment entry.
type EnvVar struct {
	Name  string
	Value string
}

// state tracks a single evaluation pass. The visiting set guards against
// reference cycles: a re-entrant lookup of a name already being evaluated
// resolves to the empty string instead of recursing forever.
type state struct {
	cfg      *model.Configuration
	tree     model.TreeIndex
	garden   model.GardenIndex
	visiting map[string]bool
}

func newState(cfg *model.Configuration, tree model.TreeIndex, garden model.GardenIndex) *state {
	return &state{
		cfg:      cfg,
		tree:     tree,
		garden:   garden,
		visiting: make(map[string]bool),
	}
}

// Value evaluates an expression against the configuration's global scope.
func Value(cfg *model.Configuration, expr string) string {
	return TreeValue(cfg, expr, model.InvalidIndex, model.InvalidIndex)
}

// TreeValue evaluates an expression against a tree scope, optionally inside
// a garden scope. Evaluation never fails.
func TreeValue(cfg *model.Configuration, expr string, tree model.TreeIndex, garden model.GardenIndex) string {
	return newState(cfg, tree, garden).value(expr)
}

// value substitutes placeholders and then runs exec expressions.
func (s *state) value(expr string) string {
	expanded := s.expand(expr)
	if syntax.IsExec(expanded) {
		return shell.Capture(s.cfg.Shell, syntax.TrimExec(expanded), "")
	}
	return expanded
}

// expand replaces every ${name} placeholder in text. An unterminated
// placeholder is kept as literal text.
func (s *state) expand(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}

	var b strings.Builder
	for {
		start := strings.Index(text, "${")
		if start < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		rest := text[start+2:]
		end := strings.Index(rest, "}")
		if end < 0 {
			b.WriteString(text[start:])
			break
		}
		b.WriteString(s.lookup(rest[:end]))
		text = rest[end+1:]
	}
	return b.String()
}

// lookup resolves a name through the scope chain: tree, then garden, then
// the global configuration scope. Unresolved names yield "".
func (s *state) lookup(name string) string {
	if s.visiting[name] {
		return ""
	}
	s.visiting[name] = true
	defer delete(s.visiting, name)

	if s.tree != model.InvalidIndex && int(s.tree) < len(s.cfg.Trees) {
		if nv := findNamed(s.cfg.Trees[s.tree].Variables, name); nv != nil {
			return s.evaluate(nv)
		}
	}
	if s.garden != model.InvalidIndex && int(s.garden) < len(s.cfg.Gardens) {
		if nv := findNamed(s.cfg.Gardens[s.garden].Variables, name); nv != nil {
			return s.evaluate(nv)
		}
	}
	if nv := findNamed(s.cfg.Variables, name); nv != nil {
		return s.evaluate(nv)
	}
	return ""
}

// evaluate computes a named variable's value, consulting the cache first.
func (s *state) evaluate(nv *model.NamedVariable) string {
	if value, ok := nv.Value(); ok {
		return value
	}
	value := s.value(nv.Expr())
	nv.SetValue(value)
	return value
}

// findNamed returns the first variable bound to name. First match wins, so
// earlier slots shadow later ones.
func findNamed(vars []*model.NamedVariable, name string) *model.NamedVariable {
	for _, nv := range vars {
		if nv.Name() == name {
			return nv
		}
	}
	return nil
}

// multiValue evaluates one entry of a MultiVariable with caching.
func (s *state) multiValue(v *model.Variable) string {
	if value, ok := v.Value(); ok {
		return value
	}
	value := s.value(v.Expr())
	v.SetValue(value)
	return value
}

// Environment returns the ordered environment for a tree context. Scopes
// contribute outermost first (configuration, then garden, then tree) and a
// repeated name appends to the earlier entry using the OS path-list
// separator, so PATH-like variables accumulate across scopes.
func Environment(cfg *model.Configuration, ctx model.TreeContext) []EnvVar {
	s := newState(cfg, ctx.Tree, ctx.Garden)

	var scopes [][]*model.MultiVariable
	scopes = append(scopes, cfg.Environment)
	if ctx.HasGarden() && int(ctx.Garden) < len(cfg.Gardens) {
		scopes = append(scopes, cfg.Gardens[ctx.Garden].Environment)
	}
	if ctx.Tree != model.InvalidIndex && int(ctx.Tree) < len(cfg.Trees) {
		scopes = append(scopes, cfg.Trees[ctx.Tree].Environment)
	}

	var env []EnvVar
	index := make(map[string]int)
	for _, scope := range scopes {
		for _, mv := range scope {
			name := s.value(mv.Name())
			for _, entry := range mv.Variables() {
				value := s.multiValue(entry)
				if at, seen := index[name]; seen {
					env[at].Value += string(os.PathListSeparator) + value
					continue
				}
				index[name] = len(env)
				env = append(env, EnvVar{Name: name, Value: value})
			}
		}
	}
	return env
}

// CommandValues gathers the evaluated command lines registered under name
// for a context. Scopes contribute outermost first: configuration, then
// garden, then tree, so tree-level hooks run last.
func CommandValues(cfg *model.Configuration, ctx model.TreeContext, name string) []string {
	s := newState(cfg, ctx.Tree, ctx.Garden)

	var scopes [][]*model.MultiVariable
	scopes = append(scopes, cfg.Commands)
	if ctx.HasGarden() && int(ctx.Garden) < len(cfg.Gardens) {
		scopes = append(scopes, cfg.Gardens[ctx.Garden].Commands)
	}
	if ctx.Tree != model.InvalidIndex && int(ctx.Tree) < len(cfg.Trees) {
		scopes = append(scopes, cfg.Trees[ctx.Tree].Commands)
	}

	var commands []string
	for _, scope := range scopes {
		for _, mv := range scope {
			if mv.Name() != name {
				continue
			}
			for _, entry := range mv.Variables() {
				commands = append(commands, s.multiValue(entry))
			}
		}
	}
	return commands
}

// CommandNames returns the set of command names visible to a context.
func CommandNames(cfg *model.Configuration, ctx model.TreeContext) map[string]bool {
	names := make(map[string]bool)
	collect := func(scope []*model.MultiVariable) {
		for _, mv := range scope {
			names[mv.Name()] = true
		}
	}
	collect(cfg.Commands)
	if ctx.HasGarden() && int(ctx.Garden) < len(cfg.Gardens) {
		collect(cfg.Gardens[ctx.Garden].Commands)
	}
	if ctx.Tree != model.InvalidIndex && int(ctx.Tree) < len(cfg.Trees) {
		collect(cfg.Trees[ctx.Tree].Commands)
	}
	return names
}

// Initialize resolves the configuration root, evaluates every tree's
// absolute path and symlink target, assigns garden and group indices, and
// performs the first variable reset. Tree paths are evaluated here exactly
// once; later resets leave them untouched.
func Initialize(cfg *model.Configuration) {
	rootValue := expandHome(Value(cfg, cfg.Root.Expr()))
	switch {
	case rootValue == "":
		rootValue = cfg.Dirname
	case !filepath.IsAbs(rootValue) && cfg.Dirname != "":
		rootValue = filepath.Join(cfg.Dirname, rootValue)
	}
	cfg.RootPath = rootValue
	cfg.Root.SetValue(rootValue)

	updateTreePaths(cfg)
	cfg.UpdateIndexes()
	cfg.Reset()
}

// updateTreePaths resolves each tree's path, and symlink target for
// symlink trees, relative to the configuration root.
func updateTreePaths(cfg *model.Configuration) {
	for _, tree := range cfg.Trees {
		tree.Path().SetValue(evalTreePath(cfg, tree.Path().Expr()))
		if tree.IsSymlink {
			tree.Symlink.SetValue(evalTreePath(cfg, tree.Symlink.Expr()))
		}
	}
}

// evalTreePath evaluates a path expression and resolves it against the
// configuration root.
func evalTreePath(cfg *model.Configuration, expr string) string {
	return cfg.TreePath(expandHome(Value(cfg, expr)))
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
