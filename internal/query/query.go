// Package query resolves tree selectors into ordered execution contexts.
//
// Strategy: resolve the selector down to a set of tree indexes paired with
// an optional garden context. When the selector resolves to gardens, each
// garden is processed independently: trees that exist in multiple matching
// gardens are processed multiple times, once per garden, because
// garden-scoped variables and commands can differ per garden. When the
// selector resolves to groups or trees, each tree is processed once with no
// garden context.
package query

import (
	"path/filepath"

	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/model"
)

// ResolveTrees resolves a selector against a configuration into an ordered
// list of tree contexts. Default (unmarked) selectors try gardens first,
// then groups, then trees; the first tier producing any context wins. An
// empty result is valid, not an error.
func ResolveTrees(cfg *model.Configuration, query string) []model.TreeContext {
	tq := model.NewTreeQuery(query)
	var contexts []model.TreeContext

	if tq.IncludeGardens {
		contexts = gardenContexts(cfg, tq)
		if len(contexts) > 0 || tq.IsGarden {
			return contexts
		}
	}
	if tq.IncludeGroups {
		contexts = groupContexts(cfg, tq)
		if len(contexts) > 0 || tq.IsGroup {
			return contexts
		}
	}
	if tq.IncludeTrees {
		contexts = treeContexts(cfg, tq)
	}
	return contexts
}

// gardenContexts emits one context per (tree, matching garden) pair, in
// garden declaration order.
func gardenContexts(cfg *model.Configuration, tq model.TreeQuery) []model.TreeContext {
	var contexts []model.TreeContext
	for _, garden := range cfg.Gardens {
		if !tq.Match(garden.Name()) {
			continue
		}
		for _, name := range treesFromGarden(cfg, garden) {
			if idx, ok := treeIndex(cfg, name); ok {
				contexts = append(contexts,
					model.NewTreeContext(idx, cfg.ID(), garden.Index(), model.InvalidIndex))
			}
		}
	}
	return contexts
}

// groupContexts emits one context per tree reachable from a matching group,
// with no garden attached.
func groupContexts(cfg *model.Configuration, tq model.TreeQuery) []model.TreeContext {
	var contexts []model.TreeContext
	for _, group := range cfg.Groups {
		if !tq.Match(group.Name()) {
			continue
		}
		seen := make(map[string]bool)
		var names []string
		expandGroup(cfg, group, seen, &names)
		for _, name := range names {
			if idx, ok := treeIndex(cfg, name); ok {
				contexts = append(contexts,
					model.NewTreeContext(idx, cfg.ID(), model.InvalidIndex, group.Index()))
			}
		}
	}
	return contexts
}

// treeContexts emits one context per matching tree with no garden or group.
func treeContexts(cfg *model.Configuration, tq model.TreeQuery) []model.TreeContext {
	var contexts []model.TreeContext
	for idx, tree := range cfg.Trees {
		if tq.Match(tree.Name()) {
			contexts = append(contexts,
				model.NewTreeContext(model.TreeIndex(idx), cfg.ID(), model.InvalidIndex, model.InvalidIndex))
		}
	}
	return contexts
}

// treesFromGarden expands a garden's tree list and group members, groups
// recursively, into tree names, preserving declared order. Each tree
// appears once per garden.
func treesFromGarden(cfg *model.Configuration, garden *model.Garden) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range garden.Trees {
		appendTreeName(name, seen, &names)
	}
	for _, groupName := range garden.Groups {
		if group, ok := groupByName(cfg, groupName); ok {
			expandGroup(cfg, group, seen, &names)
		}
	}
	return names
}

// expandGroup walks a group's members in order, recursing into nested
// groups. The seen set keeps the expansion finite when groups reference
// each other and deduplicates trees within one expansion.
func expandGroup(cfg *model.Configuration, group *model.Group, seen map[string]bool, names *[]string) {
	groupKey := "%" + group.Name()
	if seen[groupKey] {
		return
	}
	seen[groupKey] = true

	for _, member := range group.Members {
		if _, ok := treeIndex(cfg, member); ok {
			appendTreeName(member, seen, names)
			continue
		}
		if nested, ok := groupByName(cfg, member); ok {
			expandGroup(cfg, nested, seen, names)
		}
	}
}

func appendTreeName(name string, seen map[string]bool, names *[]string) {
	if seen[name] {
		return
	}
	seen[name] = true
	*names = append(*names, name)
}

func treeIndex(cfg *model.Configuration, name string) (model.TreeIndex, bool) {
	for idx, tree := range cfg.Trees {
		if tree.Name() == name {
			return model.TreeIndex(idx), true
		}
	}
	return model.InvalidIndex, false
}

func groupByName(cfg *model.Configuration, name string) (*model.Group, bool) {
	for _, group := range cfg.Groups {
		if group.Name() == name {
			return group, true
		}
	}
	return nil, false
}

func gardenIndex(cfg *model.Configuration, name string) (model.GardenIndex, bool) {
	for idx, garden := range cfg.Gardens {
		if garden.Name() == name {
			return model.GardenIndex(idx), true
		}
	}
	return model.InvalidIndex, false
}

// TreeContextForNames resolves exactly one named tree, optionally paired
// with exactly one named garden. Single-target commands use this instead of
// the full selector resolution.
func TreeContextForNames(cfg *model.Configuration, treeName, gardenName string) (model.TreeContext, error) {
	idx, ok := treeIndex(cfg, treeName)
	if !ok {
		return model.TreeContext{}, errs.Config("unable to find tree %q", treeName)
	}
	garden := model.GardenIndex(model.InvalidIndex)
	if gardenName != "" {
		gidx, ok := gardenIndex(cfg, gardenName)
		if !ok {
			return model.TreeContext{}, errs.Config("unable to find garden %q", gardenName)
		}
		garden = gidx
	}
	return model.NewTreeContext(idx, cfg.ID(), garden, model.InvalidIndex), nil
}

// TreeNameFromAbspath maps a filesystem path back to a declared tree name.
// Collaborators that write configuration documents use this to reuse
// existing tree entries.
func TreeNameFromAbspath(cfg *model.Configuration, path string) (string, bool) {
	cleaned := filepath.Clean(path)
	for _, tree := range cfg.Trees {
		treePath, err := tree.PathValue()
		if err != nil {
			continue
		}
		if filepath.Clean(treePath) == cleaned {
			return tree.Name(), true
		}
	}
	return "", false
}
