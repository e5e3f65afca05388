package model

import (
	"path"

	"github.com/vk/arbor/internal/syntax"
)

// TreeQuery is a parsed selector. A selector optionally begins with a
// marker forcing interpretation as a garden (":"), group ("%"), or tree
// ("@") name pattern; without a marker the query is "default" and all three
// kinds participate in matching. The remainder is a glob pattern ("*", "?",
// and bracket classes) matched against entity names.
type TreeQuery struct {
	Query   string
	Pattern string

	IsDefault bool
	IsGarden  bool
	IsGroup   bool
	IsTree    bool

	IncludeGardens bool
	IncludeGroups  bool
	IncludeTrees   bool
}

// NewTreeQuery parses a selector string. Parsing is total: a malformed glob
// pattern simply matches nothing.
func NewTreeQuery(query string) TreeQuery {
	tq := TreeQuery{
		Query:          query,
		Pattern:        syntax.Trim(query),
		IncludeGardens: true,
		IncludeGroups:  true,
		IncludeTrees:   true,
	}

	switch {
	case syntax.IsGarden(query):
		tq.IsGarden = true
		tq.IncludeGroups = false
		tq.IncludeTrees = false
	case syntax.IsGroup(query):
		tq.IsGroup = true
		tq.IncludeGardens = false
		tq.IncludeTrees = false
	case syntax.IsTree(query):
		tq.IsTree = true
		tq.IncludeGardens = false
		tq.IncludeGroups = false
	default:
		tq.IsDefault = true
	}

	return tq
}

// Match reports whether the entity name matches the query's glob pattern.
func (tq TreeQuery) Match(name string) bool {
	matched, err := path.Match(tq.Pattern, name)
	return err == nil && matched
}
