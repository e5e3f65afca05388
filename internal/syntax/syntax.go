// Package syntax defines the selector and expression markers understood by
// arbor queries and variable expressions.
package syntax

import "strings"

// Query markers. A selector may force interpretation of its pattern as a
// garden, group, or tree name by prefixing it with one of these characters.
const (
	// GardenMarker forces a selector to match garden names, e.g. ":dev".
	GardenMarker = ':'
	// GroupMarker forces a selector to match group names, e.g. "%libs".
	GroupMarker = '%'
	// TreeMarker forces a selector to match tree names, e.g. "@vx".
	TreeMarker = '@'
)

// ExecMarker denotes an exec expression: the remainder of the value is run
// as a command and its trimmed stdout becomes the variable's value.
const ExecMarker = "$ "

// IsGarden reports whether the selector is garden-marked.
func IsGarden(query string) bool {
	return strings.HasPrefix(query, string(GardenMarker))
}

// IsGroup reports whether the selector is group-marked.
func IsGroup(query string) bool {
	return strings.HasPrefix(query, string(GroupMarker))
}

// IsTree reports whether the selector is tree-marked.
func IsTree(query string) bool {
	return strings.HasPrefix(query, string(TreeMarker))
}

// IsExec reports whether the expression designates an exec expression.
func IsExec(expr string) bool {
	return strings.HasPrefix(expr, ExecMarker)
}

// TrimExec strips the exec marker and returns the command line.
func TrimExec(expr string) string {
	return strings.TrimPrefix(expr, ExecMarker)
}

// Trim strips surrounding whitespace and any leading entity markers from a
// selector, leaving the bare glob pattern or name. Graft references and
// query patterns are compared using this trimmed form.
func Trim(query string) string {
	trimmed := strings.TrimSpace(query)
	for len(trimmed) > 0 {
		switch trimmed[0] {
		case GardenMarker, GroupMarker, TreeMarker:
			trimmed = trimmed[1:]
		default:
			return trimmed
		}
	}
	return trimmed
}
