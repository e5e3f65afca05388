// Package display renders progress lines for trees. Styling is driven by a
// Styles value constructed from an explicit ColorMode and threaded through
// callers; there is no process-wide color toggle.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/vk/arbor/internal/model"
)

// ColorMode selects whether output is colorized.
type ColorMode int

const (
	// ColorAuto enables color when stdout is a terminal.
	ColorAuto ColorMode = iota
	// ColorOff disables color.
	ColorOff
	// ColorOn enables color unconditionally.
	ColorOn
)

// ParseColorMode maps the --color option value onto a ColorMode.
func ParseColorMode(src string) (ColorMode, bool) {
	switch src {
	case "auto", "-1":
		return ColorAuto, true
	case "0", "false", "never", "off", "n", "no":
		return ColorOff, true
	case "1", "true", "always", "on", "y", "yes":
		return ColorOn, true
	}
	return ColorAuto, false
}

// ColorModeNames lists the accepted --color values for usage text.
const ColorModeNames = "auto, true, false, 1, 0, [y]es, [n]o, on, off, always, never"

// Enabled reports whether this mode produces colored output.
func (m ColorMode) Enabled() bool {
	switch m {
	case ColorOn:
		return true
	case ColorOff:
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}

// Styles bundles the lipgloss styles used for progress lines.
type Styles struct {
	marker  lipgloss.Style
	name    lipgloss.Style
	path    lipgloss.Style
	skipped lipgloss.Style
}

// NewStyles builds the style set for a color mode. A disabled mode yields
// pass-through styles.
func NewStyles(mode ColorMode) Styles {
	if !mode.Enabled() {
		plain := lipgloss.NewStyle()
		return Styles{marker: plain, name: plain, path: plain, skipped: plain}
	}
	return Styles{
		marker:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		name:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		path:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),
	}
}

// Tree renders the one-line progress marker for an executed tree, including
// the path when verbose.
func (s Styles) Tree(tree *model.Tree, path string, verbose bool) string {
	if verbose {
		return fmt.Sprintf("%s %s  %s",
			s.marker.Render("#"), s.name.Render(tree.Name()), s.path.Render(path))
	}
	return fmt.Sprintf("%s %s", s.marker.Render("#"), s.name.Render(tree.Name()))
}

// MissingTree renders the line for a tree whose directory does not exist.
func (s Styles) MissingTree(tree *model.Tree, path string, verbose bool) string {
	if verbose {
		return fmt.Sprintf("%s %s  %s %s",
			s.skipped.Render("#"), s.skipped.Render(tree.Name()),
			s.skipped.Render(path), s.skipped.Render("(skipped)"))
	}
	return fmt.Sprintf("%s %s %s",
		s.skipped.Render("#"), s.skipped.Render(tree.Name()), s.skipped.Render("(skipped)"))
}

// PrintTree prints a tree's progress line to w, or a missing-tree line when
// its directory does not exist. Sparse gardens are fine; missing trees are
// skipped, not errors. Returns whether the tree exists on disk.
func (s Styles) PrintTree(w io.Writer, tree *model.Tree, verbose, quiet bool) bool {
	path, err := tree.PathValue()
	if err != nil {
		if !quiet {
			fmt.Fprintln(w, s.MissingTree(tree, "[invalid-path]", verbose))
		}
		return false
	}
	if _, statErr := os.Stat(path); statErr != nil {
		if !quiet {
			fmt.Fprintln(w, s.MissingTree(tree, path, verbose))
		}
		return false
	}
	if !quiet {
		fmt.Fprintln(w, s.Tree(tree, path, verbose))
	}
	return true
}
