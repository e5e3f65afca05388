// Package git shells out to git for the small amount of repository
// introspection needed when recording existing trees: remotes, bare
// detection, and worktree parent discovery. Queries are best-effort;
// missing data yields empty results rather than errors wherever a
// repository may legitimately lack it.
package git

import (
	"path/filepath"

	"github.com/vk/arbor/internal/shell"
)

// Details describes how a directory relates to its repository.
type Details struct {
	// IsWorktree is true for linked worktrees whose primary checkout
	// lives elsewhere.
	IsWorktree bool
	// Parent is the primary checkout's path for linked worktrees.
	Parent string
	// Branch is the checked-out branch, when one is resolvable.
	Branch string
}

// Worktree inspects the repository at path.
func Worktree(path string) (Details, error) {
	gitDir, err := shell.CaptureArgv([]string{"git", "rev-parse", "--git-dir"}, path)
	if err != nil {
		return Details{}, err
	}
	commonDir, err := shell.CaptureArgv([]string{"git", "rev-parse", "--git-common-dir"}, path)
	if err != nil {
		return Details{}, err
	}

	details := Details{}
	if branch, branchErr := shell.CaptureArgv(
		[]string{"git", "symbolic-ref", "--short", "HEAD"}, path); branchErr == nil {
		details.Branch = branch
	}

	gitDir = absolute(path, gitDir)
	commonDir = absolute(path, commonDir)
	if gitDir != commonDir {
		// A linked worktree's git dir lives under the primary checkout's
		// .git/worktrees directory.
		details.IsWorktree = true
		details.Parent = filepath.Dir(commonDir)
	}
	return details, nil
}

// RemoteNames lists the repository's remotes other than origin, which is
// recorded separately as the tree's url.
func RemoteNames(path string) []string {
	output, err := shell.CaptureArgv([]string{"git", "remote"}, path)
	if err != nil || output == "" {
		return nil
	}
	var names []string
	start := 0
	for i := 0; i <= len(output); i++ {
		if i == len(output) || output[i] == '\n' {
			name := output[start:i]
			if name != "" && name != "origin" {
				names = append(names, name)
			}
			start = i + 1
		}
	}
	return names
}

// RemoteURL returns the configured url for a remote.
func RemoteURL(path, remote string) (string, bool) {
	url, err := shell.CaptureArgv(
		[]string{"git", "config", "remote." + remote + ".url"}, path)
	if err != nil || url == "" {
		return "", false
	}
	return url, true
}

// IsBare reports whether the repository is bare.
func IsBare(path string) bool {
	value, err := shell.CaptureArgv(
		[]string{"git", "config", "--bool", "core.bare"}, path)
	return err == nil && value == "true"
}

func absolute(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
