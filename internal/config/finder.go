package config

import (
	"os"
	"path/filepath"

	"github.com/vk/arbor/internal/errs"
)

// DefaultFilename is the configuration document searched for when --config
// is not given.
const DefaultFilename = "arbor.yaml"

// Find locates the configuration document. An explicit path wins; otherwise
// the working directory and its parents are searched, then the user's
// config directory.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errs.Config("unable to read %s: %v", explicit, err)
		}
		return explicit, nil
	}

	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, DefaultFilename)
			if _, statErr := os.Stat(candidate); statErr == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, homeErr := os.UserHomeDir(); homeErr == nil {
		candidate := filepath.Join(home, ".config", "arbor", DefaultFilename)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		}
	}

	return "", errs.Config("%s not found in the current directory or its parents", DefaultFilename)
}
