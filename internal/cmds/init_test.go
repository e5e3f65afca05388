package cmds

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/arbor/internal/config"
	"github.com/vk/arbor/internal/errs"
)

func TestInitWritesStarterDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	var out bytes.Buffer

	err := Init(&out, path, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "created")

	// The starter document parses and initializes cleanly.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, ".", cfg.Root.Expr())
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trees: {}\n"), 0o644))

	err := Init(&bytes.Buffer{}, path, false)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "already exists")

	// --force overwrites.
	require.NoError(t, Init(&bytes.Buffer{}, path, true))
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "gardens: {}")
}
