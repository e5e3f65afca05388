package cmds

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/arbor/internal/config"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/model"
)

func TestPlantRequiresPaths(t *testing.T) {
	cfg := model.NewConfiguration()
	cfg.SetPath("/home/u/code/arbor.yaml")

	err := Plant(context.Background(), cfg, &bytes.Buffer{}, "", nil, false)
	var usage *errs.UsageError
	require.ErrorAs(t, err, &usage)
}

func TestPlantRequiresSourceDocument(t *testing.T) {
	cfg := model.NewConfiguration()

	err := Plant(context.Background(), cfg, &bytes.Buffer{}, "", []string{"."}, false)
	var assertErr *errs.AssertionError
	require.ErrorAs(t, err, &assertErr)
}

func TestPlantRejectsMissingPath(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "arbor.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte("trees: {}\n"), 0o644))

	cfg := model.NewConfiguration()
	cfg.SetPath(docPath)

	err := Plant(context.Background(), cfg, &bytes.Buffer{}, "",
		[]string{filepath.Join(dir, "missing")}, false)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "invalid tree path")
}

func TestPlantRejectsNonRepository(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "arbor.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte("trees: {}\n"), 0o644))
	plainDir := filepath.Join(dir, "plain")
	require.NoError(t, os.Mkdir(plainDir, 0o755))
	// Keep the repository discovery from walking up into an enclosing repo.
	t.Setenv("GIT_CEILING_DIRECTORIES", dir)

	cfg := model.NewConfiguration()
	cfg.SetPath(docPath)
	cfg.RootPath = dir

	err := Plant(context.Background(), cfg, &bytes.Buffer{}, "", []string{plainDir}, false)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestLocateTreeSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "extra", "vx"), 0o755))

	cfg := model.NewConfiguration()
	cfg.RootPath = dir
	cfg.TreeSearchPath = []string{"extra"}

	// Bare names resolve through the search path.
	found, ok := locateTree(cfg, "vx")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "extra", "vx"), found)

	// Existing paths win without consulting the search path.
	found, ok = locateTree(cfg, filepath.Join(dir, "extra"))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "extra"), found)

	_, ok = locateTree(cfg, "missing")
	assert.False(t, ok)
}

func TestEnsureMappingPreservesDocument(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "arbor.yaml")
	require.NoError(t, os.WriteFile(docPath, []byte(`
variables:
  flavor: keep-me
trees:
  existing: url
`), 0o644))

	doc, err := config.ReadDocument(docPath)
	require.NoError(t, err)

	trees := config.EnsureMapping(doc, "trees")
	config.SetMappingEntry(trees, "added", config.ScalarNode("new-url"))
	require.NoError(t, config.WriteDocument(doc, docPath))

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flavor: keep-me")
	assert.Contains(t, string(data), "existing: url")
	assert.Contains(t, string(data), "added: new-url")
}
