package cmds

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/arbor/internal/display"
	"github.com/vk/arbor/internal/errs"
	"github.com/vk/arbor/internal/eval"
	"github.com/vk/arbor/internal/model"
)

// call records one process launch seen by the fake runner.
type call struct {
	Argv []string
	Dir  string
	Env  []string
}

// fakeRunner records launches and replays scripted exit codes.
type fakeRunner struct {
	calls    []call
	statuses []int
}

func (r *fakeRunner) Run(argv []string, dir string, env []string) int {
	r.calls = append(r.calls, call{Argv: argv, Dir: dir, Env: env})
	if len(r.statuses) == 0 {
		return 0
	}
	status := r.statuses[0]
	r.statuses = r.statuses[1:]
	return status
}

// newExecConfig builds a configuration with three plain trees, one symlink
// tree, and a garden spanning the plain trees.
func newExecConfig(t *testing.T) *model.Configuration {
	t.Helper()

	cfg := model.NewConfiguration()
	cfg.Root.SetExpr("/home/u/code")

	for _, name := range []string{"alpha", "beta", "gamma"} {
		tree := model.NewTree(name)
		tree.Path().SetExpr(name)
		cfg.Trees = append(cfg.Trees, tree)
	}

	link := model.NewTree("link")
	link.Path().SetExpr("link")
	link.IsSymlink = true
	link.Symlink.SetExpr("alpha")
	cfg.Trees = append(cfg.Trees, link)

	garden := model.NewGarden("dev")
	garden.Trees = []string{"alpha", "beta", "gamma", "link"}
	cfg.Gardens = append(cfg.Gardens, garden)

	eval.Initialize(cfg)
	return cfg
}

func TestExecRunsEveryTree(t *testing.T) {
	cfg := newExecConfig(t)
	runner := &fakeRunner{}
	var out bytes.Buffer

	err := Exec(context.Background(), cfg, runner, display.NewStyles(display.ColorOff),
		&out, ":dev", []string{"git", "status"}, false, false)

	require.NoError(t, err)
	require.Len(t, runner.calls, 3)
	assert.Equal(t, []string{"git", "status"}, runner.calls[0].Argv)
	assert.Equal(t, "/home/u/code/alpha", runner.calls[0].Dir)
	assert.Equal(t, "/home/u/code/beta", runner.calls[1].Dir)
	assert.Equal(t, "/home/u/code/gamma", runner.calls[2].Dir)
}

func TestExecAggregatesLastNonZeroStatus(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []int
		expected int
	}{
		{name: "all succeed", statuses: []int{0, 0, 0}, expected: 0},
		{name: "middle fails", statuses: []int{0, 2, 0}, expected: 2},
		{name: "last failure wins", statuses: []int{3, 4, 0}, expected: 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newExecConfig(t)
			runner := &fakeRunner{statuses: tc.statuses}
			var out bytes.Buffer

			err := Exec(context.Background(), cfg, runner, display.NewStyles(display.ColorOff),
				&out, ":dev", []string{"false"}, true, false)

			// Every tree runs even after a failure.
			assert.Len(t, runner.calls, 3)
			if tc.expected == 0 {
				assert.NoError(t, err)
				return
			}
			code, ok := errs.IsExitStatus(err)
			require.True(t, ok)
			assert.Equal(t, tc.expected, code)
		})
	}
}

func TestExecSkipsSymlinkTrees(t *testing.T) {
	cfg := newExecConfig(t)
	runner := &fakeRunner{}
	var out bytes.Buffer

	err := Exec(context.Background(), cfg, runner, display.NewStyles(display.ColorOff),
		&out, "@link", []string{"true"}, false, false)

	require.NoError(t, err)
	assert.Empty(t, runner.calls, "symlink trees never launch a process")
	assert.Empty(t, out.String())
}

func TestExecRequiresCommand(t *testing.T) {
	cfg := newExecConfig(t)

	err := Exec(context.Background(), cfg, &fakeRunner{}, display.NewStyles(display.ColorOff),
		&bytes.Buffer{}, ":dev", nil, false, false)

	var usage *errs.UsageError
	require.ErrorAs(t, err, &usage)
}

func TestExecEmptySelectorMatchesNothing(t *testing.T) {
	cfg := newExecConfig(t)
	runner := &fakeRunner{}

	err := Exec(context.Background(), cfg, runner, display.NewStyles(display.ColorOff),
		&bytes.Buffer{}, "@no-such-tree", []string{"true"}, false, false)

	require.NoError(t, err)
	assert.Empty(t, runner.calls)
}

func TestExecPassesEvaluatedEnvironment(t *testing.T) {
	cfg := newExecConfig(t)
	cfg.Trees[0].Environment = append(cfg.Trees[0].Environment,
		model.NewMultiVariable("TREE_BIN", []*model.Variable{model.NewVariable("${TREE_PATH}/bin")}))
	runner := &fakeRunner{}

	err := Exec(context.Background(), cfg, runner, display.NewStyles(display.ColorOff),
		&bytes.Buffer{}, "@alpha", []string{"env"}, true, false)

	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0].Env, "TREE_BIN=/home/u/code/alpha/bin")
}

func TestExecQuietSuppressesProgress(t *testing.T) {
	cfg := newExecConfig(t)
	var out bytes.Buffer

	err := Exec(context.Background(), cfg, &fakeRunner{}, display.NewStyles(display.ColorOff),
		&out, "@alpha", []string{"true"}, true, false)

	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestExecProgressLines(t *testing.T) {
	cfg := newExecConfig(t)
	var out bytes.Buffer

	err := Exec(context.Background(), cfg, &fakeRunner{}, display.NewStyles(display.ColorOff),
		&out, "@alpha", []string{"true"}, false, true)

	require.NoError(t, err)
	assert.Equal(t, "# alpha  /home/u/code/alpha\n", out.String())
}
