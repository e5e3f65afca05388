package eval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/arbor/internal/model"
)

// newTestConfig builds an initialized configuration with one garden-scoped
// tree:
//
//	root: /home/u/code
//	tree vx with variables and environment
//	garden dev containing vx
func newTestConfig(t *testing.T) *model.Configuration {
	t.Helper()

	cfg := model.NewConfiguration()
	cfg.Root.SetExpr("/home/u/code")
	cfg.Variables = append(cfg.Variables,
		model.NewNamedVariable("scope", "global"),
		model.NewNamedVariable("greeting", "hello ${scope}"),
	)

	tree := model.NewTree("vx")
	tree.Path().SetExpr("vx")
	tree.Variables = append(tree.Variables,
		model.NewNamedVariable("scope", "tree"),
	)
	cfg.Trees = append(cfg.Trees, tree)

	garden := model.NewGarden("dev")
	garden.Trees = []string{"vx"}
	garden.Variables = append(garden.Variables,
		model.NewNamedVariable("scope", "garden"),
		model.NewNamedVariable("flavor", "garden-only"),
	)
	cfg.Gardens = append(cfg.Gardens, garden)

	Initialize(cfg)
	return cfg
}

func TestValueLiteralPassthrough(t *testing.T) {
	cfg := newTestConfig(t)

	testCases := []string{"", "plain text", "no placeholders here", "100%"}
	for _, expr := range testCases {
		assert.Equal(t, expr, Value(cfg, expr))
	}
}

func TestValueSubstitution(t *testing.T) {
	cfg := newTestConfig(t)

	assert.Equal(t, "global", Value(cfg, "${scope}"))
	assert.Equal(t, "hello global", Value(cfg, "${greeting}"))
	assert.Equal(t, "/home/u/code", Value(cfg, "${ARBOR_ROOT}"))
}

func TestValueUnresolvedNameIsEmpty(t *testing.T) {
	cfg := newTestConfig(t)
	assert.Equal(t, "pre/post", Value(cfg, "pre/${nope}post"))
}

func TestValueUnterminatedPlaceholder(t *testing.T) {
	cfg := newTestConfig(t)
	assert.Equal(t, "${unterminated", Value(cfg, "${unterminated"))
}

func TestTreeValueScopePrecedence(t *testing.T) {
	cfg := newTestConfig(t)

	// Tree scope wins over garden and global.
	assert.Equal(t, "tree", TreeValue(cfg, "${scope}", 0, 0))
	// Garden scope wins over global when the tree does not define the name.
	assert.Equal(t, "garden-only", TreeValue(cfg, "${flavor}", 0, 0))
	// Without a garden the global scope resolves.
	assert.Equal(t, "", TreeValue(cfg, "${flavor}", 0, model.InvalidIndex))
}

func TestTreeBuiltins(t *testing.T) {
	cfg := newTestConfig(t)

	assert.Equal(t, "vx", TreeValue(cfg, "${TREE_NAME}", 0, model.InvalidIndex))
	assert.Equal(t, "/home/u/code/vx", TreeValue(cfg, "${TREE_PATH}", 0, model.InvalidIndex))
}

func TestInitializeTreePaths(t *testing.T) {
	cfg := model.NewConfiguration()
	cfg.Root.SetExpr("/home/u/code")

	relative := model.NewTree("foo")
	relative.Path().SetExpr("foo")
	absolute := model.NewTree("x")
	absolute.Path().SetExpr("/abs/x")
	cfg.Trees = append(cfg.Trees, relative, absolute)

	Initialize(cfg)

	relPath, err := relative.PathValue()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/code/foo", relPath)

	absPath, err := absolute.PathValue()
	require.NoError(t, err)
	assert.Equal(t, "/abs/x", absPath)
}

func TestInitializeRootDefaultsToConfigDir(t *testing.T) {
	cfg := model.NewConfiguration()
	cfg.SetPath("/etc/arbor/arbor.yaml")

	Initialize(cfg)

	assert.Equal(t, "/etc/arbor", cfg.RootPath)
}

func TestExecExpression(t *testing.T) {
	cfg := newTestConfig(t)
	assert.Equal(t, "hello", Value(cfg, "$ echo hello"))
}

func TestExecExpressionSubstitutesFirst(t *testing.T) {
	cfg := newTestConfig(t)
	assert.Equal(t, "global", Value(cfg, "$ echo ${scope}"))
}

func TestExecFailureIsEmptyNotError(t *testing.T) {
	cfg := newTestConfig(t)
	assert.Equal(t, "", Value(cfg, "$ exit 3"))
}

func TestExecMemoizedSingleLaunch(t *testing.T) {
	cfg := newTestConfig(t)
	marker := filepath.Join(t.TempDir(), "launches")
	cfg.Variables = append(cfg.Variables,
		model.NewNamedVariable("probe", "$ echo run >> "+marker+"; echo value"))

	first := Value(cfg, "${probe}")
	second := Value(cfg, "${probe}")
	assert.Equal(t, "value", first)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	launches := strings.Count(string(data), "run")
	assert.Equal(t, 1, launches, "an exec-backed variable launches at most once per pass")

	// After a reset the subprocess runs again.
	cfg.Reset()
	assert.Equal(t, "value", Value(cfg, "${probe}"))
	data, err = os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "run"))
}

func TestCycleGuard(t *testing.T) {
	cfg := model.NewConfiguration()
	cfg.Root.SetExpr("/root")
	cfg.Variables = append(cfg.Variables,
		model.NewNamedVariable("a", "a->${b}"),
		model.NewNamedVariable("b", "b->${a}"),
		model.NewNamedVariable("self", "${self}x"),
	)
	Initialize(cfg)

	// A re-entrant lookup resolves to "" instead of recursing forever.
	assert.Equal(t, "a->b->", Value(cfg, "${a}"))
	assert.Equal(t, "x", Value(cfg, "${self}"))
}

func TestEnvironmentOrderAndAppend(t *testing.T) {
	cfg := model.NewConfiguration()
	cfg.Root.SetExpr("/home/u/code")
	cfg.Environment = append(cfg.Environment,
		model.NewMultiVariable("EDITOR", []*model.Variable{model.NewVariable("vim")}),
		model.NewMultiVariable("PATH", []*model.Variable{model.NewVariable("/global/bin")}),
	)

	tree := model.NewTree("vx")
	tree.Path().SetExpr("vx")
	tree.Environment = append(tree.Environment,
		model.NewMultiVariable("PATH", []*model.Variable{model.NewVariable("${TREE_PATH}/bin")}),
	)
	cfg.Trees = append(cfg.Trees, tree)
	Initialize(cfg)

	ctx := model.NewTreeContext(0, cfg.ID(), model.InvalidIndex, model.InvalidIndex)
	env := Environment(cfg, ctx)

	require.Len(t, env, 2)
	assert.Equal(t, "EDITOR", env[0].Name)
	assert.Equal(t, "vim", env[0].Value)
	assert.Equal(t, "PATH", env[1].Name)
	sep := string(os.PathListSeparator)
	assert.Equal(t, "/global/bin"+sep+"/home/u/code/vx/bin", env[1].Value)
}

func TestCommandValuesGathering(t *testing.T) {
	cfg := model.NewConfiguration()
	cfg.Root.SetExpr("/home/u/code")
	cfg.Commands = append(cfg.Commands,
		model.NewMultiVariable("build", []*model.Variable{model.NewVariable("make global")}),
	)

	tree := model.NewTree("vx")
	tree.Path().SetExpr("vx")
	tree.Commands = append(tree.Commands,
		model.NewMultiVariable("build", []*model.Variable{
			model.NewVariable("make -C ${TREE_PATH}"),
			model.NewVariable("make check"),
		}),
	)
	cfg.Trees = append(cfg.Trees, tree)
	Initialize(cfg)

	ctx := model.NewTreeContext(0, cfg.ID(), model.InvalidIndex, model.InvalidIndex)
	commands := CommandValues(cfg, ctx, "build")

	// Outermost scope first: configuration commands run before the tree's.
	require.Len(t, commands, 3)
	assert.Equal(t, "make global", commands[0])
	assert.Equal(t, "make -C /home/u/code/vx", commands[1])
	assert.Equal(t, "make check", commands[2])

	assert.Empty(t, CommandValues(cfg, ctx, "nope"))
	assert.True(t, CommandNames(cfg, ctx)["build"])
}
