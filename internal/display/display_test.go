package display

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/arbor/internal/model"
)

func TestParseColorMode(t *testing.T) {
	testCases := []struct {
		src      string
		expected ColorMode
		ok       bool
	}{
		{src: "auto", expected: ColorAuto, ok: true},
		{src: "-1", expected: ColorAuto, ok: true},
		{src: "false", expected: ColorOff, ok: true},
		{src: "never", expected: ColorOff, ok: true},
		{src: "0", expected: ColorOff, ok: true},
		{src: "n", expected: ColorOff, ok: true},
		{src: "true", expected: ColorOn, ok: true},
		{src: "always", expected: ColorOn, ok: true},
		{src: "y", expected: ColorOn, ok: true},
		{src: "rainbow", ok: false},
	}
	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			mode, ok := ParseColorMode(tc.src)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, mode)
			}
		})
	}
}

func TestColorModeEnabled(t *testing.T) {
	assert.True(t, ColorOn.Enabled())
	assert.False(t, ColorOff.Enabled())
}

func TestPlainTreeLines(t *testing.T) {
	styles := NewStyles(ColorOff)
	tree := model.NewTree("vx")

	assert.Equal(t, "# vx", styles.Tree(tree, "/home/u/code/vx", false))
	assert.Equal(t, "# vx  /home/u/code/vx", styles.Tree(tree, "/home/u/code/vx", true))
	assert.Equal(t, "# vx (skipped)", styles.MissingTree(tree, "/home/u/code/vx", false))
	assert.Equal(t, "# vx  /home/u/code/vx (skipped)", styles.MissingTree(tree, "/home/u/code/vx", true))
}

func TestPrintTree(t *testing.T) {
	styles := NewStyles(ColorOff)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "vx"), 0o755))

	exists := model.NewTree("vx")
	exists.Path().SetValue(filepath.Join(dir, "vx"))
	missing := model.NewTree("gone")
	missing.Path().SetValue(filepath.Join(dir, "gone"))

	var out bytes.Buffer
	assert.True(t, styles.PrintTree(&out, exists, false, false))
	assert.Equal(t, "# vx\n", out.String())

	out.Reset()
	assert.False(t, styles.PrintTree(&out, missing, false, false))
	assert.Contains(t, out.String(), "(skipped)")

	// Quiet still reports existence, without output.
	out.Reset()
	assert.True(t, styles.PrintTree(&out, exists, false, true))
	assert.False(t, styles.PrintTree(&out, missing, false, true))
	assert.Empty(t, out.String())
}
