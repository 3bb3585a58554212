package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinIgnores(t *testing.T) {
	m := NewMatcher()

	assert.True(t, m.Match("node_modules", true))
	assert.True(t, m.Match("node_modules/left-pad/index.js", false))
	assert.True(t, m.Match("dist/index.html", false))
	assert.True(t, m.Match(".wb/cache.db", false))

	assert.False(t, m.Match("src/main.js", false))
	assert.False(t, m.Match("templates/index.html", false))
}

func TestExtraPatterns(t *testing.T) {
	m := NewMatcher("*.log", "build/")

	assert.True(t, m.Match("debug.log", false))
	assert.True(t, m.Match("src/debug.log", false))
	assert.True(t, m.Match("build", true))
	assert.True(t, m.Match("build/out.js", false))
	assert.False(t, m.Match("src/logging.js", false))
}

func TestNegation(t *testing.T) {
	m := NewMatcher("*.log", "!keep.log")

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("keep.log", false))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".wbignore")
	require.NoError(t, os.WriteFile(path, []byte("# comment\n\n*.tmp\nvendor/\n"), 0644))

	m := NewMatcher()
	require.NoError(t, m.LoadFile(path))

	assert.True(t, m.Match("scratch.tmp", false))
	assert.True(t, m.Match("vendor", true))
	assert.False(t, m.Match("src/main.js", false))
}

func TestLoadFileMissing(t *testing.T) {
	m := NewMatcher()
	assert.NoError(t, m.LoadFile(filepath.Join(t.TempDir(), ".wbignore")))
}
