package styles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreambleShape(t *testing.T) {
	assert.NotEmpty(t, Preamble)
	assert.Equal(t, 2, strings.Count(Preamble, "@import"))
	assert.Contains(t, Preamble, "_variables")
	assert.Contains(t, Preamble, "_overrides")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	stylesDir := filepath.Join(dir, "styles")
	require.NoError(t, os.MkdirAll(stylesDir, 0755))

	err := Validate(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "_variables")

	require.NoError(t, os.WriteFile(filepath.Join(stylesDir, "_variables.css"), []byte(":root{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(stylesDir, "_overrides.css"), []byte("a{}"), 0644))

	assert.NoError(t, Validate(dir))
}
