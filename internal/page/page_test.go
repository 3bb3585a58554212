package page

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/henrik/wb/internal/bundler"
	"github.com/henrik/wb/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTemplate = `<!DOCTYPE html>
<html>
<head>{{ range .Styles }}<link rel="stylesheet" href="{{ . }}">{{ end }}</head>
<body>{{ if .FlaskContext }}{{ .FlaskContext }}{{ end }}{{ range .Scripts }}<script src="{{ . }}"></script>{{ end }}</body>
</html>
`

func renderTarget(t *testing.T, production bool) string {
	t.Helper()
	projectDir := t.TempDir()
	outDir := filepath.Join(projectDir, "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(projectDir, "templates"), 0755))
	require.NoError(t, os.MkdirAll(outDir, 0755))

	target := entry.Targets(production)[0]
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, target.Template), []byte(testTemplate), 0644))

	assets := []bundler.Asset{
		{Path: "chunks/vendor-AAAA.js", Chunk: "vendors"},
		{Path: "js/app.css", Chunk: "app"},
		{Path: "js/app.js", Chunk: "app"},
	}
	require.NoError(t, Render(projectDir, outDir, "Test App", target, assets))

	data, err := os.ReadFile(filepath.Join(outDir, target.Filename))
	require.NoError(t, err)
	return string(data)
}

func TestRenderLinksAssets(t *testing.T) {
	html := renderTarget(t, false)
	assert.Contains(t, html, `src="/chunks/vendor-AAAA.js"`)
	assert.Contains(t, html, `src="/js/app.js"`)
	assert.Contains(t, html, `href="/js/app.css"`)
}

func TestRenderFlaskContextOnlyInProduction(t *testing.T) {
	assert.NotContains(t, renderTarget(t, false), "flask-context")
	assert.Contains(t, renderTarget(t, true), "flask-context")
}

func TestRenderMissingTemplate(t *testing.T) {
	projectDir := t.TempDir()
	target := entry.Targets(false)[0]

	err := Render(projectDir, projectDir, "Test", target, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), target.Name)
}
