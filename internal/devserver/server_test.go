package devserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/henrik/wb/internal/config"
	"github.com/henrik/wb/internal/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, route router.Route) *Server {
	t.Helper()
	outDir := t.TempDir()

	files := map[string]string{
		"index.html":       "<html>app</html>",
		"index-embed.html": "<html>embed</html>",
		"js/app.js":        "console.log(1)",
		"js/app.css":       "body{}",
	}
	for rel, content := range files {
		path := filepath.Join(outDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	return New(config.Default(), route, outDir)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServesIndexAtRoot(t *testing.T) {
	s := testServer(t, router.Select(false))
	rec := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())
}

func TestServesEmbedIndexAtRoot(t *testing.T) {
	s := testServer(t, router.Select(true))
	rec := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>embed</html>", rec.Body.String())
}

func TestServesRealFiles(t *testing.T) {
	s := testServer(t, router.Select(false))

	rec := get(t, s, "/js/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))

	rec = get(t, s, "/js/app.css")
	assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
}

func TestFallbackForUnmatchedPath(t *testing.T) {
	s := testServer(t, router.Select(false))
	rec := get(t, s, "/some/client/route")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())

	s = testServer(t, router.Select(true))
	rec = get(t, s, "/some/client/route")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>embed</html>", rec.Body.String())
}

func TestRejectsPathTraversal(t *testing.T) {
	s := testServer(t, router.Select(false))
	// Traversal must not escape the output dir; it falls back instead.
	rec := get(t, s, "/../../etc/passwd")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())
}

func TestNotFoundWhenFallbackMissing(t *testing.T) {
	outDir := t.TempDir()
	s := New(config.Default(), router.Select(false), outDir)
	rec := get(t, s, "/anything")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, router.Select(true))
	rec := get(t, s, "/wb/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "index-embed.html")
}
