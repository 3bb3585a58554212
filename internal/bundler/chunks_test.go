package bundler

import (
	"testing"

	"github.com/henrik/wb/internal/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetafile() *Metafile {
	imports := func(paths ...string) []MetafileImport {
		var out []MetafileImport
		for _, p := range paths {
			out = append(out, MetafileImport{Path: p, Kind: "import-statement"})
		}
		return out
	}

	return &Metafile{
		Outputs: map[string]MetafileOutput{
			"dist/js/app.js": {
				EntryPoint: "src/main.js",
				CSSBundle:  "dist/js/app.css",
				Imports: imports(
					"dist/chunks/shared-AAAA.js",
					"dist/chunks/vendor-BBBB.js",
					"dist/chunks/widget-CCCC.js",
				),
				Inputs: map[string]InputContrib{"src/main.js": {}},
			},
			"dist/js/embed.js": {
				EntryPoint: "src/main-embed.js",
				CSSBundle:  "dist/js/embed.css",
				Imports: imports(
					"dist/chunks/shared-AAAA.js",
					"dist/chunks/vendor-BBBB.js",
				),
				Inputs: map[string]InputContrib{"src/main-embed.js": {}},
			},
			"dist/chunks/shared-AAAA.js": {
				Inputs: map[string]InputContrib{"src/shared/app.js": {}},
			},
			"dist/chunks/vendor-BBBB.js": {
				Inputs: map[string]InputContrib{"node_modules/left-pad/index.js": {}},
			},
			"dist/chunks/widget-CCCC.js": {
				Inputs: map[string]InputContrib{"src/widget.js": {}},
			},
			"dist/js/app.css": {
				Inputs: map[string]InputContrib{"src/styles/main.css": {}},
			},
			"dist/js/embed.css": {
				Inputs: map[string]InputContrib{"src/styles/embed.css": {}},
			},
			"dist/js/app.js.map": {},
		},
	}
}

func TestClassify(t *testing.T) {
	meta := testMetafile()
	chunks := Classify(meta, entry.Targets(false))

	assert.Equal(t, "app", chunks["dist/js/app.js"])
	assert.Equal(t, "embed", chunks["dist/js/embed.js"])
	assert.Equal(t, "app", chunks["dist/js/app.css"])
	assert.Equal(t, "embed", chunks["dist/js/embed.css"])
	assert.Equal(t, "common", chunks["dist/chunks/shared-AAAA.js"])
	assert.Equal(t, "vendors", chunks["dist/chunks/vendor-BBBB.js"])
	assert.Equal(t, "app", chunks["dist/chunks/widget-CCCC.js"])

	_, hasMap := chunks["dist/js/app.js.map"]
	assert.False(t, hasMap, "sourcemaps are not chunks")
}

func TestAssembleOrdersByDeclaredChunks(t *testing.T) {
	meta := testMetafile()
	targets := entry.Targets(false)
	assets := Assemble(meta, targets, map[string]string{
		"dist/js/app.js": "bafytest",
	})

	app := assets["app"]
	require.NotEmpty(t, app)

	var order []string
	for _, a := range app {
		order = append(order, a.Chunk)
	}
	assert.Equal(t, []string{"vendors", "common", "app", "app", "app"}, order)

	// Embed must not pick up the app-only chunk.
	for _, a := range assets["embed"] {
		assert.NotEqual(t, "dist/chunks/widget-CCCC.js", a.Path)
	}

	// Integrity is attached by path.
	for _, a := range app {
		if a.Path == "dist/js/app.js" {
			assert.Equal(t, "bafytest", a.Integrity)
		}
	}
}

func TestAssembleIndependentTargets(t *testing.T) {
	meta := testMetafile()
	assets := Assemble(meta, entry.Targets(false), nil)

	require.Len(t, assets, 2)
	for name, list := range assets {
		for _, a := range list {
			assert.NotEmpty(t, a.Path, "target %s", name)
			assert.NotEmpty(t, a.Chunk, "target %s", name)
		}
	}
}
