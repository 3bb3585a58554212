package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Preamble is prepended to every style sheet before compilation, making
// the shared design tokens and overrides available without a per-file
// import. The import paths are resolved against the project source root.
const Preamble = "@import \"./styles/_variables\";\n@import \"./styles/_overrides\";\n"

// sharedSheets are the partials the preamble pulls in, relative to the
// source root and without extension.
var sharedSheets = []string{"styles/_variables", "styles/_overrides"}

// Validate checks that every sheet the preamble imports exists under the
// source root. A broken preamble fails every style compilation in the
// build, so this is checked up front.
func Validate(sourceDir string) error {
	for _, sheet := range sharedSheets {
		if _, err := resolveSheet(sourceDir, sheet); err != nil {
			return err
		}
	}
	return nil
}

func resolveSheet(sourceDir, sheet string) (string, error) {
	path := filepath.Join(sourceDir, sheet+".css")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("style preamble: shared sheet %s: %w", path, err)
	}
	return path, nil
}

// Plugin returns a bundler plugin that prepends Preamble to every style
// sheet and resolves the preamble's imports against the source root.
// Shared partials themselves (files named _*.css) are compiled without the
// preamble so they do not import each other.
func Plugin(sourceDir string) api.Plugin {
	return api.Plugin{
		Name: "style-preamble",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^\./styles/_`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					sheet := strings.TrimSuffix(strings.TrimPrefix(args.Path, "./"), ".css")
					path, err := resolveSheet(sourceDir, sheet)
					if err != nil {
						return api.OnResolveResult{}, err
					}
					return api.OnResolveResult{Path: path}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `\.css$`},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					data, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					contents := string(data)
					if !strings.HasPrefix(filepath.Base(args.Path), "_") {
						contents = Preamble + contents
					}

					resolveDir := filepath.Dir(args.Path)
					return api.OnLoadResult{
						Contents:   &contents,
						Loader:     api.LoaderCSS,
						ResolveDir: resolveDir,
					}, nil
				})
		},
	}
}
