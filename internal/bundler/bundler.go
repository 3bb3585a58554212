package bundler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/henrik/wb/internal/entry"
	"github.com/henrik/wb/internal/hash"
	"github.com/henrik/wb/internal/inject"
	"github.com/henrik/wb/internal/styles"
)

// Options configures one build invocation.
type Options struct {
	ProjectDir string
	SourceDir  string // relative to ProjectDir
	OutDir     string // absolute
	Production bool
	Targets    []entry.BuildTarget
	Defines    map[string]string // resolved injection map, process.env form
}

// Result is what a successful build hands to the HTML renderer and the
// manifest writer: the per-target asset lists (paths relative to OutDir)
// and the parsed metafile.
type Result struct {
	Assets map[string][]Asset
	Meta   *Metafile
}

// Build runs the bundler over the registry's targets. It validates the
// registry and the style preamble up front, drives esbuild with code
// splitting and the injection defines, writes the outputs, and fails on
// any esbuild diagnostic or surviving environment reference.
func Build(opts Options) (*Result, error) {
	sourceDir := filepath.Join(opts.ProjectDir, opts.SourceDir)

	if err := entry.Validate(opts.ProjectDir, opts.Targets, SharedChunks); err != nil {
		return nil, err
	}
	if err := styles.Validate(sourceDir); err != nil {
		return nil, err
	}

	entryPoints := make([]api.EntryPoint, 0, len(opts.Targets))
	for _, t := range opts.Targets {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  filepath.Join(opts.ProjectDir, t.Entry),
			OutputPath: "js/" + t.Name,
		})
	}

	defines := make(map[string]string, len(opts.Defines)+1)
	for k, v := range opts.Defines {
		defines[k] = v
	}
	mode := "development"
	if opts.Production {
		mode = "production"
	}
	defines["process.env.NODE_ENV"] = strconv.Quote(mode)

	buildOpts := api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		Outdir:              opts.OutDir,
		Bundle:              true,
		Splitting:           true,
		Format:              api.FormatESModule,
		Metafile:            true,
		Define:              defines,
		Plugins:             []api.Plugin{styles.Plugin(sourceDir)},
		ChunkNames:          "chunks/[name]-[hash]",
		AssetNames:          "assets/[name]-[hash]",
		LogLevel:            api.LogLevelWarning,
	}
	if opts.Production {
		buildOpts.MinifyWhitespace = true
		buildOpts.MinifyIdentifiers = true
		buildOpts.MinifySyntax = true
	} else {
		buildOpts.Sourcemap = api.SourceMapLinked
	}

	result := api.Build(buildOpts)
	if len(result.Errors) > 0 {
		msgs := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return nil, fmt.Errorf("bundle failed:\n%s", strings.Join(msgs, ""))
	}

	var meta Metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// Write outputs ourselves so the bytes are in hand for integrity
	// hashing and the injection check.
	integrity := make(map[string]string)
	for _, f := range result.OutputFiles {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(f.Path, f.Contents, 0644); err != nil {
			return nil, err
		}

		metaPath := metafilePath(cwd, f.Path)
		if strings.HasSuffix(f.Path, ".js") {
			if err := inject.CheckCompiled(metaPath, f.Contents); err != nil {
				return nil, err
			}
		}
		if !strings.HasSuffix(f.Path, ".map") {
			id, err := hash.Asset(f.Contents)
			if err != nil {
				return nil, err
			}
			integrity[metaPath] = id
		}
	}

	assets := Assemble(&meta, opts.Targets, integrity)

	// Rebase asset paths from metafile form onto OutDir so they double as
	// document URLs.
	outPrefix := metafilePath(cwd, opts.OutDir) + "/"
	for name, list := range assets {
		for i := range list {
			list[i].Path = strings.TrimPrefix(list[i].Path, outPrefix)
		}
		assets[name] = list
	}

	return &Result{Assets: assets, Meta: &meta}, nil
}

// metafilePath converts an absolute path to the slash-separated,
// cwd-relative form esbuild uses for metafile keys.
func metafilePath(cwd, abs string) string {
	rel, err := filepath.Rel(cwd, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// Manifest is the generated build manifest: for each target, the output
// document and its ordered assets.
type Manifest struct {
	Targets map[string]ManifestTarget `json:"targets"`
}

// ManifestTarget is one page in the manifest.
type ManifestTarget struct {
	Document string  `json:"document"`
	Assets   []Asset `json:"assets"`
}

// WriteManifest writes manifest.json into the output directory. Target
// iteration order in the file follows the registry's declaration order.
func WriteManifest(outDir string, targets []entry.BuildTarget, assets map[string][]Asset) error {
	m := Manifest{Targets: make(map[string]ManifestTarget, len(targets))}
	for _, t := range targets {
		m.Targets[t.Name] = ManifestTarget{
			Document: t.Filename,
			Assets:   assets[t.Name],
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "manifest.json"), data, 0644)
}
