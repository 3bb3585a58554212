package bundler

import (
	"path"
	"sort"
	"strings"

	"github.com/henrik/wb/internal/entry"
)

// SharedChunks is the shared-chunk configuration code splitting produces:
// third-party code common to every page, and first-party code shared by
// more than one entry. Entry Registry chunk references are validated
// against this set plus the target's own name.
var SharedChunks = []string{"vendors", "common"}

// Asset is one emitted file attributed to a target, with the chunk group
// it belongs to and its content identifier.
type Asset struct {
	Path      string `json:"path"`
	Chunk     string `json:"chunk"`
	Integrity string `json:"integrity,omitempty"`
}

// Classify assigns every output in the metafile to a chunk group:
// the target name for entry outputs and their CSS bundles, "vendors" for
// outputs built entirely from node_modules inputs, "common" for outputs
// reachable from more than one entry, and the single reaching target's
// name otherwise.
func Classify(meta *Metafile, targets []entry.BuildTarget) map[string]string {
	chunks, _ := classify(meta, targets)
	return chunks
}

func classify(meta *Metafile, targets []entry.BuildTarget) (map[string]string, map[string]map[string]bool) {
	entryOf := make(map[string]string)
	reach := make(map[string]map[string]bool)

	for _, t := range targets {
		entryOut := findEntryOutput(meta, t.Entry)
		if entryOut == "" {
			continue
		}
		entryOf[entryOut] = t.Name

		seeds := []string{entryOut}
		if css := meta.Outputs[entryOut].CSSBundle; css != "" {
			entryOf[css] = t.Name
			seeds = append(seeds, css)
		}
		walk(meta, seeds, t.Name, reach)
	}

	chunks := make(map[string]string)
	for out, o := range meta.Outputs {
		if strings.HasSuffix(out, ".map") {
			continue
		}
		if name, ok := entryOf[out]; ok {
			chunks[out] = name
			continue
		}
		switch {
		case isVendor(o):
			chunks[out] = "vendors"
		case len(reach[out]) > 1:
			chunks[out] = "common"
		default:
			for name := range reach[out] {
				chunks[out] = name
			}
		}
	}
	return chunks, reach
}

// walk marks every output transitively imported from the seeds as
// reachable by the named target.
func walk(meta *Metafile, seeds []string, target string, reach map[string]map[string]bool) {
	queue := append([]string(nil), seeds...)
	for len(queue) > 0 {
		out := queue[0]
		queue = queue[1:]

		if reach[out] == nil {
			reach[out] = make(map[string]bool)
		}
		if reach[out][target] {
			continue
		}
		reach[out][target] = true

		for _, imp := range meta.Outputs[out].Imports {
			if imp.External {
				continue
			}
			switch imp.Kind {
			case "import-statement", "dynamic-import", "require-call", "import-rule":
				queue = append(queue, imp.Path)
			}
		}
	}
}

func findEntryOutput(meta *Metafile, entryPath string) string {
	want := path.Clean(entryPath)
	for out, o := range meta.Outputs {
		if o.EntryPoint == "" {
			continue
		}
		if strings.HasSuffix(path.Clean(o.EntryPoint), want) {
			return out
		}
	}
	return ""
}

func isVendor(o MetafileOutput) bool {
	if len(o.Inputs) == 0 {
		return false
	}
	for in := range o.Inputs {
		if !strings.Contains(in, "node_modules/") {
			return false
		}
	}
	return true
}

// Assemble attributes outputs to targets and orders them by each target's
// declared chunk sequence. Integrity values, when provided, are attached
// by output path.
func Assemble(meta *Metafile, targets []entry.BuildTarget, integrity map[string]string) map[string][]Asset {
	chunks, reach := classify(meta, targets)

	assets := make(map[string][]Asset, len(targets))
	for _, t := range targets {
		var mine []string
		for out := range chunks {
			if reach[out][t.Name] {
				mine = append(mine, out)
			}
		}
		sort.Strings(mine)

		var ordered []Asset
		for _, chunk := range t.Chunks {
			for _, out := range mine {
				if chunks[out] != chunk {
					continue
				}
				ordered = append(ordered, Asset{
					Path:      out,
					Chunk:     chunk,
					Integrity: integrity[out],
				})
			}
		}
		assets[t.Name] = ordered
	}
	return assets
}
