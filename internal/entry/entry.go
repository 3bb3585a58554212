package entry

import (
	"fmt"
	"os"
	"path/filepath"
)

// BuildTarget describes one page the bundler produces: its source entry
// point, the HTML template it is rendered into, the output document name
// and the ordered chunk groups the document links.
type BuildTarget struct {
	Name     string
	Entry    string
	Template string
	Filename string
	Chunks   []string

	// InjectFlaskContext mirrors the production flag: production markup
	// carries a server-side templating context block, development markup
	// does not.
	InjectFlaskContext bool
}

// Targets returns the two build targets in declaration order. The set is
// fixed: the standard application page and the embeddable page.
func Targets(production bool) []BuildTarget {
	return []BuildTarget{
		{
			Name:               "app",
			Entry:              "src/main.js",
			Template:           "templates/index.html",
			Filename:           "index.html",
			Chunks:             []string{"vendors", "common", "app"},
			InjectFlaskContext: production,
		},
		{
			Name:               "embed",
			Entry:              "src/main-embed.js",
			Template:           "templates/index-embed.html",
			Filename:           "index-embed.html",
			Chunks:             []string{"vendors", "common", "embed"},
			InjectFlaskContext: production,
		},
	}
}

// Validate checks each target against the bundler's shared-chunk
// configuration and the project layout. A chunk reference that is neither
// a shared chunk nor the target's own entry chunk fails the build, as does
// a template path that does not exist.
func Validate(projectDir string, targets []BuildTarget, sharedChunks []string) error {
	shared := make(map[string]bool, len(sharedChunks))
	for _, name := range sharedChunks {
		shared[name] = true
	}

	for _, t := range targets {
		if t.Entry == "" || t.Template == "" || t.Filename == "" {
			return fmt.Errorf("target %q: entry, template and filename must be set", t.Name)
		}
		for _, chunk := range t.Chunks {
			if !shared[chunk] && chunk != t.Name {
				return fmt.Errorf("target %q references unknown chunk %q", t.Name, chunk)
			}
		}
		tmpl := filepath.Join(projectDir, t.Template)
		if _, err := os.Stat(tmpl); err != nil {
			return fmt.Errorf("target %q: template %s: %w", t.Name, tmpl, err)
		}
	}
	return nil
}
