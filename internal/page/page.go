package page

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/henrik/wb/internal/bundler"
	"github.com/henrik/wb/internal/entry"
)

// flaskContext is the server-side templating block embedded in production
// markup. It is left verbatim in the document for the serving backend to
// render per request; development documents never carry it.
const flaskContext = `<script id="flask-context" type="application/json">{{ flask_context | tojson }}</script>`

// Data is what a page template is executed with.
type Data struct {
	Title        string
	Styles       []string
	Scripts      []string
	FlaskContext template.HTML
}

// Render executes one target's HTML template with its resolved assets and
// writes the document into outDir. A missing or unparsable template is a
// fatal build error.
func Render(projectDir, outDir, title string, t entry.BuildTarget, assets []bundler.Asset) error {
	tmplPath := filepath.Join(projectDir, t.Template)
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("target %q: template %s: %w", t.Name, tmplPath, err)
	}

	data := Data{Title: title}
	for _, a := range assets {
		switch {
		case strings.HasSuffix(a.Path, ".css"):
			data.Styles = append(data.Styles, "/"+a.Path)
		case strings.HasSuffix(a.Path, ".js"):
			data.Scripts = append(data.Scripts, "/"+a.Path)
		}
	}
	if t.InjectFlaskContext {
		data.FlaskContext = template.HTML(flaskContext)
	}

	out, err := os.Create(filepath.Join(outDir, t.Filename))
	if err != nil {
		return err
	}
	if err := tmpl.Execute(out, data); err != nil {
		out.Close()
		return fmt.Errorf("target %q: render: %w", t.Name, err)
	}
	return out.Close()
}
