package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/azenia/website/internal/nav"
)

//go:embed templates
var templateFS embed.FS

// Page is the data passed to every page template.
type Page struct {
	Route  Route
	Nav    []nav.Menu
	Header nav.Snapshot
	// CloseDelayMs and ScrollThreshold drive the browser copy of the header.
	CloseDelayMs    int64
	ScrollThreshold float64
	// Authenticated is true when an admin session is present.
	Authenticated bool
	Year          int
	Data          any
}

// NewPage builds page data for route with a fresh header state.
func NewPage(route Route, data any) Page {
	h := nav.NewHeader()
	defer h.Close()
	return Page{
		Route:           route,
		Nav:             nav.Menus(),
		Header:          h.Snapshot(),
		CloseDelayMs:    h.CloseDelay().Milliseconds(),
		ScrollThreshold: h.ScrollThreshold(),
		Year:            time.Now().Year(),
		Data:            data,
	}
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
	"active": func(p Page, href string) bool {
		return p.Route.Path == href
	},
}

// Renderer executes the embedded page templates. Templates are parsed once.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout, partials and every page.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout templates: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		r.pages[name] = t
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render writes the page. Output is buffered so a template error never
// produces a partial page.
func (r *Renderer) Render(w io.Writer, page Page) error {
	t, ok := r.pages[page.Route.Template]
	if !ok {
		return fmt.Errorf("unknown page template %q", page.Route.Template)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", page.Route.Template, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
