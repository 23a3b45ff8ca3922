// Package render wraps html/template with the embedded page templates.
// Every page shares the base layout; handlers pass a PageData with the
// page-specific payload under Data.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"ticketlive/internal/models"
)

//go:embed templates/layout.html templates/pages/*.html
var templateFS embed.FS

// PageData is the envelope every template receives.
type PageData struct {
	Title     string
	User      *models.User
	CSRFToken string
	CartCount int
	Flash     string
	Error     string
	FormData  map[string]string
	Errors    map[string]string
	Data      interface{}
}

// Renderer renders embedded page templates over the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

var funcMap = template.FuncMap{
	"currency": Currency,
	"date": func(v interface{}) string {
		switch t := v.(type) {
		case time.Time:
			return t.Format("Jan 2, 2006 3:04 PM")
		case *time.Time:
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		}
		return ""
	},
	"lower": strings.ToLower,
}

// Currency formats an amount in cents as dollars.
func Currency(cents int) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// New parses all embedded page templates.
func New() (*Renderer, error) {
	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := path.Base(page)
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Renderer{templates: templates}, nil
}

// HTML renders a page template into the response. Render errors are
// buffered so a failure never emits a half-written page.
func (r *Renderer) HTML(w http.ResponseWriter, status int, page string, data *PageData) {
	tmpl, ok := r.templates[page]
	if !ok {
		log.Printf("unknown template: %s", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Printf("failed to render %s: %v", page, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
