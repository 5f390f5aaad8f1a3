package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"ticketdesk/internal/logger"
	"ticketdesk/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the envelope every template receives: the site settings row
// plus page-specific data.
type Page struct {
	Site models.SiteSettings
	Data interface{}
}

// Renderer executes the embedded template set.
type Renderer struct {
	templates *template.Template
	logger    *logger.Logger
}

func NewRenderer(log *logger.Logger) *Renderer {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("Mon 2 Jan 2006, 15:04")
		},
		"datetimeValue": func(t time.Time) string {
			return t.Format("2006-01-02T15:04")
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
	templates := template.Must(
		template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"),
	)
	return &Renderer{templates: templates, logger: log}
}

// Render writes the named template with the given status. A template
// failure after headers are written can only be logged.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.templates.ExecuteTemplate(w, name, page); err != nil {
		r.logger.Error("RENDER", fmt.Sprintf("template %s: %v", name, err))
	}
}

// StaticHandler serves the embedded stylesheet and banner images.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
