package web

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"time"

	"crewdesk/internal/models"

	"github.com/labstack/echo/v4"
)

// Pages rendered inside layout.html.
var Pages = []string{
	"apply.html",
	"thanks.html",
	"interview.html",
	"dashboard.html",
	"applicant.html",
	"settings.html",
}

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// NewTemplateRenderer parses every page together with layout.html from dir.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	r := &TemplateRenderer{Templates: make(map[string]*template.Template, len(Pages))}
	layout := filepath.Join(dir, "layout.html")
	for _, page := range Pages {
		tmpl, err := template.New(page).Funcs(Funcs).ParseFiles(layout, filepath.Join(dir, page))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.Templates[page] = tmpl
	}
	return r, nil
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	if tmpl.Lookup("layout.html") != nil {
		return tmpl.ExecuteTemplate(w, "layout.html", data)
	}
	return tmpl.Execute(w, data)
}

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"orNA": models.OrPlaceholder,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return models.Placeholder
		}
		return t.Local().Format("01/02/06")
	},
	"statusClass": func(s models.Status) string {
		return "status-" + strings.ToLower(string(s))
	},
	"contains": func(list []string, v string) bool {
		for _, x := range list {
			if x == v {
				return true
			}
		}
		return false
	},
}
