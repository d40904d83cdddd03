package server

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed views/*.html
var viewsFS embed.FS

// TemplateRenderer is a custom HTML template renderer for the echo framework.
type TemplateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*TemplateRenderer, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	return &TemplateRenderer{templates: tmpl}, nil
}

// Render renders a template with the given data. Execution happens into
// a buffer first so a template error never emits a half-written page.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return errors.Wrapf(err, "failed to execute template %s", name)
	}

	_, err := buf.WriteTo(w)
	return err
}
