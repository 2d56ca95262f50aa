package configurator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer executes the configurator templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("configurator").Funcs(template.FuncMap{
		"priceAttr": PriceAttr,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse configurator templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustRenderer is NewRenderer for package-level initialisation.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Page renders the full configurator.
func (r *Renderer) Page(w io.Writer, page Page) error {
	return r.tmpl.ExecuteTemplate(w, "configurator_form", page)
}

// PageHTML renders the configurator for embedding in a layout.
func (r *Renderer) PageHTML(page Page) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.Page(&buf, page); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// SelectResponse renders the replacement grid followed by the out-of-band total.
func (r *Renderer) SelectResponse(w io.Writer, grid Grid, total Total) error {
	total.OOB = true
	if err := r.tmpl.ExecuteTemplate(w, "category_grid", grid); err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "total_price", total)
}
