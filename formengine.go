// Package formengine is the top-level entry point: it builds interactive
// forms from structures, layouts and prefill data and renders them.
package formengine

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Form aliases form.Form for callers that only import the root package.
type Form = form.Form

// Option aliases form.Option.
type Option = form.Option

// RenderOptions describes per-request overrides renderers use to surface
// server-side errors and hidden submission fields.
type RenderOptions = render.RenderOptions

// NewForm builds a form. See form.New.
func NewForm(ctx context.Context, s *schema.Structure, data map[string]any, l layout.Layout, options ...Option) (*Form, error) {
	return form.New(ctx, s, data, l, options...)
}

// LoadStructure reads a JSON or YAML structure file.
func LoadStructure(path string) (*schema.Structure, error) {
	return schema.LoadFile(path)
}

// LoadLayout reads a JSON or YAML layout file.
func LoadLayout(path string) (layout.Layout, error) {
	return layout.LoadFile(path)
}

// GenerateHTML builds a form and renders it with the embedded html
// templates. It is the simplest entry point for callers that just want
// markup.
func GenerateHTML(ctx context.Context, s *schema.Structure, data map[string]any, l layout.Layout, opts RenderOptions, options ...Option) ([]byte, error) {
	f, err := form.New(ctx, s, data, l, options...)
	if err != nil {
		return nil, err
	}
	renderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("formengine: %w", err)
	}
	return renderer.Render(ctx, f.Snapshot(), opts)
}

// EmbeddedTemplates exposes the built-in html templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
