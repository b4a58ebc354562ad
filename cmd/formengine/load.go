package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/overlay"
	"github.com/goliatone/go-formengine/pkg/schema"
)

var errNoStructure = errors.New("a structure file is required (--structure)")

// loadForm reads the files named by p and builds the form.
func loadForm(ctx context.Context, p *params, options ...form.Option) (*form.Form, error) {
	if p.Structure == "" {
		return nil, errNoStructure
	}
	s, err := schema.LoadFile(p.Structure)
	if err != nil {
		return nil, err
	}

	var l layout.Layout
	if p.Layout != "" {
		if l, err = layout.LoadFile(p.Layout); err != nil {
			return nil, err
		}
	}

	data, err := loadData(p.Data)
	if err != nil {
		return nil, err
	}

	var overlays []overlay.Overlay
	for _, path := range p.Overlays {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read overlay: %w", err)
		}
		decoded, err := overlay.Decode(raw, path)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, decoded...)
	}

	opts := []form.Option{
		form.WithDefaultLanguage(p.config.GetString(cfgKeyLanguage)),
		form.WithShowFlagged(p.config.GetBool(cfgKeyShowFlagged)),
		form.WithOverlays(overlays...),
	}
	f, err := form.New(ctx, s, data, l, append(opts, options...)...)
	if err != nil {
		return nil, err
	}
	logger.Verbose("formengine: built form", p.Structure, "in", f.Language())
	return f, nil
}

func loadData(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var data map[string]any
	if err := schema.DecodeDocument(raw, path, &data); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	return data, nil
}
