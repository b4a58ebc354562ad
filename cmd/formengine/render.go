package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
	"github.com/goliatone/go-formengine/pkg/renderers/tui"
	"github.com/goliatone/go-formengine/pkg/schema"
)

func newRenderCmd(p *params) *cobra.Command {
	var (
		title    string
		validate bool
		hidden   map[string]string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render the form as html or as a text summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadForm(cmd.Context(), p)
			if err != nil {
				return err
			}
			registry, err := newRegistry(p)
			if err != nil {
				return err
			}

			opts := render.RenderOptions{
				Title:      title,
				Standalone: p.config.GetBool(cfgKeyStandalone),
			}
			if validate {
				opts.Errors = render.MapError(f.Validate())
			}
			for name, value := range hidden {
				opts.Hidden = append(opts.Hidden, render.Hidden(name, value))
			}
			if path := p.config.GetString(cfgKeyCatalog); path != "" {
				catalog, err := loadCatalog(path)
				if err != nil {
					return err
				}
				opts.Translator = catalog
			}

			out, err := registry.Render(cmd.Context(), p.config.GetString(cfgKeyFormat), f.Snapshot(), opts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "document title (default: the structure name)")
	flags.BoolVar(&validate, "validate", false, "validate first and show the messages")
	flags.StringToStringVar(&hidden, "hidden", nil, "hidden submission field name=value, repeatable")
	flags.String(flagFormat, "", "output format: html or tui")
	flags.String(flagTemplates, "", "directory overriding the embedded html templates")
	flags.Bool(flagStandalone, false, "wrap html output in a full document")
	flags.String(flagCatalog, "", "translation catalog for the form chrome")
	return cmd
}

func newRegistry(p *params) (*render.Registry, error) {
	page, err := html.New(html.WithTemplatesDir(p.config.GetString(cfgKeyTemplates)))
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(page)
	registry.MustRegister(tui.New())
	return registry, nil
}

// loadCatalog reads a language -> key -> text document.
func loadCatalog(path string) (render.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var catalog render.Catalog
	if err := schema.DecodeDocument(raw, path, &catalog); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return catalog, nil
}
