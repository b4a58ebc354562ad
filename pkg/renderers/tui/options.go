package tui

import (
	"io"
	"os"
)

// OutputFormat controls how the submitted record is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme holds the prefixes applied to informational and error messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// SubmitTransformer mutates the submitted record before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Opener opens a file named by the user for a Binary field.
type Opener func(path string) (io.ReadCloser, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate the record prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithOpener replaces os.Open for Binary fields.
func WithOpener(open Opener) Option {
	return func(r *Renderer) {
		if open != nil {
			r.open = open
		}
	}
}

// WithLanguagePrompt toggles the initial language question on
// multi-language forms. It is on by default.
func WithLanguagePrompt(enabled bool) Option {
	return func(r *Renderer) {
		r.askLanguage = enabled
	}
}

// WithMaxAttempts bounds the submit attempts of Fill. Zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n >= 0 {
			r.maxAttempts = n
		}
	}
}

func defaultOpener(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
