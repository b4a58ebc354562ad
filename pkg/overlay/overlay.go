// Package overlay carries auxiliary schema augmentations layered onto a
// structure before rendering. Unit overlays are read directly; any other
// overlay is handed to a Preprocessor supplied by the caller.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Overlay is one decoded overlay document. Fields not modelled here are kept
// in Extra so preprocessors can read them.
type Overlay struct {
	Type           string            `json:"type" yaml:"type"`
	CaptureBase    string            `json:"capture_base,omitempty" yaml:"capture_base,omitempty"`
	MetricSystem   string            `json:"metric_system,omitempty" yaml:"metric_system,omitempty"`
	AttributeUnits map[string]string `json:"attribute_units,omitempty" yaml:"attribute_units,omitempty"`
	Extra          map[string]any    `json:"-" yaml:"-"`
}

// IsUnit reports whether the overlay carries unit labels.
func (o Overlay) IsUnit() bool {
	return strings.Contains(strings.ToLower(o.Type), "/unit/") || strings.HasSuffix(strings.ToLower(o.Type), "/unit")
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (o *Overlay) UnmarshalJSON(data []byte) error {
	type plain Overlay
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range []string{"type", "capture_base", "metric_system", "attribute_units"} {
		delete(all, key)
	}
	*o = Overlay(known)
	if len(all) > 0 {
		o.Extra = all
	}
	return nil
}

// Units merges the attribute units of every unit overlay. Later overlays
// win on conflicts.
func Units(overlays []Overlay) map[string]string {
	out := make(map[string]string)
	for _, o := range overlays {
		if !o.IsUnit() {
			continue
		}
		for attr, unit := range o.AttributeUnits {
			out[attr] = unit
		}
	}
	return out
}

// Decode parses a list of overlays, JSON first and YAML second. A single
// overlay object is accepted as a list of one.
func Decode(data []byte, source string) ([]Overlay, error) {
	var list []Overlay
	if err := schema.DecodeDocument(data, source, &list); err == nil {
		return list, nil
	}
	var single Overlay
	if err := schema.DecodeDocument(data, source, &single); err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	return []Overlay{single}, nil
}

// Preprocessor transforms prefill data before the tree is built, for example
// converting values between unit systems.
type Preprocessor interface {
	Preprocess(ctx context.Context, s *schema.Structure, data map[string]any, overlays []Overlay) (map[string]any, error)
}

// PreprocessorFunc adapts a function to Preprocessor.
type PreprocessorFunc func(ctx context.Context, s *schema.Structure, data map[string]any, overlays []Overlay) (map[string]any, error)

// Preprocess calls fn.
func (fn PreprocessorFunc) Preprocess(ctx context.Context, s *schema.Structure, data map[string]any, overlays []Overlay) (map[string]any, error) {
	return fn(ctx, s, data, overlays)
}

// Passthrough returns a shallow copy of data and ignores the overlays.
var Passthrough Preprocessor = PreprocessorFunc(func(_ context.Context, _ *schema.Structure, data map[string]any, _ []Overlay) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = value
	}
	return out, nil
})
