// Package layout describes how a structure is arranged on screen: an ordered
// list of meta, category, attribute and cardinality manager elements, each
// with optional css hints.
package layout

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// ElementType tags the element variant.
type ElementType string

const (
	ElementMeta               ElementType = "meta"
	ElementCategory           ElementType = "category"
	ElementAttribute          ElementType = "attribute"
	ElementCardinalityManager ElementType = "cardinalityManager"
)

// PartName names a sub-part of a meta or attribute element.
type PartName string

const (
	PartMetaName    PartName = "name"
	PartDescription PartName = "description"
	PartLanguage    PartName = "language"
	PartLabel       PartName = "label"
	PartInput       PartName = "input"
	PartInformation PartName = "information"
	PartUnit        PartName = "unit"
)

// CSS carries inline style and class hints.
type CSS struct {
	Style   string   `json:"style,omitempty" yaml:"style,omitempty"`
	Classes []string `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// Config holds presentation settings for an element or part.
type Config struct {
	CSS *CSS `json:"css,omitempty" yaml:"css,omitempty"`
}

// Style returns the inline style, if any.
func (c *Config) Style() string {
	if c == nil || c.CSS == nil {
		return ""
	}
	return c.CSS.Style
}

// Classes returns the class hints, if any.
func (c *Config) Classes() []string {
	if c == nil || c.CSS == nil {
		return nil
	}
	return c.CSS.Classes
}

// Part is one requested sub-part of an element.
type Part struct {
	Name     PartName `json:"name" yaml:"name"`
	Config   *Config  `json:"config,omitempty" yaml:"config,omitempty"`
	Multiple bool     `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Widget   string   `json:"widget,omitempty" yaml:"widget,omitempty"`
}

// Element is a tagged variant. Category elements use ID, attribute elements
// use Name, and cardinality manager elements use Manager.
type Element struct {
	Type    ElementType `json:"type" yaml:"type"`
	ID      string      `json:"id,omitempty" yaml:"id,omitempty"`
	Name    string      `json:"name,omitempty" yaml:"name,omitempty"`
	Parts   []Part      `json:"parts,omitempty" yaml:"parts,omitempty"`
	Config  *Config     `json:"config,omitempty" yaml:"config,omitempty"`
	Layout  *Layout     `json:"layout,omitempty" yaml:"layout,omitempty"`
	Manager *Manager    `json:"manager,omitempty" yaml:"manager,omitempty"`
}

// Manager is the payload of a cardinality manager element.
type Manager struct {
	Field   string       `json:"field" yaml:"field"`
	Range   schema.Range `json:"range" yaml:"range"`
	Element Element      `json:"element" yaml:"element"`
}

// Part returns the named part when requested.
func (e Element) Part(name PartName) (Part, bool) {
	for _, part := range e.Parts {
		if part.Name == name {
			return part, true
		}
	}
	return Part{}, false
}

// Layout is the ordered element list plus layout-wide config.
type Layout struct {
	Config   *Config   `json:"config,omitempty" yaml:"config,omitempty"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Meta builds a meta element with the given parts.
func Meta(parts ...PartName) Element {
	return Element{Type: ElementMeta, Parts: partsOf(parts)}
}

// Category builds a category element for a section ID.
func Category(id string) Element {
	return Element{Type: ElementCategory, ID: id}
}

// Attribute builds an attribute element for a control. Without parts it
// requests label, input and information.
func Attribute(name string, parts ...PartName) Element {
	if len(parts) == 0 {
		parts = []PartName{PartLabel, PartInput, PartInformation}
	}
	return Element{Type: ElementAttribute, Name: name, Parts: partsOf(parts)}
}

// CardinalityManager wraps an attribute element that repeats within rng.
func CardinalityManager(field string, rng schema.Range, element Element) Element {
	return Element{
		Type:    ElementCardinalityManager,
		Manager: &Manager{Field: field, Range: rng, Element: element},
	}
}

func partsOf(names []PartName) []Part {
	out := make([]Part, 0, len(names))
	for _, name := range names {
		out = append(out, Part{Name: name})
	}
	return out
}

// Default derives a layout from the structure: sections become categories
// followed by their controls, and controls outside any section follow in
// declaration order.
func Default(s *schema.Structure) Layout {
	var out Layout
	if s == nil {
		return out
	}
	placed := make(map[string]struct{})
	var walk func(sections []schema.Section)
	walk = func(sections []schema.Section) {
		for _, section := range sections {
			out.Elements = append(out.Elements, Category(section.ID))
			for _, name := range section.Controls {
				if _, done := placed[name]; done {
					continue
				}
				placed[name] = struct{}{}
				out.Elements = append(out.Elements, Attribute(name))
			}
			walk(section.Subsections)
		}
	}
	walk(s.Sections)
	for _, control := range s.Controls {
		if _, done := placed[control.Name]; done {
			continue
		}
		out.Elements = append(out.Elements, Attribute(control.Name))
	}
	return out
}

// Decode parses a layout document, JSON first and YAML second.
func Decode(data []byte, source string) (Layout, error) {
	var out Layout
	if err := schema.DecodeDocument(data, source, &out); err != nil {
		return Layout{}, fmt.Errorf("layout: %w", err)
	}
	return out, nil
}

// LoadFile reads a layout from disk.
func LoadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("layout: read %s: %w", path, err)
	}
	return Decode(data, path)
}

// LoadFS reads a layout from fsys.
func LoadFS(fsys fs.FS, path string) (Layout, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Layout{}, fmt.Errorf("layout: read %s: %w", path, err)
	}
	return Decode(data, path)
}
