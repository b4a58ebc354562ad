package schema

import (
	"fmt"
	"strings"
)

// FieldType is the closed set of control types a structure can declare.
type FieldType string

const (
	TypeText           FieldType = "Text"
	TypeNumeric        FieldType = "Numeric"
	TypeCheckbox       FieldType = "Checkbox"
	TypeDate           FieldType = "Date"
	TypeSelect         FieldType = "Select"
	TypeSelectMultiple FieldType = "SelectMultiple"
	TypeBinary         FieldType = "Binary"
	TypeReference      FieldType = "Reference"
)

var fieldTypes = []FieldType{
	TypeText,
	TypeNumeric,
	TypeCheckbox,
	TypeDate,
	TypeSelect,
	TypeSelectMultiple,
	TypeBinary,
	TypeReference,
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	for _, known := range fieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UnmarshalText accepts the declared names case-insensitively. "Number" is
// accepted as an alias for Numeric.
func (t *FieldType) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if strings.EqualFold(raw, "Number") {
		*t = TypeNumeric
		return nil
	}
	for _, known := range fieldTypes {
		if strings.EqualFold(raw, string(known)) {
			*t = known
			return nil
		}
	}
	return fmt.Errorf("schema: unknown field type %q", raw)
}

// Conformance marks a control as mandatory or optional.
type Conformance string

const (
	ConformanceMandatory Conformance = "M"
	ConformanceOptional  Conformance = "O"
)

// UnmarshalText accepts M/O as well as the spelled out forms.
func (c *Conformance) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "M", "MANDATORY":
		*c = ConformanceMandatory
	case "", "O", "OPTIONAL":
		*c = ConformanceOptional
	default:
		return fmt.Errorf("schema: unknown conformance %q", string(text))
	}
	return nil
}

// MetaTranslation holds the form title and description for one language.
type MetaTranslation struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ControlTranslation holds the per-language texts of a control.
type ControlTranslation struct {
	Label       string          `json:"label" yaml:"label"`
	Information string          `json:"information,omitempty" yaml:"information,omitempty"`
	Entries     Ordered[string] `json:"entries" yaml:"entries"`
}

// SectionTranslation holds the per-language label of a section.
type SectionTranslation struct {
	Label string `json:"label" yaml:"label"`
}

// Control describes one addressable field.
type Control struct {
	Name              string                      `json:"name" yaml:"name"`
	Type              FieldType                   `json:"type" yaml:"type"`
	Format            string                      `json:"format,omitempty" yaml:"format,omitempty"`
	Conformance       Conformance                 `json:"conformance,omitempty" yaml:"conformance,omitempty"`
	Cardinality       string                      `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	Dependencies      []string                    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Condition         string                      `json:"condition,omitempty" yaml:"condition,omitempty"`
	EntryCodes        []string                    `json:"entryCodes,omitempty" yaml:"entryCodes,omitempty"`
	EntryCodesMapping []string                    `json:"entryCodesMapping,omitempty" yaml:"entryCodesMapping,omitempty"`
	IsFlagged         bool                        `json:"isFlagged,omitempty" yaml:"isFlagged,omitempty"`
	Mapping           string                      `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Translations      Ordered[ControlTranslation] `json:"translations" yaml:"translations"`
	Reference         *Structure                  `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// Mandatory reports whether a value is required.
func (c Control) Mandatory() bool {
	return c.Conformance == ConformanceMandatory
}

// Translation returns the texts for lang.
func (c Control) Translation(lang string) (ControlTranslation, bool) {
	return c.Translations.Get(lang)
}

// HasCardinality reports whether the control declares any repetition.
func (c Control) HasCardinality() bool {
	return strings.TrimSpace(c.Cardinality) != ""
}

// CardinalitySpec parses the declared cardinality.
func (c Control) CardinalitySpec() Cardinality {
	return ParseCardinality(c.Cardinality)
}

// Conditional reports whether visibility depends on other fields.
func (c Control) Conditional() bool {
	return strings.TrimSpace(c.Condition) != ""
}

// CodeMapping returns the legacy to current entry code pairs.
func (c Control) CodeMapping() map[string]string {
	if len(c.EntryCodesMapping) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.EntryCodesMapping))
	for _, pair := range c.EntryCodesMapping {
		legacy, current, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(legacy)] = strings.TrimSpace(current)
	}
	return out
}

// Section groups controls under a localized heading. The number of dashes
// in the ID gives its depth.
type Section struct {
	ID           string                      `json:"id" yaml:"id"`
	Translations Ordered[SectionTranslation] `json:"translations" yaml:"translations"`
	Subsections  []Section                   `json:"subsections,omitempty" yaml:"subsections,omitempty"`
	Controls     []string                    `json:"controls,omitempty" yaml:"controls,omitempty"`
}

// Depth is the heading level, clamped to [1,6].
func (s Section) Depth() int {
	depth := strings.Count(s.ID, "-")
	if depth < 1 {
		return 1
	}
	if depth > 6 {
		return 6
	}
	return depth
}

// Structure is the immutable schema a form is built from.
type Structure struct {
	Translations Ordered[MetaTranslation] `json:"translations" yaml:"translations"`
	Controls     []Control                `json:"controls" yaml:"controls"`
	Sections     []Section                `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Languages lists the available languages in declaration order.
func (s *Structure) Languages() []string {
	if s == nil {
		return nil
	}
	return s.Translations.Keys()
}

// Control looks up a control by name.
func (s *Structure) Control(name string) (Control, bool) {
	if s == nil {
		return Control{}, false
	}
	for _, control := range s.Controls {
		if control.Name == name {
			return control, true
		}
	}
	return Control{}, false
}

// Section looks up a section by ID at any depth.
func (s *Structure) Section(id string) (Section, bool) {
	if s == nil {
		return Section{}, false
	}
	return findSection(s.Sections, id)
}

func findSection(sections []Section, id string) (Section, bool) {
	for _, section := range sections {
		if section.ID == id {
			return section, true
		}
		if found, ok := findSection(section.Subsections, id); ok {
			return found, true
		}
	}
	return Section{}, false
}
