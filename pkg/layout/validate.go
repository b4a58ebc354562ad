package layout

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Reference kinds reported by ConfigurationError.
const (
	RefField   = "field"
	RefSection = "section"
	RefElement = "element"
	RefPart    = "part"
)

// ConfigurationError reports a layout element that cannot be resolved
// against the structure. It is fatal: no tree is built.
type ConfigurationError struct {
	Kind  string
	Ref   string
	Index int
	Path  string
}

func (e *ConfigurationError) Error() string {
	where := fmt.Sprintf("element %d", e.Index)
	if e.Path != "" {
		where = e.Path + " " + where
	}
	return fmt.Sprintf("layout: %s references unknown %s %q", where, e.Kind, e.Ref)
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

var (
	metaParts      = map[PartName]bool{PartMetaName: true, PartDescription: true, PartLanguage: true}
	attributeParts = map[PartName]bool{PartLabel: true, PartInput: true, PartInformation: true, PartUnit: true}
)

// Validate resolves every element reference against s before anything is
// built. Nested layouts on Reference attributes are checked against the
// nested structure.
func Validate(l Layout, s *schema.Structure) error {
	return validate(l.Elements, s, "")
}

func validate(elements []Element, s *schema.Structure, path string) error {
	for idx, el := range elements {
		if err := validateElement(el, idx, s, path); err != nil {
			return err
		}
	}
	return nil
}

func validateElement(el Element, idx int, s *schema.Structure, path string) error {
	switch el.Type {
	case ElementMeta:
		for _, part := range el.Parts {
			if !metaParts[part.Name] {
				return &ConfigurationError{Kind: RefPart, Ref: string(part.Name), Index: idx, Path: path}
			}
		}
	case ElementCategory:
		if _, ok := s.Section(el.ID); !ok {
			return &ConfigurationError{Kind: RefSection, Ref: el.ID, Index: idx, Path: path}
		}
	case ElementAttribute:
		control, ok := s.Control(el.Name)
		if !ok {
			return &ConfigurationError{Kind: RefField, Ref: el.Name, Index: idx, Path: path}
		}
		for _, part := range el.Parts {
			if !attributeParts[part.Name] {
				return &ConfigurationError{Kind: RefPart, Ref: string(part.Name), Index: idx, Path: path}
			}
		}
		if el.Layout != nil && control.Reference != nil {
			return validate(el.Layout.Elements, control.Reference, joinPath(path, el.Name))
		}
	case ElementCardinalityManager:
		if el.Manager == nil {
			return &ConfigurationError{Kind: RefElement, Ref: string(el.Type), Index: idx, Path: path}
		}
		if _, ok := s.Control(el.Manager.Field); !ok {
			return &ConfigurationError{Kind: RefField, Ref: el.Manager.Field, Index: idx, Path: path}
		}
		return validateElement(el.Manager.Element, idx, s, path)
	default:
		return &ConfigurationError{Kind: RefElement, Ref: string(el.Type), Index: idx, Path: path}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
