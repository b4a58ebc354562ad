// Package cardinality expands repeated fields into instances and manages
// user controlled repetition inside a live tree.
package cardinality

import (
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Expand rewrites attribute elements according to their control's declared
// cardinality. Fixed counts replicate the element; ranges emit min copies
// followed by one manager element. Element order is preserved.
func Expand(elements []layout.Element, s *schema.Structure) ([]layout.Element, error) {
	out := make([]layout.Element, 0, len(elements))
	for idx, el := range elements {
		if el.Type != layout.ElementAttribute {
			out = append(out, el)
			continue
		}
		control, ok := s.Control(el.Name)
		if !ok {
			return nil, &layout.ConfigurationError{Kind: layout.RefField, Ref: el.Name, Index: idx}
		}
		spec := control.CardinalitySpec()
		switch spec.Kind {
		case schema.CardinalityFixed:
			for n := 0; n < spec.Count; n++ {
				out = append(out, el)
			}
		case schema.CardinalityRange:
			for n := 0; n < spec.Range.Min; n++ {
				out = append(out, el)
			}
			out = append(out, layout.CardinalityManager(control.Name, spec.Range, el))
		default:
			out = append(out, el)
		}
	}
	return out, nil
}
