package schema

import "fmt"

// TypeVisitor has one method per FieldType. Implementations are checked by
// the compiler, so adding a type without handling it everywhere fails to
// build.
type TypeVisitor[R any] interface {
	Text(Control) R
	Numeric(Control) R
	Checkbox(Control) R
	Date(Control) R
	Select(Control) R
	SelectMultiple(Control) R
	Binary(Control) R
	Reference(Control) R
}

// Visit dispatches control to the visitor method matching its type.
func Visit[R any](control Control, v TypeVisitor[R]) (R, error) {
	switch control.Type {
	case TypeText:
		return v.Text(control), nil
	case TypeNumeric:
		return v.Numeric(control), nil
	case TypeCheckbox:
		return v.Checkbox(control), nil
	case TypeDate:
		return v.Date(control), nil
	case TypeSelect:
		return v.Select(control), nil
	case TypeSelectMultiple:
		return v.SelectMultiple(control), nil
	case TypeBinary:
		return v.Binary(control), nil
	case TypeReference:
		return v.Reference(control), nil
	}
	var zero R
	return zero, fmt.Errorf("schema: control %q has unknown type %q", control.Name, control.Type)
}
