package builder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/localize"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

var _ schema.TypeVisitor[error] = (*inputVisitor)(nil)

// inputVisitor appends the input part of one attribute element to parent.
type inputVisitor struct {
	s      *session
	parent tree.NodeID
	el     layout.Element
	part   layout.Part
	id     string
	raw    any
}

func (v *inputVisitor) Text(control schema.Control) error {
	n := v.input(control, "text")
	n.Values = firstOf(Values(v.raw))
	return v.attach(control, n, true)
}

func (v *inputVisitor) Numeric(control schema.Control) error {
	n := v.input(control, "number")
	n.Values = firstOf(Values(v.raw))
	return v.attach(control, n, true)
}

func (v *inputVisitor) Checkbox(control schema.Control) error {
	n := v.input(control, "checkbox")
	n.SetAttr("value", "true")
	n.Checked = Truthy(v.raw)
	return v.attach(control, n, false)
}

func (v *inputVisitor) Date(control schema.Control) error {
	n := v.input(control, "date")
	if control.Format != "" {
		n.SetAttr("placeholder", control.Format)
	}
	n.Values = firstOf(Values(v.raw))
	return v.attach(control, n, true)
}

func (v *inputVisitor) Select(control schema.Control) error {
	return v.entry(control)
}

func (v *inputVisitor) SelectMultiple(control schema.Control) error {
	return v.entry(control)
}

func (v *inputVisitor) Binary(control schema.Control) error {
	if name, ok := v.s.b.widgets.Resolve(control, v.part.Widget); ok {
		w := v.widget(control, name)
		w.SetAttr("id", v.id)
		w.SetAttr("name", control.Name)
		applyConfig(w, v.part.Config)
		return tree.Append(v.s.t, v.parent, w.ID)
	}
	n := v.input(control, "file")
	if control.Format != "" {
		n.SetAttr("accept", control.Format)
	}
	if v.part.Multiple {
		n.SetAttr("multiple", "")
	}
	return v.attach(control, n, false)
}

func (v *inputVisitor) Reference(control schema.Control) error {
	n := v.s.t.Create(tree.KindReference, "div")
	n.SetAttr(AttrReference, control.Name)
	n.SetAttr("name", control.Name)
	n.SetAttr("id", v.id)
	applyConfig(n, v.part.Config)
	if err := tree.Append(v.s.t, v.parent, n.ID); err != nil {
		return err
	}
	v.s.jobs = append(v.s.jobs, NestedRequest{Node: n.ID, Control: control, Element: v.el, Data: v.raw})
	return nil
}

// entry leaves a slot the localize package turns into a select, so the
// options follow the language.
func (v *inputVisitor) entry(control schema.Control) error {
	slot := v.s.slot("div", tree.SlotKey{Kind: tree.SlotEntry, Target: control.Name})
	slot.SetAttr(localize.AttrInputID, v.id)
	slot.Values = Values(v.raw)
	applyConfig(slot, v.part.Config)
	return tree.Append(v.s.t, v.parent, slot.ID)
}

func (v *inputVisitor) input(control schema.Control, typ string) *tree.Node {
	n := v.s.t.Create(tree.KindInput, "input")
	n.SetAttr("type", typ)
	n.SetAttr("name", control.Name)
	n.SetAttr("id", v.id)
	n.AddClass(localize.ClassInput)
	n.Required = control.Mandatory()
	applyConfig(n, v.part.Config)
	return n
}

// attach appends n, its flagged toggle and, when allowed, a capture widget
// bound to it.
func (v *inputVisitor) attach(control schema.Control, n *tree.Node, withWidget bool) error {
	if err := tree.Append(v.s.t, v.parent, n.ID); err != nil {
		return err
	}
	if control.IsFlagged {
		n.AddClass(localize.ClassFlagged)
		toggle := v.s.t.Create(tree.KindToggle, "input")
		toggle.SetAttr("type", "checkbox")
		toggle.SetAttr(AttrTarget, v.id)
		toggle.AddClass(ClassToggle)
		toggle.Checked = v.s.showFlagged
		if err := tree.Append(v.s.t, v.parent, toggle.ID); err != nil {
			return err
		}
		if err := Mask(v.s.t, n.ID, !v.s.showFlagged); err != nil {
			return err
		}
	}
	if !withWidget {
		return nil
	}
	if name, ok := v.s.b.widgets.Resolve(control, v.part.Widget); ok {
		w := v.widget(control, name)
		w.SetAttr(AttrFor, v.id)
		return tree.Append(v.s.t, v.parent, w.ID)
	}
	return nil
}

func (v *inputVisitor) widget(control schema.Control, name string) *tree.Node {
	w := v.s.t.Create(tree.KindWidget, "div")
	w.SetAttr(AttrWidget, name)
	w.SetAttr(AttrField, control.Name)
	return w
}

// Mask switches a flagged input between its real type and a password
// input. The real type is kept in data-type while masked.
func Mask(t *tree.Tree, id tree.NodeID, masked bool) error {
	n := t.Node(id)
	if n == nil {
		return fmt.Errorf("builder: mask: %w: %d", tree.ErrUnknownNode, id)
	}
	if n.Kind != tree.KindInput {
		return fmt.Errorf("builder: mask: node %d is a %s", id, n.Kind)
	}
	if masked {
		if n.Attr(AttrType) == "" {
			n.SetAttr(AttrType, n.Attr("type"))
		}
		n.SetAttr("type", "password")
		return nil
	}
	if original := n.Attr(AttrType); original != "" {
		n.SetAttr("type", original)
	}
	return nil
}

// Lookup finds the prefill of control by name, then by its mapping alias.
func Lookup(data map[string]any, control schema.Control) (any, bool) {
	if v, ok := data[control.Name]; ok {
		return v, true
	}
	if control.Mapping != "" {
		v, ok := data[control.Mapping]
		return v, ok
	}
	return nil, false
}

// Items returns the list form of a prefill value.
func Items(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}
	return []any{value}
}

func itemAt(value any, index int) any {
	items := Items(value)
	if index < len(items) {
		return items[index]
	}
	return nil
}

// Values converts a prefill value to input values. Lists keep their order.
func Values(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, Values(item)...)
		}
		return out
	case bool:
		return []string{strconv.FormatBool(v)}
	case map[string]any:
		return nil
	}
	return []string{fmt.Sprint(value)}
}

// Truthy reports whether a prefill value checks a checkbox.
func Truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "0", "no", "off", "n":
			return false
		}
		return true
	case nil:
		return false
	}
	return fmt.Sprint(value) != "0"
}

func firstOf(values []string) []string {
	if len(values) > 1 {
		return values[:1]
	}
	return values
}
