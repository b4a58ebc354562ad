// Package tree is the node arena a form is built into. Nodes are addressed
// by stable NodeIDs and changed through the standalone functions in this
// package, so structural edits, text resolution and visibility toggles stay
// independent of each other.
package tree

import (
	"fmt"
	"slices"
)

// NodeID addresses a node inside one Tree. The zero value is never a node.
type NodeID int

// None is the zero NodeID.
const None NodeID = 0

// Kind classifies a node.
type Kind string

const (
	KindRoot        Kind = "root"
	KindContainer   Kind = "container"
	KindStyle       Kind = "style"
	KindHeader      Kind = "header"
	KindLabel       Kind = "label"
	KindInformation Kind = "information"
	KindUnit        Kind = "unit"
	KindSlot        Kind = "slot"
	KindMarker      Kind = "marker"
	KindInput       Kind = "input"
	KindSelect      Kind = "select"
	KindOption      Kind = "option"
	KindToggle      Kind = "toggle"
	KindButton      Kind = "button"
	KindWidget      Kind = "widget"
	KindReference   Kind = "reference"
	KindSubmit      Kind = "submit"
	KindText        Kind = "text"
)

// SlotKind selects the resolver that fills a slot.
type SlotKind string

const (
	SlotMetaName        SlotKind = "meta-name"
	SlotMetaDescription SlotKind = "meta-description"
	SlotCategory        SlotKind = "category"
	SlotControl         SlotKind = "control"
	SlotEntry           SlotKind = "entry"
	SlotUnit            SlotKind = "unit"
)

// SlotKey identifies the text a slot node displays.
type SlotKey struct {
	Kind   SlotKind
	Target string
	Part   string
}

func (k SlotKey) String() string {
	if k.Part == "" {
		return fmt.Sprintf("%s[%s]", k.Kind, k.Target)
	}
	return fmt.Sprintf("%s[%s].%s", k.Kind, k.Target, k.Part)
}

// Node is one element of the tree. Values holds the live value of inputs and
// selects, and the prefill of entry slots.
type Node struct {
	ID       NodeID
	Kind     Kind
	Tag      string
	Parent   NodeID
	Children []NodeID

	Attrs   map[string]string
	Classes []string
	Style   string
	Text    string
	Hidden  bool
	Slot    *SlotKey

	Values   []string
	Checked  bool
	Required bool
	Invalid  bool
	Message  string
}

// Attr returns the attribute value or "".
func (n *Node) Attr(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// SetAttr sets an attribute.
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// HasClass reports whether class is set.
func (n *Node) HasClass(class string) bool {
	return n != nil && slices.Contains(n.Classes, class)
}

// AddClass appends classes that are not already present.
func (n *Node) AddClass(classes ...string) {
	for _, class := range classes {
		if class != "" && !slices.Contains(n.Classes, class) {
			n.Classes = append(n.Classes, class)
		}
	}
}

// RemoveClass drops class when present.
func (n *Node) RemoveClass(class string) {
	n.Classes = slices.DeleteFunc(n.Classes, func(c string) bool { return c == class })
}

// Value returns the first live value or "".
func (n *Node) Value() string {
	if n == nil || len(n.Values) == 0 {
		return ""
	}
	return n.Values[0]
}

func (n *Node) clone() *Node {
	out := *n
	out.Children = slices.Clone(n.Children)
	out.Classes = slices.Clone(n.Classes)
	out.Values = slices.Clone(n.Values)
	if n.Attrs != nil {
		out.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	if n.Slot != nil {
		slot := *n.Slot
		out.Slot = &slot
	}
	return &out
}
