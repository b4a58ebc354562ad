// Package capture reads the values a user entered out of a live tree and
// checks them before submit.
package capture

import (
	"encoding/base64"

	"github.com/goliatone/go-formengine/pkg/builder"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

// Data is a captured record keyed by field name. Nested Reference records
// are Data values too.
type Data = map[string]any

// File is a file read for a Binary input.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// DataURL encodes the file as a base64 data URL.
func (f File) DataURL() string {
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// Source is one form level as capture sees it.
type Source interface {
	Structure() *schema.Structure
	Tree() *tree.Tree
	Subform(node tree.NodeID) (Source, bool)
	Widget(node tree.NodeID) (widgets.Widget, bool)
	Files(node tree.NodeID) []File
	Hidden(field string) bool
}

// Capture returns a value for every declared field. Unset fields are "".
func Capture(src Source) Data {
	return capture(src, false)
}

// Visible is Capture without the fields hidden by their conditions, at
// every nesting level.
func Visible(src Source) Data {
	return capture(src, true)
}

func capture(src Source, visibleOnly bool) Data {
	out := Data{}
	s := src.Structure()
	if s == nil {
		return out
	}
	for _, control := range s.Controls {
		if visibleOnly && src.Hidden(control.Name) {
			continue
		}
		containers := Containers(src.Tree(), control.Name)
		v := &valueVisitor{src: src, visibleOnly: visibleOnly}

		if control.HasCardinality() {
			if control.Type == schema.TypeReference {
				records := []Data{}
				for _, c := range containers {
					v.container = c
					if record, ok := v.Reference(control).(Data); ok {
						records = append(records, record)
					}
				}
				out[control.Name] = records
				continue
			}
			values := []any{}
			for _, c := range containers {
				v.container = c
				value, _ := schema.Visit[any](control, v)
				values = append(values, value)
			}
			out[control.Name] = values
			continue
		}

		if len(containers) == 0 {
			out[control.Name] = ""
			continue
		}
		v.container = containers[0]
		value, err := schema.Visit[any](control, v)
		if err != nil {
			value = ""
		}
		out[control.Name] = value
	}
	return out
}

// Containers lists the control containers of field in document order,
// instances of a cardinality manager included.
func Containers(t *tree.Tree, field string) []tree.NodeID {
	return tree.Find(t, t.Root(), tree.All(tree.ByClass(builder.ClassControl), tree.ByAttr(builder.AttrField, field)))
}

// Input returns the node holding the value of field inside container.
func Input(t *tree.Tree, container tree.NodeID, field string) (*tree.Node, bool) {
	id, ok := tree.First(t, container, tree.All(
		tree.ByKind(tree.KindInput, tree.KindSelect, tree.KindWidget, tree.KindReference),
		tree.ByAttr("name", field),
	))
	if !ok {
		return nil, false
	}
	return t.Node(id), true
}

var _ schema.TypeVisitor[any] = (*valueVisitor)(nil)

type valueVisitor struct {
	src         Source
	container   tree.NodeID
	visibleOnly bool
}

func (v *valueVisitor) input(control schema.Control) *tree.Node {
	n, _ := Input(v.src.Tree(), v.container, control.Name)
	return n
}

// raw is the input value, replaced by a bound widget's content when the
// widget has any.
func (v *valueVisitor) raw(control schema.Control) any {
	n := v.input(control)
	if n == nil {
		return ""
	}
	t := v.src.Tree()
	if id, ok := tree.First(t, v.container, tree.All(tree.ByKind(tree.KindWidget), tree.ByAttr(builder.AttrFor, n.Attr("id")))); ok {
		if w, ok := v.src.Widget(id); ok && w.Value() != "" {
			return w.Value()
		}
	}
	return n.Value()
}

func (v *valueVisitor) Text(control schema.Control) any    { return v.raw(control) }
func (v *valueVisitor) Numeric(control schema.Control) any { return v.raw(control) }
func (v *valueVisitor) Date(control schema.Control) any    { return v.raw(control) }

func (v *valueVisitor) Checkbox(control schema.Control) any {
	if n := v.input(control); n != nil && n.Checked {
		return "true"
	}
	return ""
}

func (v *valueVisitor) Select(control schema.Control) any {
	if n := v.input(control); n != nil {
		return n.Value()
	}
	return ""
}

func (v *valueVisitor) SelectMultiple(control schema.Control) any {
	out := []string{}
	if n := v.input(control); n != nil {
		out = append(out, n.Values...)
	}
	return out
}

func (v *valueVisitor) Binary(control schema.Control) any {
	n := v.input(control)
	if n == nil {
		return ""
	}
	if n.Kind == tree.KindWidget {
		if w, ok := v.src.Widget(n.ID); ok {
			return w.Value()
		}
		return ""
	}
	files := v.src.Files(n.ID)
	if _, multiple := n.Attrs["multiple"]; multiple {
		urls := make([]string, 0, len(files))
		for _, f := range files {
			urls = append(urls, f.DataURL())
		}
		return urls
	}
	if len(files) == 0 {
		return ""
	}
	return files[0].DataURL()
}

func (v *valueVisitor) Reference(control schema.Control) any {
	n := v.input(control)
	if n == nil {
		return Data{}
	}
	sub, ok := v.src.Subform(n.ID)
	if !ok {
		return Data{}
	}
	return capture(sub, v.visibleOnly)
}
