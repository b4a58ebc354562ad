package html

import (
	stdhtml "html"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-formengine/pkg/builder"
	"github.com/goliatone/go-formengine/pkg/cardinality"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Classes emitted by the renderer itself.
const (
	ClassSubform    = "_subform"
	ClassFormErrors = "_form-errors"
	ClassError      = "_error"
	ClassMessage    = "_message"
	ClassInvalid    = "invalid"
)

var voidTags = map[string]bool{"input": true, "br": true, "hr": true, "img": true, "meta": true}

type writer struct {
	b     strings.Builder
	opts  render.RenderOptions
	lang  string
	depth int
}

func newWriter(opts render.RenderOptions, lang string) *writer {
	return &writer{opts: opts, lang: lang}
}

func (w *writer) String() string {
	return w.b.String()
}

type attr struct {
	key, value string
	flag       bool
}

// form writes one form level. The top level is the form element; nested
// levels render as a div inside their reference node.
func (w *writer) form(snap *form.Snapshot, prefix string, top bool) {
	w.depth++
	defer func() { w.depth-- }()
	t := snap.Tree
	root := t.Node(t.Root())

	tag := "div"
	attrs := []attr{{key: "data-language", value: snap.Language}}
	classes := classTokens(root.Classes)
	if top {
		tag = "form"
		attrs = append(attrs, attr{key: "onsubmit", value: "return false"})
	} else {
		classes = append([]string{ClassSubform}, classes...)
	}
	if len(classes) > 0 {
		attrs = append([]attr{{key: "class", value: strings.Join(classes, " ")}}, attrs...)
	}
	if root.Style != "" {
		attrs = append(attrs, attr{key: "style", value: root.Style})
	}
	w.tag(tag, attrs)

	if top {
		for _, field := range render.SortedHiddenFields(w.opts.Hidden) {
			w.tag("input", []attr{{key: "type", value: "hidden"}, {key: "name", value: field.Name}, {key: "value", value: field.Value}})
		}
		if msgs := w.opts.Errors.Form; len(msgs) > 0 {
			w.b.WriteString(`<ul class="` + ClassFormErrors + `">`)
			for _, msg := range msgs {
				w.b.WriteString("<li>" + stdhtml.EscapeString(msg) + "</li>")
			}
			w.b.WriteString("</ul>")
		}
	}
	for _, child := range root.Children {
		w.node(snap, child, prefix)
	}
	w.b.WriteString("</" + tag + ">")
}

func (w *writer) node(snap *form.Snapshot, id tree.NodeID, prefix string) {
	t := snap.Tree
	n := t.Node(id)
	if n == nil {
		return
	}

	if n.Kind == tree.KindSubmit && w.depth > 1 {
		return
	}
	if n.Kind == tree.KindStyle {
		w.b.WriteString("<style>" + styleText(n.Text) + "</style>")
		return
	}

	w.tag(n.Tag, w.attrs(t, n))
	if voidTags[n.Tag] {
		w.message(n)
		return
	}

	text := w.text(n)
	if n.Slot != nil && n.Slot.Part == "information" {
		w.b.WriteString(sanitizeText(text))
	} else {
		w.b.WriteString(stdhtml.EscapeString(text))
	}

	if n.Kind == tree.KindReference {
		if sub, ok := snap.Subforms[id]; ok {
			w.form(sub, prefix+n.Attr("name")+".", false)
		}
	}
	for _, child := range n.Children {
		w.node(snap, child, prefix)
	}
	if n.Kind == tree.KindContainer && n.HasClass(builder.ClassControl) {
		w.fieldErrors(t, n, prefix)
	}
	w.b.WriteString("</" + n.Tag + ">")
	if n.Kind == tree.KindSelect {
		w.message(n)
	}
}

// text resolves the chrome texts; everything else was resolved by the form.
func (w *writer) text(n *tree.Node) string {
	switch n.Kind {
	case tree.KindSubmit:
		return render.Translate(w.opts, w.lang, render.KeySubmit, n.Text)
	case tree.KindButton:
		switch n.Attr(cardinality.AttrTrigger) {
		case cardinality.TriggerAdd:
			return render.Translate(w.opts, w.lang, render.KeyAdd, n.Text)
		case cardinality.TriggerRemove:
			return render.Translate(w.opts, w.lang, render.KeyRemove, n.Text)
		}
	}
	return n.Text
}

func (w *writer) attrs(t *tree.Tree, n *tree.Node) []attr {
	keys := make([]string, 0, len(n.Attrs))
	for key := range n.Attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]attr, 0, len(keys)+6)
	for _, key := range keys {
		out = append(out, attr{key: key, value: n.Attrs[key]})
	}

	classes := classTokens(n.Classes)
	if n.Invalid {
		classes = append(classes, ClassInvalid)
	}
	if len(classes) > 0 {
		out = append(out, attr{key: "class", value: strings.Join(classes, " ")})
	}
	if n.Style != "" {
		out = append(out, attr{key: "style", value: n.Style})
	}

	switch n.Kind {
	case tree.KindInput:
		switch n.Attr("type") {
		case "checkbox", "file":
		default:
			if _, ok := n.Attrs["value"]; !ok && n.Value() != "" {
				out = append(out, attr{key: "value", value: n.Value()})
			}
		}
	case tree.KindToggle:
		if _, ok := n.Attrs["title"]; !ok {
			out = append(out, attr{key: "title", value: render.Translate(w.opts, w.lang, render.KeyReveal, "Show")})
		}
	case tree.KindOption:
		if parent := t.Node(n.Parent); parent != nil && slices.Contains(parent.Values, n.Attr("value")) {
			out = append(out, attr{key: "selected", flag: true})
		}
	}
	if n.Checked {
		out = append(out, attr{key: "checked", flag: true})
	}
	if n.Required {
		out = append(out, attr{key: "required", flag: true})
	}
	if n.Invalid {
		out = append(out, attr{key: "aria-invalid", value: "true"})
	}
	if n.Hidden {
		out = append(out, attr{key: "hidden", flag: true})
	}
	return out
}

func (w *writer) tag(name string, attrs []attr) {
	w.b.WriteString("<" + name)
	for _, a := range attrs {
		w.b.WriteString(" " + a.key)
		if !a.flag {
			w.b.WriteString(`="` + stdhtml.EscapeString(a.value) + `"`)
		}
	}
	w.b.WriteString(">")
}

func (w *writer) message(n *tree.Node) {
	if !n.Invalid || n.Message == "" {
		return
	}
	w.b.WriteString(`<span class="` + ClassMessage + `">` + stdhtml.EscapeString(n.Message) + "</span>")
}

// fieldErrors writes the option errors of a control the tree has not
// already flagged with the same message.
func (w *writer) fieldErrors(t *tree.Tree, container *tree.Node, prefix string) {
	msgs := w.opts.Errors.Fields[prefix+container.Attr(builder.AttrField)]
	if len(msgs) == 0 {
		return
	}
	shown := make(map[string]bool)
	for _, id := range tree.Find(t, container.ID, func(n *tree.Node) bool { return n.Invalid }) {
		shown[t.Node(id).Message] = true
	}
	for _, msg := range msgs {
		if shown[msg] {
			continue
		}
		shown[msg] = true
		w.b.WriteString(`<p class="` + ClassError + `">` + stdhtml.EscapeString(msg) + "</p>")
	}
}
