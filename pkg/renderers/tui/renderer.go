// Package tui fills a live form from the terminal and prints plain text
// summaries of form snapshots.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-formengine/pkg/builder"
	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Renderer drives terminal sessions over a form. As a render.Renderer it
// prints the visible controls of a snapshot with their current values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	open              Opener
	askLanguage       bool
	maxAttempts       int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		open:         defaultOpener,
		askLanguage:  true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the type of Render output.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// OutputContentType reports the serialization format used by Fill.
func (r *Renderer) OutputContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prints one line per visible control: its label and current value.
// Sub-forms are indented under their field.
func (r *Renderer) Render(ctx context.Context, snap *form.Snapshot, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if snap == nil || snap.Tree == nil {
		return nil, errors.New("tui: snapshot is empty")
	}

	var b strings.Builder
	title := options.Title
	if title == "" && snap.Structure != nil {
		if tr, ok := snap.Structure.Translations.Get(snap.Language); ok {
			title = tr.Name
		}
	}
	if title != "" {
		fmt.Fprintf(&b, "%s [%s]\n", title, snap.Language)
	}
	for _, msg := range options.Errors.Form {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, msg)
	}
	writeSummary(&b, snap, "", "", options.Errors)
	return []byte(b.String()), nil
}

func writeSummary(b *strings.Builder, snap *form.Snapshot, indent, prefix string, errs render.ErrorMapping) {
	t := snap.Tree
	for _, id := range tree.Find(t, t.Root(), tree.ByClass(builder.ClassControl)) {
		if !tree.Visible(t, id) {
			continue
		}
		container := t.Node(id)
		field := container.Attr(builder.AttrField)
		label := describe(t, id).label
		n, ok := capture.Input(t, id, field)
		if !ok {
			continue
		}
		if n.Kind == tree.KindReference {
			fmt.Fprintf(b, "%s%s\n", indent, label)
			if sub, ok := snap.Subforms[n.ID]; ok {
				writeSummary(b, sub, indent+"  ", prefix+field+".", errs)
			}
			continue
		}
		fmt.Fprintf(b, "%s%s %s\n", indent, label, displayValue(t, n))
		if n.Invalid && n.Message != "" {
			fmt.Fprintf(b, "%s  ! %s\n", indent, n.Message)
		}
		for _, msg := range errs.Fields[prefix+field] {
			if msg != n.Message {
				fmt.Fprintf(b, "%s  ! %s\n", indent, msg)
			}
		}
	}
}

func displayValue(t *tree.Tree, n *tree.Node) string {
	switch n.Kind {
	case tree.KindSelect:
		var texts []string
		for _, child := range n.Children {
			opt := t.Node(child)
			if opt != nil && opt.Attr("value") != "" && slices.Contains(n.Values, opt.Attr("value")) {
				texts = append(texts, opt.Text)
			}
		}
		return strings.Join(texts, ", ")
	case tree.KindWidget:
		return "(" + n.Attr(builder.AttrWidget) + ")"
	}
	switch inputType(n) {
	case "checkbox":
		if n.Checked {
			return "[x]"
		}
		return "[ ]"
	case "file":
		return ""
	}
	if n.Attr("type") == "password" && n.Value() != "" {
		return strings.Repeat("*", len(n.Value()))
	}
	return n.Value()
}

func inputType(n *tree.Node) string {
	if typ := n.Attr(builder.AttrType); typ != "" {
		return typ
	}
	return n.Attr("type")
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(join(prefix, key), val, out)
		}
	case []capture.Data:
		for idx, val := range v {
			flatten(fmt.Sprintf("%s[%d]", prefix, idx), val, out)
		}
	case []string:
		for _, val := range v {
			out.Add(prefix+"[]", val)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", fmt.Sprint(val))
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			writePretty(b, join(prefix, key), v[key])
		}
	case []capture.Data:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	case []string:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%v\n", prefix, v)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
