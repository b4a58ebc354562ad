// Package form is the interactive runtime: it builds a tree from a
// structure and layout, keeps it consistent under language switches,
// conditional visibility and repetition, and captures the record on submit.
//
// A Form serialises every event through one mutex shared with its nested
// sub-forms, so events are applied strictly in call order.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/builder"
	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/cardinality"
	"github.com/goliatone/go-formengine/pkg/condition"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/localize"
	"github.com/goliatone/go-formengine/pkg/overlay"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

// Observable attributes.
const (
	AttributeLanguage  = "language"
	AttributeStructure = "structure"
)

var (
	// ErrStructureWriteOnce is returned when the structure attribute is set
	// after construction.
	ErrStructureWriteOnce = errors.New("form: structure is write-once")
	// ErrUnknownNode is returned when an event targets a node that does not
	// exist.
	ErrUnknownNode = errors.New("form: unknown node")
	// ErrNotInput is returned when an event targets a node that takes no
	// such input.
	ErrNotInput = errors.New("form: node does not take this input")
	// ErrUnknownLanguage is returned when no structure language matches.
	ErrUnknownLanguage = errors.New("form: unknown language")
	// ErrUnknownAttribute is returned for attributes other than language
	// and structure.
	ErrUnknownAttribute = errors.New("form: unknown attribute")
)

// Form is one live form level. Reference fields own nested Forms.
type Form struct {
	mu         *sync.Mutex
	cfg        config
	structure  *schema.Structure
	layout     layout.Layout
	data       map[string]any
	tree       *tree.Tree
	builder    *builder.Builder
	switcher   *localize.Switcher
	conditions *condition.Evaluator
	language   string
	units      map[string]string

	subMu    sync.Mutex
	subforms map[tree.NodeID]*Form
	widgets  map[tree.NodeID]widgets.Widget
	uploads  *uploads
}

// New builds a form. The structure is validated, the prefill goes through
// the preprocessor, and the layout is checked before anything is built: a
// *layout.ConfigurationError means no form was produced. An empty layout is
// replaced by layout.Default.
func New(ctx context.Context, s *schema.Structure, data map[string]any, l layout.Layout, options ...Option) (*Form, error) {
	cfg := defaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.layout != nil {
		l = *cfg.layout
	}
	if err := schema.Validate(s); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	if cfg.preprocessor != nil {
		var err error
		if data, err = cfg.preprocessor.Preprocess(ctx, s, data, cfg.overlays); err != nil {
			return nil, fmt.Errorf("form: preprocess: %w", err)
		}
	}
	return build(ctx, s, data, l, cfg, &sync.Mutex{}, cfg.defaultLanguage)
}

func build(ctx context.Context, s *schema.Structure, data map[string]any, l layout.Layout, cfg config, mu *sync.Mutex, preferred string) (*Form, error) {
	if len(l.Elements) == 0 {
		l.Elements = layout.Default(s).Elements
	}
	if data == nil {
		data = map[string]any{}
	}
	f := &Form{
		mu:        mu,
		cfg:       cfg,
		structure: s,
		layout:    l,
		data:      data,
		language:  localize.ResolveLanguage(s.Languages(), preferred),
		units:     overlay.Units(cfg.overlays),
		switcher:  localize.NewSwitcher(cfg.resolvers...),
		subforms:  make(map[tree.NodeID]*Form),
		widgets:   make(map[tree.NodeID]widgets.Widget),
		uploads:   newUploads(),
	}
	f.builder = builder.New(s,
		builder.WithWidgets(cfg.widgets),
		builder.WithNested(f.nested),
		builder.WithShowFlagged(cfg.showFlagged),
		builder.WithLanguage(f.language),
	)

	t, err := f.builder.Build(ctx, l, data)
	if err != nil {
		return nil, err
	}
	f.tree = t
	if err := f.prefillInstances(ctx); err != nil {
		return nil, err
	}
	f.bindWidgets(t.Root())
	if err := f.localize(t.Root()); err != nil {
		return nil, err
	}

	f.conditions = condition.New(s)
	transitions, err := f.conditions.Init(capture.Capture(f.source()))
	f.logConditionError(err)
	f.apply(transitions)
	logger.Verbose("form: built with language", f.language)
	return f, nil
}

// nested builds the sub-form of a Reference field. It runs concurrently
// with sibling sub-forms.
func (f *Form) nested(ctx context.Context, req builder.NestedRequest) error {
	data, _ := req.Data.(map[string]any)
	l := layout.Default(req.Control.Reference)
	if req.Element.Layout != nil {
		l = *req.Element.Layout
	}
	cfg := f.cfg
	cfg.onSubmit = nil
	cfg.layout = nil
	sub, err := build(ctx, req.Control.Reference, data, l, cfg, f.mu, f.language)
	if err != nil {
		return err
	}
	f.subMu.Lock()
	f.subforms[req.Node] = sub
	f.subMu.Unlock()
	return nil
}

// prefillInstances adds manager instances for prefill items beyond the
// declared minimum, up to the maximum.
func (f *Form) prefillInstances(ctx context.Context) error {
	for _, manager := range cardinality.Managers(f.tree, f.tree.Root()) {
		control, ok := f.structure.Control(f.tree.Node(manager).Attr(cardinality.AttrManager))
		if !ok {
			continue
		}
		raw, _ := builder.Lookup(f.data, control)
		items := builder.Items(raw)
		for i := control.CardinalitySpec().Range.Min; i < len(items); i++ {
			full, err := cardinality.Full(f.tree, manager)
			if err != nil {
				return err
			}
			if full {
				logger.Warning("form: prefill of", control.Name, "has more items than its range allows")
				break
			}
			if _, _, err := cardinality.Add(f.tree, manager, f.instance(ctx, items[i])); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Form) instance(ctx context.Context, value any) cardinality.InstanceFunc {
	return func(p cardinality.Payload) (tree.NodeID, error) {
		return f.builder.Instance(ctx, f.tree, p, value)
	}
}

func (f *Form) bindWidgets(scope tree.NodeID) {
	if f.cfg.widgets == nil {
		return
	}
	for _, id := range tree.Find(f.tree, scope, tree.ByKind(tree.KindWidget)) {
		n := f.tree.Node(id)
		control, ok := f.structure.Control(n.Attr(builder.AttrField))
		if !ok {
			continue
		}
		if w, ok := f.cfg.widgets.New(n.Attr(builder.AttrWidget), control); ok {
			f.widgets[id] = w
		}
	}
}

func (f *Form) localize(scope tree.NodeID) error {
	return f.switcher.Switch(f.tree, scope, localize.Context{
		Structure: f.structure,
		Language:  f.language,
		Units:     f.units,
		OnMissing: f.cfg.onMissing,
	})
}

func (f *Form) logConditionError(err error) {
	if err != nil {
		logger.Error("form:", err)
	}
}

// Language returns the active language.
func (f *Form) Language() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.language
}

// Structure returns the structure the form was built from.
func (f *Form) Structure() *schema.Structure {
	return f.structure
}

// Attribute reads an observable attribute. The structure attribute is the
// JSON encoding of the structure.
func (f *Form) Attribute(name string) (string, error) {
	switch name {
	case AttributeLanguage:
		return f.Language(), nil
	case AttributeStructure:
		raw, err := json.Marshal(f.structure)
		if err != nil {
			return "", fmt.Errorf("form: encode structure: %w", err)
		}
		return string(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

// SetAttribute writes an observable attribute. The structure is supplied
// to New and cannot be replaced.
func (f *Form) SetAttribute(name, value string) error {
	switch name {
	case AttributeLanguage:
		return f.SetLanguage(value)
	case AttributeStructure:
		return ErrStructureWriteOnce
	}
	return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

// SetLanguage switches the form and its sub-forms to lang without
// rebuilding. lang may be a prefix of an available language.
func (f *Form) SetLanguage(lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setLanguage(lang)
}

func (f *Form) setLanguage(lang string) error {
	match, ok := localize.Match(f.structure.Languages(), lang)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return f.switchTo(match)
}

func (f *Form) switchTo(lang string) error {
	f.language = lang
	if id, ok := tree.First(f.tree, f.tree.Root(), tree.ByAttr("id", builder.LanguageSelectID)); ok {
		f.tree.Node(id).Values = []string{lang}
	}
	if err := f.localize(f.tree.Root()); err != nil {
		return err
	}
	logger.Verbose("form: switched language to", lang)
	for _, sub := range f.children() {
		if err := sub.switchTo(localize.ResolveLanguage(sub.structure.Languages(), lang)); err != nil {
			return err
		}
	}
	return nil
}

func (f *Form) children() []*Form {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	out := make([]*Form, 0, len(f.subforms))
	for _, id := range tree.Find(f.tree, f.tree.Root(), tree.ByKind(tree.KindReference)) {
		if sub, ok := f.subforms[id]; ok {
			out = append(out, sub)
		}
	}
	return out
}

func (f *Form) subform(node tree.NodeID) (*Form, bool) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	sub, ok := f.subforms[node]
	return sub, ok
}

// Subform returns the nested form rendered into a reference node.
func (f *Form) Subform(node tree.NodeID) (*Form, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subform(node)
}

// Tree returns a snapshot of the live tree.
func (f *Form) Tree() *tree.Tree {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tree.Clone()
}

// Inputs lists the value nodes of field in document order.
func (f *Form) Inputs(field string) []tree.NodeID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tree.NodeID
	for _, container := range capture.Containers(f.tree, field) {
		if n, ok := capture.Input(f.tree, container, field); ok {
			out = append(out, n.ID)
		}
	}
	return out
}

// Manager returns the cardinality manager of field.
func (f *Form) Manager(field string) (tree.NodeID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cardinality.Manager(f.tree, f.tree.Root(), field)
}

// Widget returns the capture widget bound to a widget node.
func (f *Form) Widget(node tree.NodeID) (widgets.Widget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.widgets[node]
	return w, ok
}

// Hidden reports whether field is hidden by its condition.
func (f *Form) Hidden(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hidden(field)
}

func (f *Form) hidden(field string) bool {
	return f.conditions != nil && f.conditions.State(field) == condition.Hidden
}

// Snapshot is a read-only copy of a form level and its sub-forms, for
// renderers.
type Snapshot struct {
	Structure *schema.Structure
	Language  string
	Tree      *tree.Tree
	Subforms  map[tree.NodeID]*Snapshot
}

// Snapshot copies the current state of the form.
func (f *Form) Snapshot() *Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

func (f *Form) snapshot() *Snapshot {
	out := &Snapshot{
		Structure: f.structure,
		Language:  f.language,
		Tree:      f.tree.Clone(),
		Subforms:  make(map[tree.NodeID]*Snapshot),
	}
	f.subMu.Lock()
	defer f.subMu.Unlock()
	for id, sub := range f.subforms {
		out.Subforms[id] = sub.snapshot()
	}
	return out
}

// source adapts a form level to capture.Source. Callers hold f.mu.
type source struct {
	f *Form
}

func (f *Form) source() source {
	return source{f: f}
}

func (s source) Structure() *schema.Structure { return s.f.structure }
func (s source) Tree() *tree.Tree             { return s.f.tree }
func (s source) Hidden(field string) bool     { return s.f.hidden(field) }

func (s source) Files(node tree.NodeID) []capture.File {
	return s.f.uploads.files(node)
}

func (s source) Subform(node tree.NodeID) (capture.Source, bool) {
	sub, ok := s.f.subform(node)
	if !ok {
		return nil, false
	}
	return sub.source(), true
}

func (s source) Widget(node tree.NodeID) (widgets.Widget, bool) {
	w, ok := s.f.widgets[node]
	return w, ok
}
