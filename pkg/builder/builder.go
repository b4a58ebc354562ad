// Package builder turns a structure and layout into an unlocalized node tree.
// Every text a user reads is left as a slot for the localize package, and
// Reference fields are handed to a NestedFunc so sub-forms can be built in
// parallel.
package builder

import (
	"context"
	"fmt"
	"strconv"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formengine/pkg/cardinality"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/localize"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

// Node attributes and classes set by the builder.
const (
	AttrField     = cardinality.AttrField
	AttrWidget    = "data-widget"
	AttrFor       = "data-for"
	AttrTarget    = "data-target"
	AttrType      = "data-type"
	AttrReference = "data-reference"

	ClassMeta      = "_meta"
	ClassCategory  = "_category"
	ClassControl   = "_control"
	ClassMandatory = "_mandatory"
	ClassToggle    = "flagged-toggle"

	LanguageSelectID = "languageSelect"

	configShowFlagged = "showFlagged"
)

// NestedRequest asks for the sub-form of a Reference field to be built
// into Node.
type NestedRequest struct {
	Node    tree.NodeID
	Control schema.Control
	Element layout.Element
	Data    any
}

// NestedFunc builds one sub-form. It runs concurrently with its siblings.
type NestedFunc func(ctx context.Context, req NestedRequest) error

// Option configures a Builder.
type Option func(*Builder)

// WithWidgets sets the registry used to pick capture widgets.
func WithWidgets(reg *widgets.Registry) Option {
	return func(b *Builder) {
		b.widgets = reg
	}
}

// WithNested sets the sub-form constructor for Reference fields. Without
// one the reference node is left empty.
func WithNested(fn NestedFunc) Option {
	return func(b *Builder) {
		b.nested = fn
	}
}

// WithShowFlagged starts flagged inputs revealed instead of masked.
func WithShowFlagged(show bool) Option {
	return func(b *Builder) {
		b.showFlagged = show
	}
}

// WithLanguage preselects lang in the language switch.
func WithLanguage(lang string) Option {
	return func(b *Builder) {
		b.language = lang
	}
}

// Builder builds trees for one structure.
type Builder struct {
	structure   *schema.Structure
	widgets     *widgets.Registry
	nested      NestedFunc
	showFlagged bool
	language    string
}

// New returns a builder for s.
func New(s *schema.Structure, options ...Option) *Builder {
	b := &Builder{structure: s}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Structure returns the structure the builder was created for.
func (b *Builder) Structure() *schema.Structure {
	return b.structure
}

// session holds the state of one Build or Instance call.
type session struct {
	b           *Builder
	t           *tree.Tree
	data        map[string]any
	counts      map[string]int
	jobs        []NestedRequest
	showFlagged bool
}

// Build validates l against the structure, expands cardinalities and builds
// the tree. Prefill values come from data. Sub-forms are built before Build
// returns; the first failing one cancels the others.
func (b *Builder) Build(ctx context.Context, l layout.Layout, data map[string]any) (*tree.Tree, error) {
	if err := layout.Validate(l, b.structure); err != nil {
		return nil, err
	}
	elements, err := cardinality.Expand(l.Elements, b.structure)
	if err != nil {
		return nil, err
	}

	s := &session{
		b:           b,
		t:           tree.New(),
		data:        data,
		counts:      make(map[string]int),
		showFlagged: b.showFlagged,
	}
	root := s.t.Node(s.t.Root())
	root.AddClass(l.Config.Classes()...)
	if style := l.Config.Style(); style != "" {
		n := s.t.Create(tree.KindStyle, "style")
		n.Text = style
		if err := tree.Append(s.t, root.ID, n.ID); err != nil {
			return nil, err
		}
	}

	for idx, el := range elements {
		id, err := s.element(el)
		if err != nil {
			return nil, fmt.Errorf("builder: element %d (%s): %w", idx, el.Type, err)
		}
		if err := tree.Append(s.t, root.ID, id); err != nil {
			return nil, err
		}
	}

	submit := s.t.Create(tree.KindSubmit, "button")
	submit.SetAttr("type", "submit")
	submit.Text = "Submit"
	if err := tree.Append(s.t, root.ID, submit.ID); err != nil {
		return nil, err
	}

	if err := s.runNested(ctx); err != nil {
		return nil, err
	}
	if logger.IsVerbose() {
		logger.Verbose("builder: built " + strconv.Itoa(s.t.Len()) + " nodes from " + strconv.Itoa(len(elements)) + " elements")
	}
	return s.t, nil
}

// Instance builds one detached instance of a repeated field into t, for a
// cardinality manager add. value is the prefill of this instance only.
func (b *Builder) Instance(ctx context.Context, t *tree.Tree, p cardinality.Payload, value any) (tree.NodeID, error) {
	control, ok := b.structure.Control(p.Element.Name)
	if !ok {
		return tree.None, &layout.ConfigurationError{Kind: layout.RefField, Ref: p.Element.Name}
	}
	s := &session{
		b:           b,
		t:           t,
		data:        map[string]any{control.Name: []any{value}},
		counts:      make(map[string]int),
		showFlagged: b.showFlagged,
	}
	if raw, ok := p.Config[configShowFlagged]; ok {
		s.showFlagged, _ = strconv.ParseBool(raw)
	}
	id, err := s.element(p.Element)
	if err != nil {
		return tree.None, err
	}
	if err := s.runNested(ctx); err != nil {
		return tree.None, err
	}
	return id, nil
}

func (s *session) runNested(ctx context.Context) error {
	if len(s.jobs) == 0 || s.b.nested == nil {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			if err := s.b.nested(gctx, job); err != nil {
				return fmt.Errorf("builder: sub-form %q: %w", job.Control.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *session) element(el layout.Element) (tree.NodeID, error) {
	switch el.Type {
	case layout.ElementMeta:
		return s.meta(el)
	case layout.ElementCategory:
		return s.category(el)
	case layout.ElementAttribute:
		return s.attribute(el)
	case layout.ElementCardinalityManager:
		return cardinality.NewManager(s.t, cardinality.Payload{
			Field:   el.Manager.Field,
			Range:   el.Manager.Range,
			Element: el.Manager.Element,
			Config:  map[string]string{configShowFlagged: strconv.FormatBool(s.showFlagged)},
		})
	}
	return tree.None, &layout.ConfigurationError{Kind: layout.RefElement, Ref: string(el.Type)}
}

func (s *session) meta(el layout.Element) (tree.NodeID, error) {
	container := s.t.Create(tree.KindContainer, "div")
	container.AddClass(ClassMeta)
	applyConfig(container, el.Config)

	parts := el.Parts
	if len(parts) == 0 {
		parts = []layout.Part{{Name: layout.PartMetaName}, {Name: layout.PartDescription}, {Name: layout.PartLanguage}}
	}
	for _, part := range parts {
		var n *tree.Node
		switch part.Name {
		case layout.PartMetaName:
			n = s.slot("h1", tree.SlotKey{Kind: tree.SlotMetaName})
		case layout.PartDescription:
			n = s.slot("p", tree.SlotKey{Kind: tree.SlotMetaDescription})
		case layout.PartLanguage:
			var err error
			if n, err = s.languageSelect(); err != nil {
				return tree.None, err
			}
		default:
			return tree.None, &layout.ConfigurationError{Kind: layout.RefPart, Ref: string(part.Name)}
		}
		applyConfig(n, part.Config)
		if err := tree.Append(s.t, container.ID, n.ID); err != nil {
			return tree.None, err
		}
	}
	return container.ID, nil
}

func (s *session) languageSelect() (*tree.Node, error) {
	sel := s.t.Create(tree.KindSelect, "select")
	sel.SetAttr("id", LanguageSelectID)
	sel.SetAttr("name", "language")
	for _, lang := range s.b.structure.Languages() {
		opt := s.t.Create(tree.KindOption, "option")
		opt.SetAttr("value", lang)
		opt.Text = localize.DisplayName(lang)
		if err := tree.Append(s.t, sel.ID, opt.ID); err != nil {
			return nil, err
		}
	}
	if s.b.language != "" {
		sel.Values = []string{s.b.language}
	}
	return sel, nil
}

func (s *session) category(el layout.Element) (tree.NodeID, error) {
	section, ok := s.b.structure.Section(el.ID)
	if !ok {
		return tree.None, &layout.ConfigurationError{Kind: layout.RefSection, Ref: el.ID}
	}
	container := s.t.Create(tree.KindContainer, "div")
	container.SetAttr("id", section.ID)
	container.AddClass(ClassCategory)
	applyConfig(container, el.Config)

	header := s.t.Create(tree.KindHeader, "h"+strconv.Itoa(section.Depth()))
	slot := s.slot("span", tree.SlotKey{Kind: tree.SlotCategory, Target: section.ID})
	if err := tree.Append(s.t, header.ID, slot.ID); err != nil {
		return tree.None, err
	}
	if err := tree.Append(s.t, container.ID, header.ID); err != nil {
		return tree.None, err
	}
	return container.ID, nil
}

func (s *session) attribute(el layout.Element) (tree.NodeID, error) {
	control, ok := s.b.structure.Control(el.Name)
	if !ok {
		return tree.None, &layout.ConfigurationError{Kind: layout.RefField, Ref: el.Name}
	}
	container := s.t.Create(tree.KindContainer, "div")
	container.AddClass(ClassControl)
	container.SetAttr(AttrField, control.Name)
	applyConfig(container, el.Config)
	inputID := control.Name + "__" + strconv.Itoa(int(container.ID))

	index := s.counts[control.Name]
	s.counts[control.Name]++
	raw, _ := Lookup(s.data, control)
	if control.HasCardinality() {
		raw = itemAt(raw, index)
	}

	parts := el.Parts
	if len(parts) == 0 {
		parts = layout.Attribute(el.Name).Parts
	}
	for _, part := range parts {
		var (
			n   *tree.Node
			err error
		)
		switch part.Name {
		case layout.PartLabel:
			n, err = s.label(control, inputID)
		case layout.PartInformation:
			n = s.t.Create(tree.KindInformation, "small")
			err = tree.Append(s.t, n.ID, s.slot("span", tree.SlotKey{Kind: tree.SlotControl, Target: control.Name, Part: string(layout.PartInformation)}).ID)
		case layout.PartUnit:
			n = s.t.Create(tree.KindUnit, "span")
			err = tree.Append(s.t, n.ID, s.slot("span", tree.SlotKey{Kind: tree.SlotUnit, Target: control.Name}).ID)
		case layout.PartInput:
			v := &inputVisitor{s: s, parent: container.ID, el: el, part: part, id: inputID, raw: raw}
			result, err := schema.Visit[error](control, v)
			if err == nil {
				err = result
			}
			if err != nil {
				return tree.None, err
			}
			continue
		default:
			return tree.None, &layout.ConfigurationError{Kind: layout.RefPart, Ref: string(part.Name)}
		}
		if err != nil {
			return tree.None, err
		}
		applyConfig(n, part.Config)
		if err := tree.Append(s.t, container.ID, n.ID); err != nil {
			return tree.None, err
		}
	}
	return container.ID, nil
}

func (s *session) label(control schema.Control, inputID string) (*tree.Node, error) {
	label := s.t.Create(tree.KindLabel, "label")
	label.SetAttr("for", inputID)
	slot := s.slot("span", tree.SlotKey{Kind: tree.SlotControl, Target: control.Name, Part: string(layout.PartLabel)})
	if err := tree.Append(s.t, label.ID, slot.ID); err != nil {
		return nil, err
	}
	if control.Mandatory() {
		marker := s.t.Create(tree.KindMarker, "span")
		marker.AddClass(ClassMandatory)
		marker.Text = "*"
		if err := tree.Append(s.t, label.ID, marker.ID); err != nil {
			return nil, err
		}
	}
	return label, nil
}

func (s *session) slot(tag string, key tree.SlotKey) *tree.Node {
	n := s.t.Create(tree.KindSlot, tag)
	n.Slot = &key
	return n
}

func applyConfig(n *tree.Node, c *layout.Config) {
	if n == nil || c == nil {
		return
	}
	if style := c.Style(); style != "" {
		n.Style = style
	}
	n.AddClass(c.Classes()...)
}
