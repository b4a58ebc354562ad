package form

import (
	"context"
	"fmt"
	"slices"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/builder"
	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/cardinality"
	"github.com/goliatone/go-formengine/pkg/condition"
	"github.com/goliatone/go-formengine/pkg/localize"
	"github.com/goliatone/go-formengine/pkg/tree"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

func (f *Form) node(id tree.NodeID) (*tree.Node, error) {
	n := f.tree.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n, nil
}

// fieldOf returns the field of the control container holding id.
func (f *Form) fieldOf(id tree.NodeID) string {
	container, ok := tree.Closest(f.tree, id, tree.ByClass(builder.ClassControl))
	if !ok {
		return ""
	}
	return f.tree.Node(container).Attr(builder.AttrField)
}

// inputType is the declared type of an input, masked or not.
func inputType(n *tree.Node) string {
	if typ := n.Attr(builder.AttrType); typ != "" {
		return typ
	}
	return n.Attr("type")
}

// SetValue sets the value of an input or select and re-evaluates the
// fields depending on it. Setting the language select switches language.
func (f *Form) SetValue(id tree.NodeID, values ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node(id)
	if err != nil {
		return err
	}
	if n.Attr("id") == builder.LanguageSelectID {
		if len(values) == 0 {
			return fmt.Errorf("%w: language select needs a value", ErrNotInput)
		}
		return f.setLanguage(values[0])
	}

	switch n.Kind {
	case tree.KindInput:
		switch inputType(n) {
		case "checkbox":
			return f.setChecked(n, len(values) > 0 && builder.Truthy(values[0]))
		case "file":
			return fmt.Errorf("%w: use AttachFiles for %d", ErrNotInput, id)
		}
		n.Values = nil
		if len(values) > 0 {
			n.Values = []string{values[0]}
		}
	case tree.KindSelect:
		control, ok := f.structure.Control(n.Attr("name"))
		if !ok {
			return fmt.Errorf("%w: %d", ErrNotInput, id)
		}
		n.Values = localize.Selection(control, values)
	default:
		return fmt.Errorf("%w: %d is a %s", ErrNotInput, id, n.Kind)
	}
	n.Invalid, n.Message = false, ""
	f.changed(f.fieldOf(id))
	return nil
}

// SetChecked checks or unchecks a checkbox. On a flagged toggle it reveals
// or masks the bound input.
func (f *Form) SetChecked(id tree.NodeID, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node(id)
	if err != nil {
		return err
	}
	if n.Kind == tree.KindToggle {
		return f.toggleFlagged(n, checked)
	}
	if n.Kind != tree.KindInput || inputType(n) != "checkbox" {
		return fmt.Errorf("%w: %d is not a checkbox", ErrNotInput, id)
	}
	return f.setChecked(n, checked)
}

func (f *Form) setChecked(n *tree.Node, checked bool) error {
	n.Checked = checked
	n.Invalid, n.Message = false, ""
	f.changed(f.fieldOf(n.ID))
	return nil
}

// ToggleFlagged reveals or masks a flagged input. id may be the toggle or
// the input itself.
func (f *Form) ToggleFlagged(id tree.NodeID, reveal bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node(id)
	if err != nil {
		return err
	}
	if n.Kind == tree.KindInput {
		toggle, ok := tree.First(f.tree, f.tree.Root(), tree.All(tree.ByKind(tree.KindToggle), tree.ByAttr(builder.AttrTarget, n.Attr("id"))))
		if !ok {
			return fmt.Errorf("%w: %d is not flagged", ErrNotInput, id)
		}
		n = f.tree.Node(toggle)
	}
	if n.Kind != tree.KindToggle {
		return fmt.Errorf("%w: %d is not a flagged toggle", ErrNotInput, id)
	}
	return f.toggleFlagged(n, reveal)
}

func (f *Form) toggleFlagged(toggle *tree.Node, reveal bool) error {
	target, ok := tree.First(f.tree, f.tree.Root(), tree.All(tree.ByKind(tree.KindInput), tree.ByAttr("id", toggle.Attr(builder.AttrTarget))))
	if !ok {
		return fmt.Errorf("%w: toggle %d has no target", ErrUnknownNode, toggle.ID)
	}
	if err := builder.Mask(f.tree, target, !reveal); err != nil {
		return err
	}
	toggle.Checked = reveal
	return nil
}

// SetWidget hands content to the capture widget of a widget node, as a
// device would.
func (f *Form) SetWidget(id tree.NodeID, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.widgets[id]
	if !ok {
		return fmt.Errorf("%w: %d has no widget", ErrNotInput, id)
	}
	setter, ok := w.(widgets.Setter)
	if !ok {
		return fmt.Errorf("%w: widget %s takes no content", ErrNotInput, w.Name())
	}
	setter.Set(value)
	f.changed(f.fieldOf(id))
	return nil
}

// AttachFiles replaces the files of a file input. The files are read in the
// background; Submit waits for the reads. Without the multiple attribute
// only the first file is kept.
func (f *Form) AttachFiles(id tree.NodeID, files ...Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node(id)
	if err != nil {
		return err
	}
	if n.Kind != tree.KindInput || inputType(n) != "file" {
		return fmt.Errorf("%w: %d is not a file input", ErrNotInput, id)
	}
	if _, multiple := n.Attrs["multiple"]; !multiple && len(files) > 1 {
		files = files[:1]
	}
	f.uploads.start(id, slices.Clone(files))
	n.Invalid, n.Message = false, ""
	return nil
}

// Add appends an instance to a cardinality manager and returns its id. The
// new subtree is localized and bound in place.
func (f *Form) Add(ctx context.Context, manager tree.NodeID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.node(manager)
	if err != nil {
		return "", err
	}
	instance, id, err := cardinality.Add(f.tree, manager, f.instance(ctx, nil))
	if err != nil {
		return "", fmt.Errorf("form: add: %w", err)
	}
	f.bindWidgets(instance)
	if err := f.localize(instance); err != nil {
		return id, fmt.Errorf("form: add: %w", err)
	}
	field := n.Attr(cardinality.AttrManager)
	f.syncRequired(field)
	f.changed(field)
	return id, nil
}

// Remove deletes one instance added through a cardinality manager.
func (f *Form) Remove(instanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	manager, err := cardinality.Remove(f.tree, instanceID)
	if err != nil {
		return fmt.Errorf("form: remove: %w", err)
	}
	f.prune()
	f.changed(f.tree.Node(manager).Attr(cardinality.AttrManager))
	return nil
}

// prune forgets widgets, uploads and sub-forms whose nodes are gone.
func (f *Form) prune() {
	live := func(id tree.NodeID) bool { return f.tree.Node(id) != nil }
	for id := range f.widgets {
		if !live(id) {
			delete(f.widgets, id)
		}
	}
	f.uploads.drop(live)
	f.subMu.Lock()
	defer f.subMu.Unlock()
	for id := range f.subforms {
		if !live(id) {
			delete(f.subforms, id)
		}
	}
}

// changed re-evaluates the conditions that read field.
func (f *Form) changed(field string) {
	if field == "" || f.conditions == nil || len(f.conditions.Dependents(field)) == 0 {
		return
	}
	transitions, err := f.conditions.Changed(field, capture.Capture(f.source()))
	f.logConditionError(err)
	f.apply(transitions)
}

func (f *Form) apply(transitions []condition.Transition) {
	for _, tr := range transitions {
		hidden := tr.To == condition.Hidden
		for _, container := range capture.Containers(f.tree, tr.Field) {
			_ = tree.SetHidden(f.tree, container, hidden)
		}
		if manager, ok := cardinality.Manager(f.tree, f.tree.Root(), tr.Field); ok {
			_ = tree.SetHidden(f.tree, manager, hidden)
		}
		f.syncRequired(tr.Field)
		if tr.From != tr.To {
			logger.Verbose("form: field", tr.Field, "is now", tr.To)
		}
	}
}

// syncRequired marks the inputs of field required only while the field is
// Mandatory and shown.
func (f *Form) syncRequired(field string) {
	control, ok := f.structure.Control(field)
	if !ok {
		return
	}
	hidden := f.hidden(field)
	for _, container := range capture.Containers(f.tree, field) {
		n, ok := capture.Input(f.tree, container, field)
		if !ok || (n.Kind != tree.KindInput && n.Kind != tree.KindSelect) {
			continue
		}
		n.Required = control.Mandatory() && !hidden && tree.Visible(f.tree, container)
	}
}
