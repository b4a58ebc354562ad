package localize

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Attributes the builder puts on entry slots.
const (
	AttrInputID = "data-input-id"
	AttrName    = "name"
)

// Class names shared with the builder.
const (
	ClassInput   = "_input"
	ClassFlagged = "flagged"
)

func resolveMetaName(t *tree.Tree, slot *tree.Node, ctx Context) error {
	tr, ok := ctx.Structure.Translations.Get(ctx.Language)
	if !ok || tr.Name == "" {
		return tree.SetText(t, slot.ID, ctx.missing(*slot.Slot))
	}
	return tree.SetText(t, slot.ID, tr.Name)
}

func resolveMetaDescription(t *tree.Tree, slot *tree.Node, ctx Context) error {
	tr, ok := ctx.Structure.Translations.Get(ctx.Language)
	if !ok || tr.Description == "" {
		return tree.SetText(t, slot.ID, ctx.missing(*slot.Slot))
	}
	return tree.SetText(t, slot.ID, tr.Description)
}

func resolveCategory(t *tree.Tree, slot *tree.Node, ctx Context) error {
	section, ok := ctx.Structure.Section(slot.Slot.Target)
	if !ok {
		return fmt.Errorf("unknown section %q", slot.Slot.Target)
	}
	tr, ok := section.Translations.Get(ctx.Language)
	if !ok || tr.Label == "" {
		return tree.SetText(t, slot.ID, ctx.missing(*slot.Slot))
	}
	return tree.SetText(t, slot.ID, tr.Label)
}

func resolveControl(t *tree.Tree, slot *tree.Node, ctx Context) error {
	control, ok := ctx.Structure.Control(slot.Slot.Target)
	if !ok {
		return fmt.Errorf("unknown control %q", slot.Slot.Target)
	}
	tr, _ := control.Translation(ctx.Language)
	var text string
	switch slot.Slot.Part {
	case "label":
		text = tr.Label
	case "information":
		text = tr.Information
	default:
		return fmt.Errorf("unknown control part %q", slot.Slot.Part)
	}
	if text == "" {
		text = ctx.missing(*slot.Slot)
	}
	return tree.SetText(t, slot.ID, text)
}

func resolveUnit(t *tree.Tree, slot *tree.Node, ctx Context) error {
	unit, ok := ctx.Units[slot.Slot.Target]
	if !ok {
		unit = ctx.missing(*slot.Slot)
	}
	return tree.SetText(t, slot.ID, unit)
}

// resolveEntry rebuilds the options of a select from the control's entry
// codes. The select node itself is created once and reused, so its id stays
// stable across language switches.
func resolveEntry(t *tree.Tree, slot *tree.Node, ctx Context) error {
	control, ok := ctx.Structure.Control(slot.Slot.Target)
	if !ok {
		return fmt.Errorf("unknown control %q", slot.Slot.Target)
	}
	multiple := control.Type == schema.TypeSelectMultiple

	var sel *tree.Node
	current := slot.Values
	if id, found := tree.First(t, slot.ID, tree.ByKind(tree.KindSelect)); found {
		sel = t.Node(id)
		current = sel.Values
	} else {
		sel = t.Create(tree.KindSelect, "select")
		sel.SetAttr(AttrName, control.Name)
		if id := slot.Attr(AttrInputID); id != "" {
			sel.SetAttr("id", id)
		}
		if multiple {
			sel.SetAttr("multiple", "")
		}
		sel.AddClass(ClassInput)
		if err := tree.Append(t, slot.ID, sel.ID); err != nil {
			return err
		}
	}

	tr, _ := control.Translation(ctx.Language)
	var options []tree.NodeID
	if !multiple {
		blank := t.Create(tree.KindOption, "option")
		blank.SetAttr("value", "")
		options = append(options, blank.ID)
	}
	for _, code := range control.EntryCodes {
		opt := t.Create(tree.KindOption, "option")
		opt.SetAttr("value", code)
		label, ok := tr.Entries.Get(code)
		if !ok {
			label = ctx.missing(tree.SlotKey{Kind: tree.SlotEntry, Target: control.Name, Part: code})
		}
		opt.Text = label
		options = append(options, opt.ID)
	}
	if err := tree.ReplaceChildren(t, sel.ID, options...); err != nil {
		return err
	}

	sel.Values = Selection(control, current)
	sel.Required = control.Mandatory() && tree.Visible(t, slot.ID)
	if control.IsFlagged {
		sel.AddClass(ClassFlagged)
	}
	return nil
}

// Selection remaps legacy codes and keeps only known entry codes, in the
// order given. Single selects keep at most one value.
func Selection(control schema.Control, values []string) []string {
	mapping := control.CodeMapping()
	out := make([]string, 0, len(values))
	for _, value := range values {
		if current, ok := mapping[value]; ok {
			value = current
		}
		if !slices.Contains(control.EntryCodes, value) || slices.Contains(out, value) {
			continue
		}
		out = append(out, value)
		if control.Type != schema.TypeSelectMultiple {
			break
		}
	}
	return out
}
