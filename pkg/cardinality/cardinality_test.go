package cardinality

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

func structureWith(cardinality string) *schema.Structure {
	return &schema.Structure{Controls: []schema.Control{
		{Name: "name", Type: schema.TypeText, Cardinality: cardinality},
	}}
}

func TestExpand(t *testing.T) {
	attr := layout.Attribute("name")
	meta := layout.Meta(layout.PartMetaName)

	cases := []struct {
		name        string
		cardinality string
		want        []layout.Element
	}{
		{"none", "", []layout.Element{meta, attr}},
		{"fixed", "3", []layout.Element{meta, attr, attr, attr}},
		{"zero coerces to one", "0", []layout.Element{meta, attr}},
		{"range", "2-4", []layout.Element{meta, attr, attr, layout.CardinalityManager("name", schema.Range{Min: 2, Max: 4}, attr)}},
		{"range min zero", "-2", []layout.Element{meta, layout.CardinalityManager("name", schema.Range{Max: 2}, attr)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Expand([]layout.Element{meta, attr}, structureWith(tc.cardinality))
			if err != nil {
				t.Fatalf("expand: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("expansion mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpand_UnknownField(t *testing.T) {
	_, err := Expand([]layout.Element{layout.Attribute("ghost")}, structureWith(""))
	if !layout.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func newManager(t *testing.T, rng schema.Range) (*tree.Tree, tree.NodeID) {
	t.Helper()
	tr := tree.New()
	manager, err := NewManager(tr, Payload{Field: "name", Range: rng, Element: layout.Attribute("name")})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := tree.Append(tr, tr.Root(), manager); err != nil {
		t.Fatalf("append: %v", err)
	}
	return tr, manager
}

func buildText(tr *tree.Tree) InstanceFunc {
	return func(p Payload) (tree.NodeID, error) {
		n := tr.Create(tree.KindContainer, "div")
		n.SetAttr(AttrField, p.Field)
		return n.ID, nil
	}
}

func triggerHidden(t *testing.T, tr *tree.Tree, manager tree.NodeID) bool {
	t.Helper()
	trigger, ok := Trigger(tr, manager)
	if !ok {
		t.Fatalf("missing trigger")
	}
	return tr.Node(trigger).Hidden
}

func TestAddRemove_RangeOneToThree(t *testing.T) {
	tr, manager := newManager(t, schema.Range{Min: 1, Max: 3})
	if triggerHidden(t, tr, manager) {
		t.Fatalf("trigger should start visible")
	}

	_, first, err := Add(tr, manager, buildText(tr))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if triggerHidden(t, tr, manager) {
		t.Fatalf("trigger hidden too early")
	}
	if _, _, err := Add(tr, manager, buildText(tr)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !triggerHidden(t, tr, manager) {
		t.Fatalf("trigger should hide at max")
	}
	if _, _, err := Add(tr, manager, buildText(tr)); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}

	owner, err := Remove(tr, first)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if owner != manager {
		t.Fatalf("remove returned %d, want %d", owner, manager)
	}
	if got := Count(tr, manager); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
	if triggerHidden(t, tr, manager) {
		t.Fatalf("trigger should show again below max")
	}
	if _, err := Remove(tr, first); !errors.Is(err, ErrUnknownInstance) {
		t.Fatalf("expected ErrUnknownInstance, got %v", err)
	}
}

func TestAdd_InsertsBeforeTrigger(t *testing.T) {
	tr, manager := newManager(t, schema.Range{Min: 0})
	var ids []tree.NodeID
	for i := 0; i < 5; i++ {
		id, _, err := Add(tr, manager, buildText(tr))
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	trigger, _ := Trigger(tr, manager)
	want := append(ids, trigger)
	if diff := cmp.Diff(want, tr.Node(manager).Children); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if triggerHidden(t, tr, manager) {
		t.Fatalf("unbounded trigger should never hide")
	}
}

func TestFixedSizeRangeStartsFull(t *testing.T) {
	tr, manager := newManager(t, schema.Range{Min: 2, Max: 2})
	if !triggerHidden(t, tr, manager) {
		t.Fatalf("expected trigger hidden when max equals min")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	tr := tree.New()
	n := tr.Create(tree.KindButton, "button")
	in := Payload{
		Field:   "name",
		Range:   schema.Range{Min: 1, Max: 3},
		Element: layout.Attribute("name", layout.PartLabel, layout.PartInput),
		Config:  map[string]string{"showFlagged": "true"},
	}
	if err := EncodePayload(n, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodePayload(n)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_RequiresManager(t *testing.T) {
	tr := tree.New()
	if _, _, err := Add(tr, tr.Root(), buildText(tr)); !errors.Is(err, ErrNotManager) {
		t.Fatalf("expected ErrNotManager, got %v", err)
	}
}
