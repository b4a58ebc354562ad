package tree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T) (*Tree, NodeID, NodeID, NodeID) {
	t.Helper()
	tr := New()
	section := tr.Create(KindContainer, "div")
	label := tr.Create(KindLabel, "label")
	input := tr.Create(KindInput, "input")
	for _, step := range []struct{ parent, child NodeID }{
		{tr.Root(), section.ID},
		{section.ID, label.ID},
		{section.ID, input.ID},
	} {
		if err := Append(tr, step.parent, step.child); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return tr, section.ID, label.ID, input.ID
}

func TestAppendInsertRemove(t *testing.T) {
	tr, section, label, input := build(t)

	marker := tr.Create(KindMarker, "span")
	if err := InsertBefore(tr, input, marker.ID); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if diff := cmp.Diff([]NodeID{label, marker.ID, input}, tr.Node(section).Children); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}

	if err := Append(tr, section, marker.ID); !errors.Is(err, ErrAttached) {
		t.Fatalf("expected ErrAttached, got %v", err)
	}

	before := tr.Len()
	if err := Remove(tr, section); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := tr.Len(); got != before-4 {
		t.Fatalf("expected subtree removal, len %d -> %d", before, got)
	}
	if tr.Node(input) != nil {
		t.Fatalf("expected descendants to be deleted")
	}
	if err := Remove(tr, tr.Root()); !errors.Is(err, ErrRoot) {
		t.Fatalf("expected ErrRoot, got %v", err)
	}
}

func TestAppend_RejectsCycle(t *testing.T) {
	tr := New()
	outer := tr.Create(KindContainer, "div")
	inner := tr.Create(KindContainer, "div")
	if err := Append(tr, outer.ID, inner.ID); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := Append(tr, inner.ID, outer.ID); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestVisible(t *testing.T) {
	tr, section, _, input := build(t)
	if !Visible(tr, input) {
		t.Fatalf("expected input to be visible")
	}
	if err := SetHidden(tr, section, true); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if Visible(tr, input) {
		t.Fatalf("expected hidden ancestor to hide input")
	}
}

func TestFindFirstClosest(t *testing.T) {
	tr, section, label, input := build(t)
	tr.Node(input).SetAttr("name", "age")
	tr.Node(section).AddClass("_control", "_control")

	if diff := cmp.Diff([]NodeID{input}, Find(tr, tr.Root(), ByAttr("name", "age"))); diff != "" {
		t.Fatalf("find mismatch (-want +got):\n%s", diff)
	}
	if got, ok := First(tr, tr.Root(), ByKind(KindLabel, KindInput)); !ok || got != label {
		t.Fatalf("first = %d, %v", got, ok)
	}
	if got, ok := Closest(tr, input, ByClass("_control")); !ok || got != section {
		t.Fatalf("closest = %d, %v", got, ok)
	}
	if diff := cmp.Diff([]string{"_control"}, tr.Node(section).Classes); diff != "" {
		t.Fatalf("classes mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceChildren(t *testing.T) {
	tr, section, label, input := build(t)
	fresh := tr.Create(KindText, "span")
	if err := ReplaceChildren(tr, section, input, fresh.ID); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if diff := cmp.Diff([]NodeID{input, fresh.ID}, tr.Node(section).Children); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	if tr.Node(label) != nil {
		t.Fatalf("expected replaced child to be deleted")
	}
}

func TestClone_IsIndependent(t *testing.T) {
	tr, _, _, input := build(t)
	tr.Node(input).Values = []string{"a"}
	cp := tr.Clone()
	cp.Node(input).Values[0] = "b"
	cp.Node(input).SetAttr("x", "y")
	if tr.Node(input).Value() != "a" || tr.Node(input).Attr("x") != "" {
		t.Fatalf("clone shares state with original")
	}
}
