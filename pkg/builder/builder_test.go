package builder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

func sample() *schema.Structure {
	return &schema.Structure{
		Translations: schema.OrderedOf(
			schema.Pair[schema.MetaTranslation]{Key: "en", Value: schema.MetaTranslation{Name: "Sample"}},
			schema.Pair[schema.MetaTranslation]{Key: "de", Value: schema.MetaTranslation{Name: "Beispiel"}},
		),
		Controls: []schema.Control{
			{Name: "name", Type: schema.TypeText, Conformance: schema.ConformanceMandatory},
			{Name: "born", Type: schema.TypeDate, Format: "YYYY-MM-DD"},
			{Name: "colour", Type: schema.TypeSelect, EntryCodes: []string{"r", "g"}},
			{Name: "secret", Type: schema.TypeText, IsFlagged: true},
			{Name: "photo", Type: schema.TypeBinary, Format: "image/*"},
			{Name: "sign", Type: schema.TypeBinary, Format: "image/signature"},
			{Name: "agree", Type: schema.TypeCheckbox},
			{Name: "phones", Type: schema.TypeText, Cardinality: "2"},
		},
		Sections: []schema.Section{{ID: "-a", Subsections: []schema.Section{{ID: "--a", Controls: []string{"name"}}}}},
	}
}

func findOne(t *testing.T, tr *tree.Tree, match func(*tree.Node) bool) *tree.Node {
	t.Helper()
	id, ok := tree.First(tr, tr.Root(), match)
	if !ok {
		t.Fatalf("node not found")
	}
	return tr.Node(id)
}

func TestBuild_Attribute(t *testing.T) {
	b := New(sample())
	l := layout.Layout{Elements: []layout.Element{layout.Attribute("name")}}
	tr, err := b.Build(context.Background(), l, map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	containers := tree.Find(tr, tr.Root(), tree.ByClass(ClassControl))
	if len(containers) != 1 {
		t.Fatalf("expected one control container, got %d", len(containers))
	}
	container := tr.Node(containers[0])
	if container.Attr(AttrField) != "name" {
		t.Fatalf("container field = %q", container.Attr(AttrField))
	}

	input := findOne(t, tr, tree.ByKind(tree.KindInput))
	if input.Attr("type") != "text" || !input.Required {
		t.Fatalf("unexpected input %+v", input)
	}
	if diff := cmp.Diff([]string{"Ada"}, input.Values); diff != "" {
		t.Fatalf("prefill mismatch (-want +got):\n%s", diff)
	}
	label := findOne(t, tr, tree.ByKind(tree.KindLabel))
	if label.Attr("for") != input.Attr("id") {
		t.Fatalf("label for=%q, input id=%q", label.Attr("for"), input.Attr("id"))
	}
	marker := findOne(t, tr, tree.ByClass(ClassMandatory))
	if marker.Text != "*" {
		t.Fatalf("marker text = %q", marker.Text)
	}
	slots := tree.Find(tr, tr.Root(), tree.ByKind(tree.KindSlot))
	var keys []string
	for _, id := range slots {
		keys = append(keys, tr.Node(id).Slot.String())
		if tr.Node(id).Text != "" {
			t.Fatalf("slot %s should start empty", tr.Node(id).Slot)
		}
	}
	if diff := cmp.Diff([]string{"control[name].label", "control[name].information"}, keys); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	last := tr.Node(tr.Root()).Children
	if tr.Node(last[len(last)-1]).Kind != tree.KindSubmit {
		t.Fatalf("submit should be the last root child")
	}
}

func TestBuild_InputVariants(t *testing.T) {
	l := layout.Layout{Elements: []layout.Element{
		layout.Attribute("born", layout.PartInput),
		layout.Attribute("colour", layout.PartInput),
		layout.Attribute("secret", layout.PartInput),
		layout.Attribute("photo", layout.PartInput),
		layout.Attribute("sign", layout.PartInput),
		layout.Attribute("agree", layout.PartInput),
	}}
	tr, err := New(sample(), WithWidgets(widgets.NewRegistry())).Build(context.Background(), l, map[string]any{
		"colour": "g",
		"agree":  true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	born := findOne(t, tr, tree.ByAttr("name", "born"))
	if born.Attr("placeholder") != "YYYY-MM-DD" {
		t.Fatalf("date placeholder = %q", born.Attr("placeholder"))
	}

	entry := findOne(t, tr, func(n *tree.Node) bool { return n.Slot != nil && n.Slot.Kind == tree.SlotEntry })
	if diff := cmp.Diff([]string{"g"}, entry.Values); diff != "" {
		t.Fatalf("entry prefill mismatch (-want +got):\n%s", diff)
	}

	secret := findOne(t, tr, tree.ByAttr("name", "secret"))
	if secret.Attr("type") != "password" || secret.Attr(AttrType) != "text" {
		t.Fatalf("flagged input should start masked, got %v", secret.Attrs)
	}
	toggle := findOne(t, tr, tree.ByClass(ClassToggle))
	if toggle.Attr(AttrTarget) != secret.Attr("id") || toggle.Checked {
		t.Fatalf("unexpected toggle %+v", toggle)
	}
	if err := Mask(tr, secret.ID, false); err != nil {
		t.Fatalf("unmask: %v", err)
	}
	if secret.Attr("type") != "text" {
		t.Fatalf("unmasked type = %q", secret.Attr("type"))
	}

	photo := findOne(t, tr, tree.ByAttr("name", "photo"))
	if photo.Attr("type") != "file" || photo.Attr("accept") != "image/*" {
		t.Fatalf("unexpected binary input %v", photo.Attrs)
	}
	sign := findOne(t, tr, tree.ByAttr("name", "sign"))
	if sign.Kind != tree.KindWidget || sign.Attr(AttrWidget) != widgets.WidgetSignature {
		t.Fatalf("signature control should render a widget, got %+v", sign)
	}
	agree := findOne(t, tr, tree.ByAttr("name", "agree"))
	if !agree.Checked {
		t.Fatalf("checkbox should be checked from prefill")
	}
}

func TestBuild_ShowFlagged(t *testing.T) {
	l := layout.Layout{Elements: []layout.Element{layout.Attribute("secret", layout.PartInput)}}
	tr, err := New(sample(), WithShowFlagged(true)).Build(context.Background(), l, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	secret := findOne(t, tr, tree.ByAttr("name", "secret"))
	if secret.Attr("type") != "text" {
		t.Fatalf("flagged input should start revealed, got %q", secret.Attr("type"))
	}
}

func TestBuild_MetaCategoryAndStyle(t *testing.T) {
	l := layout.Layout{
		Config: &layout.Config{CSS: &layout.CSS{Style: "._control{margin:0}", Classes: []string{"compact"}}},
		Elements: []layout.Element{
			layout.Meta(),
			layout.Category("--a"),
			{Type: layout.ElementAttribute, Name: "name", Parts: []layout.Part{{Name: layout.PartInput}}, Config: &layout.Config{CSS: &layout.CSS{Classes: []string{"wide"}}}},
		},
	}
	tr, err := New(sample(), WithLanguage("de")).Build(context.Background(), l, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	root := tr.Node(tr.Root())
	if !root.HasClass("compact") {
		t.Fatalf("root should carry layout classes")
	}
	if style := tr.Node(root.Children[0]); style.Kind != tree.KindStyle || style.Text != "._control{margin:0}" {
		t.Fatalf("first child should be the style node, got %+v", style)
	}

	sel := findOne(t, tr, tree.ByAttr("id", LanguageSelectID))
	if diff := cmp.Diff([]string{"de"}, sel.Values); diff != "" {
		t.Fatalf("language select mismatch (-want +got):\n%s", diff)
	}
	if len(sel.Children) != 2 || tr.Node(sel.Children[1]).Text != "Deutsch" {
		t.Fatalf("language options should use native names")
	}

	header := findOne(t, tr, tree.ByKind(tree.KindHeader))
	if header.Tag != "h2" {
		t.Fatalf("header tag = %q, want h2", header.Tag)
	}
	control := findOne(t, tr, tree.ByClass(ClassControl))
	if !control.HasClass("wide") {
		t.Fatalf("element classes not applied")
	}
}

func TestBuild_FixedCardinalityUsesListItems(t *testing.T) {
	l := layout.Layout{Elements: []layout.Element{layout.Attribute("phones", layout.PartInput)}}
	tr, err := New(sample()).Build(context.Background(), l, map[string]any{"phones": []any{"1", "2"}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	var got []string
	for _, id := range tree.Find(tr, tr.Root(), tree.ByKind(tree.KindInput)) {
		got = append(got, tr.Node(id).Value())
	}
	if diff := cmp.Diff([]string{"1", "2"}, got); diff != "" {
		t.Fatalf("instance values mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ConfigurationError(t *testing.T) {
	l := layout.Layout{Elements: []layout.Element{layout.Attribute("missing")}}
	_, err := New(sample()).Build(context.Background(), l, nil)
	var cfgErr *layout.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Ref != "missing" {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBuild_NestedJobs(t *testing.T) {
	child := &schema.Structure{Controls: []schema.Control{{Name: "street", Type: schema.TypeText}}}
	s := &schema.Structure{Controls: []schema.Control{
		{Name: "home", Type: schema.TypeReference, Reference: child},
		{Name: "work", Type: schema.TypeReference, Reference: child},
	}}
	var (
		mu   sync.Mutex
		seen = map[string]any{}
	)
	nested := func(ctx context.Context, req NestedRequest) error {
		mu.Lock()
		defer mu.Unlock()
		seen[req.Control.Name] = req.Data
		return nil
	}
	l := layout.Default(s)
	tr, err := New(s, WithNested(nested)).Build(context.Background(), l, map[string]any{
		"home": map[string]any{"street": "Main"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(tree.Find(tr, tr.Root(), tree.ByKind(tree.KindReference))) != 2 {
		t.Fatalf("expected two reference nodes")
	}
	want := map[string]any{"home": map[string]any{"street": "Main"}, "work": nil}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Fatalf("nested requests mismatch (-want +got):\n%s", diff)
	}

	boom := errors.New("boom")
	_, err = New(s, WithNested(func(ctx context.Context, req NestedRequest) error {
		if req.Control.Name == "work" {
			return boom
		}
		<-ctx.Done()
		return ctx.Err()
	})).Build(context.Background(), l, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected nested error, got %v", err)
	}
}

func TestValues(t *testing.T) {
	cases := []struct {
		in   any
		want []string
	}{
		{nil, nil},
		{"a", []string{"a"}},
		{[]any{"a", 2}, []string{"a", "2"}},
		{true, []string{"true"}},
		{3.5, []string{"3.5"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Values(tc.in)); diff != "" {
			t.Errorf("Values(%v) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
	if !Truthy("yes") || Truthy("false") || Truthy(nil) {
		t.Errorf("unexpected truthiness")
	}
}
