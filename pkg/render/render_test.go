package render_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/render"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(_ context.Context, snap *form.Snapshot, _ render.RenderOptions) ([]byte, error) {
	return []byte(s.name + ":" + snap.Language), nil
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "b"})
	reg.MustRegister(stubRenderer{name: "a"})

	if err := reg.Register(stubRenderer{name: "a"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}
	if diff := cmp.Diff([]string{"a", "b"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if !reg.Has("b") || reg.Has("c") {
		t.Fatalf("Has reported wrong membership")
	}

	out, err := reg.Render(context.Background(), "b", &form.Snapshot{Language: "fr"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "b:fr" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := reg.Render(context.Background(), "c", &form.Snapshot{}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected unknown renderer to fail")
	}
}

func TestTranslate(t *testing.T) {
	opts := render.RenderOptions{
		Translator: render.Catalog{"fr": {render.KeySubmit: "Envoyer"}},
	}
	if got := render.Translate(opts, "fr", render.KeySubmit, "Submit"); got != "Envoyer" {
		t.Fatalf("expected catalog hit, got %q", got)
	}
	if got := render.Translate(opts, "de", render.KeySubmit, "Submit"); got != "Submit" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := render.Translate(render.RenderOptions{}, "de", render.KeyAdd, ""); got != render.KeyAdd {
		t.Fatalf("expected key without fallback, got %q", got)
	}

	var gotErr error
	opts.OnMissing = func(lang, key, fallback string, err error) string {
		gotErr = err
		return fmt.Sprintf("[%s:%s]", lang, key)
	}
	if got := render.Translate(opts, "de", render.KeyRemove, "-"); got != "[de:remove]" {
		t.Fatalf("expected handler output, got %q", got)
	}
	if gotErr == nil {
		t.Fatalf("expected handler to receive the lookup error")
	}

	fn, ok := render.TemplateFuncs(opts)["translate"].(func(string, string, string) string)
	if !ok {
		t.Fatalf("translate helper has unexpected type")
	}
	if got := fn("fr", render.KeySubmit, "Submit"); got != "Envoyer" {
		t.Fatalf("template helper returned %q", got)
	}
}

func TestMapError(t *testing.T) {
	invalid := &capture.ValidationError{Issues: []capture.Issue{
		{Field: "name", Message: capture.MessageRequired},
		{Field: "address.street", Message: capture.MessageRequired},
		{Field: "name", Message: capture.MessageRequired},
	}}

	got := render.MapError(fmt.Errorf("wrapped: %w", invalid))
	want := render.ErrorMapping{Fields: map[string][]string{
		"name":           {capture.MessageRequired},
		"address.street": {capture.MessageRequired},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}

	other := render.MapError(errors.New(" backend down "))
	if diff := cmp.Diff(render.ErrorMapping{Form: []string{"backend down"}}, other); diff != "" {
		t.Fatalf("form-level mapping mismatch (-want +got):\n%s", diff)
	}
	if !render.MapError(nil).Empty() {
		t.Fatalf("nil error should map to an empty mapping")
	}
	if diff := cmp.Diff([]string{"a", "b"}, render.MergeFormErrors([]string{"a", " "}, "b", "a")); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestSortedHiddenFields(t *testing.T) {
	got := render.SortedHiddenFields([]render.HiddenField{
		render.Hidden("version", 4),
		render.CSRFToken(" _csrf ", "token123"),
		render.Hidden("  ", "skip"),
		render.Hidden("version", 5),
	})
	want := []render.HiddenField{
		{Name: "_csrf", Value: "token123"},
		{Name: "version", Value: "5"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden fields mismatch (-want +got):\n%s", diff)
	}
	if render.SortedHiddenFields(nil) != nil {
		t.Fatalf("expected nil for no fields")
	}
}
