package html_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
	"github.com/goliatone/go-formengine/pkg/testsupport"
)

func household(t *testing.T, data map[string]any) *form.Form {
	t.Helper()
	s := testsupport.MustStructure(t, testsupport.HouseholdStructure)
	l := testsupport.MustLayout(t, testsupport.HouseholdLayout)
	f, err := form.New(testsupport.Context(), s, data, l)
	require.NoError(t, err)
	return f
}

func renderForm(t *testing.T, f *form.Form, opts render.RenderOptions, options ...html.Option) string {
	t.Helper()
	r, err := html.New(options...)
	require.NoError(t, err)
	out, err := r.Render(testsupport.Context(), f.Snapshot(), opts)
	require.NoError(t, err)
	return string(out)
}

func TestRender_Fragment(t *testing.T) {
	s := testsupport.MustStructure(t, testsupport.NameStructure)
	f, err := form.New(testsupport.Context(), s, nil, layout.Default(s))
	require.NoError(t, err)

	out := renderForm(t, f, render.RenderOptions{})
	require.True(t, strings.HasPrefix(out, "<form"), out)
	require.Contains(t, out, `onsubmit="return false"`)
	require.Contains(t, out, `data-language="en"`)
	require.Contains(t, out, "Name:")
	require.Contains(t, out, "Provide your name")
	require.Contains(t, out, `<button type="submit">Submit</button>`)
	require.NotContains(t, out, "<!DOCTYPE")
}

func TestRender_StandaloneDocument(t *testing.T) {
	f := household(t, nil)
	out := renderForm(t, f, render.RenderOptions{Standalone: true})
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), out)
	require.Contains(t, out, `<html lang="en">`)
	require.Contains(t, out, "<title>Household</title>")

	out = renderForm(t, f, render.RenderOptions{Standalone: true, Title: "Census <2026>"})
	require.Contains(t, out, "<title>Census &lt;2026&gt;</title>")
}

func TestRender_HiddenFieldsAndFormErrors(t *testing.T) {
	f := household(t, nil)
	out := renderForm(t, f, render.RenderOptions{
		Hidden: []render.HiddenField{render.CSRFToken("_csrf", `t"k`)},
		Errors: render.ErrorMapping{Form: []string{"backend <down>"}},
	})
	require.Contains(t, out, `<input type="hidden" name="_csrf" value="t&#34;k">`)
	require.Contains(t, out, `<li>backend &lt;down&gt;</li>`)
}

func TestRender_ChromeTranslation(t *testing.T) {
	f := household(t, nil)
	require.NoError(t, f.SetLanguage("fr"))
	out := renderForm(t, f, render.RenderOptions{
		Translator: render.Catalog{"fr": {render.KeySubmit: "Envoyer"}},
	})
	require.Contains(t, out, `<button type="submit">Envoyer</button>`)
	require.Contains(t, out, `data-language="fr"`)
	require.Contains(t, out, "Foyer")
}

func TestRender_HiddenControlsKeepTheirNodes(t *testing.T) {
	f := household(t, map[string]any{"married": "N"})
	out := renderForm(t, f, render.RenderOptions{})
	hidden := regexp.MustCompile(`<div [^>]*data-field="spouse"[^>]* hidden>`)
	require.Regexp(t, hidden, out)

	require.NoError(t, f.SetValue(f.Inputs("married")[0], "Y"))
	out = renderForm(t, f, render.RenderOptions{})
	require.NotRegexp(t, hidden, out)
	require.Regexp(t, `<option value="Y" selected>`, out)
}

func TestRender_ValidationMessages(t *testing.T) {
	f := household(t, nil)
	_, err := f.Submit(testsupport.Context())
	require.Error(t, err)

	out := renderForm(t, f, render.RenderOptions{Errors: render.MapError(err)})
	require.Contains(t, out, `class="_subform`)
	require.Equal(t, 1, strings.Count(out, `type="submit"`))
	require.Contains(t, out, `aria-invalid="true"`)
	require.Equal(t, 2, strings.Count(out, `<span class="_message">required</span>`), out)
	require.NotContains(t, out, `<p class="_error">`)

	out = renderForm(t, f, render.RenderOptions{Errors: render.ErrorMapping{
		Fields: map[string][]string{"address.city": {"unknown city"}},
	}})
	require.Contains(t, out, `<p class="_error">unknown city</p>`)
}

func TestRender_TemplatesDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "document.tpl"), []byte("<main>{{ body|safe }}</main>"), 0o644))

	f := household(t, nil)
	out := renderForm(t, f, render.RenderOptions{}, html.WithTemplatesDir(dir))
	require.True(t, strings.HasPrefix(out, "<main><form"), out)
	require.True(t, strings.HasSuffix(out, "</form></main>\n"), out)
}

func TestRender_EmptySnapshot(t *testing.T) {
	r, err := html.New()
	require.NoError(t, err)
	_, err = r.Render(testsupport.Context(), &form.Snapshot{}, render.RenderOptions{})
	require.Error(t, err)
	require.Equal(t, "text/html; charset=utf-8", r.ContentType())
	require.Equal(t, html.Name, r.Name())
}
