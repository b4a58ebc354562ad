package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	passwords    []string
	infoMessages []string
	messages     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	s.messages = append(s.messages, cfg.Message)
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func household(t *testing.T, data map[string]any) *form.Form {
	t.Helper()
	s := testsupport.MustStructure(t, testsupport.HouseholdStructure)
	l := testsupport.MustLayout(t, testsupport.HouseholdLayout)
	f, err := form.New(testsupport.Context(), s, data, l)
	require.NoError(t, err)
	return f
}

func TestFill_AddAndRemoveInstances(t *testing.T) {
	s := testsupport.MustStructure(t, testsupport.NameStructure)
	f, err := form.New(testsupport.Context(), s, nil, layout.Default(s))
	require.NoError(t, err)

	driver := &stubDriver{
		inputs:  []string{"Ada", "Bob", ""},
		confirm: []bool{true, true, true, false},
	}
	out, err := New(WithPromptDriver(driver)).Fill(testsupport.Context(), f)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":["Ada","Bob"]}`, string(out))
	require.Equal(t, []string{
		"Name:",
		"Add another Name?",
		"Name:",
		"Add another Name?",
		"Name:",
		"Remove this Name?",
		"Add another Name?",
	}, driver.messages)
}

func TestFill_RetriesInvalidControls(t *testing.T) {
	f := household(t, nil)
	driver := &stubDriver{
		selectIdx: []int{0, 2},
		inputs:    []string{"", "41", "Main", "Paris", "", "Ada"},
		multiIdx:  [][]int{{0, 2}},
		passwords: []string{"123"},
	}
	out, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "})).Fill(testsupport.Context(), f)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	require.Equal(t, "Ada", got["name"])
	require.Equal(t, "N", got["married"])
	require.Equal(t, "41", got["age"])
	require.Equal(t, []any{"a", "c"}, got["hobbies"])
	require.Equal(t, "123", got["ssn"])
	require.Equal(t, map[string]any{"street": "Main", "city": "Paris"}, got["address"])
	_, hasSpouse := got["spouse"]
	require.False(t, hasSpouse)
	require.Contains(t, driver.infoMessages, "! name: "+capture.MessageRequired)
}

func TestFill_LanguagePrompt(t *testing.T) {
	f := household(t, nil)
	driver := &stubDriver{selectIdx: []int{1}}
	_, err := New(WithPromptDriver(driver)).Fill(testsupport.Context(), f)
	require.Error(t, err)
	require.Equal(t, "fr", f.Language())
	require.Equal(t, []string{"Language"}, driver.messages)
}

func TestFill_MaxAttempts(t *testing.T) {
	s := testsupport.MustStructure(t, testsupport.NameStructure)
	f, err := form.New(testsupport.Context(), s, nil, layout.Default(s))
	require.NoError(t, err)

	driver := &stubDriver{inputs: []string{""}, confirm: []bool{false}}
	_, err = New(WithPromptDriver(driver), WithMaxAttempts(1)).Fill(testsupport.Context(), f)
	require.ErrorIs(t, err, ErrTooManyAttempts)
	var invalid *capture.ValidationError
	require.ErrorAs(t, err, &invalid)
}

func TestFill_SubmitTransformer(t *testing.T) {
	s := testsupport.MustStructure(t, testsupport.NameStructure)
	f, err := form.New(testsupport.Context(), s, nil, layout.Default(s))
	require.NoError(t, err)

	driver := &stubDriver{inputs: []string{"Ada"}, confirm: []bool{false}}
	r := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatPrettyText),
		WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			values["source"] = "tui"
			return values, nil
		}),
	)
	out, err := r.Fill(testsupport.Context(), f)
	require.NoError(t, err)
	require.Equal(t, "name[0]=Ada\nsource=tui\n", string(out))
	require.Equal(t, "text/plain", r.OutputContentType())
}

func TestRender_Summary(t *testing.T) {
	f := household(t, map[string]any{"name": "Ada", "married": "Y", "hobbies": []string{"b"}, "ssn": "123"})
	out, err := New().Render(testsupport.Context(), f.Snapshot(), render.RenderOptions{
		Errors: render.ErrorMapping{Fields: map[string][]string{"address.street": {"unknown street"}}},
	})
	require.NoError(t, err)
	text := string(out)
	require.True(t, strings.HasPrefix(text, "Household [en]\n"), text)
	require.Contains(t, text, "Name: Ada\n")
	require.Contains(t, text, "Married Yes\n")
	require.Contains(t, text, "Hobbies Books\n")
	require.Contains(t, text, "Social security number ***\n")
	require.Contains(t, text, "\n  Street \n    ! unknown street\n")
}

func TestSerializeFormats(t *testing.T) {
	values := map[string]any{
		"name":    "Ada",
		"hobbies": []string{"a", "c"},
		"address": capture.Data{"city": "Paris"},
		"people":  []capture.Data{{"age": "4"}},
	}

	form := flattenForm(values)
	if diff := cmp.Diff("address.city=Paris&hobbies%5B%5D=a&hobbies%5B%5D=c&name=Ada&people%5B0%5D.age=4", form); diff != "" {
		t.Fatalf("form encoding mismatch (-want +got):\n%s", diff)
	}

	pretty := prettyPrint(values)
	want := "address.city=Paris\nhobbies[0]=a\nhobbies[1]=c\nname=Ada\npeople[0].age=4\n"
	if diff := cmp.Diff(want, pretty); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
}
