package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

const structureJSON = `{
  "translations": {
    "fr": {"name": "Personne", "description": "Identité"},
    "en": {"name": "Person", "description": "Identity"}
  },
  "controls": [
    {
      "name": "name",
      "type": "Text",
      "conformance": "M",
      "cardinality": "1-3",
      "translations": {"en": {"label": "Name:", "information": "Provide your name"}}
    },
    {
      "name": "colour",
      "type": "Select",
      "entryCodes": ["r", "g"],
      "entryCodesMapping": ["red:r"],
      "translations": {"en": {"label": "Colour", "entries": {"r": "Red", "g": "Green"}}}
    }
  ],
  "sections": [{"id": "-identity", "translations": {"en": {"label": "Identity"}}, "controls": ["name"]}]
}`

func TestDecode_PreservesLanguageOrder(t *testing.T) {
	s, err := Decode([]byte(structureJSON), "inline.json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"fr", "en"}, s.Languages()); diff != "" {
		t.Fatalf("languages mismatch (-want +got):\n%s", diff)
	}

	colour, ok := s.Control("colour")
	if !ok {
		t.Fatalf("expected colour control")
	}
	tr, _ := colour.Translation("en")
	if diff := cmp.Diff([]string{"r", "g"}, tr.Entries.Keys()); diff != "" {
		t.Fatalf("entry order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"red": "r"}, colour.CodeMapping()); diff != "" {
		t.Fatalf("code mapping mismatch (-want +got):\n%s", diff)
	}

	name, _ := s.Control("name")
	if !name.Mandatory() {
		t.Fatalf("expected name to be mandatory")
	}
}

func TestDecode_YAMLPreservesOrder(t *testing.T) {
	doc := `
translations:
  de: {name: Person}
  en: {name: Person}
  fr: {name: Personne}
controls:
  - name: agree
    type: checkbox
    conformance: Optional
    translations:
      en: {label: Agree}
`
	s, err := Decode([]byte(doc), "inline.yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"de", "en", "fr"}, s.Languages()); diff != "" {
		t.Fatalf("languages mismatch (-want +got):\n%s", diff)
	}
	if s.Controls[0].Type != TypeCheckbox {
		t.Fatalf("expected case-insensitive type, got %q", s.Controls[0].Type)
	}
}

func TestOrdered_RoundTrip(t *testing.T) {
	in := OrderedOf(Pair[string]{"z", "last"}, Pair[string]{"a", "first"})

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"z":"last","a":"first"}` {
		t.Fatalf("unexpected json %s", raw)
	}

	out, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("yaml marshal: %v", err)
	}
	var back Ordered[string]
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a"}, back.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"controls":[{"name":"x","type":"Colour"}]}`), "bad.json")
	if err == nil || !strings.Contains(err.Error(), "unknown field type") {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	s := &Structure{
		Controls: []Control{
			{Name: "a", Type: TypeText},
			{Name: "a", Type: TypeText},
			{Name: "b", Type: TypeText, Dependencies: []string{"missing"}},
			{Name: "c", Type: TypeReference},
		},
	}
	err := Validate(s)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{`duplicate control "a"`, `unknown control "missing"`, `"c" has no nested structure`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestParseCardinality(t *testing.T) {
	cases := []struct {
		raw  string
		want Cardinality
	}{
		{"", Cardinality{Kind: CardinalityNone}},
		{"3", Cardinality{Kind: CardinalityFixed, Count: 3}},
		{"0", Cardinality{Kind: CardinalityFixed, Count: 1}},
		{"many", Cardinality{Kind: CardinalityFixed, Count: 1}},
		{"1-3", Cardinality{Kind: CardinalityRange, Range: Range{Min: 1, Max: 3}}},
		{"1-", Cardinality{Kind: CardinalityRange, Range: Range{Min: 1}}},
		{"-3", Cardinality{Kind: CardinalityRange, Range: Range{Max: 3}}},
		{"3-1", Cardinality{Kind: CardinalityFixed, Count: 1}},
		{"a-b", Cardinality{Kind: CardinalityFixed, Count: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, ParseCardinality(tc.raw)); diff != "" {
				t.Fatalf("cardinality mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSectionDepth(t *testing.T) {
	cases := map[string]int{"identity": 1, "-identity": 1, "--address": 2, "--------deep": 6}
	for id, want := range cases {
		if got := (Section{ID: id}).Depth(); got != want {
			t.Errorf("depth(%q) = %d, want %d", id, got, want)
		}
	}
}

type typeNames struct{}

func (typeNames) Text(Control) string           { return "text" }
func (typeNames) Numeric(Control) string        { return "numeric" }
func (typeNames) Checkbox(Control) string       { return "checkbox" }
func (typeNames) Date(Control) string           { return "date" }
func (typeNames) Select(Control) string         { return "select" }
func (typeNames) SelectMultiple(Control) string { return "multi" }
func (typeNames) Binary(Control) string         { return "binary" }
func (typeNames) Reference(Control) string      { return "reference" }

func TestVisit(t *testing.T) {
	got, err := Visit[string](Control{Type: TypeSelectMultiple}, typeNames{})
	if err != nil || got != "multi" {
		t.Fatalf("visit = %q, %v", got, err)
	}
	if _, err := Visit[string](Control{Name: "x", Type: "Colour"}, typeNames{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
