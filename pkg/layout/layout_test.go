package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/schema"
)

func testStructure() *schema.Structure {
	return &schema.Structure{
		Controls: []schema.Control{
			{Name: "name", Type: schema.TypeText},
			{Name: "age", Type: schema.TypeNumeric},
			{Name: "address", Type: schema.TypeReference, Reference: &schema.Structure{
				Controls: []schema.Control{{Name: "street", Type: schema.TypeText}},
			}},
		},
		Sections: []schema.Section{
			{ID: "-person", Controls: []string{"name"}, Subsections: []schema.Section{
				{ID: "--details", Controls: []string{"age"}},
			}},
		},
	}
}

func TestDecode_JSONAndYAML(t *testing.T) {
	jsonDoc := `{"config":{"css":{"style":"form{gap:1rem}"}},"elements":[
	  {"type":"meta","parts":[{"name":"name"},{"name":"language"}]},
	  {"type":"attribute","name":"name","parts":[{"name":"label"},{"name":"input","config":{"css":{"classes":["wide"]}}}]}
	]}`
	yamlDoc := `
config:
  css:
    style: "form{gap:1rem}"
elements:
  - type: meta
    parts: [{name: name}, {name: language}]
  - type: attribute
    name: name
    parts:
      - name: label
      - name: input
        config: {css: {classes: [wide]}}
`
	fromJSON, err := Decode([]byte(jsonDoc), "layout.json")
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	fromYAML, err := Decode([]byte(yamlDoc), "layout.yaml")
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("json/yaml mismatch (-json +yaml):\n%s", diff)
	}
	part, ok := fromJSON.Elements[1].Part(PartInput)
	if !ok || part.Config.Classes()[0] != "wide" {
		t.Fatalf("expected input part classes, got %+v", part)
	}
}

func TestValidate_UnknownReferences(t *testing.T) {
	s := testStructure()
	cases := []struct {
		name string
		l    Layout
		want ConfigurationError
	}{
		{
			name: "unknown field",
			l:    Layout{Elements: []Element{Attribute("name"), Attribute("ghost")}},
			want: ConfigurationError{Kind: RefField, Ref: "ghost", Index: 1},
		},
		{
			name: "unknown section",
			l:    Layout{Elements: []Element{Category("-nowhere")}},
			want: ConfigurationError{Kind: RefSection, Ref: "-nowhere"},
		},
		{
			name: "unknown element type",
			l:    Layout{Elements: []Element{{Type: "banner"}}},
			want: ConfigurationError{Kind: RefElement, Ref: "banner"},
		},
		{
			name: "nested layout",
			l: Layout{Elements: []Element{{
				Type: ElementAttribute, Name: "address", Parts: []Part{{Name: PartInput}},
				Layout: &Layout{Elements: []Element{Attribute("city")}},
			}}},
			want: ConfigurationError{Kind: RefField, Ref: "city", Path: "address"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.l, s)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if diff := cmp.Diff(tc.want, *cfgErr); diff != "" {
				t.Fatalf("error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_NestedSubsection(t *testing.T) {
	l := Layout{Elements: []Element{Category("--details"), Attribute("age")}}
	if err := Validate(l, testStructure()); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDefault(t *testing.T) {
	got := Default(testStructure())
	want := Layout{Elements: []Element{
		Category("-person"),
		Attribute("name"),
		Category("--details"),
		Attribute("age"),
		Attribute("address"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("default layout mismatch (-want +got):\n%s", diff)
	}
}
