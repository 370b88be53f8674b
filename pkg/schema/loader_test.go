package schema_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mespms/clinicalforms/pkg/schema"
)

func TestLoadFS_Embedded(t *testing.T) {
	templates, err := schema.LoadFS(schema.EmbeddedFS())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	// lexical order: initial_evaluation.yaml, soap.json
	if templates[0].Category != schema.CategoryInitial || templates[1].Category != schema.CategorySOAP {
		t.Fatalf("unexpected categories: %s, %s", templates[0].Category, templates[1].Category)
	}
	consent := templates[0].Structure.Sections[2].Fields[0]
	if consent.Type() != schema.FieldTypeCheckbox || !consent.Required {
		t.Fatalf("unexpected consent field: %+v", consent)
	}
}

func TestLoadFS_BareStructure(t *testing.T) {
	fsys := fstest.MapFS{
		"quick.yaml": {Data: []byte("sections:\n  - id: s\n    title: S\n    order: 1\n    fields:\n      - {id: a, type: text, label: A}\n")},
	}
	templates, err := schema.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(templates))
	}
	got := templates[0]
	if got.Name != "quick" || got.Category != schema.CategoryCustom || got.Structure.Version != schema.StructureVersion {
		t.Fatalf("unexpected template: %+v", got)
	}
}

func TestLoadFS_InvalidStructureNamesFile(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json": {Data: []byte(`{"sections":[{"id":"s","title":"S","fields":[{"id":"x","type":"slider","label":"X"}]}]}`)},
	}
	_, err := schema.LoadFS(fsys)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.HasPrefix(err.Error(), "schema: broken.json: ") {
		t.Fatalf("expected error to name the file, got %v", err)
	}
}

func TestParseCategory(t *testing.T) {
	got, err := schema.ParseCategory("follow-up")
	if err != nil || got != schema.CategoryFollowUp {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := schema.ParseCategory("surgery"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewDocument_Format(t *testing.T) {
	cases := []struct {
		location string
		data     string
		want     schema.Format
	}{
		{"a.json", "sections: []", schema.FormatJSON},
		{"a.yml", `{"sections": []}`, schema.FormatYAML},
		{"clinical-templates/4/", ` {"name": "x"}`, schema.FormatJSON},
		{"notes", "name: x", schema.FormatYAML},
	}
	for _, tc := range cases {
		doc, err := schema.NewDocument(tc.location, []byte(tc.data))
		if err != nil {
			t.Fatalf("%s: %v", tc.location, err)
		}
		if doc.Format != tc.want {
			t.Errorf("%s: format %q, want %q", tc.location, doc.Format, tc.want)
		}
	}
	if _, err := schema.NewDocument("empty.json", []byte("  \n")); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
