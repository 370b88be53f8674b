package schema_test

import (
	"errors"
	"testing"

	"github.com/mespms/clinicalforms/pkg/schema"
)

func section(id string, fields ...schema.Field) schema.Section {
	return schema.Section{ID: id, Title: id, Order: 1, Fields: fields}
}

func text(id string) schema.Field {
	return schema.Field{ID: id, Label: id, Spec: schema.TextSpec{}}
}

func TestCheck_ExampleIsValid(t *testing.T) {
	if err := schema.Check(schema.ExampleSOAP().Structure); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheck_DuplicateIDAcrossNesting(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{
		section("a", text("pain")),
		section("b", schema.Field{ID: "grp", Label: "Group", Spec: schema.NestedGroupSpec{
			Fields: []schema.Field{text("pain")},
		}}),
	}}

	err := schema.Check(structure)
	if !errors.Is(err, schema.ErrDuplicateFieldID) {
		t.Fatalf("expected ErrDuplicateFieldID, got %v", err)
	}
	var serr *schema.StructureError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StructureError, got %T", err)
	}
	if len(serr.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d: %v", len(serr.Problems), serr.Problems)
	}
	if got, want := serr.Problems[0].Path, "sections[1].fields[0].fields[0]"; got != want {
		t.Fatalf("path mismatch: got %q want %q", got, want)
	}
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{
		{ID: "s", Fields: []schema.Field{
			{ID: "", Label: "No id", Spec: schema.TextSpec{}},
			{ID: "choice", Label: "Choice", Spec: schema.RadioSpec{}},
			{ID: "pain", Label: "Pain", Spec: schema.PainScaleSpec{Min: 5, Max: 5}},
			{ID: "missing", Label: "Missing kind"},
		}},
	}}

	var serr *schema.StructureError
	if !errors.As(schema.Check(structure), &serr) {
		t.Fatalf("expected *StructureError")
	}
	// section title, empty id, no options, pain bounds, missing type
	if got := len(serr.Problems); got != 5 {
		t.Fatalf("expected 5 problems, got %d: %v", got, serr)
	}
	if !errors.Is(serr, schema.ErrMalformedStructure) {
		t.Fatalf("expected ErrMalformedStructure in %v", serr)
	}
}

func TestCheck_OptionDefaultsMustExist(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{
		section("s", schema.Field{ID: "vitals", Label: "Vitals", Spec: schema.CheckboxGroupSpec{
			Options: []schema.Option{{Value: "bp", Label: "BP"}},
			Default: []string{"bp", "temp"},
		}}),
	}}
	if err := schema.Check(structure); !errors.Is(err, schema.ErrMalformedStructure) {
		t.Fatalf("expected ErrMalformedStructure, got %v", err)
	}
}

func TestCheck_RejectsDottedIDs(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{section("s", text("a.b"))}}
	if err := schema.Check(structure); !errors.Is(err, schema.ErrMalformedStructure) {
		t.Fatalf("expected ErrMalformedStructure, got %v", err)
	}
}
