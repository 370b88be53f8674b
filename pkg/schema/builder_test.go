package schema_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mespms/clinicalforms/pkg/schema"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%d", n)
	}
}

func TestBuilder_AddSectionsAndFields(t *testing.T) {
	b := schema.NewBuilder(schema.Structure{}, schema.WithIDSource(sequentialIDs()))
	first := b.AddSection()
	second := b.AddSection()

	field, err := b.AddField(first.ID, schema.FieldTypeSelect)
	if err != nil {
		t.Fatalf("add field: %v", err)
	}
	opt, err := b.AddOption(field.ID)
	if err != nil {
		t.Fatalf("add option: %v", err)
	}
	if opt != (schema.Option{Value: "option_1", Label: "Option 1"}) {
		t.Fatalf("unexpected option %+v", opt)
	}

	group, err := b.AddField(second.ID, schema.FieldTypeNestedGroup)
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	if _, err := b.AddNestedField(group.ID); err != nil {
		t.Fatalf("add nested: %v", err)
	}

	want := schema.Structure{
		Version: schema.StructureVersion,
		Sections: []schema.Section{
			{ID: "section_1", Title: "Section 1", Order: 1, Fields: []schema.Field{
				{ID: "field_3", Label: "New Dropdown", Spec: schema.SelectSpec{
					Options: []schema.Option{{Value: "option_1", Label: "Option 1"}},
				}},
			}},
			{ID: "section_2", Title: "Section 2", Order: 2, Fields: []schema.Field{
				{ID: "field_4", Label: "New Nested Group", Spec: schema.NestedGroupSpec{
					Fields: []schema.Field{{ID: "field_5", Label: "New Field", Spec: schema.TextSpec{}}},
				}},
			}},
		},
	}
	if diff := cmp.Diff(want, b.Structure()); diff != "" {
		t.Fatalf("structure mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_MoveAndRemoveRenumber(t *testing.T) {
	b := schema.NewBuilder(schema.Structure{}, schema.WithIDSource(sequentialIDs()))
	a, c := b.AddSection(), b.AddSection()
	d := b.AddSection()

	if err := b.MoveSection(d.ID, -1); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := b.MoveSection(a.ID, -1); err == nil {
		t.Fatalf("expected error moving first section up")
	}
	if err := b.RemoveSection(a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got := b.Structure().Sections
	order := make([]string, len(got))
	for i, s := range got {
		order[i] = fmt.Sprintf("%s:%d", s.ID, s.Order)
	}
	want := []string{d.ID + ":1", c.ID + ":2"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_DoesNotMutateInput(t *testing.T) {
	original := schema.ExampleSOAP().Structure
	snapshot := original.Clone()

	b := schema.NewBuilder(original)
	if err := b.RemoveField("rom_flexion"); err != nil {
		t.Fatalf("remove nested: %v", err)
	}
	if err := b.ChangeType("symptoms_duration", schema.FieldTypeRadio); err != nil {
		t.Fatalf("change type: %v", err)
	}

	if diff := cmp.Diff(snapshot, original); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}

	idx, err := schema.NewIndex(b.Structure())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if _, ok := idx.Lookup("rom_flexion"); ok {
		t.Fatalf("rom_flexion still present")
	}
	entry, _ := idx.Lookup("symptoms_duration")
	radio, ok := entry.Field.Spec.(schema.RadioSpec)
	if !ok || len(radio.Options) != 3 {
		t.Fatalf("expected radio with carried options, got %#v", entry.Field.Spec)
	}
}

func TestBuilder_AddFieldRejectsUnknownKind(t *testing.T) {
	b := schema.NewBuilder(schema.Structure{})
	s := b.AddSection()
	if _, err := b.AddField(s.ID, "signature"); err == nil {
		t.Fatalf("expected error")
	}
}
