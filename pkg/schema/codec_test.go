package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/mespms/clinicalforms/pkg/schema"
)

func TestFieldJSON_DecodesKindAttributes(t *testing.T) {
	raw := `[
		{"id":"notes","type":"textarea","label":"Notes","rows":6,"placeholder":"..."},
		{"id":"pain","type":"pain_scale","label":"Pain","required":true},
		{"id":"flex","type":"number","label":"Flexion","min":0,"max":180,"defaultValue":90},
		{"id":"ok","type":"checkbox","label":"Consent","defaultValue":true},
		{"id":"codes","type":"tags","label":"Codes","defaultValue":["M54.5"]},
		{"id":"rom","type":"nested_group","label":"ROM","fields":[{"id":"ext","type":"text","label":"Extension"}]}
	]`

	var got []schema.Field
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	lo, hi := 0.0, 180.0
	want := []schema.Field{
		{ID: "notes", Label: "Notes", Spec: schema.TextareaSpec{Placeholder: "...", Rows: 6}},
		{ID: "pain", Label: "Pain", Required: true, Spec: schema.PainScaleSpec{Min: 0, Max: 10}},
		{ID: "flex", Label: "Flexion", Spec: schema.NumberSpec{Min: &lo, Max: &hi, Default: "90"}},
		{ID: "ok", Label: "Consent", Spec: schema.CheckboxSpec{Default: true}},
		{ID: "codes", Label: "Codes", Spec: schema.TagsSpec{Default: []string{"M54.5"}}},
		{ID: "rom", Label: "ROM", Spec: schema.NestedGroupSpec{Fields: []schema.Field{
			{ID: "ext", Label: "Extension", Spec: schema.TextSpec{}},
		}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldJSON_EncodesOnlyKindAttributes(t *testing.T) {
	field := schema.Field{
		ID:    "duration",
		Label: "Duration",
		Spec: schema.SelectSpec{
			Placeholder: "Pick one",
			Options:     []schema.Option{{Value: "acute", Label: "Acute"}},
		},
	}
	data, err := json.Marshal(field)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"duration","type":"select","label":"Duration","placeholder":"Pick one","options":[{"value":"acute","label":"Acute"}]}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldJSON_PainScaleAlwaysCarriesBounds(t *testing.T) {
	data, err := json.Marshal(schema.Field{ID: "p", Label: "Pain", Spec: schema.PainScaleSpec{Min: 0, Max: 10}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"p","type":"pain_scale","label":"Pain","min":0,"max":10}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestStructure_JSONRoundTrip(t *testing.T) {
	original := schema.ExampleSOAP().Structure
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded schema.Structure
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStructure_YAMLRoundTrip(t *testing.T) {
	original := schema.ExampleSOAP().Structure
	data, err := yaml.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded schema.Structure
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldJSON_UnknownTypeIsReportedByCheck(t *testing.T) {
	raw := `{"version":"1.0","sections":[{"id":"s","title":"S","order":1,"fields":[{"id":"sig","type":"signature","label":"Signature"}]}]}`
	var structure schema.Structure
	if err := json.Unmarshal([]byte(raw), &structure); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := structure.Sections[0].Fields[0].Type(); got != "signature" {
		t.Fatalf("expected raw tag to be kept, got %q", got)
	}
	err := schema.Check(structure)
	if !errors.Is(err, schema.ErrUnsupportedFieldType) {
		t.Fatalf("expected ErrUnsupportedFieldType, got %v", err)
	}
}

func TestFieldJSON_RejectsMistypedDefault(t *testing.T) {
	var field schema.Field
	err := json.Unmarshal([]byte(`{"id":"c","type":"checkbox","label":"C","defaultValue":"yes"}`), &field)
	if !errors.Is(err, schema.ErrMalformedStructure) {
		t.Fatalf("expected ErrMalformedStructure, got %v", err)
	}
}

func TestFieldJSON_RejectsFractionalPainBounds(t *testing.T) {
	var field schema.Field
	err := json.Unmarshal([]byte(`{"id":"p","type":"pain_scale","label":"P","max":7.5}`), &field)
	if !errors.Is(err, schema.ErrMalformedStructure) {
		t.Fatalf("expected ErrMalformedStructure, got %v", err)
	}
}
