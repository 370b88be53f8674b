package form_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mespms/clinicalforms/pkg/contract"
	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/schema"
)

func soap(t *testing.T, answers map[string]any, opts ...form.Option) *form.Form {
	t.Helper()
	f, err := form.New(schema.ExampleSOAP().Structure, answers, opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	return f
}

func TestRender_EmptyAnswersUseDefaults(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "name", Label: "Name", Spec: schema.TextSpec{Default: "Jane"}},
			{ID: "codes", Label: "Codes", Spec: schema.TagsSpec{}},
			{ID: "ok", Label: "OK", Spec: schema.CheckboxSpec{}},
		},
	}}}
	f, err := form.New(structure, map[string]any{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tree := f.Render()

	var got []any
	tree.Walk(func(_ form.SectionNode, node form.FieldNode) { got = append(got, node.Value) })
	want := []any{"Jane", []string{}, false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(f.Values()) != 0 {
		t.Fatalf("rendering must not write defaults into the answer map: %v", f.Values())
	}
}

func TestRender_StoredOrderNotSortedByOrder(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{
		{ID: "b", Title: "B", Order: 2, Fields: []schema.Field{{ID: "x", Label: "X", Spec: schema.TextSpec{}}}},
		{ID: "a", Title: "A", Order: 1, Fields: []schema.Field{{ID: "y", Label: "Y", Spec: schema.TextSpec{}}}},
	}}
	f, err := form.New(structure, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tree := f.Render()
	if tree.Sections[0].ID != "b" || tree.Sections[1].ID != "a" {
		t.Fatalf("expected stored order b,a got %s,%s", tree.Sections[0].ID, tree.Sections[1].ID)
	}
}

func TestNew_FailsClosedOnUnknownKind(t *testing.T) {
	var structure schema.Structure
	raw := `{"sections":[{"id":"s","title":"S","fields":[{"id":"sig","type":"signature","label":"Sig"}]}]}`
	if err := json.Unmarshal([]byte(raw), &structure); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	_, err := form.New(structure, nil)
	if !errors.Is(err, schema.ErrUnsupportedFieldType) {
		t.Fatalf("expected ErrUnsupportedFieldType, got %v", err)
	}
}

func TestValidate_NamespacesNestedErrors(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "rom", Label: "ROM", Required: true, Spec: schema.NestedGroupSpec{Fields: []schema.Field{
				{ID: "flex", Label: "Flexion", Required: true, Spec: schema.NumberSpec{}},
				{ID: "ext", Label: "Extension", Spec: schema.NumberSpec{}},
			}}},
		},
	}}}
	f, err := form.New(structure, map[string]any{"rom": map[string]any{"ext": "abc"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	want := form.Errors{
		"rom.flex": {"Flexion is required"},
		"rom.ext":  {"Extension must be a number"},
	}
	if diff := cmp.Diff(want, f.Validate()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if err := f.Set("rom.ext", "10"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if f.Errors().Has("rom.ext") {
		t.Fatalf("editing a field must clear its error")
	}
	if !f.Errors().Has("rom.flex") {
		t.Fatalf("other errors must stay until the next validation")
	}
}

func TestValidate_RequiredGroupWithBlankChildren(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "rom", Label: "ROM", Required: true, Spec: schema.NestedGroupSpec{Fields: []schema.Field{
				{ID: "flex", Label: "Flexion", Spec: schema.NumberSpec{}},
			}}},
		},
	}}}
	f, err := form.New(structure, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if diff := cmp.Diff(form.Errors{"rom": {"ROM is required"}}, f.Validate()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_WhitespaceAndCheckboxPolicy(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "cc", Label: "Chief Complaint", Required: true, Spec: schema.TextareaSpec{}},
			{ID: "consent", Label: "Consent", Required: true, Spec: schema.CheckboxSpec{}},
			{ID: "smoker", Label: "Smoker", Required: true, Spec: schema.CheckboxSpec{}},
		},
	}}}
	answers := map[string]any{"cc": "   ", "consent": false, "smoker": false}

	f, err := form.New(structure, answers, form.WithFieldCheckboxPolicy("smoker", fields.CheckboxAnswered))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	want := form.Errors{
		"cc":      {"Chief Complaint is required"},
		"consent": {"Consent is required"},
	}
	if diff := cmp.Diff(want, f.Validate()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	f, err = form.New(structure, answers, form.WithTrimWhitespace(false), form.WithCheckboxPolicy(fields.CheckboxAnswered))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if got, _ := f.Value("cc"); got != "   " {
		t.Fatalf("stored value must not be trimmed, got %q", got)
	}
}

func TestValidate_ChecksStoredValuesAsGiven(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "pain", Label: "Pain", Spec: schema.PainScaleSpec{Min: 0, Max: 10}},
			{ID: "grp", Label: "Modalities", Spec: schema.CheckboxGroupSpec{Options: []schema.Option{
				{Value: "ice", Label: "Ice"}, {Value: "heat", Label: "Heat"},
			}}},
			{ID: "tags", Label: "Codes", Spec: schema.TagsSpec{}},
			{ID: "ok", Label: "OK", Spec: schema.CheckboxSpec{}},
		},
	}}}

	cases := []struct {
		name    string
		answers map[string]any
		want    form.Errors
	}{
		{"fractional pain", map[string]any{"pain": 7.5}, form.Errors{"pain": {"Pain must be between 0 and 10"}}},
		{"text pain", map[string]any{"pain": "abc"}, form.Errors{"pain": {"Pain must be between 0 and 10"}}},
		{"pain above max", map[string]any{"pain": 11}, form.Errors{"pain": {"Pain must be between 0 and 10"}}},
		{"pain on a step", map[string]any{"pain": 7.0}, form.Errors{}},
		{"group not a list", map[string]any{"grp": "zzz"}, form.Errors{"grp": {"Modalities must be a list of options"}}},
		{"group repeats an option", map[string]any{"grp": []any{"ice", "ice"}}, form.Errors{"grp": {"Modalities has duplicate options"}}},
		{"tags not a list", map[string]any{"tags": "x"}, form.Errors{"tags": {"Codes must be a list of tags"}}},
		{"tags with a number", map[string]any{"tags": []any{"x", 3.0}}, form.Errors{"tags": {"Codes must be a list of tags"}}},
		{"duplicate tags", map[string]any{"tags": []any{"x", "x"}}, form.Errors{"tags": {"Codes has duplicate tags"}}},
		{"checkbox not a bool", map[string]any{"ok": "yes"}, form.Errors{"ok": {"OK must be checked or unchecked"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := form.New(structure, tc.answers)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if diff := cmp.Diff(tc.want, f.Validate()); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_AgreesWithAnswerContract(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "pain", Label: "Pain", Spec: schema.PainScaleSpec{Min: 0, Max: 10}},
			{ID: "grp", Label: "Modalities", Spec: schema.CheckboxGroupSpec{Options: []schema.Option{{Value: "ice", Label: "Ice"}}}},
			{ID: "tags", Label: "Codes", Spec: schema.TagsSpec{}},
		},
	}}}
	answers := map[string]any{"pain": 7.5, "grp": "zzz", "tags": []any{"x", "x"}}

	f, err := form.New(structure, answers)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if diff := cmp.Diff([]string{"grp", "pain", "tags"}, f.Validate().Paths()); diff != "" {
		t.Fatalf("form paths mismatch (-want +got):\n%s", diff)
	}

	var answerErr *contract.AnswerError
	if err := contract.CheckAnswers(structure, answers); !errors.As(err, &answerErr) {
		t.Fatalf("expected the contract to reject the answers, got %v", err)
	}
}

func TestValidate_RequiredGroupHonorsTrimOption(t *testing.T) {
	structure := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S", Fields: []schema.Field{
			{ID: "hx", Label: "History", Required: true, Spec: schema.NestedGroupSpec{Fields: []schema.Field{
				{ID: "note", Label: "Note", Spec: schema.TextSpec{}},
			}}},
		},
	}}}
	answers := map[string]any{"hx": map[string]any{"note": "  "}}

	f, err := form.New(structure, answers)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if diff := cmp.Diff(form.Errors{"hx": {"History is required"}}, f.Validate()); diff != "" {
		t.Fatalf("trimmed: errors mismatch (-want +got):\n%s", diff)
	}

	f, err = form.New(structure, answers, form.WithTrimWhitespace(false))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("untrimmed: expected no errors, got %v", errs)
	}
}

func TestApply_TogglesAndTags(t *testing.T) {
	f := soap(t, nil)
	steps := []struct {
		path string
		ev   fields.Event
	}{
		{"vital_signs", fields.ToggleOption{Value: "bp_normal"}},
		{"vital_signs", fields.ToggleOption{Value: "pulse_normal"}},
		{"vital_signs", fields.ToggleOption{Value: "bp_normal"}},
		{"icd10_codes", fields.TagKey{Key: fields.KeyEnter, Input: "M54.5"}},
		{"icd10_codes", fields.TagKey{Key: fields.KeyComma, Input: "M54.5"}},
		{"pain_level", fields.SelectStep{Step: 6}},
		{"rom_assessment.rom_flexion", fields.SetValue{Value: "95"}},
	}
	for _, step := range steps {
		if err := f.Apply(step.path, step.ev); err != nil {
			t.Fatalf("apply %s %T: %v", step.path, step.ev, err)
		}
	}

	want := map[string]any{
		"vital_signs":    []string{"pulse_normal"},
		"icd10_codes":    []string{"M54.5"},
		"pain_level":     6,
		"rom_assessment": map[string]any{"rom_flexion": "95"},
	}
	if diff := cmp.Diff(want, f.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if err := f.Apply("pain_level", fields.SelectStep{Step: 11}); !errors.Is(err, fields.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if got, _ := f.Value("pain_level"); got != 6 {
		t.Fatalf("rejected step must leave the value unchanged, got %v", got)
	}
}

func TestApply_UnknownPathAndDisabled(t *testing.T) {
	f := soap(t, nil)
	if err := f.Set("rom_flexion", "1"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("nested fields are addressed by dotted path, got %v", err)
	}

	ro := soap(t, nil, form.WithDisabled(true))
	if err := ro.Set("chief_complaint", "x"); !errors.Is(err, form.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if !ro.Render().Sections[0].Fields[0].Control.Disabled {
		t.Fatalf("expected disabled controls")
	}
}

func TestValues_NestedRoundTrip(t *testing.T) {
	answers := map[string]any{
		"chief_complaint": "Low back pain",
		"pain_level":      float64(4),
		"rom_assessment":  map[string]any{"rom_flexion": "90", "rom_extension": float64(20)},
		"vital_signs":     []any{"bp_normal"},
	}
	f := soap(t, answers)
	if diff := cmp.Diff(answers, f.Values()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	answers["chief_complaint"] = "changed"
	if got, _ := f.Value("chief_complaint"); got != "Low back pain" {
		t.Fatalf("form must own a copy of the answers, got %q", got)
	}
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	f := soap(t, map[string]any{"diagnosis": "Sprain", "follow_up": "2024-05-01"})
	f.Validate()
	f.Load(map[string]any{"diagnosis": "Strain"})

	if diff := cmp.Diff(map[string]any{"diagnosis": "Strain"}, f.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(f.Errors()) != 0 {
		t.Fatalf("load must clear errors, got %v", f.Errors())
	}
}

func TestResolved_FillsEveryField(t *testing.T) {
	f := soap(t, map[string]any{"pain_level": 3})
	got := f.Resolved()
	want := map[string]any{
		"chief_complaint":   "",
		"pain_level":        3,
		"symptoms_duration": "",
		"rom_assessment":    map[string]any{"rom_flexion": "", "rom_extension": ""},
		"vital_signs":       []string{},
		"diagnosis":         "",
		"icd10_codes":       []string{},
		"treatment_plan":    "",
		"follow_up":         "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolved mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpret_ExampleRequiredFields(t *testing.T) {
	_, errs, err := form.Interpret(schema.ExampleSOAP().Structure, nil)
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	want := []string{"chief_complaint", "diagnosis", "pain_level", "symptoms_duration", "treatment_plan"}
	if diff := cmp.Diff(want, errs.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}
