// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"context"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Float returns a pointer for number bounds in literals.
func Float(v float64) *float64 {
	return &v
}

// IntakeStructure covers every field kind, including a nested group, in two
// sections.
func IntakeStructure() schema.Structure {
	return schema.Structure{
		Version: schema.StructureVersion,
		Sections: []schema.Section{
			{
				ID:          "subjective",
				Title:       "Subjective",
				Description: "Patient-reported history",
				Order:       1,
				Fields: []schema.Field{
					{ID: "chief_complaint", Label: "Chief Complaint", Required: true, Spec: schema.TextSpec{Placeholder: "Main concern"}},
					{ID: "history", Label: "History", Spec: schema.TextareaSpec{Rows: 3}},
					{ID: "pain_level", Label: "Pain Level", Required: true, Spec: schema.PainScaleSpec{Min: 0, Max: 10}},
					{ID: "onset", Label: "Onset", Spec: schema.DateSpec{}},
					{ID: "symptoms", Label: "Symptoms", Spec: schema.TagsSpec{}},
				},
			},
			{
				ID:    "objective",
				Title: "Objective",
				Order: 2,
				Fields: []schema.Field{
					{ID: "rom", Label: "Range of Motion", Spec: schema.NumberSpec{Min: Float(0), Max: Float(180)}},
					{ID: "side", Label: "Side", Spec: schema.SelectSpec{Options: []schema.Option{
						{Value: "left", Label: "Left"},
						{Value: "right", Label: "Right"},
					}}},
					{ID: "mobility", Label: "Mobility", Spec: schema.RadioSpec{Options: []schema.Option{
						{Value: "full", Label: "Full"},
						{Value: "limited", Label: "Limited"},
					}}},
					{ID: "modalities", Label: "Modalities", Spec: schema.CheckboxGroupSpec{Options: []schema.Option{
						{Value: "heat", Label: "Heat"},
						{Value: "ice", Label: "Ice"},
					}}},
					{ID: "notes", Label: "Notes", Spec: schema.RichTextSpec{}},
					{ID: "vitals", Label: "Vitals", Spec: schema.NestedGroupSpec{Fields: []schema.Field{
						{ID: "bp", Label: "Blood Pressure", Spec: schema.TextSpec{}},
						{ID: "hr", Label: "Heart Rate", Spec: schema.NumberSpec{}},
					}}},
					{ID: "consent", Label: "Consent", Required: true, Spec: schema.CheckboxSpec{}},
				},
			},
		},
	}
}
