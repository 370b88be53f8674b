package fields

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// DateLayout is the stored date format.
const DateLayout = "2006-01-02"

// textRenderer serves text, textarea and rich_text: a string replaced in
// full on every keystroke.
type textRenderer struct {
	kind schema.FieldType
}

func (r textRenderer) Kind() schema.FieldType { return r.kind }

func (textRenderer) Empty(schema.Field) any { return "" }

func (r textRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return String(stored)
	}
	return stringDefault(field)
}

func (textRenderer) Apply(field schema.Field, _ any, ev Event) (any, error) {
	if set, ok := ev.(SetValue); ok {
		return String(set.Value), nil
	}
	return nil, unsupported(field, ev)
}

func (r textRenderer) Validate(field schema.Field, in Input) []string {
	if !Scalar(in.Value) {
		return []string{field.Label + " must be text"}
	}
	value := String(in.Value)
	if r.kind == schema.FieldTypeRichText {
		value = PlainText(value)
	}
	if field.Required && emptyText(value, in.Trim) {
		return []string{requiredMessage(field)}
	}
	return nil
}

func (r textRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Text = String(value)
	switch spec := field.Spec.(type) {
	case schema.TextSpec:
		c.Widget, c.InputType, c.Placeholder = WidgetInput, "text", spec.Placeholder
	case schema.TextareaSpec:
		c.Widget, c.Placeholder, c.Rows = WidgetTextarea, spec.Placeholder, spec.EffectiveRows()
	case schema.RichTextSpec:
		c.Widget, c.Placeholder, c.Rows = WidgetRichText, spec.Placeholder, 6
		if c.Placeholder == "" {
			c.Placeholder = "Enter rich text content..."
		}
	}
	return c
}

// numberRenderer echoes the raw input; parsing happens in Validate.
type numberRenderer struct{}

func (numberRenderer) Kind() schema.FieldType { return schema.FieldTypeNumber }

func (numberRenderer) Empty(schema.Field) any { return "" }

func (numberRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return String(stored)
	}
	return stringDefault(field)
}

func (numberRenderer) Apply(field schema.Field, _ any, ev Event) (any, error) {
	if set, ok := ev.(SetValue); ok {
		return String(set.Value), nil
	}
	return nil, unsupported(field, ev)
}

func (numberRenderer) Validate(field schema.Field, in Input) []string {
	if !Scalar(in.Value) {
		return []string{field.Label + " must be a number"}
	}
	raw := String(in.Value)
	if emptyText(raw, in.Trim) {
		if field.Required {
			return []string{requiredMessage(field)}
		}
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return []string{field.Label + " must be a number"}
	}
	spec, _ := field.Spec.(schema.NumberSpec)
	var msgs []string
	if spec.Min != nil && n < *spec.Min {
		msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field.Label, formatFloat(*spec.Min)))
	}
	if spec.Max != nil && n > *spec.Max {
		msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field.Label, formatFloat(*spec.Max)))
	}
	return msgs
}

func (numberRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Widget, c.InputType, c.Text = WidgetInput, "number", String(value)
	if spec, ok := field.Spec.(schema.NumberSpec); ok {
		c.Placeholder, c.Min, c.Max = spec.Placeholder, spec.Min, spec.Max
	}
	return c
}

type dateRenderer struct{}

func (dateRenderer) Kind() schema.FieldType { return schema.FieldTypeDate }

func (dateRenderer) Empty(schema.Field) any { return "" }

func (dateRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return String(stored)
	}
	return stringDefault(field)
}

func (dateRenderer) Apply(field schema.Field, _ any, ev Event) (any, error) {
	if set, ok := ev.(SetValue); ok {
		return String(set.Value), nil
	}
	return nil, unsupported(field, ev)
}

func (dateRenderer) Validate(field schema.Field, in Input) []string {
	if !Scalar(in.Value) {
		return []string{field.Label + " must be a date (YYYY-MM-DD)"}
	}
	raw := String(in.Value)
	if emptyText(raw, in.Trim) {
		if field.Required {
			return []string{requiredMessage(field)}
		}
		return nil
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(raw)); err != nil {
		return []string{field.Label + " must be a date (YYYY-MM-DD)"}
	}
	return nil
}

func (dateRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Widget, c.InputType, c.Text = WidgetInput, "date", String(value)
	return c
}

func baseControl(field schema.Field, disabled bool) Control {
	return Control{
		ID:       field.ID,
		Kind:     field.Type(),
		Label:    field.Label,
		Required: field.Required,
		Disabled: disabled,
	}
}

func emptyText(value string, trim bool) bool {
	if trim {
		return strings.TrimSpace(value) == ""
	}
	return value == ""
}

func stringDefault(field schema.Field) string {
	switch spec := field.Spec.(type) {
	case schema.TextSpec:
		return spec.Default
	case schema.TextareaSpec:
		return spec.Default
	case schema.NumberSpec:
		return spec.Default
	case schema.DateSpec:
		return spec.Default
	case schema.SelectSpec:
		return spec.Default
	case schema.RadioSpec:
		return spec.Default
	case schema.RichTextSpec:
		return spec.Default
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
