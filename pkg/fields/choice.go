package fields

import (
	"slices"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// choiceRenderer serves select and radio: a single option value or empty.
type choiceRenderer struct {
	kind schema.FieldType
}

func (r choiceRenderer) Kind() schema.FieldType { return r.kind }

func (choiceRenderer) Empty(schema.Field) any { return "" }

func (choiceRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return String(stored)
	}
	return stringDefault(field)
}

func (choiceRenderer) Apply(field schema.Field, _ any, ev Event) (any, error) {
	if set, ok := ev.(SetValue); ok {
		return String(set.Value), nil
	}
	return nil, unsupported(field, ev)
}

func (choiceRenderer) Validate(field schema.Field, in Input) []string {
	if !Scalar(in.Value) {
		return []string{field.Label + " has an unknown option"}
	}
	value := String(in.Value)
	if value == "" {
		if field.Required {
			return []string{requiredMessage(field)}
		}
		return nil
	}
	if !hasOption(field.Options(), value) {
		return []string{field.Label + " has an unknown option"}
	}
	return nil
}

func (r choiceRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	selected := String(value)
	c.Options = optionStates(field.Options(), func(v string) bool { return v == selected })
	c.Text = selected
	if spec, ok := field.Spec.(schema.SelectSpec); ok {
		c.Widget, c.Placeholder = WidgetSelect, spec.Placeholder
		if c.Placeholder == "" {
			c.Placeholder = "Select..."
		}
	} else {
		c.Widget = WidgetRadioGroup
	}
	return c
}

type checkboxRenderer struct{}

func (checkboxRenderer) Kind() schema.FieldType { return schema.FieldTypeCheckbox }

func (checkboxRenderer) Empty(schema.Field) any { return false }

func (checkboxRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return Bool(stored)
	}
	spec, _ := field.Spec.(schema.CheckboxSpec)
	return spec.Default
}

func (checkboxRenderer) Apply(field schema.Field, current any, ev Event) (any, error) {
	switch e := ev.(type) {
	case Toggle:
		return !Bool(current), nil
	case SetValue:
		return Bool(e.Value), nil
	default:
		return nil, unsupported(field, ev)
	}
}

func (checkboxRenderer) Validate(field schema.Field, in Input) []string {
	if _, isBool := in.Value.(bool); in.Present && !isBool {
		return []string{field.Label + " must be checked or unchecked"}
	}
	if !field.Required {
		return nil
	}
	switch in.Policy {
	case CheckboxAnswered:
		if _, isBool := in.Value.(bool); in.Present && isBool {
			return nil
		}
	default:
		if Bool(in.Value) {
			return nil
		}
	}
	return []string{requiredMessage(field)}
}

func (checkboxRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Widget, c.Checked = WidgetCheckbox, Bool(value)
	return c
}

// checkboxGroupRenderer keeps the checked option values in insertion order.
type checkboxGroupRenderer struct{}

func (checkboxGroupRenderer) Kind() schema.FieldType { return schema.FieldTypeCheckboxGroup }

func (checkboxGroupRenderer) Empty(schema.Field) any { return []string{} }

func (checkboxGroupRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return Strings(stored)
	}
	spec, _ := field.Spec.(schema.CheckboxGroupSpec)
	return Strings(spec.Default)
}

func (checkboxGroupRenderer) Apply(field schema.Field, current any, ev Event) (any, error) {
	switch e := ev.(type) {
	case ToggleOption:
		values := Strings(current)
		if i := slices.Index(values, e.Value); i >= 0 {
			return slices.Delete(values, i, i+1), nil
		}
		return append(values, e.Value), nil
	case SetValue:
		return Strings(e.Value), nil
	default:
		return nil, unsupported(field, ev)
	}
}

func (checkboxGroupRenderer) Validate(field schema.Field, in Input) []string {
	values, ok := StringList(in.Value)
	if !ok && in.Value != nil {
		return []string{field.Label + " must be a list of options"}
	}
	if len(values) == 0 {
		if field.Required {
			return []string{requiredMessage(field)}
		}
		return nil
	}
	if hasDuplicates(values) {
		return []string{field.Label + " has duplicate options"}
	}
	options := field.Options()
	for _, v := range values {
		if !hasOption(options, v) {
			return []string{field.Label + " has an unknown option"}
		}
	}
	return nil
}

func (checkboxGroupRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	checked := Strings(value)
	c.Widget = WidgetCheckboxGroup
	c.Options = optionStates(field.Options(), func(v string) bool { return slices.Contains(checked, v) })
	return c
}

func hasOption(options []schema.Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func optionStates(options []schema.Option, selected func(string) bool) []OptionState {
	out := make([]OptionState, len(options))
	for i, opt := range options {
		out[i] = OptionState{Value: opt.Value, Label: opt.Label, Selected: selected(opt.Value)}
	}
	return out
}
