package fields

import (
	"maps"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// groupRenderer handles the nested_group value as a whole. Child fields are
// walked by the form interpreter, which keeps their answers in the group's
// sub-map.
type groupRenderer struct{}

func (groupRenderer) Kind() schema.FieldType { return schema.FieldTypeNestedGroup }

func (groupRenderer) Empty(schema.Field) any { return map[string]any{} }

func (groupRenderer) Initial(_ schema.Field, stored any, present bool) any {
	if m, ok := Map(stored); present && ok {
		return maps.Clone(m)
	}
	return map[string]any{}
}

func (groupRenderer) Apply(field schema.Field, _ any, ev Event) (any, error) {
	if set, ok := ev.(SetValue); ok {
		if m, ok := Map(set.Value); ok {
			return maps.Clone(m), nil
		}
		return map[string]any{}, nil
	}
	return nil, unsupported(field, ev)
}

// Validate fails a required group only when every child answer is blank.
func (groupRenderer) Validate(field schema.Field, in Input) []string {
	if _, ok := Map(in.Value); !ok && in.Value != nil {
		return []string{field.Label + " must be a group of answers"}
	}
	if field.Required && Blank(in.Value, in.Trim) {
		return []string{requiredMessage(field)}
	}
	return nil
}

func (groupRenderer) Control(field schema.Field, _ any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Widget = WidgetGroup
	return c
}
