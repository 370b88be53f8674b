package fields

import (
	"fmt"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// painScaleRenderer stores one integer step, nil while unset.
type painScaleRenderer struct{}

func (painScaleRenderer) Kind() schema.FieldType { return schema.FieldTypePainScale }

func (painScaleRenderer) Empty(schema.Field) any { return nil }

func (painScaleRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		if n, ok := Int(stored); ok {
			return n
		}
		return nil
	}
	spec := painSpec(field)
	if spec.Default != nil {
		return *spec.Default
	}
	return nil
}

func (painScaleRenderer) Apply(field schema.Field, _ any, ev Event) (any, error) {
	spec := painSpec(field)
	var step int
	switch e := ev.(type) {
	case SelectStep:
		step = e.Step
	case SetValue:
		if e.Value == nil {
			return nil, nil
		}
		n, ok := Int(e.Value)
		if !ok {
			return nil, fmt.Errorf("fields: pain scale %q: %v is not a step: %w", field.ID, e.Value, ErrOutOfRange)
		}
		step = n
	default:
		return nil, unsupported(field, ev)
	}
	if step < spec.Min || step > spec.Max {
		return nil, fmt.Errorf("fields: pain scale %q: %d not in [%d,%d]: %w", field.ID, step, spec.Min, spec.Max, ErrOutOfRange)
	}
	return step, nil
}

func (painScaleRenderer) Validate(field schema.Field, in Input) []string {
	if in.Value == nil {
		if field.Required {
			return []string{requiredMessage(field)}
		}
		return nil
	}
	// fractional and non-numeric answers fail like out-of-range steps
	spec := painSpec(field)
	n, ok := Int(in.Value)
	if !ok || n < spec.Min || n > spec.Max {
		return []string{fmt.Sprintf("%s must be between %d and %d", field.Label, spec.Min, spec.Max)}
	}
	return nil
}

func (painScaleRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Widget = WidgetPainScale
	c.Legend = [2]string{"No pain", "Worst pain"}
	spec := painSpec(field)
	var selected *int
	if n, ok := Int(value); ok {
		selected = &n
	}
	c.Selected = selected
	for _, v := range spec.Steps() {
		c.Steps = append(c.Steps, Step{
			Value:    v,
			Band:     BandFor(v),
			Selected: selected != nil && *selected == v,
		})
	}
	return c
}

func painSpec(field schema.Field) schema.PainScaleSpec {
	if spec, ok := field.Spec.(schema.PainScaleSpec); ok {
		return spec
	}
	return schema.PainScaleSpec{Min: schema.DefaultPainMin, Max: schema.DefaultPainMax}
}
