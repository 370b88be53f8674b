package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// fieldWire is the flat document shape shared with the backend and the
// template files. Only the attributes of the field's kind are emitted.
type fieldWire struct {
	ID           string    `json:"id" yaml:"id"`
	Type         FieldType `json:"type" yaml:"type"`
	Label        string    `json:"label" yaml:"label"`
	Placeholder  string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required     bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Min          *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Rows         int       `json:"rows,omitempty" yaml:"rows,omitempty"`
	Options      []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Fields       []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
	DefaultValue any       `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// MarshalJSON encodes the field in the flat wire shape.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.wire())
}

// UnmarshalJSON decodes the flat wire shape. Unknown type tags are kept so
// Check can report them with their location.
func (f *Field) UnmarshalJSON(data []byte) error {
	var w fieldWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	field, err := w.field()
	if err != nil {
		return err
	}
	*f = field
	return nil
}

// MarshalYAML encodes the field in the flat wire shape.
func (f Field) MarshalYAML() (any, error) {
	return f.wire(), nil
}

// UnmarshalYAML decodes the flat wire shape from a YAML node.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	var w fieldWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	field, err := w.field()
	if err != nil {
		return err
	}
	*f = field
	return nil
}

func (f Field) wire() fieldWire {
	w := fieldWire{ID: f.ID, Type: f.Type(), Label: f.Label, Required: f.Required}
	switch spec := f.Spec.(type) {
	case TextSpec:
		w.Placeholder = spec.Placeholder
		w.DefaultValue = optionalString(spec.Default)
	case TextareaSpec:
		w.Placeholder = spec.Placeholder
		w.Rows = spec.Rows
		w.DefaultValue = optionalString(spec.Default)
	case NumberSpec:
		w.Placeholder = spec.Placeholder
		w.Min = clonePtr(spec.Min)
		w.Max = clonePtr(spec.Max)
		w.DefaultValue = optionalString(spec.Default)
	case DateSpec:
		w.DefaultValue = optionalString(spec.Default)
	case SelectSpec:
		w.Placeholder = spec.Placeholder
		w.Options = slices.Clone(spec.Options)
		w.DefaultValue = optionalString(spec.Default)
	case CheckboxSpec:
		if spec.Default {
			w.DefaultValue = true
		}
	case CheckboxGroupSpec:
		w.Options = slices.Clone(spec.Options)
		if len(spec.Default) > 0 {
			w.DefaultValue = slices.Clone(spec.Default)
		}
	case RadioSpec:
		w.Options = slices.Clone(spec.Options)
		w.DefaultValue = optionalString(spec.Default)
	case PainScaleSpec:
		lo, hi := float64(spec.Min), float64(spec.Max)
		w.Min, w.Max = &lo, &hi
		if spec.Default != nil {
			w.DefaultValue = *spec.Default
		}
	case RichTextSpec:
		w.Placeholder = spec.Placeholder
		w.DefaultValue = optionalString(spec.Default)
	case TagsSpec:
		w.Placeholder = spec.Placeholder
		if len(spec.Default) > 0 {
			w.DefaultValue = slices.Clone(spec.Default)
		}
	case NestedGroupSpec:
		w.Fields = cloneFields(spec.Fields)
		if w.Fields == nil {
			w.Fields = []Field{}
		}
	}
	return w
}

func optionalString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func (w fieldWire) field() (Field, error) {
	field := Field{ID: w.ID, Label: w.Label, Required: w.Required}
	fail := func(attr string, err error) (Field, error) {
		return Field{}, fmt.Errorf("schema: field %q: %s: %w", w.ID, attr, err)
	}

	switch w.Type {
	case FieldTypeText, FieldTypeTextarea, FieldTypeNumber, FieldTypeDate,
		FieldTypeSelect, FieldTypeRadio, FieldTypeRichText:
		def, err := defaultString(w.DefaultValue)
		if err != nil {
			return fail("defaultValue", err)
		}
		field.Spec = w.stringSpec(def)
	case FieldTypeCheckbox:
		def, err := defaultBool(w.DefaultValue)
		if err != nil {
			return fail("defaultValue", err)
		}
		field.Spec = CheckboxSpec{Default: def}
	case FieldTypeCheckboxGroup:
		def, err := defaultStrings(w.DefaultValue)
		if err != nil {
			return fail("defaultValue", err)
		}
		field.Spec = CheckboxGroupSpec{Options: slices.Clone(w.Options), Default: def}
	case FieldTypeTags:
		def, err := defaultStrings(w.DefaultValue)
		if err != nil {
			return fail("defaultValue", err)
		}
		field.Spec = TagsSpec{Placeholder: w.Placeholder, Default: def}
	case FieldTypePainScale:
		spec := PainScaleSpec{Min: DefaultPainMin, Max: DefaultPainMax}
		var err error
		if w.Min != nil {
			if spec.Min, err = integral(*w.Min); err != nil {
				return fail("min", err)
			}
		}
		if w.Max != nil {
			if spec.Max, err = integral(*w.Max); err != nil {
				return fail("max", err)
			}
		}
		if w.DefaultValue != nil {
			n, ok := toFloat(w.DefaultValue)
			if !ok {
				return fail("defaultValue", fmt.Errorf("%w: expected an integer", ErrMalformedStructure))
			}
			v, err := integral(n)
			if err != nil {
				return fail("defaultValue", err)
			}
			spec.Default = &v
		}
		field.Spec = spec
	case FieldTypeNestedGroup:
		field.Spec = NestedGroupSpec{Fields: w.Fields}
	default:
		field.Spec = unsupportedSpec{tag: w.Type}
	}
	return field, nil
}

func (w fieldWire) stringSpec(def string) Spec {
	switch w.Type {
	case FieldTypeTextarea:
		return TextareaSpec{Placeholder: w.Placeholder, Rows: w.Rows, Default: def}
	case FieldTypeNumber:
		return NumberSpec{Placeholder: w.Placeholder, Min: clonePtr(w.Min), Max: clonePtr(w.Max), Default: def}
	case FieldTypeDate:
		return DateSpec{Default: def}
	case FieldTypeSelect:
		return SelectSpec{Placeholder: w.Placeholder, Options: slices.Clone(w.Options), Default: def}
	case FieldTypeRadio:
		return RadioSpec{Options: slices.Clone(w.Options), Default: def}
	case FieldTypeRichText:
		return RichTextSpec{Placeholder: w.Placeholder, Default: def}
	default:
		return TextSpec{Placeholder: w.Placeholder, Default: def}
	}
}

func defaultString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return "", fmt.Errorf("%w: expected a string, got %T", ErrMalformedStructure, raw)
	}
}

func defaultBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("%w: expected a boolean, got %T", ErrMalformedStructure, raw)
	}
}

func defaultStrings(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected a list of strings, got element %T", ErrMalformedStructure, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of strings, got %T", ErrMalformedStructure, raw)
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func integral(v float64) (int, error) {
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrMalformedStructure, v)
	}
	return int(v), nil
}
