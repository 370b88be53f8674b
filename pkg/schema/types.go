package schema

import "slices"

// FieldType is the wire tag selecting a field's kind.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeNumber        FieldType = "number"
	FieldTypeDate          FieldType = "date"
	FieldTypeSelect        FieldType = "select"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeCheckboxGroup FieldType = "checkbox_group"
	FieldTypeRadio         FieldType = "radio"
	FieldTypePainScale     FieldType = "pain_scale"
	FieldTypeRichText      FieldType = "rich_text"
	FieldTypeTags          FieldType = "tags"
	FieldTypeNestedGroup   FieldType = "nested_group"
)

var knownFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeCheckboxGroup,
	FieldTypeRadio,
	FieldTypePainScale,
	FieldTypeRichText,
	FieldTypeTags,
	FieldTypeNestedGroup,
}

// FieldTypes lists every supported kind in builder palette order.
func FieldTypes() []FieldType {
	return slices.Clone(knownFieldTypes)
}

// Known reports whether the tag names one of the supported kinds.
func (t FieldType) Known() bool {
	return slices.Contains(knownFieldTypes, t)
}

// Label returns the palette label used by the template builder.
func (t FieldType) Label() string {
	switch t {
	case FieldTypeText:
		return "Text"
	case FieldTypeTextarea:
		return "Text Area"
	case FieldTypeNumber:
		return "Number"
	case FieldTypeDate:
		return "Date"
	case FieldTypeSelect:
		return "Dropdown"
	case FieldTypeCheckbox:
		return "Checkbox"
	case FieldTypeCheckboxGroup:
		return "Checkbox Group"
	case FieldTypeRadio:
		return "Radio Group"
	case FieldTypePainScale:
		return "Pain Scale"
	case FieldTypeRichText:
		return "Rich Text"
	case FieldTypeTags:
		return "Tags"
	case FieldTypeNestedGroup:
		return "Nested Group"
	default:
		return "Field"
	}
}

// Option is a (value, label) pair for select, radio and checkbox_group fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field is a single field definition. Attributes that only make sense for
// some kinds live on the kind's Spec.
type Field struct {
	ID       string
	Label    string
	Required bool
	Spec     Spec
}

// Type returns the field's kind tag, or the raw tag when the kind is unknown.
func (f Field) Type() FieldType {
	if f.Spec == nil {
		return ""
	}
	return f.Spec.Type()
}

// Children returns the nested field definitions of a nested_group field.
func (f Field) Children() []Field {
	if group, ok := f.Spec.(NestedGroupSpec); ok {
		return group.Fields
	}
	return nil
}

// Options returns the options of an option-bearing field.
func (f Field) Options() []Option {
	switch spec := f.Spec.(type) {
	case SelectSpec:
		return spec.Options
	case RadioSpec:
		return spec.Options
	case CheckboxGroupSpec:
		return spec.Options
	default:
		return nil
	}
}

// Clone returns a deep copy of the field, nested children included.
func (f Field) Clone() Field {
	out := f
	switch spec := f.Spec.(type) {
	case TextSpec, TextareaSpec, DateSpec, CheckboxSpec, RichTextSpec, unsupportedSpec:
	case NumberSpec:
		spec.Min = clonePtr(spec.Min)
		spec.Max = clonePtr(spec.Max)
		out.Spec = spec
	case SelectSpec:
		spec.Options = slices.Clone(spec.Options)
		out.Spec = spec
	case RadioSpec:
		spec.Options = slices.Clone(spec.Options)
		out.Spec = spec
	case CheckboxGroupSpec:
		spec.Options = slices.Clone(spec.Options)
		spec.Default = slices.Clone(spec.Default)
		out.Spec = spec
	case PainScaleSpec:
		spec.Default = clonePtr(spec.Default)
		out.Spec = spec
	case TagsSpec:
		spec.Default = slices.Clone(spec.Default)
		out.Spec = spec
	case NestedGroupSpec:
		spec.Fields = cloneFields(spec.Fields)
		out.Spec = spec
	}
	return out
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Spec carries the kind-specific attributes of a field. The set of
// implementations is closed; see FieldTypes.
type Spec interface {
	Type() FieldType
	sealed()
}

type TextSpec struct {
	Placeholder string
	Default     string
}

type TextareaSpec struct {
	Placeholder string
	Rows        int
	Default     string
}

// DefaultTextareaRows applies when a textarea declares no row count.
const DefaultTextareaRows = 4

// EffectiveRows returns the configured row count or DefaultTextareaRows.
func (s TextareaSpec) EffectiveRows() int {
	if s.Rows <= 0 {
		return DefaultTextareaRows
	}
	return s.Rows
}

// NumberSpec bounds are optional; the stored value is the raw input text.
type NumberSpec struct {
	Placeholder string
	Min         *float64
	Max         *float64
	Default     string
}

// DateSpec values are ISO dates (YYYY-MM-DD).
type DateSpec struct {
	Default string
}

type SelectSpec struct {
	Placeholder string
	Options     []Option
	Default     string
}

type CheckboxSpec struct {
	Default bool
}

type CheckboxGroupSpec struct {
	Options []Option
	Default []string
}

type RadioSpec struct {
	Options []Option
	Default string
}

// Pain scale bounds applied when a definition omits them.
const (
	DefaultPainMin = 0
	DefaultPainMax = 10
)

// PainScaleSpec selects one integer step in [Min, Max].
type PainScaleSpec struct {
	Min     int
	Max     int
	Default *int
}

// Steps returns every selectable step in ascending order.
func (s PainScaleSpec) Steps() []int {
	if s.Max < s.Min {
		return nil
	}
	steps := make([]int, 0, s.Max-s.Min+1)
	for v := s.Min; v <= s.Max; v++ {
		steps = append(steps, v)
	}
	return steps
}

// RichTextSpec values are HTML fragments.
type RichTextSpec struct {
	Placeholder string
	Default     string
}

// TagsSpec values are an ordered list of distinct strings.
type TagsSpec struct {
	Placeholder string
	Default     []string
}

// NestedGroupSpec groups child fields whose answers live in a sub-map keyed
// by the group's id.
type NestedGroupSpec struct {
	Fields []Field
}

// unsupportedSpec keeps a field with an unrecognised tag so Check and the
// registry can report it instead of the decoder dropping it.
type unsupportedSpec struct {
	tag FieldType
}

func (TextSpec) Type() FieldType          { return FieldTypeText }
func (TextareaSpec) Type() FieldType      { return FieldTypeTextarea }
func (NumberSpec) Type() FieldType        { return FieldTypeNumber }
func (DateSpec) Type() FieldType          { return FieldTypeDate }
func (SelectSpec) Type() FieldType        { return FieldTypeSelect }
func (CheckboxSpec) Type() FieldType      { return FieldTypeCheckbox }
func (CheckboxGroupSpec) Type() FieldType { return FieldTypeCheckboxGroup }
func (RadioSpec) Type() FieldType         { return FieldTypeRadio }
func (PainScaleSpec) Type() FieldType     { return FieldTypePainScale }
func (RichTextSpec) Type() FieldType      { return FieldTypeRichText }
func (TagsSpec) Type() FieldType          { return FieldTypeTags }
func (NestedGroupSpec) Type() FieldType   { return FieldTypeNestedGroup }
func (s unsupportedSpec) Type() FieldType { return s.tag }

func (TextSpec) sealed()          {}
func (TextareaSpec) sealed()      {}
func (NumberSpec) sealed()        {}
func (DateSpec) sealed()          {}
func (SelectSpec) sealed()        {}
func (CheckboxSpec) sealed()      {}
func (CheckboxGroupSpec) sealed() {}
func (RadioSpec) sealed()         {}
func (PainScaleSpec) sealed()     {}
func (RichTextSpec) sealed()      {}
func (TagsSpec) sealed()          {}
func (NestedGroupSpec) sealed()   {}
func (unsupportedSpec) sealed()   {}

// NewSpec returns the blank spec a freshly added field of the given kind
// starts with.
func NewSpec(kind FieldType) (Spec, error) {
	switch kind {
	case FieldTypeText:
		return TextSpec{}, nil
	case FieldTypeTextarea:
		return TextareaSpec{Rows: DefaultTextareaRows}, nil
	case FieldTypeNumber:
		return NumberSpec{}, nil
	case FieldTypeDate:
		return DateSpec{}, nil
	case FieldTypeSelect:
		return SelectSpec{}, nil
	case FieldTypeCheckbox:
		return CheckboxSpec{}, nil
	case FieldTypeCheckboxGroup:
		return CheckboxGroupSpec{}, nil
	case FieldTypeRadio:
		return RadioSpec{}, nil
	case FieldTypePainScale:
		return PainScaleSpec{Min: DefaultPainMin, Max: DefaultPainMax}, nil
	case FieldTypeRichText:
		return RichTextSpec{}, nil
	case FieldTypeTags:
		return TagsSpec{}, nil
	case FieldTypeNestedGroup:
		return NestedGroupSpec{}, nil
	default:
		return nil, unsupportedTypeError(kind)
	}
}

// Section is an ordered group of fields.
type Section struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Order       int     `json:"order" yaml:"order"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Fields = cloneFields(s.Fields)
	if out.Fields == nil {
		out.Fields = []Field{}
	}
	return out
}

// Structure is the body of a template. Section order is the render order.
type Structure struct {
	Version  string    `json:"version" yaml:"version"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// StructureVersion is the structure format written by this package.
const StructureVersion = "1.0"

// Clone returns a deep copy of the structure.
func (s Structure) Clone() Structure {
	out := Structure{Version: s.Version}
	if s.Sections != nil {
		out.Sections = make([]Section, len(s.Sections))
		for i, section := range s.Sections {
			out.Sections[i] = section.Clone()
		}
	}
	return out
}

// FieldCount returns the number of top-level fields across every section.
func (s Structure) FieldCount() int {
	total := 0
	for _, section := range s.Sections {
		total += len(section.Fields)
	}
	return total
}
