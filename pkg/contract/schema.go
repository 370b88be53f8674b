package contract

import (
	"fmt"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/schema"
)

const (
	datePattern   = `^(\d{4}-\d{2}-\d{2})?$`
	numberPattern = `^\s*(-?\d+(\.\d+)?)?\s*$`
)

// Option configures schema derivation.
type Option func(*config)

type config struct {
	checkbox fields.CheckboxPolicy
}

// WithCheckboxPolicy selects what a required checkbox accepts. The default
// only accepts true.
func WithCheckboxPolicy(policy fields.CheckboxPolicy) Option {
	return func(c *config) {
		c.checkbox = policy
	}
}

func newConfig(opts []Option) config {
	cfg := config{checkbox: fields.CheckboxMustBeChecked}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// AnswerSchema returns the object schema of an answer map for structure.
// Nested groups become nested objects; required fields are listed as
// required properties. Unknown keys are allowed so answers written against
// an older structure still load.
func AnswerSchema(structure schema.Structure, opts ...Option) *openapi3.Schema {
	cfg := newConfig(opts)
	root := openapi3.NewObjectSchema()
	for _, section := range structure.Sections {
		cfg.addFields(root, section.Fields)
	}
	return root
}

func (cfg config) addFields(obj *openapi3.Schema, list []schema.Field) {
	for _, field := range list {
		obj.WithProperty(field.ID, cfg.fieldSchema(field))
		if field.Required {
			obj.Required = append(obj.Required, field.ID)
		}
	}
}

func (cfg config) fieldSchema(field schema.Field) *openapi3.Schema {
	var s *openapi3.Schema
	switch spec := field.Spec.(type) {
	case schema.TextSpec, schema.TextareaSpec, schema.RichTextSpec:
		s = openapi3.NewStringSchema()
		if field.Required {
			s.WithMinLength(1)
		}
	case schema.DateSpec:
		s = openapi3.NewStringSchema().WithPattern(datePattern)
		if field.Required {
			s.WithMinLength(1)
		}
	case schema.NumberSpec:
		s = numberSchema(spec)
	case schema.SelectSpec:
		s = choiceSchema(spec.Options, field.Required)
	case schema.RadioSpec:
		s = choiceSchema(spec.Options, field.Required)
	case schema.CheckboxSpec:
		s = openapi3.NewBoolSchema()
		if field.Required && cfg.checkbox == fields.CheckboxMustBeChecked {
			s.WithEnum(true)
		}
	case schema.CheckboxGroupSpec:
		s = openapi3.NewArraySchema().WithItems(choiceSchema(spec.Options, true)).WithUniqueItems(true)
		if field.Required {
			s.WithMinItems(1)
		}
	case schema.TagsSpec:
		s = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())
		if field.Required {
			s.WithMinItems(1)
		}
	case schema.PainScaleSpec:
		s = openapi3.NewIntegerSchema().WithMin(float64(spec.Min)).WithMax(float64(spec.Max))
	case schema.NestedGroupSpec:
		s = openapi3.NewObjectSchema()
		cfg.addFields(s, spec.Fields)
	default:
		s = &openapi3.Schema{}
	}
	s.Title = field.Label
	if !field.Required {
		s.Nullable = true
	}
	return s
}

// numberSchema accepts JSON numbers and the numeric strings the inputs
// echo back. Bounds apply to the number form only.
func numberSchema(spec schema.NumberSpec) *openapi3.Schema {
	n := openapi3.NewFloat64Schema()
	if spec.Min != nil {
		n.WithMin(*spec.Min)
	}
	if spec.Max != nil {
		n.WithMax(*spec.Max)
	}
	return &openapi3.Schema{
		AnyOf: openapi3.SchemaRefs{
			openapi3.NewSchemaRef("", n),
			openapi3.NewSchemaRef("", openapi3.NewStringSchema().WithPattern(numberPattern)),
		},
	}
}

func choiceSchema(options []schema.Option, required bool) *openapi3.Schema {
	values := make([]any, 0, len(options)+1)
	for _, opt := range options {
		values = append(values, opt.Value)
	}
	if !required {
		values = append(values, "")
	}
	return openapi3.NewStringSchema().WithEnum(values...)
}

// Document wraps the answer schema of a template in an OpenAPI document,
// published under components/schemas as "<id>Content".
func Document(t schema.Template, opts ...Option) *openapi3.T {
	name := ComponentName(t)
	answers := AnswerSchema(t.Structure, opts...)
	answers.Title = t.Name
	answers.Description = t.Description
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   fmt.Sprintf("%s answers", t.Name),
			Version: strconv.Itoa(max(t.Version, 1)),
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				name: openapi3.NewSchemaRef("", answers),
			},
		},
	}
}

// ComponentName names a template's answer schema, e.g. "Template12v3Content".
func ComponentName(t schema.Template) string {
	return fmt.Sprintf("Template%dv%dContent", t.ID, max(t.Version, 1))
}
