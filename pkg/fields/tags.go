package fields

import (
	"slices"
	"strings"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// tagsRenderer keeps distinct tags in entry order. Dedupe is exact and
// case-sensitive.
type tagsRenderer struct{}

func (tagsRenderer) Kind() schema.FieldType { return schema.FieldTypeTags }

func (tagsRenderer) Empty(schema.Field) any { return []string{} }

func (tagsRenderer) Initial(field schema.Field, stored any, present bool) any {
	if present && stored != nil {
		return Strings(stored)
	}
	spec, _ := field.Spec.(schema.TagsSpec)
	return Strings(spec.Default)
}

func (tagsRenderer) Apply(field schema.Field, current any, ev Event) (any, error) {
	tags := Strings(current)
	switch e := ev.(type) {
	case TagKey:
		switch {
		case e.Commits():
			return addTag(tags, e.Input), nil
		case e.Key == KeyBackspace && e.Input == "" && len(tags) > 0:
			return tags[:len(tags)-1], nil
		default:
			return tags, nil
		}
	case AddTag:
		return addTag(tags, e.Input), nil
	case RemoveTag:
		return slices.DeleteFunc(tags, func(t string) bool { return t == e.Value }), nil
	case SetValue:
		return Strings(e.Value), nil
	default:
		return nil, unsupported(field, ev)
	}
}

func addTag(tags []string, input string) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || slices.Contains(tags, trimmed) {
		return tags
	}
	return append(tags, trimmed)
}

func (tagsRenderer) Validate(field schema.Field, in Input) []string {
	tags, ok := StringList(in.Value)
	if !ok && in.Value != nil {
		return []string{field.Label + " must be a list of tags"}
	}
	if len(tags) == 0 {
		if field.Required {
			return []string{requiredMessage(field)}
		}
		return nil
	}
	if hasDuplicates(tags) {
		return []string{field.Label + " has duplicate tags"}
	}
	return nil
}

func (tagsRenderer) Control(field schema.Field, value any, disabled bool) Control {
	c := baseControl(field, disabled)
	c.Widget, c.Tags = WidgetTags, Strings(value)
	if spec, ok := field.Spec.(schema.TagsSpec); ok {
		c.Placeholder = spec.Placeholder
	}
	if c.Placeholder == "" {
		c.Placeholder = "Type and press Enter..."
	}
	return c
}
