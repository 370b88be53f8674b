package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Builder edits a structure the way the template designer does: sections
// and fields are appended with generated ids, sections are renumbered after
// every reorder, and option-bearing fields get placeholder options.
type Builder struct {
	structure Structure
	newID     func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIDSource overrides the random suffix used for generated ids.
func WithIDSource(fn func() string) BuilderOption {
	return func(b *Builder) {
		if fn != nil {
			b.newID = fn
		}
	}
}

// NewBuilder starts from a copy of s; the caller's structure is never touched.
func NewBuilder(s Structure, opts ...BuilderOption) *Builder {
	b := &Builder{
		structure: s.Clone(),
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
	if b.structure.Version == "" {
		b.structure.Version = StructureVersion
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Structure returns a copy of the structure built so far.
func (b *Builder) Structure() Structure {
	return b.structure.Clone()
}

// AddSection appends an empty section titled "Section N".
func (b *Builder) AddSection() Section {
	n := len(b.structure.Sections) + 1
	section := Section{
		ID:     "section_" + b.newID(),
		Title:  fmt.Sprintf("Section %d", n),
		Order:  n,
		Fields: []Field{},
	}
	b.structure.Sections = append(b.structure.Sections, section)
	return section.Clone()
}

// RenameSection sets a section's title and description.
func (b *Builder) RenameSection(id, title, description string) error {
	i, err := b.sectionIndex(id)
	if err != nil {
		return err
	}
	b.structure.Sections[i].Title = title
	b.structure.Sections[i].Description = description
	return nil
}

// RemoveSection deletes a section and renumbers the rest.
func (b *Builder) RemoveSection(id string) error {
	i, err := b.sectionIndex(id)
	if err != nil {
		return err
	}
	sections := b.structure.Sections
	b.structure.Sections = append(sections[:i:i], sections[i+1:]...)
	b.renumber()
	return nil
}

// MoveSection swaps a section with its neighbour (delta -1 up, +1 down).
func (b *Builder) MoveSection(id string, delta int) error {
	i, err := b.sectionIndex(id)
	if err != nil {
		return err
	}
	j := i + delta
	if delta != -1 && delta != 1 {
		return fmt.Errorf("schema: move section %q: delta must be -1 or 1", id)
	}
	if j < 0 || j >= len(b.structure.Sections) {
		return fmt.Errorf("schema: move section %q: already at the edge", id)
	}
	sections := b.structure.Sections
	sections[i], sections[j] = sections[j], sections[i]
	b.renumber()
	return nil
}

// AddField appends a field of the given kind labelled "New <kind label>".
func (b *Builder) AddField(sectionID string, kind FieldType) (Field, error) {
	i, err := b.sectionIndex(sectionID)
	if err != nil {
		return Field{}, err
	}
	spec, err := NewSpec(kind)
	if err != nil {
		return Field{}, err
	}
	field := Field{ID: "field_" + b.newID(), Label: "New " + kind.Label(), Spec: spec}
	b.structure.Sections[i].Fields = append(b.structure.Sections[i].Fields, field)
	return field.Clone(), nil
}

// AddNestedField appends a text child to a nested group.
func (b *Builder) AddNestedField(groupID string) (Field, error) {
	field := Field{ID: "field_" + b.newID(), Label: "New Field", Spec: TextSpec{}}
	err := b.UpdateField(groupID, func(group *Field) error {
		spec, ok := group.Spec.(NestedGroupSpec)
		if !ok {
			return fmt.Errorf("schema: field %q is not a nested group", groupID)
		}
		spec.Fields = append(spec.Fields, field)
		group.Spec = spec
		return nil
	})
	if err != nil {
		return Field{}, err
	}
	return field.Clone(), nil
}

// UpdateField applies fn to the field with the given id, wherever it is.
func (b *Builder) UpdateField(id string, fn func(*Field) error) error {
	for si := range b.structure.Sections {
		found, err := updateIn(b.structure.Sections[si].Fields, id, fn)
		if found {
			return err
		}
	}
	return fmt.Errorf("schema: unknown field %q", id)
}

func updateIn(fields []Field, id string, fn func(*Field) error) (bool, error) {
	for i := range fields {
		if fields[i].ID == id {
			return true, fn(&fields[i])
		}
		group, ok := fields[i].Spec.(NestedGroupSpec)
		if !ok {
			continue
		}
		if found, err := updateIn(group.Fields, id, fn); found {
			return true, err
		}
	}
	return false, nil
}

// ChangeType switches a field to another kind, keeping the placeholder and
// options where the new kind has them.
func (b *Builder) ChangeType(id string, kind FieldType) error {
	spec, err := NewSpec(kind)
	if err != nil {
		return err
	}
	return b.UpdateField(id, func(f *Field) error {
		f.Spec = carryOver(f.Spec, spec)
		return nil
	})
}

func carryOver(from, to Spec) Spec {
	placeholder := ""
	switch s := from.(type) {
	case TextSpec:
		placeholder = s.Placeholder
	case TextareaSpec:
		placeholder = s.Placeholder
	case NumberSpec:
		placeholder = s.Placeholder
	case SelectSpec:
		placeholder = s.Placeholder
	case RichTextSpec:
		placeholder = s.Placeholder
	case TagsSpec:
		placeholder = s.Placeholder
	}
	options := Field{Spec: from}.Options()

	switch s := to.(type) {
	case TextSpec:
		s.Placeholder = placeholder
		return s
	case TextareaSpec:
		s.Placeholder = placeholder
		return s
	case NumberSpec:
		s.Placeholder = placeholder
		return s
	case SelectSpec:
		s.Placeholder = placeholder
		s.Options = append([]Option(nil), options...)
		return s
	case RadioSpec:
		s.Options = append([]Option(nil), options...)
		return s
	case CheckboxGroupSpec:
		s.Options = append([]Option(nil), options...)
		return s
	case RichTextSpec:
		s.Placeholder = placeholder
		return s
	case TagsSpec:
		s.Placeholder = placeholder
		return s
	default:
		return to
	}
}

// RemoveField deletes a field, nested or not.
func (b *Builder) RemoveField(id string) error {
	for si := range b.structure.Sections {
		fields, found := removeFrom(b.structure.Sections[si].Fields, id)
		if found {
			b.structure.Sections[si].Fields = fields
			return nil
		}
	}
	return fmt.Errorf("schema: unknown field %q", id)
}

func removeFrom(fields []Field, id string) ([]Field, bool) {
	for i := range fields {
		if fields[i].ID == id {
			return append(fields[:i:i], fields[i+1:]...), true
		}
		group, ok := fields[i].Spec.(NestedGroupSpec)
		if !ok {
			continue
		}
		if children, found := removeFrom(group.Fields, id); found {
			group.Fields = children
			fields[i].Spec = group
			return fields, true
		}
	}
	return fields, false
}

// AddOption appends "option_N"/"Option N" to a select, radio or
// checkbox_group field.
func (b *Builder) AddOption(fieldID string) (Option, error) {
	var added Option
	err := b.UpdateField(fieldID, func(f *Field) error {
		next := func(n int) Option {
			return Option{Value: fmt.Sprintf("option_%d", n), Label: fmt.Sprintf("Option %d", n)}
		}
		switch s := f.Spec.(type) {
		case SelectSpec:
			added = next(len(s.Options) + 1)
			s.Options = append(s.Options, added)
			f.Spec = s
		case RadioSpec:
			added = next(len(s.Options) + 1)
			s.Options = append(s.Options, added)
			f.Spec = s
		case CheckboxGroupSpec:
			added = next(len(s.Options) + 1)
			s.Options = append(s.Options, added)
			f.Spec = s
		default:
			return fmt.Errorf("schema: field %q (%s) has no options", fieldID, f.Type())
		}
		return nil
	})
	return added, err
}

func (b *Builder) sectionIndex(id string) (int, error) {
	for i, section := range b.structure.Sections {
		if section.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("schema: unknown section %q", id)
}

func (b *Builder) renumber() {
	for i := range b.structure.Sections {
		b.structure.Sections[i].Order = i + 1
	}
}
