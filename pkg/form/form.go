package form

import (
	"fmt"
	"strings"

	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/schema"
)

// Form interprets one template structure against one answer map. It is not
// safe for concurrent use; a single view owns it.
type Form struct {
	structure schema.Structure
	index     *schema.Index
	registry  *fields.Registry
	state     *state

	checkboxPolicy fields.CheckboxPolicy
	fieldPolicies  map[string]fields.CheckboxPolicy
	trim           bool
	disabled       bool
}

// New checks the structure, resolves a renderer for every field and seeds
// the answer map with a copy of answers. Configuration problems are
// returned before anything renders.
func New(structure schema.Structure, answers map[string]any, opts ...Option) (*Form, error) {
	f := &Form{
		structure: structure.Clone(),
		registry:  fields.NewRegistry(),
		trim:      true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	idx, err := schema.NewIndex(f.structure)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}
	for _, path := range idx.Paths() {
		entry, _ := idx.At(path)
		if _, err := f.registry.Resolve(entry.Field); err != nil {
			return nil, fmt.Errorf("form: %w", err)
		}
	}
	f.index = idx
	f.state = newState(answers)
	return f, nil
}

// Interpret builds a form, validates it and returns the visual tree with
// the resulting errors in one call.
func Interpret(structure schema.Structure, answers map[string]any, opts ...Option) (Tree, Errors, error) {
	f, err := New(structure, answers, opts...)
	if err != nil {
		return Tree{}, nil, err
	}
	errs := f.Validate()
	return f.Render(), errs, nil
}

// Structure returns a copy of the interpreted structure.
func (f *Form) Structure() schema.Structure {
	return f.structure.Clone()
}

// Index exposes the field index built at construction.
func (f *Form) Index() *schema.Index {
	return f.index
}

// Disabled reports whether the form is read-only.
func (f *Form) Disabled() bool {
	return f.disabled
}

func (f *Form) entry(path string) (schema.Entry, fields.Renderer, error) {
	entry, ok := f.index.At(path)
	if !ok {
		return schema.Entry{}, nil, fmt.Errorf("%w %q", ErrUnknownField, path)
	}
	renderer, err := f.registry.Resolve(entry.Field)
	if err != nil {
		return schema.Entry{}, nil, err
	}
	return entry, renderer, nil
}

// Value returns the displayed value at path: the stored answer, else the
// field default, else the kind's empty value.
func (f *Form) Value(path string) (any, error) {
	entry, renderer, err := f.entry(path)
	if err != nil {
		return nil, err
	}
	stored, present := f.state.get(path)
	return renderer.Initial(entry.Field, stored, present), nil
}

// Apply delivers an edit event to the field at path and stores the result.
// The field's previous validation messages are cleared.
func (f *Form) Apply(path string, ev fields.Event) error {
	if f.disabled {
		return fmt.Errorf("form: apply %q: %w", path, ErrReadOnly)
	}
	entry, renderer, err := f.entry(path)
	if err != nil {
		return err
	}
	stored, present := f.state.get(path)
	current := renderer.Initial(entry.Field, stored, present)
	next, err := renderer.Apply(entry.Field, current, ev)
	if err != nil {
		return err
	}
	if err := f.state.set(path, next); err != nil {
		return err
	}
	f.ClearError(path)
	return nil
}

// Set replaces the value at path.
func (f *Form) Set(path string, value any) error {
	return f.Apply(path, fields.SetValue{Value: value})
}

// Values returns a deep copy of the stored answer map. Defaults of
// untouched fields are not filled in; see Resolved.
func (f *Form) Values() map[string]any {
	return cloneValues(f.state.values)
}

// Resolved returns an answer map holding every field, with defaults and
// empty values filled in for unanswered ones.
func (f *Form) Resolved() map[string]any {
	out := make(map[string]any)
	for _, section := range f.structure.Sections {
		f.resolveInto(out, "", section.Fields)
	}
	return out
}

func (f *Form) resolveInto(dst map[string]any, prefix string, list []schema.Field) {
	for _, field := range list {
		path := joinPath(prefix, field.ID)
		if children := field.Children(); field.Type() == schema.FieldTypeNestedGroup {
			sub := make(map[string]any)
			f.resolveInto(sub, path, children)
			dst[field.ID] = sub
			continue
		}
		value, err := f.Value(path)
		if err != nil {
			continue
		}
		dst[field.ID] = deepCopy(value)
	}
}

// Load replaces the answer map wholesale and clears validation errors.
func (f *Form) Load(answers map[string]any) {
	f.state = newState(answers)
}

// Validate checks every field, nested ones included, and records the
// result. Nothing validates implicitly; hosts call this before submitting.
func (f *Form) Validate() Errors {
	errs := Errors{}
	for _, path := range f.index.Paths() {
		entry, renderer, err := f.entry(path)
		if err != nil {
			errs[path] = []string{err.Error()}
			continue
		}
		stored, present := f.state.get(path)
		present = present && stored != nil
		// stored answers are checked as given so wrongly typed values
		// are reported instead of coerced
		value := stored
		if !present {
			value = renderer.Initial(entry.Field, stored, false)
		}
		in := fields.Input{
			Value:   value,
			Present: present,
			Policy:  f.policyFor(entry.Field.ID),
			Trim:    f.trim,
		}
		if msgs := renderer.Validate(entry.Field, in); len(msgs) > 0 {
			errs[path] = msgs
		}
	}
	f.state.errors = errs
	return errs.Clone()
}

// Valid validates and reports whether no field failed.
func (f *Form) Valid() bool {
	return len(f.Validate()) == 0
}

// Errors returns the messages currently shown: the last validation result
// plus any set with SetErrors, minus cleared paths.
func (f *Form) Errors() Errors {
	return f.state.errors.Clone()
}

// SetErrors replaces the shown messages, e.g. with errors mapped from a
// rejected submission.
func (f *Form) SetErrors(errs Errors) {
	f.state.errors = errs.Clone()
}

// ClearError drops the messages for path and for the groups enclosing it.
func (f *Form) ClearError(path string) {
	delete(f.state.errors, path)
	for i := strings.LastIndexByte(path, '.'); i > 0; i = strings.LastIndexByte(path, '.') {
		path = path[:i]
		delete(f.state.errors, path)
	}
}

func (f *Form) policyFor(id string) fields.CheckboxPolicy {
	if policy, ok := f.fieldPolicies[id]; ok {
		return policy
	}
	return f.checkboxPolicy
}

func joinPath(prefix, id string) string {
	if prefix == "" {
		return id
	}
	return prefix + "." + id
}
