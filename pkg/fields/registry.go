package fields

import (
	"fmt"
	"sync"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// ErrUnsupportedFieldType is returned when no renderer handles a field's kind.
var ErrUnsupportedFieldType = schema.ErrUnsupportedFieldType

// CheckboxPolicy decides what satisfies "required" on a checkbox.
type CheckboxPolicy int

const (
	// CheckboxMustBeChecked treats a required checkbox as consent: only a
	// checked box passes.
	CheckboxMustBeChecked CheckboxPolicy = iota
	// CheckboxAnswered accepts an explicit false; only an unanswered box fails.
	CheckboxAnswered
)

// Input is what a renderer validates.
type Input struct {
	// Value is the stored answer as given, or the default when absent.
	Value any
	// Present reports whether the answer map holds the field.
	Present bool
	// Policy applies to required checkboxes.
	Policy CheckboxPolicy
	// Trim makes whitespace-only text count as empty.
	Trim bool
}

// Renderer is the strategy for one field kind.
type Renderer interface {
	Kind() schema.FieldType
	// Empty returns the kind's empty value.
	Empty(field schema.Field) any
	// Initial returns the displayed value: the stored answer when present,
	// otherwise the field's default, otherwise Empty.
	Initial(field schema.Field, stored any, present bool) any
	// Apply returns the value that follows an edit event.
	Apply(field schema.Field, current any, ev Event) (any, error)
	// Validate returns advisory messages; none means the value is acceptable.
	Validate(field schema.Field, in Input) []string
	// Control describes the field's control for output renderers.
	Control(field schema.Field, value any, disabled bool) Control
}

// Registry maps field kinds to renderers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	renderers map[schema.FieldType]Renderer
}

// NewRegistry returns a registry holding a renderer for every kind.
func NewRegistry() *Registry {
	reg := &Registry{renderers: make(map[schema.FieldType]Renderer)}
	for _, r := range builtins() {
		reg.renderers[r.Kind()] = r
	}
	return reg
}

// Register replaces the renderer for a known kind.
func (r *Registry) Register(renderer Renderer) error {
	if r == nil {
		return fmt.Errorf("fields: registry is nil")
	}
	if renderer == nil {
		return fmt.Errorf("fields: renderer is nil")
	}
	kind := renderer.Kind()
	if !kind.Known() {
		return fmt.Errorf("fields: register %q: %w", kind, ErrUnsupportedFieldType)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.renderers == nil {
		r.renderers = make(map[schema.FieldType]Renderer)
	}
	r.renderers[kind] = renderer
	return nil
}

// Resolve returns the renderer for the field's kind.
func (r *Registry) Resolve(field schema.Field) (Renderer, error) {
	kind := field.Type()
	if r != nil {
		r.mu.RLock()
		renderer, ok := r.renderers[kind]
		r.mu.RUnlock()
		if ok {
			return renderer, nil
		}
	}
	return nil, fmt.Errorf("fields: field %q: %w %q", field.ID, ErrUnsupportedFieldType, kind)
}

// Kinds lists the kinds with a registered renderer in palette order.
func (r *Registry) Kinds() []schema.FieldType {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []schema.FieldType
	for _, kind := range schema.FieldTypes() {
		if _, ok := r.renderers[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

func builtins() []Renderer {
	return []Renderer{
		textRenderer{kind: schema.FieldTypeText},
		textRenderer{kind: schema.FieldTypeTextarea},
		textRenderer{kind: schema.FieldTypeRichText},
		numberRenderer{},
		dateRenderer{},
		choiceRenderer{kind: schema.FieldTypeSelect},
		choiceRenderer{kind: schema.FieldTypeRadio},
		checkboxRenderer{},
		checkboxGroupRenderer{},
		painScaleRenderer{},
		tagsRenderer{},
		groupRenderer{},
	}
}

func requiredMessage(field schema.Field) string {
	return field.Label + " is required"
}

func unsupported(field schema.Field, ev Event) error {
	return fmt.Errorf("fields: %s field %q does not accept %T: %w", field.Type(), field.ID, ev, ErrUnsupportedEvent)
}
