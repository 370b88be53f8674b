package render

import (
	"fmt"

	"github.com/goliatone/go-theme"

	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/schema"
)

// RenderOptions carry per-request data. Renderers never mutate them.
type RenderOptions struct {
	// Title heads the rendered form, usually the template name.
	Title string
	// Values is the answer map keyed by field id; nested group answers are
	// sub-maps.
	Values map[string]any
	// Errors are field messages keyed by dotted path, typically from
	// form.Validate or MapErrorPayload.
	Errors map[string][]string
	// FormErrors are messages that belong to no field.
	FormErrors []string
	// Disabled renders read-only controls, as for signed notes.
	Disabled bool
	// Hidden inputs emitted with the form (template id, version, csrf).
	Hidden map[string]string
	// Subset limits output to some sections or fields.
	Subset Subset
	// Theme supplies tokens and CSS variables for markup renderers.
	Theme *theme.RendererConfig
	// FormOptions are passed to form.New.
	FormOptions []form.Option
}

// NewForm builds the interpreter a renderer walks: the structure narrowed
// to the subset, the values loaded, and the supplied errors shown.
func (o RenderOptions) NewForm(structure schema.Structure) (*form.Form, error) {
	narrowed := ApplySubset(structure, o.Subset)
	opts := append([]form.Option{form.WithDisabled(o.Disabled)}, o.FormOptions...)
	f, err := form.New(narrowed, o.Values, opts...)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if len(o.Errors) > 0 {
		f.SetErrors(form.Errors(o.Errors))
	}
	return f, nil
}
