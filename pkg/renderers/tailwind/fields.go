package tailwind

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/form"
)

const (
	fieldTemplate  = "templates/field"
	errorsTemplate = "templates/errors"
)

// fieldView is the template data of one control. Numbers are preformatted.
type fieldView struct {
	Path         string       `json:"path"`
	Kind         string       `json:"kind"`
	Widget       string       `json:"widget"`
	Label        string       `json:"label"`
	Required     bool         `json:"required"`
	RequiredAttr bool         `json:"required_attr"`
	Disabled     bool         `json:"disabled"`
	InputType    string       `json:"input_type"`
	Placeholder  string       `json:"placeholder"`
	Rows         string       `json:"rows"`
	Min          string       `json:"min"`
	Max          string       `json:"max"`
	Text         string       `json:"text"`
	RichHTML     string       `json:"rich_html"`
	Checked      bool         `json:"checked"`
	Options      []optionView `json:"options"`
	Steps        []stepView   `json:"steps"`
	Tags         []string     `json:"tags"`
	LegendLow    string       `json:"legend_low"`
	LegendHigh   string       `json:"legend_high"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type stepView struct {
	Value    string `json:"value"`
	Band     string `json:"band"`
	Selected bool   `json:"selected"`
}

func newFieldView(node form.FieldNode) fieldView {
	c := node.Control
	v := fieldView{
		Path:         node.Path,
		Kind:         string(c.Kind),
		Widget:       string(c.Widget),
		Label:        c.Label,
		Required:     c.Required,
		RequiredAttr: c.Required && !c.Disabled && c.Widget != fields.WidgetCheckboxGroup,
		Disabled:     c.Disabled,
		InputType:    c.InputType,
		Placeholder:  c.Placeholder,
		Rows:         strconv.Itoa(c.Rows),
		Min:          formatBound(c.Min),
		Max:          formatBound(c.Max),
		Text:         c.Text,
		Checked:      c.Checked,
		Tags:         c.Tags,
		LegendLow:    c.Legend[0],
		LegendHigh:   c.Legend[1],
	}
	// signed notes show the sanitized markup, editable ones keep it in a
	// textarea for the client-side editor
	if c.Widget == fields.WidgetRichText {
		v.RichHTML = fields.SanitizeHTML(c.Text)
	}
	for _, opt := range c.Options {
		v.Options = append(v.Options, optionView{Value: opt.Value, Label: opt.Label, Selected: opt.Selected})
	}
	for _, step := range c.Steps {
		v.Steps = append(v.Steps, stepView{Value: strconv.Itoa(step.Value), Band: string(step.Band), Selected: step.Selected})
	}
	return v
}

// renderField executes the widget template of node and wraps it in the
// field template. Groups render their children into templates/widgets/group.
func (r *Renderer) renderField(node form.FieldNode) (string, error) {
	view := newFieldView(node)
	errs, err := r.renderErrors(node.Errors)
	if err != nil {
		return "", err
	}

	if node.Control.Widget == fields.WidgetGroup {
		children := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			html, err := r.renderField(child)
			if err != nil {
				return "", err
			}
			children = append(children, html)
		}
		return r.execute(widgetTemplate(fields.WidgetGroup), map[string]any{
			"field":    view,
			"errors":   errs,
			"children": strings.Join(children, ""),
		})
	}

	data := map[string]any{"field": view, "errors": errs}
	control, err := r.execute(widgetTemplate(node.Control.Widget), data)
	if err != nil {
		return "", err
	}
	data["control"] = control
	return r.execute(fieldTemplate, data)
}

func (r *Renderer) renderErrors(messages []string) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	return r.execute(errorsTemplate, map[string]any{"messages": messages})
}

func (r *Renderer) execute(name string, data map[string]any) (string, error) {
	out, err := r.cfg.templates.RenderTemplate(name, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: %w", err)
	}
	return out, nil
}

func widgetTemplate(w fields.Widget) string {
	return "templates/widgets/" + string(w)
}

// controlID turns a dotted answer path into an element id.
func controlID(input any, _ any) (any, error) {
	path, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("control_id: want a string path, got %T", input)
	}
	return "field-" + strings.ReplaceAll(path, ".", "-"), nil
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
