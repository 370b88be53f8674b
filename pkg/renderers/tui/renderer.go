package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/schema"
)

// Name is the registry key of the renderer.
const Name = "tui"

const skipOption = "(skip)"

// Renderer implements render.Renderer for terminal-driven sessions: it
// prompts for every field in render order, re-prompts a field until its
// answer validates, and serializes the collected answers.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{outputFormat: OutputFormatJSON}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs the prompt session. Values in opts prefill the prompts; the
// result holds every field, defaults included.
func (r *Renderer) Render(ctx context.Context, structure schema.Structure, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Disabled {
		return nil, ErrReadOnly
	}

	f, err := opts.NewForm(structure)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	if title := strings.TrimSpace(opts.Title); title != "" {
		if err := r.info(ctx, r.theme.SectionPrefix, title); err != nil {
			return nil, err
		}
	}
	for _, msg := range opts.FormErrors {
		if err := r.info(ctx, r.theme.ErrorPrefix, msg); err != nil {
			return nil, err
		}
	}

	for _, section := range f.Render().Sections {
		heading := section.Title
		if section.Description != "" {
			heading += " - " + section.Description
		}
		if err := r.info(ctx, r.theme.SectionPrefix, heading); err != nil {
			return nil, err
		}
		for _, node := range section.Fields {
			if err := r.promptField(ctx, f, node); err != nil {
				return nil, err
			}
		}
	}

	if errs := f.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("tui: %d fields still invalid (first %s: %s)", len(errs), errs.Paths()[0], errs.First(errs.Paths()[0]))
	}

	values := f.Resolved()
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptField(ctx context.Context, f *form.Form, node form.FieldNode) error {
	for attempt := 1; ; attempt++ {
		if err := r.ask(ctx, f, node); err != nil {
			return err
		}
		msgs := f.Validate()[node.Path]
		if len(msgs) == 0 {
			return nil
		}
		for _, msg := range msgs {
			if err := r.info(ctx, r.theme.ErrorPrefix, msg); err != nil {
				return err
			}
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, node.Path)
		}
		node = refresh(f, node)
	}
}

// refresh rebuilds a node from the form so re-prompts show the last answer.
func refresh(f *form.Form, node form.FieldNode) form.FieldNode {
	var out form.FieldNode
	f.Render().Walk(func(_ form.SectionNode, n form.FieldNode) {
		if n.Path == node.Path {
			out = n
		}
	})
	if out.Path == "" {
		return node
	}
	return out
}

func (r *Renderer) ask(ctx context.Context, f *form.Form, node form.FieldNode) error {
	c := node.Control
	label := c.Label
	if c.Required {
		label += " *"
	}

	switch c.Widget {
	case fields.WidgetGroup:
		if err := r.info(ctx, r.theme.InfoPrefix, label); err != nil {
			return err
		}
		for _, child := range node.Children {
			if err := r.promptField(ctx, f, child); err != nil {
				return err
			}
		}
		return nil

	case fields.WidgetInput:
		help := c.Placeholder
		if c.Kind == schema.FieldTypeDate {
			help = "YYYY-MM-DD"
		}
		answer, err := r.driver.Input(ctx, InputConfig{Message: label, Default: c.Text, Help: help})
		if err != nil {
			return err
		}
		return f.Apply(node.Path, fields.SetValue{Value: answer})

	case fields.WidgetTextarea, fields.WidgetRichText:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: c.Text, Help: c.Placeholder})
		if err != nil {
			return err
		}
		return f.Apply(node.Path, fields.SetValue{Value: answer})

	case fields.WidgetCheckbox:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: c.Checked})
		if err != nil {
			return err
		}
		return f.Apply(node.Path, fields.SetValue{Value: answer})

	case fields.WidgetSelect, fields.WidgetRadioGroup:
		return r.askChoice(ctx, f, node, label)

	case fields.WidgetCheckboxGroup:
		labels := make([]string, len(c.Options))
		var defaults []int
		for i, opt := range c.Options {
			labels[i] = opt.Label
			if opt.Selected {
				defaults = append(defaults, i)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: labels, Defaults: defaults})
		if err != nil {
			return err
		}
		selected := make([]string, 0, len(indices))
		for _, i := range indices {
			if i >= 0 && i < len(c.Options) {
				selected = append(selected, c.Options[i].Value)
			}
		}
		return f.Apply(node.Path, fields.SetValue{Value: selected})

	case fields.WidgetPainScale:
		return r.askPain(ctx, f, node, label)

	case fields.WidgetTags:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: strings.Join(c.Tags, ", "),
			Help:    "Separate tags with commas",
		})
		if err != nil {
			return err
		}
		if err := f.Apply(node.Path, fields.SetValue{Value: []string{}}); err != nil {
			return err
		}
		for _, tag := range strings.Split(answer, ",") {
			if err := f.Apply(node.Path, fields.AddTag{Input: tag}); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("tui: field %q: %w %q", node.Path, fields.ErrUnsupportedFieldType, c.Kind)
	}
}

func (r *Renderer) askChoice(ctx context.Context, f *form.Form, node form.FieldNode, label string) error {
	c := node.Control
	labels := make([]string, 0, len(c.Options)+1)
	values := make([]string, 0, len(c.Options)+1)
	if !c.Required {
		labels = append(labels, skipOption)
		values = append(values, "")
	}
	defaultIdx := -1
	for _, opt := range c.Options {
		if opt.Selected {
			defaultIdx = len(labels)
		}
		labels = append(labels, opt.Label)
		values = append(values, opt.Value)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIdx, Help: c.Placeholder})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		return r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("Invalid %s selection", c.Label))
	}
	return f.Apply(node.Path, fields.SetValue{Value: values[idx]})
}

func (r *Renderer) askPain(ctx context.Context, f *form.Form, node form.FieldNode, label string) error {
	c := node.Control
	labels := make([]string, 0, len(c.Steps)+1)
	if !c.Required {
		labels = append(labels, skipOption)
	}
	offset := len(labels)
	defaultIdx := -1
	for i, step := range c.Steps {
		text := strconv.Itoa(step.Value)
		switch i {
		case 0:
			text += " (" + c.Legend[0] + ")"
		case len(c.Steps) - 1:
			text += " (" + c.Legend[1] + ")"
		}
		if step.Selected {
			defaultIdx = offset + i
		}
		labels = append(labels, text)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: labels, DefaultIndex: defaultIdx, PageSize: len(labels)})
	if err != nil {
		return err
	}
	switch {
	case idx < offset && idx >= 0:
		return f.Apply(node.Path, fields.SetValue{Value: nil})
	case idx >= offset && idx < len(labels):
		return f.Apply(node.Path, fields.SelectStep{Step: c.Steps[idx-offset].Value})
	default:
		return r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("Invalid %s selection", c.Label))
	}
}

func (r *Renderer) info(ctx context.Context, prefix, msg string) error {
	return r.driver.Info(ctx, prefix+msg)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(joinPath(prefix, key), val, out)
		}
	case []string:
		for _, val := range v {
			out.Add(prefix, val)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix, fmt.Sprint(val))
		}
	case nil:
		out.Set(prefix, "")
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(v)) {
			writePretty(b, joinPath(prefix, key), v[key])
		}
	case []string:
		fmt.Fprintf(b, "%s=%s\n", prefix, strings.Join(v, ", "))
	case nil:
		fmt.Fprintf(b, "%s=\n", prefix)
	default:
		fmt.Fprintf(b, "%s=%v\n", prefix, v)
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
