package tailwind

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/render/template"
	"github.com/mespms/clinicalforms/pkg/render/template/gotemplate"
	"github.com/mespms/clinicalforms/pkg/schema"
)

// Name is the registry key of the renderer.
const Name = "html"

type Option func(*config)

type config struct {
	action      string
	method      string
	submitLabel string
	files       fs.FS
	templates   template.TemplateRenderer
}

// WithAction sets the form's action attribute.
func WithAction(action string) Option {
	return func(cfg *config) {
		cfg.action = strings.TrimSpace(action)
	}
}

// WithMethod overrides the form method (post by default).
func WithMethod(method string) Option {
	return func(cfg *config) {
		if m := strings.ToLower(strings.TrimSpace(method)); m != "" {
			cfg.method = m
		}
	}
}

// WithSubmitLabel overrides the submit button caption.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if l := strings.TrimSpace(label); l != "" {
			cfg.submitLabel = l
		}
	}
}

// WithTemplatesFS replaces the embedded templates. The set must provide
// every file TemplatesFS does.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.files = files
		}
	}
}

// WithTemplateRenderer supplies a preconfigured engine. It must register the
// control_id filter the field templates use.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(cfg *config) {
		cfg.templates = renderer
	}
}

// Renderer writes a clinical form as server-side HTML styled with Tailwind
// utility classes.
type Renderer struct {
	cfg config
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options. Without
// WithTemplateRenderer it builds a pongo2 engine over the templates.
func New(options ...Option) (*Renderer, error) {
	cfg := config{method: "post", submitLabel: "Save", files: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.files),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTemplateFunc(map[string]any{"control_id": gotemplate.FilterFunc(controlID)}),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		cfg.templates = engine
	}
	return &Renderer{cfg: cfg}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, structure schema.Structure, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := opts.NewForm(structure)
	if err != nil {
		return nil, fmt.Errorf("html renderer: %w", err)
	}
	tree := f.Render()

	sections := make([]string, 0, len(tree.Sections))
	for _, section := range tree.Sections {
		html, err := r.renderSection(section)
		if err != nil {
			return nil, err
		}
		sections = append(sections, html)
	}

	out, err := r.execute("templates/form", map[string]any{
		"form":     r.newFormView(tree, opts),
		"sections": strings.Join(sections, ""),
	})
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

type formView struct {
	Method      string       `json:"method"`
	Action      string       `json:"action"`
	Theme       string       `json:"theme"`
	Variant     string       `json:"variant"`
	Readonly    bool         `json:"readonly"`
	Stylesheet  string       `json:"stylesheet"`
	CSSVars     []cssVar     `json:"css_vars"`
	Title       string       `json:"title"`
	Errors      []string     `json:"errors"`
	Hidden      []hiddenView `json:"hidden"`
	SubmitLabel string       `json:"submit_label"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sectionView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r *Renderer) newFormView(tree form.Tree, opts render.RenderOptions) formView {
	v := formView{
		Method:      r.cfg.method,
		Action:      r.cfg.action,
		Readonly:    tree.Disabled,
		Title:       strings.TrimSpace(opts.Title),
		Errors:      opts.FormErrors,
		SubmitLabel: r.cfg.submitLabel,
	}
	if opts.Theme != nil {
		v.Theme = opts.Theme.Theme
		v.Variant = opts.Theme.Variant
		v.Stylesheet, v.CSSVars = themeData(opts.Theme)
	}
	for _, hidden := range render.SortedHiddenFields(opts.Hidden) {
		v.Hidden = append(v.Hidden, hiddenView{Name: hidden.Name, Value: hidden.Value})
	}
	return v
}

func (r *Renderer) renderSection(section form.SectionNode) (string, error) {
	nodes := make([]string, 0, len(section.Fields))
	for _, node := range section.Fields {
		html, err := r.renderField(node)
		if err != nil {
			return "", err
		}
		nodes = append(nodes, html)
	}
	return r.execute("templates/section", map[string]any{
		"section": sectionView{ID: section.ID, Title: section.Title, Description: section.Description},
		"fields":  strings.Join(nodes, ""),
	})
}
