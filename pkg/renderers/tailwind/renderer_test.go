package tailwind_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/renderers/tailwind"
	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/testsupport"
)

func newRenderer(t *testing.T, options ...tailwind.Option) *tailwind.Renderer {
	t.Helper()
	r, err := tailwind.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func renderString(t *testing.T, r *tailwind.Renderer, s schema.Structure, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(testsupport.Context(), s, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Errorf("output missing %q", fragment)
		}
	}
}

func assertNotContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(html, fragment) {
			t.Errorf("output unexpectedly contains %q", fragment)
		}
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r := newRenderer(t)
	if r.Name() != "html" {
		t.Fatalf("name: got %q", r.Name())
	}
	if r.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("content type: got %q", r.ContentType())
	}

	reg := render.NewRegistry(r)
	got, err := reg.Get("html")
	if err != nil || got != r {
		t.Fatalf("registry lookup: %v", err)
	}
}

func TestRenderer_RendersEveryKind(t *testing.T) {
	html := renderString(t, newRenderer(t), testsupport.IntakeStructure(), render.RenderOptions{
		Title: "Initial Intake",
	})

	assertContains(t, html,
		`<h2 class="text-xl font-semibold text-gray-900">Initial Intake</h2>`,
		`<section class="bg-white rounded-xl border border-gray-200 p-6" data-section="subjective">`,
		`<p class="text-sm text-gray-600 mt-1">Patient-reported history</p>`,
		`Chief Complaint<span class="text-red-500 ml-1">*</span>`,
		`type="text" id="field-chief_complaint" name="chief_complaint" value="" placeholder="Main concern"`,
		`rows="3"`,
		`type="date"`,
		`type="number" id="field-rom" name="rom" value="" min="0" max="180" step="any"`,
		`<option value="left">Left</option>`,
		`role="radiogroup"`,
		`type="checkbox" id="field-modalities-1" name="modalities" value="ice"`,
		`data-rich-text="true"`,
		`placeholder="Enter rich text content..."`,
		`placeholder="Type and press Enter..."`,
		`<fieldset class="border-l-4 border-sky-300 pl-4 space-y-4" data-field="vitals" data-kind="nested_group">`,
		`name="vitals.bp"`,
		`id="field-vitals-hr"`,
		`<span>No pain</span><span>Worst pain</span>`,
		`<button type="submit"`,
	)
	if strings.Index(html, `data-section="subjective"`) > strings.Index(html, `data-section="objective"`) {
		t.Fatalf("sections rendered out of stored order")
	}
	if got := strings.Count(html, `class="sr-only"`); got != 11 {
		t.Fatalf("pain scale steps: want 11, got %d", got)
	}
}

func TestRenderer_ValuesAndErrors(t *testing.T) {
	html := renderString(t, newRenderer(t), testsupport.IntakeStructure(), render.RenderOptions{
		Values: map[string]any{
			"chief_complaint": `Knee <pain> & "swelling"`,
			"pain_level":      8,
			"symptoms":        []any{"stiffness", "clicking"},
			"side":            "right",
			"modalities":      []any{"heat"},
			"consent":         true,
			"vitals":          map[string]any{"bp": "120/80"},
		},
		Errors: map[string][]string{
			"rom":       {"Range of Motion must be at most 180"},
			"vitals.hr": {"Heart Rate must be a number"},
		},
		FormErrors: []string{"Template version is stale"},
	})

	assertContains(t, html,
		`value="Knee &lt;pain&gt; &amp; `,
		`<option value="right" selected>Right</option>`,
		`name="modalities" value="heat" checked`,
		`name="consent" value="true" checked`,
		`value="120/80"`,
		`stiffness<input type="hidden" name="symptoms" value="stiffness">`,
		`bg-red-500 text-white" data-band="high"><input type="radio" class="sr-only" name="pain_level" value="8" checked>`,
		`<p class="text-xs text-red-500 mt-1" role="alert">Range of Motion must be at most 180</p>`,
		`<p class="text-xs text-red-500 mt-1" role="alert">Heart Rate must be a number</p>`,
		`<li>Template version is stale</li>`,
	)
	assertNotContains(t, html, "<pain>", `"swelling"`)
}

func TestRenderer_DisabledSanitizesRichText(t *testing.T) {
	html := renderString(t, newRenderer(t), testsupport.IntakeStructure(), render.RenderOptions{
		Disabled: true,
		Values: map[string]any{
			"notes": `<p>Improving</p><script>alert(1)</script>`,
		},
		Hidden: render.NoteHidden(42, 3),
	})

	assertContains(t, html,
		`data-readonly="true"`,
		`<p>Improving</p>`,
		`name="chief_complaint" value="" placeholder="Main concern" disabled>`,
		`<input type="hidden" name="template" value="42">`,
		`<input type="hidden" name="template_version" value="3">`,
	)
	assertNotContains(t, html, "<script>", `<button type="submit"`, " required", `placeholder="Type and press Enter..."`)
}

func TestRenderer_SubsetAndOptions(t *testing.T) {
	r := newRenderer(t, tailwind.WithAction("/notes/7"), tailwind.WithMethod("PUT"), tailwind.WithSubmitLabel("Sign"))
	html := renderString(t, r, testsupport.IntakeStructure(), render.RenderOptions{
		Subset: render.Subset{Sections: []string{"objective"}},
	})

	assertContains(t, html, `method="put"`, `action="/notes/7"`, `>Sign</button>`, `data-section="objective"`)
	assertNotContains(t, html, `data-section="subjective"`)
}

func TestRenderer_RejectsInvalidStructure(t *testing.T) {
	bad := schema.Structure{Sections: []schema.Section{{
		ID: "s", Title: "S",
		Fields: []schema.Field{
			{ID: "a", Label: "A", Spec: schema.TextSpec{}},
			{ID: "a", Label: "B", Spec: schema.TextSpec{}},
		},
	}}}
	_, err := newRenderer(t).Render(testsupport.Context(), bad, render.RenderOptions{})
	if !errors.Is(err, schema.ErrDuplicateFieldID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRenderer(t).Render(ctx, testsupport.IntakeStructure(), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestThemeConfig_MergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "clinic",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#0284c7", "radius": "0.75rem"},
		Assets: theme.Assets{
			Prefix: "/assets/themes/clinic",
			Files:  map[string]string{tailwind.StylesheetAsset: "forms.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#38bdf8"},
				Assets: theme.Assets{Files: map[string]string{tailwind.StylesheetAsset: "forms.dark.css"}},
			},
		},
	}

	cfg := tailwind.ThemeConfig(manifest, "dark")
	want := map[string]string{"--brand": "#38bdf8", "--radius": "0.75rem"}
	if diff := cmp.Diff(want, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.AssetURL(tailwind.StylesheetAsset); got != "/assets/themes/clinic/forms.dark.css" {
		t.Fatalf("asset url: got %q", got)
	}
	if cfg.Variant != "dark" || cfg.Theme != "clinic" {
		t.Fatalf("selection: got %q/%q", cfg.Theme, cfg.Variant)
	}

	base := tailwind.ThemeConfig(manifest, "sepia")
	if base.Variant != "" || base.CSSVars["--brand"] != "#0284c7" {
		t.Fatalf("unknown variant should fall back to the base theme: %+v", base.CSSVars)
	}

	html := renderString(t, newRenderer(t), testsupport.IntakeStructure(), render.RenderOptions{Theme: cfg})
	assertContains(t, html,
		`data-theme="clinic" data-theme-variant="dark"`,
		`<link rel="stylesheet" href="/assets/themes/clinic/forms.dark.css">`,
		`<style>:root { --brand: #38bdf8; --radius: 0.75rem; }</style>`,
	)
}

func TestTemplatesFS_CoversEveryWidget(t *testing.T) {
	widgets := []fields.Widget{
		fields.WidgetInput, fields.WidgetTextarea, fields.WidgetSelect, fields.WidgetCheckbox,
		fields.WidgetCheckboxGroup, fields.WidgetRadioGroup, fields.WidgetPainScale,
		fields.WidgetRichText, fields.WidgetTags, fields.WidgetGroup,
	}
	for _, w := range widgets {
		if _, err := fs.Stat(tailwind.TemplatesFS(), "templates/widgets/"+string(w)+".tmpl"); err != nil {
			t.Errorf("widget %s: %v", w, err)
		}
	}
	for _, name := range []string{"form", "section", "field", "errors"} {
		if _, err := fs.Stat(tailwind.TemplatesFS(), "templates/"+name+".tmpl"); err != nil {
			t.Errorf("template %s: %v", name, err)
		}
	}
}

func TestRenderer_TemplatesOverride(t *testing.T) {
	files := fstest.MapFS{}
	err := fs.WalkDir(tailwind.TemplatesFS(), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(tailwind.TemplatesFS(), path)
		if err != nil {
			return err
		}
		files[path] = &fstest.MapFile{Data: data}
		return nil
	})
	if err != nil {
		t.Fatalf("copy templates: %v", err)
	}
	files["templates/section.tmpl"] = &fstest.MapFile{
		Data: []byte(`<article data-section="{{ section.id }}">{{ fields|safe }}</article>`),
	}

	html := renderString(t, newRenderer(t, tailwind.WithTemplatesFS(files)), testsupport.IntakeStructure(), render.RenderOptions{})
	assertContains(t, html, `<article data-section="subjective">`, `name="chief_complaint"`)
	assertNotContains(t, html, "<section")
}

func TestRenderer_MissingTemplate(t *testing.T) {
	files := fstest.MapFS{"templates/form.tmpl": &fstest.MapFile{Data: []byte(`<form>{{ sections|safe }}</form>`)}}
	_, err := newRenderer(t, tailwind.WithTemplatesFS(files)).Render(testsupport.Context(), testsupport.IntakeStructure(), render.RenderOptions{})
	if err == nil || !strings.Contains(err.Error(), "templates/widgets/input.tmpl") {
		t.Fatalf("expected a missing widget template error, got %v", err)
	}
}
