package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mespms/clinicalforms/pkg/form"
	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/renderers/tailwind"
)

type renderFlags struct {
	answers   string
	output    string
	action    string
	submit    string
	sections  []string
	fields    []string
	validate  bool
	readOnly  bool
	themeFile string
	theme     string
	variant   string
	templates string
}

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template as an HTML form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := a.loadTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			answers, err := readAnswers(f.answers)
			if err != nil {
				return err
			}
			themeCfg, err := a.themeConfig(f)
			if err != nil {
				return err
			}

			opts := render.RenderOptions{
				Title:       tpl.Name,
				Values:      answers,
				Disabled:    f.readOnly,
				Subset:      render.Subset{Sections: f.sections, Fields: f.fields},
				Theme:       themeCfg,
				FormOptions: a.formOptions(),
			}
			if tpl.ID > 0 {
				opts.Hidden = render.NoteHidden(tpl.ID, tpl.Version)
			}
			if f.validate {
				_, errs, err := form.Interpret(tpl.Structure, answers, opts.FormOptions...)
				if err != nil {
					return err
				}
				opts.Errors = errs
			}

			options := []tailwind.Option{
				tailwind.WithAction(f.action),
				tailwind.WithSubmitLabel(f.submit),
			}
			if f.templates != "" {
				options = append(options, tailwind.WithTemplatesFS(os.DirFS(f.templates)))
			}
			html, err := tailwind.New(options...)
			if err != nil {
				return err
			}
			registry := render.NewRegistry(html)
			out, err := registry.Render(cmd.Context(), tailwind.Name, tpl.Structure, opts)
			if err != nil {
				return err
			}
			a.logger.Debug().Str("template", tpl.Name).Str("content_type", out.ContentType).Int("bytes", len(out.Body)).Msg("rendered")
			return writeOutput(a.out, f.output, out.Body)
		},
	}
	cmd.Flags().StringVar(&f.answers, "answers", "", "JSON answer map to prefill (- for stdin)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&f.action, "action", "", "form action url")
	cmd.Flags().StringVar(&f.submit, "submit-label", "", "submit button label")
	cmd.Flags().StringSliceVar(&f.sections, "section", nil, "only render these section ids")
	cmd.Flags().StringSliceVar(&f.fields, "field", nil, "only render these top-level field ids")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "validate the answers and show messages")
	cmd.Flags().BoolVar(&f.readOnly, "read-only", false, "render disabled controls, as for a signed note")
	cmd.Flags().StringVar(&f.themeFile, "theme-file", "", "extra go-theme manifest (YAML or JSON)")
	cmd.Flags().StringVar(&f.theme, "theme", "", "theme name (overrides render.theme)")
	cmd.Flags().StringVar(&f.variant, "variant", "", "theme variant (overrides render.variant)")
	cmd.Flags().StringVar(&f.templates, "templates-dir", "", "directory holding a full templates/ tree to use instead of the built-in one")
	return cmd
}

func (a *app) themeConfig(f renderFlags) (*themeConfig, error) {
	themes := tailwind.NewThemes()
	if f.themeFile != "" {
		manifest, err := loadManifest(f.themeFile)
		if err != nil {
			return nil, err
		}
		if err := themes.Register(manifest); err != nil {
			return nil, err
		}
	}
	name := firstNonEmpty(f.theme, a.cfg.Render.Theme)
	variant := firstNonEmpty(f.variant, a.cfg.Render.Variant)
	cfg, err := themes.SelectConfig(name, variant)
	if err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
