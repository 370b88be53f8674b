package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mespms/clinicalforms/pkg/contract"
	"github.com/mespms/clinicalforms/pkg/fields"
	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/renderers/tui"
	"github.com/mespms/clinicalforms/pkg/schema"
)

func newFillCmd(a *app) *cobra.Command {
	var (
		answersPath string
		output      string
		format      string
		maxAttempts int
	)
	cmd := &cobra.Command{
		Use:   "fill <template>",
		Short: "Fill a template interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := a.loadTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			answers, err := readAnswers(answersPath)
			if err != nil {
				return err
			}
			registry := render.NewRegistry(a.promptRenderer(tpl.Structure, tui.OutputFormat(format), maxAttempts))
			out, err := registry.Render(cmd.Context(), tui.Name, tpl.Structure, render.RenderOptions{
				Title:       tpl.Name,
				Values:      answers,
				FormOptions: a.formOptions(),
			})
			if err != nil {
				printViolations(a, err)
				return err
			}
			a.logger.Debug().Str("template", tpl.Name).Str("content_type", out.ContentType).Msg("filled")
			return writeOutput(a.out, output, out.Body)
		},
	}
	cmd.Flags().StringVar(&answersPath, "answers", "", "JSON answer map to prefill")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "give up after this many invalid answers per field (0 = never)")
	return cmd
}

// promptRenderer builds the terminal renderer. Collected answers are
// checked against the template's answer contract before serialization.
func (a *app) promptRenderer(structure schema.Structure, format tui.OutputFormat, maxAttempts int) *tui.Renderer {
	checkOpts := a.contractOptions()
	return tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(a.errOut)),
		tui.WithOutputFormat(format),
		tui.WithMaxAttempts(maxAttempts),
		tui.WithTheme(tui.Theme{SectionPrefix: "== ", ErrorPrefix: "! "}),
		tui.WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			if err := contract.CheckAnswers(structure, values, checkOpts...); err != nil {
				return nil, err
			}
			return values, nil
		}),
	)
}

func (a *app) contractOptions() []contract.Option {
	if a.cfg.CheckboxAnswered() {
		return []contract.Option{contract.WithCheckboxPolicy(fields.CheckboxAnswered)}
	}
	return nil
}

func printViolations(a *app, err error) {
	var answerErr *contract.AnswerError
	if !errors.As(err, &answerErr) {
		return
	}
	for path, msgs := range answerErr.Fields {
		for _, msg := range msgs {
			fmt.Fprintf(a.errOut, "  %s: %s\n", firstNonEmpty(path, "(answers)"), msg)
		}
	}
}
