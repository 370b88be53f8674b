package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mespms/clinicalforms/pkg/contract"
)

func newSchemaCmd(a *app) *cobra.Command {
	var (
		format string
		check  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "schema <template>",
		Short: "Print the OpenAPI schema of a template's answer map, or check answers against it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := a.loadTemplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if check != "" {
				answers, err := readAnswers(check)
				if err != nil {
					return err
				}
				if err := contract.CheckAnswers(tpl.Structure, answers, a.contractOptions()...); err != nil {
					printViolations(a, err)
					return fmt.Errorf("answers do not match %s v%d", tpl.Name, tpl.Version)
				}
				fmt.Fprintf(a.out, "answers match %s v%d\n", tpl.Name, tpl.Version)
				return nil
			}

			doc := contract.Document(tpl, a.contractOptions()...)
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			if strings.EqualFold(format, "yaml") {
				var generic any
				if err := json.Unmarshal(data, &generic); err != nil {
					return err
				}
				if data, err = yaml.Marshal(generic); err != nil {
					return fmt.Errorf("encode schema: %w", err)
				}
			} else {
				data = append(data, '\n')
			}
			return writeOutput(a.out, output, data)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&check, "check", "", "check this JSON answer map instead of printing the schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
