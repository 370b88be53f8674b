package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mespms/clinicalforms/pkg/schema"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <template>...",
		Short: "Check template structures for configuration problems",
		Long: "Loads each template and reports every structural problem: duplicate field ids,\n" +
			"missing attributes and unsupported field types. Templates may be files,\n" +
			"builtin:<name> or numeric backend ids.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, ref := range args {
				tpl, err := a.loadTemplate(cmd.Context(), ref)
				if err != nil {
					failed++
					fmt.Fprintf(a.out, "FAIL %s\n", ref)
					var structErr *schema.StructureError
					if errors.As(err, &structErr) {
						for _, p := range structErr.Problems {
							fmt.Fprintf(a.out, "  %s\n", p.Error())
						}
					} else {
						fmt.Fprintf(a.out, "  %v\n", err)
					}
					continue
				}
				idx, err := schema.NewIndex(tpl.Structure)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "ok   %s: %s v%d (%s, %d sections, %d fields)\n",
					ref, tpl.Name, tpl.Version, tpl.Category.Label(), len(tpl.Structure.Sections), idx.Len())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed", failed, len(args))
			}
			return nil
		},
	}
}
