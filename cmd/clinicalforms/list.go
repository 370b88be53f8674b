package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mespms/clinicalforms/pkg/catalog"
	"github.com/mespms/clinicalforms/pkg/schema"
)

func newListCmd(a *app) *cobra.Command {
	var (
		dir      string
		builtin  bool
		search   string
		category string
		archived bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates from a directory, the bundled set or the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := a.listTemplates(cmd.Context(), dir, builtin)
			if err != nil {
				return err
			}
			filter := catalog.Filter{
				Search:       search,
				Category:     schema.Category(strings.ToUpper(strings.TrimSpace(category))),
				ShowArchived: archived,
			}
			rows := catalog.Rows(templates, filter, a.user())
			if len(rows) == 0 {
				fmt.Fprintln(a.out, "No templates found.")
				return nil
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tVERSION\tSECTIONS\tFIELDS\tSTATUS\tACTIONS")
			for _, row := range rows {
				t := row.Template
				fmt.Fprintf(tw, "%d\t%s\t%s\tv%d\t%d\t%d\t%s\t%s\n",
					t.ID, t.Name, row.CategoryLabel, t.Version, row.Sections, row.Fields, status(row), actions(row.Actions))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "read templates from this directory")
	cmd.Flags().BoolVar(&builtin, "builtin", false, "list the bundled templates")
	cmd.Flags().StringVar(&search, "search", "", "match name or description")
	cmd.Flags().StringVar(&category, "category", "", "restrict to a category (INITIAL, FOLLOW_UP, ...)")
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived templates")
	return cmd
}

func (a *app) listTemplates(ctx context.Context, dir string, builtin bool) ([]schema.Template, error) {
	switch {
	case builtin:
		return schema.LoadFS(schema.EmbeddedFS())
	case dir != "":
		return schema.LoadFS(os.DirFS(dir))
	default:
		c, err := a.client()
		if err != nil {
			return nil, err
		}
		return c.Templates.List(ctx)
	}
}

func status(row catalog.Row) string {
	switch {
	case row.Template.IsArchived:
		return "archived"
	case row.Latest:
		return "latest"
	case row.Template.IsActive:
		return "active"
	default:
		return "inactive"
	}
}

func actions(act catalog.Actions) string {
	if act.None() {
		return "-"
	}
	var out []string
	if act.Edit {
		out = append(out, "edit")
	}
	if act.NewVersion {
		out = append(out, "new-version")
	}
	if act.Archive {
		out = append(out, "archive")
	}
	return strings.Join(out, ",")
}
