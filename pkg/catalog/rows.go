package catalog

import (
	"github.com/mespms/clinicalforms/pkg/schema"
	"github.com/mespms/clinicalforms/pkg/session"
)

// Actions are the row menu entries offered for a template.
type Actions struct {
	Edit       bool
	NewVersion bool
	Archive    bool
}

// None reports whether the row has no menu.
func (a Actions) None() bool {
	return !a.Edit && !a.NewVersion && !a.Archive
}

// ActionsFor returns what user may do with t. Only administrators manage
// templates; archived templates are read-only whatever their active flag.
func ActionsFor(t schema.Template, user session.User) Actions {
	if !user.IsAdmin() || t.IsArchived {
		return Actions{}
	}
	return Actions{Edit: true, NewVersion: true, Archive: true}
}

// Row is one line of the template list.
type Row struct {
	Template      schema.Template
	CategoryLabel string
	Sections      int
	// Fields counts top-level fields across sections.
	Fields int
	// Latest marks the current version of a live template.
	Latest  bool
	Actions Actions
}

// Rows filters templates and describes each remaining row for user.
func Rows(templates []schema.Template, f Filter, user session.User) []Row {
	filtered := Apply(templates, f)
	rows := make([]Row, 0, len(filtered))
	for _, t := range filtered {
		fields := 0
		for _, section := range t.Structure.Sections {
			fields += len(section.Fields)
		}
		rows = append(rows, Row{
			Template:      t,
			CategoryLabel: t.Category.Label(),
			Sections:      len(t.Structure.Sections),
			Fields:        fields,
			Latest:        t.IsLatestVersion && !t.IsArchived,
			Actions:       ActionsFor(t, user),
		})
	}
	return rows
}
