package catalog

import (
	"strings"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// Filter is the list view's filter state. The zero value shows every
// non-archived template.
type Filter struct {
	// Search matches name or description, case-insensitively.
	Search string
	// Category restricts to one category when set.
	Category schema.Category
	// ShowArchived includes archived templates.
	ShowArchived bool
}

// Match reports whether t passes the filter.
func (f Filter) Match(t schema.Template) bool {
	if !f.ShowArchived && t.IsArchived {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// Apply returns the templates passing the filter in input order.
func Apply(templates []schema.Template, f Filter) []schema.Template {
	out := make([]schema.Template, 0, len(templates))
	for _, t := range templates {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
