package schema

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a template.
type Category string

const (
	CategoryInitial   Category = "INITIAL"
	CategoryFollowUp  Category = "FOLLOW_UP"
	CategoryProgress  Category = "PROGRESS"
	CategoryDischarge Category = "DISCHARGE"
	CategorySOAP      Category = "SOAP"
	CategoryCustom    Category = "CUSTOM"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryInitial,
		CategoryFollowUp,
		CategoryProgress,
		CategoryDischarge,
		CategorySOAP,
		CategoryCustom,
	}
}

// Label returns the short name shown in template lists.
func (c Category) Label() string {
	switch c {
	case CategoryInitial:
		return "Initial"
	case CategoryFollowUp:
		return "Follow-up"
	case CategoryProgress:
		return "Progress"
	case CategoryDischarge:
		return "Discharge"
	case CategorySOAP:
		return "SOAP"
	case CategoryCustom:
		return "Custom"
	default:
		return string(c)
	}
}

// Title returns the long name used when picking a category for a new
// template.
func (c Category) Title() string {
	switch c {
	case CategoryInitial:
		return "Initial Assessment"
	case CategoryFollowUp:
		return "Follow-up Note"
	case CategoryProgress:
		return "Progress Note"
	case CategoryDischarge:
		return "Discharge Summary"
	case CategorySOAP:
		return "SOAP Note"
	case CategoryCustom:
		return "Custom Template"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the six categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts the enum value in any case, with '-' or ' ' in place
// of '_'.
func ParseCategory(raw string) (Category, error) {
	normalised := strings.ToUpper(strings.TrimSpace(raw))
	normalised = strings.NewReplacer("-", "_", " ", "_").Replace(normalised)
	c := Category(normalised)
	if !c.Valid() {
		return "", fmt.Errorf("schema: unknown category %q", raw)
	}
	return c, nil
}

// Template is a stored clinical note template. Records are immutable apart
// from the IsActive and IsArchived flags; revisions are new records linked
// through ParentTemplate.
type Template struct {
	ID              int64     `json:"id" yaml:"id"`
	Clinic          int64     `json:"clinic" yaml:"clinic"`
	CreatedBy       int64     `json:"created_by" yaml:"created_by"`
	CreatedByName   string    `json:"created_by_name,omitempty" yaml:"created_by_name,omitempty"`
	Name            string    `json:"name" yaml:"name"`
	Description     string    `json:"description" yaml:"description"`
	Category        Category  `json:"category" yaml:"category"`
	Structure       Structure `json:"structure" yaml:"structure"`
	Version         int       `json:"version" yaml:"version"`
	ParentTemplate  *int64    `json:"parent_template" yaml:"parent_template"`
	IsActive        bool      `json:"is_active" yaml:"is_active"`
	IsArchived      bool      `json:"is_archived" yaml:"is_archived"`
	IsLatestVersion bool      `json:"is_latest_version" yaml:"is_latest_version"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	out.Structure = t.Structure.Clone()
	out.ParentTemplate = clonePtr(t.ParentTemplate)
	return out
}

// Editable reports whether edit and new-version actions apply.
func (t Template) Editable() bool {
	return !t.IsArchived
}
