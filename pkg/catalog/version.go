package catalog

import (
	"errors"
	"fmt"

	"github.com/mespms/clinicalforms/pkg/schema"
)

var (
	// ErrArchived is returned for edits or new versions of archived templates.
	ErrArchived = errors.New("catalog: template is archived")
	// ErrForbidden is returned when the user may not manage templates.
	ErrForbidden = errors.New("catalog: not allowed")
	// ErrNotFound is returned for unknown template ids.
	ErrNotFound = errors.New("catalog: template not found")
)

// VersionDraft pre-seeds the create flow of a new version. It never aliases
// the source template.
type VersionDraft struct {
	ParentTemplate int64
	// BaseVersion is the version the draft was seeded from.
	BaseVersion int
	Name        string
	Description string
	Category    schema.Category
	Structure   schema.Structure
}

// SeedVersion copies t into a draft for its next version. The caller's
// template is not modified.
func SeedVersion(t schema.Template) (VersionDraft, error) {
	if t.IsArchived {
		return VersionDraft{}, fmt.Errorf("%w: %d", ErrArchived, t.ID)
	}
	return VersionDraft{
		ParentTemplate: t.ID,
		BaseVersion:    t.Version,
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		Structure:      t.Structure.Clone(),
	}, nil
}
