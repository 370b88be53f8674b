package render

import (
	"slices"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// Subset narrows rendering to some sections and/or top-level fields. Empty
// lists mean no restriction.
type Subset struct {
	Sections []string
	Fields   []string
}

// Empty reports whether the subset restricts nothing.
func (s Subset) Empty() bool {
	return len(s.Sections) == 0 && len(s.Fields) == 0
}

// ApplySubset returns a copy of structure keeping only matching sections and
// fields, in stored order. Sections left without fields are dropped.
func ApplySubset(structure schema.Structure, subset Subset) schema.Structure {
	out := structure.Clone()
	if subset.Empty() {
		return out
	}
	kept := out.Sections[:0]
	for _, section := range out.Sections {
		if len(subset.Sections) > 0 && !slices.Contains(subset.Sections, section.ID) {
			continue
		}
		if len(subset.Fields) > 0 {
			section.Fields = slices.DeleteFunc(section.Fields, func(f schema.Field) bool {
				return !slices.Contains(subset.Fields, f.ID)
			})
		}
		if len(section.Fields) == 0 {
			continue
		}
		kept = append(kept, section)
	}
	out.Sections = kept
	return out
}
