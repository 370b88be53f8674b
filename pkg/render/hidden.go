package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is a hidden input emitted alongside the visible controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// NoteHidden returns the inputs identifying the template a note is written
// against: its id and the version frozen on the note.
func NoteHidden(templateID int64, templateVersion int) map[string]string {
	return map[string]string{
		"template":         fmt.Sprint(templateID),
		"template_version": fmt.Sprint(templateVersion),
	}
}

// SortedHiddenFields returns the fields ordered by name, skipping empty names.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	out := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		if key := strings.TrimSpace(name); key != "" {
			out = append(out, HiddenField{Name: key, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
