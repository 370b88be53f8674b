package notes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mespms/clinicalforms/pkg/format"
)

// DateLayout is the wire layout of Note.Date.
const DateLayout = "2006-01-02"

// Note is a clinical note as exchanged with the backend. TemplateVersion is
// fixed when the note is created so the note can be interpreted after the
// template is revised.
type Note struct {
	ID               int64          `json:"id"`
	Patient          int64          `json:"patient"`
	PatientName      string         `json:"patient_name,omitempty"`
	Practitioner     int64          `json:"practitioner"`
	PractitionerName string         `json:"practitioner_name,omitempty"`
	Appointment      *int64         `json:"appointment"`
	Clinic           int64          `json:"clinic"`
	Template         int64          `json:"template"`
	TemplateName     string         `json:"template_name,omitempty"`
	TemplateVersion  int            `json:"template_version"`
	Date             string         `json:"date"`
	NoteType         string         `json:"note_type,omitempty"`
	IsSigned         bool           `json:"is_signed"`
	SignedAt         *time.Time     `json:"signed_at"`
	IsDraft          bool           `json:"is_draft"`
	LastAutosave     *time.Time     `json:"last_autosave"`
	Content          map[string]any `json:"content"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// UnmarshalJSON reads the answer map from decrypted_content when the
// backend sends it, else from content.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var wire struct {
		plain
		DecryptedContent map[string]any `json:"decrypted_content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = Note(wire.plain)
	if wire.DecryptedContent != nil {
		n.Content = wire.DecryptedContent
	}
	return nil
}

// Clone returns a deep copy.
func (n Note) Clone() Note {
	out := n
	out.Content = cloneContent(n.Content)
	if n.Appointment != nil {
		v := *n.Appointment
		out.Appointment = &v
	}
	if n.SignedAt != nil {
		v := *n.SignedAt
		out.SignedAt = &v
	}
	if n.LastAutosave != nil {
		v := *n.LastAutosave
		out.LastAutosave = &v
	}
	return out
}

// Status returns the badge shown in note lists.
func (n Note) Status() string {
	switch {
	case n.IsSigned:
		return "Signed"
	case n.IsDraft:
		return "Draft"
	default:
		return "Unsigned"
	}
}

// DisplayDate formats Date for lists, e.g. "Mar 05, 2026".
func (n Note) DisplayDate() string {
	return format.FormatDate(n.Date, "")
}

// CreateRequest is the payload for a new note. The template version is not
// part of it; the backend freezes the current one.
type CreateRequest struct {
	Patient      int64          `json:"patient" validate:"required,gt=0"`
	Practitioner int64          `json:"practitioner" validate:"required,gt=0"`
	Appointment  *int64         `json:"appointment,omitempty" validate:"omitempty,gt=0"`
	Template     int64          `json:"template" validate:"required,gt=0"`
	Date         string         `json:"date" validate:"required,datetime=2006-01-02"`
	Content      map[string]any `json:"content" validate:"required"`
}

// Validate checks the request before it is sent. Field problems are
// reported by their json names; see format.FieldErrors.
func (r CreateRequest) Validate() error {
	if err := format.Validator().Struct(r); err != nil {
		return fmt.Errorf("notes: create request: %w", err)
	}
	return nil
}

// Query filters note listings. Nil filters are not applied.
type Query struct {
	Patient      *int64
	Practitioner *int64
	IsSigned     *bool
	IsDraft      *bool
}

// Match reports whether n passes every set filter.
func (q Query) Match(n Note) bool {
	switch {
	case q.Patient != nil && n.Patient != *q.Patient:
		return false
	case q.Practitioner != nil && n.Practitioner != *q.Practitioner:
		return false
	case q.IsSigned != nil && n.IsSigned != *q.IsSigned:
		return false
	case q.IsDraft != nil && n.IsDraft != *q.IsDraft:
		return false
	}
	return true
}

func cloneContent(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneContent(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string{}, t...)
	default:
		return t
	}
}
