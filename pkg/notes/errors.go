package notes

import "errors"

var (
	// ErrSigned is returned for any change to a signed note.
	ErrSigned = errors.New("notes: note is signed")
	// ErrNotAssigned is returned when someone other than the note's
	// practitioner tries to sign it.
	ErrNotAssigned = errors.New("notes: only the assigned practitioner may sign")
	// ErrInvalid is returned when local validation fails; the messages stay
	// on the editor.
	ErrInvalid = errors.New("notes: note has invalid fields")
	// ErrNotFound is returned for an unknown note id.
	ErrNotFound = errors.New("notes: note not found")
	// ErrTemplateMismatch is returned when a note is opened with a template
	// other than the version it was written against.
	ErrTemplateMismatch = errors.New("notes: template does not match the note")
)

// FieldErrorer is implemented by backend errors that carry per-field
// messages, such as a rejected submission.
type FieldErrorer interface {
	FieldErrors() map[string][]string
}

// UserMessager is implemented by errors with a message fit for display.
type UserMessager interface {
	UserMessage() string
}
