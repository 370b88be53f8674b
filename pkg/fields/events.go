package fields

import "errors"

var (
	// ErrUnsupportedEvent is returned when a kind does not accept an event.
	ErrUnsupportedEvent = errors.New("fields: unsupported event")
	// ErrOutOfRange is returned for a pain scale step outside [min, max].
	ErrOutOfRange = errors.New("fields: step out of range")
)

// Event is an edit interaction delivered to a renderer.
type Event interface {
	event()
}

// SetValue replaces the whole value. Every kind accepts it.
type SetValue struct {
	Value any
}

// Toggle flips a checkbox.
type Toggle struct{}

// ToggleOption adds an option value to a checkbox group, or removes it when
// already present.
type ToggleOption struct {
	Value string
}

// SelectStep picks one pain scale step.
type SelectStep struct {
	Step int
}

// Tag input keys understood by TagKey.
const (
	KeyEnter     = "Enter"
	KeyComma     = ","
	KeyBackspace = "Backspace"
)

// TagKey is a key press in a tags input; Input is the text typed so far.
type TagKey struct {
	Key   string
	Input string
}

// Commits reports whether the key submits the typed text, after which the
// host clears its input buffer.
func (e TagKey) Commits() bool {
	return e.Key == KeyEnter || e.Key == KeyComma
}

// AddTag submits typed text, as when a tags input loses focus.
type AddTag struct {
	Input string
}

// RemoveTag drops one tag by exact value.
type RemoveTag struct {
	Value string
}

func (SetValue) event()     {}
func (Toggle) event()       {}
func (ToggleOption) event() {}
func (SelectStep) event()   {}
func (TagKey) event()       {}
func (AddTag) event()       {}
func (RemoveTag) event()    {}
