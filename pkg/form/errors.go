package form

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrUnknownField is returned for a path the structure does not define.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrReadOnly is returned when editing a disabled form.
	ErrReadOnly = errors.New("form: read-only")
)

// Errors maps dotted field paths to advisory validation messages. Child
// fields of a nested group are keyed "group.child".
type Errors map[string][]string

// Has reports whether path carries at least one message.
func (e Errors) Has(path string) bool {
	return len(e[path]) > 0
}

// First returns the first message for path.
func (e Errors) First(path string) string {
	if msgs := e[path]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Paths lists the paths with messages in sorted order.
func (e Errors) Paths() []string {
	return slices.Sorted(maps.Keys(e))
}

// Under returns the messages for path and every path nested below it.
func (e Errors) Under(path string) Errors {
	out := Errors{}
	prefix := path + "."
	for k, v := range e {
		if k == path || strings.HasPrefix(k, prefix) {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

// Clone returns a deep copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = append([]string(nil), v...)
	}
	return out
}
