package form

import (
	"fmt"
	"strings"
)

// state holds the answer map and the last validation errors, both keyed by
// dotted paths. The answer map is owned exclusively by the Form and is only
// ever replaced wholesale or edited one path at a time.
type state struct {
	values map[string]any
	errors Errors
}

func newState(answers map[string]any) *state {
	return &state{values: cloneValues(answers), errors: Errors{}}
}

func (s *state) get(path string) (any, bool) {
	return getPath(s.values, path)
}

func (s *state) set(path string, value any) error {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return setPath(s.values, path, value)
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []string:
		return append([]string{}, typed...)
	default:
		return typed
	}
}

func getPath(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}
	var current any = root
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := node[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// setPath writes value at path, replacing any non-map value found where a
// group sub-map is expected.
func setPath(root map[string]any, path string, value any) error {
	if path == "" {
		return fmt.Errorf("form: empty path")
	}
	segments := strings.Split(path, ".")
	node := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
	return nil
}
