package fields

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// String coerces a stored answer to text. Numbers decoded from JSON keep
// their shortest representation.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Strings coerces a stored answer to a list of strings, dropping non-string
// entries.
func Strings(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// Bool coerces a stored answer to a checkbox state.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Int coerces a stored answer to an integer step. Fractional numbers and
// non-numeric strings report false.
func Int(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Map coerces a stored nested group answer to a sub-map.
func Map(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Blank reports whether v is an empty representation of any kind: nil, an
// empty string, false, an empty list or a map holding only blank values.
// With trim, whitespace-only strings are blank too.
func Blank(v any, trim bool) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return emptyText(t, trim)
	case bool:
		return !t
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		for _, child := range t {
			if !Blank(child, trim) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// StringList returns the items of a stored list answer. It reports false
// when v is not a list or holds a non-string item.
func StringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Scalar reports whether v is nil or a single string, number or bool.
func Scalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return true
	default:
		return false
	}
}

func hasDuplicates(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
