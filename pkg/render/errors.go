package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// ErrorMapping splits a backend error payload into field messages keyed by
// dotted answer paths and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload attaches backend messages to the fields of structure. Keys
// may be bare field ids (nested ones included), dotted paths, JSON pointers
// ("/content/rom_assessment/rom_flexion") or DRF style keys under a content
// wrapper. Keys matching no field become form-level messages so nothing is
// lost.
func MapErrorPayload(structure schema.Structure, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	paths, byID := collectPaths(structure)
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		messages := normalizeMessages(payload[rawKey])
		if len(messages) == 0 {
			continue
		}
		path, ok := mapErrorKey(rawKey, paths, byID)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[path] = normalizeMessages(append(mapping.Fields[path], messages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// FlattenPayload turns a decoded DRF error body into path keyed messages.
// Nested objects become dotted keys, strings become one-message lists, and a
// top-level "detail" is kept under that key.
func FlattenPayload(body map[string]any) map[string][]string {
	out := make(map[string][]string)
	flattenInto(out, "", body)
	return out
}

func flattenInto(dst map[string][]string, prefix string, node any) {
	switch typed := node.(type) {
	case map[string]any:
		for key, child := range typed {
			flattenInto(dst, joinKey(prefix, key), child)
		}
	case []any:
		for i, item := range typed {
			switch item.(type) {
			case map[string]any, []any:
				flattenInto(dst, joinKey(prefix, strconv.Itoa(i)), item)
			default:
				dst[prefix] = append(dst[prefix], fmt.Sprint(item))
			}
		}
	case []string:
		dst[prefix] = append(dst[prefix], typed...)
	case nil:
	default:
		dst[prefix] = append(dst[prefix], fmt.Sprint(typed))
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorKey(raw string, paths map[string]struct{}, byID map[string]string) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := dropWrapperSegments(parsePathSegments(raw))
	segments = stripNumericSegments(segments)
	if len(segments) == 0 {
		return "", false
	}

	// Longest dotted prefix that names a field.
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := paths[candidate]; ok {
			return candidate, true
		}
	}
	// Field ids are unique across the structure, so a bare nested id is
	// enough to find its path.
	for i := len(segments) - 1; i >= 0; i-- {
		if path, ok := byID[segments[i]]; ok {
			return path, true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "data", "payload", "content", "decrypted_content", "answers":
			segments = segments[1:]
		default:
			return segments
		}
	}
	return segments
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func collectPaths(structure schema.Structure) (map[string]struct{}, map[string]string) {
	paths := make(map[string]struct{})
	byID := make(map[string]string)
	var walk func(prefix string, list []schema.Field)
	walk = func(prefix string, list []schema.Field) {
		for _, field := range list {
			path := joinKey(prefix, field.ID)
			paths[path] = struct{}{}
			byID[field.ID] = path
			walk(path, field.Children())
		}
	}
	for _, section := range structure.Sections {
		walk("", section.Fields)
	}
	return paths, byID
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "detail", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
