package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// AnswerError lists the answer-map violations found by CheckAnswers, keyed
// by dotted field path. Violations of the map itself use the empty key.
type AnswerError struct {
	Fields map[string][]string
	err    error
}

func (e *AnswerError) Error() string {
	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		label := path
		if label == "" {
			label = "answers"
		}
		parts = append(parts, label+": "+strings.Join(e.Fields[path], "; "))
	}
	return "contract: answers do not match template: " + strings.Join(parts, ", ")
}

func (e *AnswerError) Unwrap() error { return e.err }

// FieldErrors exposes the violations in the backend error payload shape.
func (e *AnswerError) FieldErrors() map[string][]string {
	return e.Fields
}

// CheckAnswers validates answers against the schema derived from
// structure. Answers are normalised through JSON first, so Go-typed maps
// are checked the way the backend would see them.
func CheckAnswers(structure schema.Structure, answers map[string]any, opts ...Option) error {
	normalized, err := normalize(answers)
	if err != nil {
		return fmt.Errorf("contract: encode answers: %w", err)
	}
	s := AnswerSchema(structure, opts...)
	if err := s.VisitJSON(normalized, openapi3.MultiErrors()); err != nil {
		out := &AnswerError{Fields: map[string][]string{}, err: err}
		collect(out.Fields, err)
		return out
	}
	return nil
}

func normalize(answers map[string]any) (any, error) {
	if answers == nil {
		answers = map[string]any{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func collect(dst map[string][]string, err error) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collect(dst, inner)
		}
	case *openapi3.SchemaError:
		path := strings.Join(e.JSONPointer(), ".")
		dst[path] = append(dst[path], e.Reason)
	default:
		var se *openapi3.SchemaError
		if errors.As(err, &se) {
			collect(dst, se)
			return
		}
		dst[""] = append(dst[""], err.Error())
	}
}
