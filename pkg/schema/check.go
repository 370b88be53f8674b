package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFieldType marks a field whose type tag names no known kind.
	ErrUnsupportedFieldType = errors.New("schema: unsupported field type")
	// ErrDuplicateFieldID marks a field id used more than once in a structure.
	ErrDuplicateFieldID = errors.New("schema: duplicate field id")
	// ErrMalformedStructure marks missing or inconsistent attributes.
	ErrMalformedStructure = errors.New("schema: malformed structure")
)

func unsupportedTypeError(kind FieldType) error {
	return fmt.Errorf("%w %q", ErrUnsupportedFieldType, kind)
}

// Problem is one configuration defect located inside a structure.
type Problem struct {
	// Path locates the defect, e.g. "sections[1].fields[0].fields[2]".
	Path string
	Err  error
}

func (p Problem) Error() string {
	if p.Path == "" {
		return p.Err.Error()
	}
	return p.Path + ": " + p.Err.Error()
}

// StructureError aggregates every problem found by Check.
type StructureError struct {
	Problems []Problem
}

func (e *StructureError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "schema: invalid structure"
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Error()
	}
	if len(parts) == 1 {
		return "schema: invalid structure: " + parts[0]
	}
	return fmt.Sprintf("schema: invalid structure (%d problems): %s", len(parts), strings.Join(parts, "; "))
}

// Unwrap exposes every problem so errors.Is reaches the sentinels.
func (e *StructureError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.Err
	}
	return out
}

// Check validates a structure before it is rendered. It reports every
// problem at once; a nil return means the structure is safe to interpret.
func Check(s Structure) error {
	c := checker{fieldIDs: map[string]string{}, sectionIDs: map[string]string{}}
	for i, section := range s.Sections {
		path := fmt.Sprintf("sections[%d]", i)
		c.section(path, section)
	}
	if len(c.problems) == 0 {
		return nil
	}
	return &StructureError{Problems: c.problems}
}

type checker struct {
	fieldIDs   map[string]string
	sectionIDs map[string]string
	problems   []Problem
}

func (c *checker) add(path string, err error) {
	c.problems = append(c.problems, Problem{Path: path, Err: err})
}

func (c *checker) malformed(path, format string, args ...any) {
	c.add(path, fmt.Errorf("%w: %s", ErrMalformedStructure, fmt.Sprintf(format, args...)))
}

func (c *checker) section(path string, section Section) {
	id := strings.TrimSpace(section.ID)
	switch {
	case id == "":
		c.malformed(path, "section id is required")
	case c.sectionIDs[id] != "":
		c.malformed(path, "section id %q already used at %s", id, c.sectionIDs[id])
	default:
		c.sectionIDs[id] = path
	}
	if strings.TrimSpace(section.Title) == "" {
		c.malformed(path, "section title is required")
	}
	c.fields(path, section.Fields)
}

func (c *checker) fields(parent string, fields []Field) {
	for i, field := range fields {
		c.field(fmt.Sprintf("%s.fields[%d]", parent, i), field)
	}
}

func (c *checker) field(path string, field Field) {
	id := strings.TrimSpace(field.ID)
	switch {
	case id == "":
		c.malformed(path, "field id is required")
	case strings.Contains(id, "."):
		c.malformed(path, "field id %q must not contain '.'", id)
	case c.fieldIDs[id] != "":
		c.add(path, fmt.Errorf("%w %q (first used at %s)", ErrDuplicateFieldID, id, c.fieldIDs[id]))
	default:
		c.fieldIDs[id] = path
	}
	if strings.TrimSpace(field.Label) == "" {
		c.malformed(path, "field label is required")
	}

	switch spec := field.Spec.(type) {
	case nil:
		c.malformed(path, "field type is required")
	case unsupportedSpec:
		if spec.tag == "" {
			c.malformed(path, "field type is required")
			return
		}
		c.add(path, unsupportedTypeError(spec.tag))
	case SelectSpec:
		c.options(path, spec.Options, spec.Default)
	case RadioSpec:
		c.options(path, spec.Options, spec.Default)
	case CheckboxGroupSpec:
		c.options(path, spec.Options, spec.Default...)
	case NumberSpec:
		if spec.Min != nil && spec.Max != nil && *spec.Min > *spec.Max {
			c.malformed(path, "min %v exceeds max %v", *spec.Min, *spec.Max)
		}
	case PainScaleSpec:
		if spec.Min >= spec.Max {
			c.malformed(path, "pain scale min %d must be below max %d", spec.Min, spec.Max)
		}
		if spec.Default != nil && (*spec.Default < spec.Min || *spec.Default > spec.Max) {
			c.malformed(path, "pain scale default %d outside [%d,%d]", *spec.Default, spec.Min, spec.Max)
		}
	case NestedGroupSpec:
		c.fields(path, spec.Fields)
	}
}

func (c *checker) options(path string, options []Option, defaults ...string) {
	if len(options) == 0 {
		c.malformed(path, "at least one option is required")
		return
	}
	seen := make(map[string]bool, len(options))
	for i, opt := range options {
		switch {
		case opt.Value == "":
			c.malformed(path, "option %d has an empty value", i)
		case seen[opt.Value]:
			c.malformed(path, "option value %q repeated", opt.Value)
		}
		seen[opt.Value] = true
	}
	for _, def := range defaults {
		if def != "" && !seen[def] {
			c.malformed(path, "default %q is not an option value", def)
		}
	}
}
