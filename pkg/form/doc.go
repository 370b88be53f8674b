// Package form interprets a template structure against an answer map.
//
// A Form walks sections and fields in stored order, resolves each field's
// renderer from a fields.Registry and reads its value from the answer map,
// falling back to the field default and then the kind's empty value. Nested
// groups keep their answers in a sub-map under the group id; their paths and
// error keys are dotted ("rom_assessment.rom_flexion").
//
// Validation is pull-based: nothing is checked until the host calls
// Validate, and the messages are advisory data rather than Go errors.
package form
