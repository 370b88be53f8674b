// Package fields holds one Renderer per field kind. A renderer owns its
// kind's value shape: the empty value, how a stored answer becomes the
// displayed value, how edit events produce the next value, the local
// validation rule, and the control description handed to output renderers.
//
// Registry resolution fails closed: a field whose kind has no renderer
// yields ErrUnsupportedFieldType instead of being skipped.
package fields
