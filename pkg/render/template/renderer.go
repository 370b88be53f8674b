// Package template defines the engine seam HTML renderers execute their
// markup through.
package template

import (
	"io"
)

// TemplateRenderer is the contract of a template engine: named templates
// loaded from a file set, inline template strings, filters and data shared
// by every render.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
