package render

import (
	"context"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// Renderer turns a template structure plus answers into an output
// representation (HTML markup, terminal transcript, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, structure schema.Structure, options RenderOptions) ([]byte, error)
}
