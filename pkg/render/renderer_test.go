package render_test

import (
	"context"

	"github.com/mespms/clinicalforms/pkg/render"
	"github.com/mespms/clinicalforms/pkg/schema"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }

func (s stubRenderer) Render(context.Context, schema.Structure, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}
