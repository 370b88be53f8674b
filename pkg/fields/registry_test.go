package fields

import (
	"errors"
	"testing"

	"github.com/mespms/clinicalforms/pkg/schema"
)

func TestRegistry_ResolvesEveryKind(t *testing.T) {
	reg := NewRegistry()
	for _, kind := range schema.FieldTypes() {
		spec, err := schema.NewSpec(kind)
		if err != nil {
			t.Fatalf("new spec %s: %v", kind, err)
		}
		renderer, err := reg.Resolve(schema.Field{ID: "f", Label: "F", Spec: spec})
		if err != nil {
			t.Fatalf("resolve %s: %v", kind, err)
		}
		if renderer.Kind() != kind {
			t.Fatalf("resolved %s for %s", renderer.Kind(), kind)
		}
	}
}

func TestRegistry_FailsClosedOnUnknownKind(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve(schema.Field{ID: "sig", Label: "Signature"})
	if !errors.Is(err, ErrUnsupportedFieldType) {
		t.Fatalf("expected ErrUnsupportedFieldType, got %v", err)
	}
}

type shoutingText struct{ textRenderer }

func (shoutingText) Control(field schema.Field, value any, disabled bool) Control {
	c := textRenderer{kind: schema.FieldTypeText}.Control(field, value, disabled)
	c.Label = field.Label + "!"
	return c
}

func TestRegistry_RegisterReplacesKnownKind(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(shoutingText{textRenderer{kind: schema.FieldTypeText}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	field := schema.Field{ID: "a", Label: "Name", Spec: schema.TextSpec{}}
	renderer, err := reg.Resolve(field)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := renderer.Control(field, "", false).Label; got != "Name!" {
		t.Fatalf("expected replaced renderer, got label %q", got)
	}

	if err := reg.Register(shoutingText{textRenderer{kind: "signature"}}); !errors.Is(err, ErrUnsupportedFieldType) {
		t.Fatalf("expected ErrUnsupportedFieldType, got %v", err)
	}
}
