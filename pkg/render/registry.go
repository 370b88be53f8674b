package render

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mespms/clinicalforms/pkg/schema"
)

// ErrUnknownRenderer is returned when no renderer is registered under a name.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry holds output renderers by name. Names are matched
// case-insensitively and listed in registration order.
type Registry struct {
	mu     sync.RWMutex
	names  []string
	byName map[string]Renderer
}

// NewRegistry returns a registry holding renderers. It panics on a nil
// renderer or a repeated name, as those are wiring mistakes.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{byName: make(map[string]Renderer)}
	for _, renderer := range renderers {
		r.MustRegister(renderer)
	}
	return r
}

// Register adds renderer under its Name().
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	key := registryKey(renderer.Name())
	if key == "" {
		return errors.New("render: renderer has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[key]; taken {
		return fmt.Errorf("render: renderer %q registered twice", key)
	}
	r.byName[key] = renderer
	r.names = append(r.names, key)
	return nil
}

// MustRegister is Register for init-time wiring.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered under name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.byName[registryKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownRenderer, name, strings.Join(r.names, ", "))
	}
	return renderer, nil
}

// List returns the registered names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// Output is a rendered document and its media type.
type Output struct {
	Renderer    string
	ContentType string
	Body        []byte
}

// Render looks up name and renders structure with it.
func (r *Registry) Render(ctx context.Context, name string, structure schema.Structure, opts RenderOptions) (Output, error) {
	renderer, err := r.Get(name)
	if err != nil {
		return Output{}, err
	}
	body, err := renderer.Render(ctx, structure, opts)
	if err != nil {
		return Output{}, err
	}
	return Output{Renderer: renderer.Name(), ContentType: renderer.ContentType(), Body: body}, nil
}

func registryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
