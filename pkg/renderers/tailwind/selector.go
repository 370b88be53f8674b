package tailwind

import (
	"errors"
	"fmt"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// DefaultTheme names the built-in manifest.
const DefaultTheme = "clinic"

// DefaultManifest is the clinic look: sky brand colour, rounded cards and a
// dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":          "#0284c7",
			"surface":        "#ffffff",
			"text":           "#111827",
			"radius":         "0.75rem",
			"pain-low":       "#22c55e",
			"pain-mid":       "#facc15",
			"pain-high":      "#ef4444",
			"group-accent":   "#7dd3fc",
			"required-color": "#ef4444",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#111827",
					"text":    "#f9fafb",
					"brand":   "#38bdf8",
				},
			},
		},
	}
}

// Themes holds the manifests a host can render with and selects among
// them. It implements theme.ThemeSelector and is safe for concurrent use.
type Themes struct {
	mu           sync.RWMutex
	manifests    map[string]*theme.Manifest
	registry     interface{ Register(*theme.Manifest) error }
	defaultTheme string
}

// NewThemes returns a selector holding DefaultManifest.
func NewThemes() *Themes {
	t := &Themes{
		manifests:    map[string]*theme.Manifest{},
		registry:     theme.NewRegistry(),
		defaultTheme: DefaultTheme,
	}
	if err := t.Register(DefaultManifest()); err != nil {
		panic(err)
	}
	return t
}

// Register adds a manifest; the go-theme registry validates it first.
func (t *Themes) Register(manifest *theme.Manifest) error {
	if manifest == nil {
		return errors.New("tailwind: nil theme manifest")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.registry.Register(manifest); err != nil {
		return fmt.Errorf("tailwind: register theme %q: %w", manifest.Name, err)
	}
	t.manifests[manifest.Name] = manifest
	return nil
}

// Select resolves a theme by name, falling back to the default theme for an
// empty name. Unknown variants are dropped.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if name == "" {
		name = t.defaultTheme
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("tailwind: unknown theme %q", name)
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// SelectConfig selects a theme and derives the renderer configuration.
func (t *Themes) SelectConfig(name, variant string) (*theme.RendererConfig, error) {
	sel, err := t.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return ThemeConfig(sel.Manifest, sel.Variant), nil
}

var _ theme.ThemeSelector = (*Themes)(nil)
