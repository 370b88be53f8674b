package main

import (
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

type themeConfig = theme.RendererConfig

// loadManifest reads a go-theme manifest. JSON is valid YAML, so one
// decoder serves both.
func loadManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("theme: read %s: %w", path, err)
	}
	var manifest theme.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("theme: parse %s: %w", path, err)
	}
	return &manifest, nil
}
