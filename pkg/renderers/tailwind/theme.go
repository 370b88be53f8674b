package tailwind

import (
	"maps"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAsset is the manifest asset key linked from rendered forms.
const StylesheetAsset = "forms.stylesheet"

// ThemeConfig derives renderer configuration from a manifest: variant tokens
// override the base ones, every token becomes a "--name" CSS variable, and
// asset keys resolve against the variant prefix (falling back to the base).
// An unknown variant yields the base theme.
func ThemeConfig(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    manifest.Name,
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
	}
	maps.Copy(cfg.Tokens, manifest.Tokens)
	maps.Copy(cfg.Partials, manifest.Templates)

	prefix := manifest.Assets.Prefix
	files := map[string]string{}
	maps.Copy(files, manifest.Assets.Files)

	if v, ok := manifest.Variants[variant]; ok && variant != "" {
		cfg.Variant = variant
		maps.Copy(cfg.Tokens, v.Tokens)
		maps.Copy(cfg.Partials, v.Templates)
		maps.Copy(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	for name, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(name, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
			return file
		}
		return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(file, "/")
	}
	return cfg
}

type cssVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// themeData resolves the stylesheet link and the sorted custom properties.
// Values are stripped of characters that could close the style element.
func themeData(cfg *theme.RendererConfig) (string, []cssVar) {
	if cfg == nil {
		return "", nil
	}
	var href string
	if cfg.AssetURL != nil {
		href = cfg.AssetURL(StylesheetAsset)
	}
	strip := strings.NewReplacer("<", "", ">", "", ";", "", "{", "", "}", "")
	vars := make([]cssVar, 0, len(cfg.CSSVars))
	for _, key := range slices.Sorted(maps.Keys(cfg.CSSVars)) {
		vars = append(vars, cssVar{Name: strip.Replace(key), Value: strip.Replace(cfg.CSSVars[key])})
	}
	return href, vars
}
