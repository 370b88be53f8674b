package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a template document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a raw template payload with the location it was read from.
// Location only labels errors and names bare structures.
type Document struct {
	Location string
	Format   Format
	Data     []byte
}

// NewDocument detects the format from the location's extension, falling
// back to the payload itself: a leading '{' means JSON.
func NewDocument(location string, data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("schema: %s is empty", location)
	}
	return Document{Location: location, Format: detectFormat(location, data), Data: data}, nil
}

func detectFormat(location string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

func (d Document) unmarshal(out any) error {
	if d.Format == FormatJSON {
		return json.Unmarshal(d.Data, out)
	}
	return yaml.Unmarshal(d.Data, out)
}

// name is the location's base name without extension.
func (d Document) name() string {
	base := filepath.Base(d.Location)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
