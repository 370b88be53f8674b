package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads one template document from disk.
func LoadFile(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	doc, err := NewDocument(filepath.Clean(path), data)
	if err != nil {
		return Template{}, err
	}
	return Decode(doc)
}

// LoadFSFile reads one template document from fsys.
func LoadFSFile(fsys fs.FS, name string) (Template, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Template{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	doc, err := NewDocument(name, data)
	if err != nil {
		return Template{}, err
	}
	return Decode(doc)
}

// LoadFS walks fsys and decodes every JSON or YAML template document in
// lexical path order. A nil fsys yields no templates.
func LoadFS(fsys fs.FS) ([]Template, error) {
	if fsys == nil {
		return nil, nil
	}
	var out []Template
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isTemplateFile(path) {
			return nil
		}
		tmpl, err := LoadFSFile(fsys, path)
		if err != nil {
			return err
		}
		out = append(out, tmpl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Decode parses a template document and checks its structure. A document
// holding only a structure (top-level "sections") is accepted too; the
// template name then defaults to the file's base name.
func Decode(doc Document) (Template, error) {
	var head struct {
		Structure any `json:"structure" yaml:"structure"`
		Sections  any `json:"sections" yaml:"sections"`
	}
	if err := doc.unmarshal(&head); err != nil {
		return Template{}, fmt.Errorf("schema: parse %s: %w", doc.Location, err)
	}

	var tmpl Template
	if head.Structure == nil && head.Sections != nil {
		if err := doc.unmarshal(&tmpl.Structure); err != nil {
			return Template{}, fmt.Errorf("schema: parse %s: %w", doc.Location, err)
		}
		tmpl.Name = doc.name()
		tmpl.Category = CategoryCustom
		tmpl.Version = 1
		tmpl.IsActive = true
		tmpl.IsLatestVersion = true
	} else if err := doc.unmarshal(&tmpl); err != nil {
		return Template{}, fmt.Errorf("schema: parse %s: %w", doc.Location, err)
	}

	if tmpl.Structure.Version == "" {
		tmpl.Structure.Version = StructureVersion
	}
	if err := Check(tmpl.Structure); err != nil {
		return Template{}, fmt.Errorf("schema: %s: %w", doc.Location, err)
	}
	return tmpl, nil
}

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
