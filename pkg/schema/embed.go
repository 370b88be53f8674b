package schema

import (
	"embed"
	"io/fs"
)

//go:embed templates/*
var embeddedTemplates embed.FS

// EmbeddedFS returns the bundled starter templates (SOAP note and initial
// evaluation). Pass it to LoadFS.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// ExampleSOAP returns the bundled SOAP note template.
func ExampleSOAP() Template {
	tmpl, err := LoadFSFile(EmbeddedFS(), "soap.json")
	if err != nil {
		panic(err)
	}
	return tmpl
}
