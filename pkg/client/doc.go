// Package client talks to the clinic backend's REST API: template records
// under /clinical-templates/templates/ and clinical notes under
// /clinical-templates/notes/. TemplateService satisfies notes.TemplateLookup
// and NoteService satisfies notes.Persister, so a notes.Editor can run
// against the live backend.
package client
