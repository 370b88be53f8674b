// Package notes holds the ClinicalNote model and the editor that fills a
// note against the template version frozen on it. The editor validates
// before saving, autosaves drafts quietly, and freezes a note once the
// assigned practitioner signs it.
package notes
