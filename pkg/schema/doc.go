// Package schema defines clinical note templates: a Template record, its
// Structure of ordered Sections, and Field definitions whose kind-specific
// attributes sit behind the sealed Spec interface. Fields travel in the flat
// JSON/YAML shape the backend stores (id, type, label, placeholder,
// required, min, max, rows, options, fields, defaultValue). Check rejects
// structures that cannot be interpreted safely: unknown kinds, duplicate
// field ids anywhere in the nested tree, and missing attributes. Index maps
// ids to dotted answer paths ("group.child") once per structure.
package schema
