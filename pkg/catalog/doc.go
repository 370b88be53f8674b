// Package catalog implements the template list: search and category
// filters, per-row actions gated by role and archive state, the New Version
// seed, and an in-memory store honouring the lineage rules (one latest
// version per lineage, versions never reused, records immutable apart from
// the active and archived flags).
package catalog
