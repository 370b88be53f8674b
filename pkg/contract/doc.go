// Package contract describes a template's answer map as an OpenAPI 3
// schema. The schema documents the content exchanged with the backend and
// checks answer maps before they are sent.
package contract
