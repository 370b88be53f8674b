// Package format holds the display formatters and input checks shared by the
// note editor, the catalog and the CLI: clinic date and time layouts,
// Philippine mobile numbers, password rules and a preconfigured validator.
package format
