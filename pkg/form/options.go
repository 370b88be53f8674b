package form

import "github.com/mespms/clinicalforms/pkg/fields"

// Option configures a Form.
type Option func(*Form)

// WithRegistry swaps the field renderer registry.
func WithRegistry(reg *fields.Registry) Option {
	return func(f *Form) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// WithCheckboxPolicy sets what satisfies "required" on every checkbox.
// The default is fields.CheckboxMustBeChecked.
func WithCheckboxPolicy(policy fields.CheckboxPolicy) Option {
	return func(f *Form) {
		f.checkboxPolicy = policy
	}
}

// WithFieldCheckboxPolicy overrides the checkbox policy for one field id.
func WithFieldCheckboxPolicy(id string, policy fields.CheckboxPolicy) Option {
	return func(f *Form) {
		if f.fieldPolicies == nil {
			f.fieldPolicies = make(map[string]fields.CheckboxPolicy)
		}
		f.fieldPolicies[id] = policy
	}
}

// WithTrimWhitespace controls whether whitespace-only text counts as empty
// for required checks. Enabled by default; stored values are never altered.
func WithTrimWhitespace(trim bool) Option {
	return func(f *Form) {
		f.trim = trim
	}
}

// WithDisabled renders every control read-only and refuses edits.
func WithDisabled(disabled bool) Option {
	return func(f *Form) {
		f.disabled = disabled
	}
}
