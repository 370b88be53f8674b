package fields

import "github.com/mespms/clinicalforms/pkg/schema"

// Widget names the visual control a renderer produces.
type Widget string

const (
	WidgetInput         Widget = "input"
	WidgetTextarea      Widget = "textarea"
	WidgetSelect        Widget = "select"
	WidgetCheckbox      Widget = "checkbox"
	WidgetCheckboxGroup Widget = "checkbox-group"
	WidgetRadioGroup    Widget = "radio-group"
	WidgetPainScale     Widget = "pain-scale"
	WidgetRichText      Widget = "rich-text"
	WidgetTags          Widget = "tags"
	WidgetGroup         Widget = "group"
)

// Control describes one field's control for an output renderer. Only the
// members relevant to Widget are set.
type Control struct {
	ID          string
	Kind        schema.FieldType
	Widget      Widget
	Label       string
	Required    bool
	Disabled    bool
	InputType   string
	Placeholder string
	Rows        int
	Min         *float64
	Max         *float64

	// Text is the displayed value of text-like controls.
	Text string
	// Checked is the checkbox state.
	Checked bool
	Options []OptionState
	Steps   []Step
	Tags    []string
	// Selected is the chosen pain scale step, nil when unset.
	Selected *int
	// Legend labels the two ends of a pain scale.
	Legend [2]string
}

// OptionState is an option with its selection state.
type OptionState struct {
	Value    string
	Label    string
	Selected bool
}

// Band is the color band of a pain scale step.
type Band string

const (
	BandLow  Band = "low"
	BandMid  Band = "mid"
	BandHigh Band = "high"
)

// BandFor classifies a pain scale step: up to 3 low, up to 6 mid, above
// that high. Presentation only; it never affects validation.
func BandFor(step int) Band {
	switch {
	case step <= 3:
		return BandLow
	case step <= 6:
		return BandMid
	default:
		return BandHigh
	}
}

// Step is one selectable pain scale value.
type Step struct {
	Value    int
	Band     Band
	Selected bool
}
