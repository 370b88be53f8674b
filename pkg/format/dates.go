package format

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the default display layout, e.g. "Mar 05, 2026".
	DateLayout = "Jan 02, 2006"
	// DateTimeLayout is the display layout for timestamps.
	DateTimeLayout = "Jan 02, 2006 03:04 PM"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO accepts an ISO 8601 date or timestamp.
func ParseISO(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders an ISO date with layout (DateLayout when empty). An
// unparseable value renders as "".
func FormatDate(value, layout string) string {
	t, ok := ParseISO(value)
	if !ok {
		return ""
	}
	if layout == "" {
		layout = DateLayout
	}
	return t.Format(layout)
}

// FormatDateTime renders an ISO timestamp with DateTimeLayout.
func FormatDateTime(value string) string {
	return FormatDate(value, DateTimeLayout)
}

// FormatTime turns "14:05" or "14:05:00" into "2:05 PM". Values it cannot
// read are returned unchanged.
func FormatTime(value string) string {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 {
		return value
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return value
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return strconv.Itoa(display) + ":" + parts[1] + " " + suffix
}
