package inr

import (
	"strings"
	"time"
)

const (
	// InputLayout is the ISO date used in forms and stored on invoices.
	InputLayout = "2006-01-02"
	// DisplayLayout renders dates as printed on invoices, e.g. "18 Dec 2025".
	DisplayLayout = "2 Jan 2006"
)

// FormatDate renders an ISO date ("2025-12-18") or an RFC3339 timestamp as "18 Dec 2025".
// Unparseable input is returned unchanged.
func FormatDate(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return value
	}
	return t.Format(DisplayLayout)
}

// FormatDateInput renders t as "2025-12-18".
func FormatDateInput(t time.Time) string {
	return t.Format(InputLayout)
}

// Today returns the current date in InputLayout.
func Today() string {
	return FormatDateInput(time.Now())
}

// ParseDate accepts either InputLayout or RFC3339.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(InputLayout, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
