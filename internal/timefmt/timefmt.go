package timefmt

import (
	"fmt"
	"strings"
	"time"
)

// The backend has always serialized dates as day-first text and the report
// screens render en-GB. All parsing and formatting goes through here so the
// separator and locale conventions live in exactly one place.
const (
	LayoutDateTime = "02/01/2006 15:04:05"
	LayoutDate     = "02/01/2006"
	// LayoutDisplay matches toLocaleString("en-GB").
	LayoutDisplay = "02/01/2006, 15:04:05"
)

var parseLayouts = []string{
	LayoutDateTime,
	"02-01-2006 15:04:05",
	LayoutDate,
	"02-01-2006",
}

// Parse accepts the exact textual formats the backend emits: DD/MM/YYYY or
// DD-MM-YYYY, with an optional HH:MM:SS part.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timefmt: unrecognized date %q", s)
}

// FormatDateTime serializes t as DD/MM/YYYY HH:MM:SS.
func FormatDateTime(t time.Time) string {
	return t.Format(LayoutDateTime)
}

// FormatDate serializes t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(LayoutDate)
}

// FormatDisplay serializes t the way the receipts render timestamps
// (en-GB locale string).
func FormatDisplay(t time.Time) string {
	return t.Format(LayoutDisplay)
}
