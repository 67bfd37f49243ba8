package models

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the canonical storage format for calendar dates.
const ISODate = "2006-01-02"

// Clock supplies the current time. Derivations take one instead of calling
// time.Now so tests can pin "today".
type Clock func() time.Time

// dateFormats are the layouts accepted from the sheet and form input.
// Anything else degrades to "unknown" rather than raising an error.
var dateFormats = []string{
	ISODate,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"01/02/2006",
	"2/1/2006",
}

// ParseDate parses a date value at calendar-day granularity. The boolean is
// false for absent or malformed input; no error is ever returned.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "undefined" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
		}
	}
	return time.Time{}, false
}

// ToISODate normalizes a date value to YYYY-MM-DD, or "" when unparseable.
func ToISODate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format(ISODate)
}

// Truncate drops the time-of-day so same-day comparisons are inclusive.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// thaiMonths are the abbreviated Thai month names used on report surfaces.
var thaiMonths = [...]string{
	"ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.",
	"ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค.",
}

// FormatDisplay renders a date the way the dashboard shows it: Thai short
// month and Buddhist-era year, e.g. "15 ม.ค. 2568". Empty input renders "-";
// malformed input is echoed back unchanged.
func FormatDisplay(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "undefined" {
		return "-"
	}
	t, ok := ParseDate(trimmed)
	if !ok {
		return trimmed
	}
	return fmt.Sprintf("%d %s %d", t.Day(), thaiMonths[t.Month()-1], t.Year()+543)
}
