package event

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// timestampLayout is the display layout after the ordinal suffix has been
// inserted or stripped: "1 April 2021 - 9:30 PM UTC".
const timestampLayout = "2 January 2006 - 3:04 PM MST"

// ordinalDay matches the leading day-of-month and its ordinal suffix.
var ordinalDay = regexp.MustCompile(`^(\d{1,2})(st|nd|rd|th)\b`)

// FormatTimestamp renders t in UTC as "1st April 2021 - 9:30 PM UTC".
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	day := t.Day()
	rest := t.Format("January 2006 - 3:04 PM")
	return fmt.Sprintf("%d%s %s UTC", day, OrdinalSuffix(day), rest)
}

// ParseTimestamp parses either RFC3339 (with or without fractional seconds)
// or the ordinal display format produced by [FormatTimestamp].
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	if m := ordinalDay.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse(timestampLayout, m[1]+s[len(m[0]):]); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// OrdinalSuffix returns "st", "nd", "rd" or "th" for a day of the month.
func OrdinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
