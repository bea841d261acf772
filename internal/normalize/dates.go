package normalize

import (
	"strconv"
	"strings"
	"time"
)

// eventZone is the timezone for NFL event dates. Audit timestamps stay UTC.
var eventZone = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// tzdata unavailable; fall back to fixed Eastern standard offset
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// isoLayouts are tried in order for string date inputs
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"20060102",
}

// Date normalizes a date value to YYYY-MM-DD in US/Eastern.
// Accepts ISO strings, epoch seconds, epoch milliseconds, and free-text
// identifiers with an embedded YYYYMMDD. Unparseable input yields "".
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Pure numeric input: epoch seconds or milliseconds
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 9 {
		return epochToDate(n)
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layoutHasTime(layout) {
				return t.In(eventZone).Format("2006-01-02")
			}
			// Date-only inputs are already event-local
			return t.Format("2006-01-02")
		}
	}

	// Embedded YYYYMMDD inside a free-text identifier
	if d := embeddedDate(s); d != "" {
		return d
	}

	return ""
}

// DateOfTime formats an absolute timestamp as an event date
func DateOfTime(t time.Time) string {
	return t.In(eventZone).Format("2006-01-02")
}

func epochToDate(n int64) string {
	// Values past ~2001-09 in milliseconds exceed 1e12
	if n > 1_000_000_000_000 {
		n /= 1000
	}
	return time.Unix(n, 0).In(eventZone).Format("2006-01-02")
}

func layoutHasTime(layout string) bool {
	return strings.Contains(layout, "15:04")
}

// embeddedDate scans for an 8-digit run that parses as a plausible date
func embeddedDate(s string) string {
	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits++
			if digits == 8 {
				start := i - 7
				if t, err := time.Parse("20060102", s[start:i+1]); err == nil {
					year := t.Year()
					if year >= 1960 && year <= 2100 {
						return t.Format("2006-01-02")
					}
				}
				// Overlapping runs are not retried; slide the window
				digits--
			}
		} else {
			digits = 0
		}
	}
	return ""
}
