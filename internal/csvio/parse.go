package csvio

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. US-style slash dates come first because
// that is what the ad-server exports actually ship.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"01-02-2006",
}

// ParseDate tries the known layouts and returns a zero time when none match.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dayUTC(t)
		}
	}
	return time.Time{}
}

// ParseInt coerces a CSV cell to a non-negative int. Anything that does not
// parse is 0, never an error.
func ParseInt(s string) int {
	f := ParseFloat(s)
	if f < 0 {
		return 0
	}
	return int(f + 0.5)
}

// ParseFloat coerces a CSV cell to a float64, stripping currency and
// thousands formatting first. Unparsable input is 0.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
