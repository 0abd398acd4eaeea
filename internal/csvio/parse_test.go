package csvio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-03-09", "03/09/2025", "3/9/2025", "2025/03/09", "03-09-2025", " 2025-03-09 "} {
		assert.Equal(t, want, ParseDate(in), in)
	}
}

func TestParseDateUnparsable(t *testing.T) {
	for _, in := range []string{"", "not a date", "2025-13-40", "Jan 5 2025"} {
		assert.True(t, ParseDate(in).IsZero(), in)
	}
}

func TestParseFloatStripsFormatting(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.50", 1234.50},
		{"1234.5", 1234.5},
		{"12%", 12},
		{" $7 ", 7},
		{"", 0},
		{"n/a", 0},
		{"-3.5", -3.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFloat(tt.in), tt.in)
	}
}

func TestParseIntRoundsAndFloors(t *testing.T) {
	assert.Equal(t, 1235, ParseInt("1,234.6"))
	assert.Equal(t, 0, ParseInt("-5"))
	assert.Equal(t, 0, ParseInt("junk"))
	assert.Equal(t, 42, ParseInt("42"))
}
