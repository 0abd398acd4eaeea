package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adpulse/adpulse/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFillDateRangeInsertsZeroDays(t *testing.T) {
	series := []models.TimeSeriesPoint{
		{Date: day("2025-01-01"), Impressions: 100, Clicks: 10, CTR: 10},
		{Date: day("2025-01-03"), Impressions: 200, Clicks: 20, CTR: 10},
	}
	out := FillDateRange(series, day("2025-01-01"), day("2025-01-03"))
	require.Len(t, out, 3)
	assert.Equal(t, day("2025-01-02"), out[1].Date)
	assert.Equal(t, 0, out[1].Impressions)
	assert.Equal(t, 0, out[1].Clicks)
	assert.Equal(t, 0.0, out[1].CTR)
	assert.Equal(t, 0.0, out[1].ROAS)
}

func TestFillDateRangeBoundsFromSeries(t *testing.T) {
	series := []models.TimeSeriesPoint{
		{Date: day("2025-02-05")},
		{Date: day("2025-02-01")},
	}
	out := FillDateRange(series, time.Time{}, time.Time{})
	require.Len(t, out, 5)
	assert.Equal(t, day("2025-02-01"), out[0].Date)
	assert.Equal(t, day("2025-02-05"), out[4].Date)
}

func TestFillDateRangeIdempotent(t *testing.T) {
	series := []models.TimeSeriesPoint{
		{Date: day("2025-03-01"), Impressions: 1},
		{Date: day("2025-03-02"), Impressions: 2},
		{Date: day("2025-03-03"), Impressions: 3},
	}
	once := FillDateRange(series, time.Time{}, time.Time{})
	twice := FillDateRange(once, time.Time{}, time.Time{})
	assert.Equal(t, once, twice)
}

func TestFillDateRangeEmptyInput(t *testing.T) {
	// No distinct dates: no fabricated range.
	assert.Empty(t, FillDateRange(nil, day("2025-01-01"), day("2025-01-31")))
}

func TestFillDateRangeInvertedRange(t *testing.T) {
	series := []models.TimeSeriesPoint{{Date: day("2025-01-01")}}
	assert.Empty(t, FillDateRange(series, day("2025-01-05"), day("2025-01-01")))
}
