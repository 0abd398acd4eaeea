package analytics

import (
	"time"

	"github.com/adpulse/adpulse/internal/models"
)

// FillDateRange expands a sparse, date-ascending series into one point per
// calendar day between from and to inclusive. Missing days are synthesized
// with every numeric field at zero, so charts show delivery gaps as drops to
// zero instead of interpolated lines. When from or to is zero the bounds come
// from the series itself. An empty series stays empty: no fabricated range.
// Filling an already-contiguous series returns an equal series.
func FillDateRange(series []models.TimeSeriesPoint, from, to time.Time) []models.TimeSeriesPoint {
	if len(series) == 0 {
		return nil
	}
	byDay := make(map[time.Time]models.TimeSeriesPoint, len(series))
	min, max := series[0].Date, series[0].Date
	for _, p := range series {
		byDay[p.Date] = p
		if p.Date.Before(min) {
			min = p.Date
		}
		if p.Date.After(max) {
			max = p.Date
		}
	}
	if from.IsZero() {
		from = min
	}
	if to.IsZero() {
		to = max
	}
	if to.Before(from) {
		return nil
	}

	var out []models.TimeSeriesPoint
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if p, ok := byDay[day]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, models.TimeSeriesPoint{Date: day})
	}
	return out
}
