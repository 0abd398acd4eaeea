package analytics

import "github.com/adpulse/adpulse/internal/models"

// PctChange is the day-over-day percentage change. A zero previous value
// maps to 100 when current is positive and 0 otherwise, so a series coming
// off zero registers as a full jump rather than dividing by zero.
func PctChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// Trend compares the last two points of a date-sorted series. It is a local
// comparison, not a regression; fewer than two points yields an all-zero
// trend.
func Trend(series []models.TimeSeriesPoint) models.TrendData {
	if len(series) < 2 {
		return models.TrendData{}
	}
	prev, curr := series[len(series)-2], series[len(series)-1]
	return models.TrendData{
		Impressions:  PctChange(float64(curr.Impressions), float64(prev.Impressions)),
		Clicks:       PctChange(float64(curr.Clicks), float64(prev.Clicks)),
		Revenue:      PctChange(curr.Revenue, prev.Revenue),
		Spend:        PctChange(curr.Spend, prev.Spend),
		Transactions: PctChange(float64(curr.Transactions), float64(prev.Transactions)),
		CTR:          PctChange(curr.CTR, prev.CTR),
		ROAS:         PctChange(curr.ROAS, prev.ROAS),
	}
}
