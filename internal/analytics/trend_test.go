package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adpulse/adpulse/internal/models"
)

func TestPctChange(t *testing.T) {
	tests := []struct {
		name           string
		current, prev  float64
		want           float64
	}{
		{"thirty percent up", 1300, 1000, 30},
		{"halved", 500, 1000, -50},
		{"from zero to positive", 42, 0, 100},
		{"zero to zero", 0, 0, 0},
		{"to zero", 0, 50, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PctChange(tt.current, tt.prev), 1e-9)
		})
	}
}

func TestTrendNeedsTwoPoints(t *testing.T) {
	assert.Equal(t, models.TrendData{}, Trend(nil))
	assert.Equal(t, models.TrendData{}, Trend([]models.TimeSeriesPoint{{Impressions: 10}}))
}

func TestTrendUsesLastTwoPoints(t *testing.T) {
	series := []models.TimeSeriesPoint{
		{Date: day("2025-01-01"), Impressions: 999999},
		{Date: day("2025-01-02"), Impressions: 1000, Revenue: 100, CTR: 2},
		{Date: day("2025-01-03"), Impressions: 1300, Revenue: 50, CTR: 1},
	}
	tr := Trend(series)
	assert.InDelta(t, 30, tr.Impressions, 1e-9)
	assert.InDelta(t, -50, tr.Revenue, 1e-9)
	assert.InDelta(t, -50, tr.CTR, 1e-9)
}
