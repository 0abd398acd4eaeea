package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/adpulse/adpulse/internal/models"
)

// AnomalyConfig carries the detector thresholds. Percentages are expressed
// as whole numbers (20 means 20%).
type AnomalyConfig struct {
	ImpressionChangePct  float64 // minimum |day-over-day change| to flag
	ImpressionMediumPct  float64
	ImpressionHighPct    float64
	TransactionDropPct   float64 // minimum drop to flag, negative changes only
	ZeroStreakDays       int     // minimum consecutive zero-transaction days
	ZeroStreakMediumDays int
	ZeroStreakHighDays   int
}

// DefaultAnomalyConfig returns the shipped thresholds.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		ImpressionChangePct:  20,
		ImpressionMediumPct:  35,
		ImpressionHighPct:    50,
		TransactionDropPct:   90,
		ZeroStreakDays:       2,
		ZeroStreakMediumDays: 4,
		ZeroStreakHighDays:   7,
	}
}

// AnomalyFingerprint identifies an anomaly across recomputation runs so a
// suppression flag saved against one run still matches the next.
func AnomalyFingerprint(campaign string, typ models.AnomalyType, date time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", campaign, typ, date.Format("2006-01-02"))))
	return hex.EncodeToString(sum[:])
}

// DetectAnomalies runs the three detectors over per-campaign daily series.
// Each campaign's series is gap-filled first, so streaks and day-over-day
// comparisons count calendar days: a day with no rows reads as zero delivery.
// The single most-recent date in the whole dataset is excluded everywhere:
// it is likely still accumulating. "Totals" rows and rows without a date are
// excluded too. The result is a fresh candidate set sorted descending by
// detection date; nothing is diffed against a previous run.
func DetectAnomalies(rows []models.CampaignRow, cfg AnomalyConfig) []models.Anomaly {
	cutoff := latestDate(rows)
	if cutoff.IsZero() {
		return nil
	}

	byCampaign := make(map[string][]models.TimeSeriesPoint)
	for campaign, campaignRows := range splitByCampaign(rows, cutoff) {
		byCampaign[campaign] = FillDateRange(DailySeries(campaignRows, Deriver{}), time.Time{}, time.Time{})
	}

	var out []models.Anomaly
	for campaign, series := range byCampaign {
		out = append(out, impressionChanges(campaign, series, cfg)...)
		out = append(out, transactionDrops(campaign, series, cfg)...)
		out = append(out, zeroStreaks(campaign, series, cfg)...)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateDetected.Equal(out[j].DateDetected) {
			return out[i].DateDetected.After(out[j].DateDetected)
		}
		if out[i].CampaignName != out[j].CampaignName {
			return out[i].CampaignName < out[j].CampaignName
		}
		return out[i].Type < out[j].Type
	})
	return out
}

func latestDate(rows []models.CampaignRow) time.Time {
	var max time.Time
	for _, r := range rows {
		if r.HasDate() && r.Date.After(max) {
			max = r.Date
		}
	}
	return max
}

func splitByCampaign(rows []models.CampaignRow, cutoff time.Time) map[string][]models.CampaignRow {
	out := make(map[string][]models.CampaignRow)
	for _, r := range rows {
		if r.CampaignName == models.TotalsSentinel || !r.HasDate() {
			continue
		}
		if !r.Date.Before(cutoff) {
			continue
		}
		out[r.CampaignName] = append(out[r.CampaignName], r)
	}
	return out
}

func impressionChanges(campaign string, series []models.TimeSeriesPoint, cfg AnomalyConfig) []models.Anomaly {
	var out []models.Anomaly
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]
		if prev.Impressions == 0 {
			continue
		}
		change := PctChange(float64(curr.Impressions), float64(prev.Impressions))
		if math.Abs(change) < cfg.ImpressionChangePct {
			continue
		}
		sev := models.SeverityLow
		switch {
		case math.Abs(change) >= cfg.ImpressionHighPct:
			sev = models.SeverityHigh
		case math.Abs(change) >= cfg.ImpressionMediumPct:
			sev = models.SeverityMedium
		}
		out = append(out, models.Anomaly{
			Fingerprint:  AnomalyFingerprint(campaign, models.AnomalyImpressionChange, curr.Date),
			CampaignName: campaign,
			Type:         models.AnomalyImpressionChange,
			DateDetected: curr.Date,
			Severity:     sev,
			Details: map[string]float64{
				"previous_impressions": float64(prev.Impressions),
				"current_impressions":  float64(curr.Impressions),
				"change_pct":           change,
			},
		})
	}
	return out
}

func transactionDrops(campaign string, series []models.TimeSeriesPoint, cfg AnomalyConfig) []models.Anomaly {
	var out []models.Anomaly
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]
		if prev.Transactions == 0 {
			continue
		}
		change := PctChange(float64(curr.Transactions), float64(prev.Transactions))
		if change >= 0 || -change < cfg.TransactionDropPct {
			continue
		}
		out = append(out, models.Anomaly{
			Fingerprint:  AnomalyFingerprint(campaign, models.AnomalyTransactionDrop, curr.Date),
			CampaignName: campaign,
			Type:         models.AnomalyTransactionDrop,
			DateDetected: curr.Date,
			Severity:     models.SeverityHigh,
			Details: map[string]float64{
				"previous_transactions": float64(prev.Transactions),
				"current_transactions":  float64(curr.Transactions),
				"change_pct":            change,
			},
		})
	}
	return out
}

func zeroStreaks(campaign string, series []models.TimeSeriesPoint, cfg AnomalyConfig) []models.Anomaly {
	var out []models.Anomaly
	streak := 0
	var lastZero time.Time
	flush := func() {
		if streak < cfg.ZeroStreakDays {
			streak = 0
			return
		}
		sev := models.SeverityLow
		switch {
		case streak >= cfg.ZeroStreakHighDays:
			sev = models.SeverityHigh
		case streak >= cfg.ZeroStreakMediumDays:
			sev = models.SeverityMedium
		}
		out = append(out, models.Anomaly{
			Fingerprint:  AnomalyFingerprint(campaign, models.AnomalyTransactionZero, lastZero),
			CampaignName: campaign,
			Type:         models.AnomalyTransactionZero,
			DateDetected: lastZero,
			Severity:     sev,
			Details:      map[string]float64{"consecutive_days": float64(streak)},
		})
		streak = 0
	}
	for _, p := range series {
		if p.Transactions == 0 {
			streak++
			lastZero = p.Date
			continue
		}
		flush()
	}
	flush() // end of data also closes a streak
	return out
}
