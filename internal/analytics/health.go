package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/adpulse/adpulse/internal/models"
)

// HealthWeights sets the contribution of each sub-score to the composite.
// The split is business policy, not domain law, so it ships as configuration.
type HealthWeights struct {
	ROAS      float64 `yaml:"roas"`
	Pacing    float64 `yaml:"pacing"`
	BurnRate  float64 `yaml:"burn_rate"`
	CTR       float64 `yaml:"ctr"`
	Overspend float64 `yaml:"overspend"`
}

// DefaultHealthWeights returns the shipped weighting.
func DefaultHealthWeights() HealthWeights {
	return HealthWeights{ROAS: 0.30, Pacing: 0.25, BurnRate: 0.15, CTR: 0.15, Overspend: 0.15}
}

func (w HealthWeights) sum() float64 {
	return w.ROAS + w.Pacing + w.BurnRate + w.CTR + w.Overspend
}

type scoreStep struct {
	min   float64
	score float64
}

// Sub-score bucket tables, each mapping a raw metric onto 0-10.
var (
	roasScoreTable = []scoreStep{{4, 10}, {3, 8}, {2, 6}, {1, 4}, {0.5, 2}}
	ctrScoreTable  = []scoreStep{{1.0, 10}, {0.5, 8}, {0.25, 6}, {0.1, 4}, {0.05, 2}}
)

func bucketScore(v float64, table []scoreStep) float64 {
	for _, s := range table {
		if v >= s.min {
			return s.score
		}
	}
	return 0
}

// targetScore scores a percentage whose ideal value is 100: the further from
// target in either direction, the lower the score.
func targetScore(pct float64) float64 {
	dev := math.Abs(pct - 100)
	switch {
	case dev <= 10:
		return 10
	case dev <= 25:
		return 7
	case dev <= 50:
		return 4
	case pct > 0:
		return 2
	default:
		return 0
	}
}

func overspendScore(overspend, budget float64) float64 {
	if overspend <= 0 {
		return 10
	}
	pct := safeDiv(overspend, budget) * 100
	switch {
	case pct <= 2:
		return 8
	case pct <= 5:
		return 6
	case pct <= 10:
		return 3
	default:
		return 0
	}
}

var burnWindows = []struct {
	days       int
	confidence string
}{
	{1, "high"},
	{3, "medium"},
	{7, "low"},
}

// ScoreCampaigns combines ROAS, delivery pacing, burn rate, CTR and
// overspend into one composite per campaign. Only campaigns with contract
// terms are scored; durationOverrides (campaign → days) shortens or extends
// the contracted window when an anomaly record carries a custom duration.
// Results are rebuilt wholesale on every call.
func ScoreCampaigns(rows []models.CampaignRow, terms []models.ContractTerms, durationOverrides map[string]int, d Deriver, w HealthWeights, now time.Time) []models.CampaignHealth {
	if w.sum() == 0 {
		w = DefaultHealthWeights()
	}
	rows = d.ApplySpend(rows)
	byCampaign := make(map[string][]models.CampaignRow)
	for _, r := range rows {
		if r.CampaignName == models.TotalsSentinel {
			continue
		}
		byCampaign[r.CampaignName] = append(byCampaign[r.CampaignName], r)
	}

	now = dayUTC(now)
	var out []models.CampaignHealth
	for _, t := range terms {
		out = append(out, scoreCampaign(byCampaign[t.CampaignName], t, durationOverrides[t.CampaignName], d, w, now))
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].CampaignName) < strings.ToLower(out[j].CampaignName)
	})
	return out
}

func scoreCampaign(rows []models.CampaignRow, t models.ContractTerms, durationOverride int, d Deriver, w HealthWeights, now time.Time) models.CampaignHealth {
	var g acc
	for _, r := range rows {
		g.add(r)
	}

	totalDays := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if durationOverride > 0 {
		totalDays = durationOverride
	}
	elapsed := int(now.Sub(t.StartDate).Hours()/24) + 1
	elapsed = clampInt(elapsed, 0, totalDays)
	completion := clampFloat(safeDiv(float64(elapsed), float64(totalDays))*100, 0, 100)

	roas := d.ROAS(g.revenue, g.spend, g.impressions)
	ctr := CTR(g.clicks, g.impressions)

	expected := safeDiv(float64(elapsed), float64(totalDays))
	var actual float64
	switch {
	case t.ImpressionsGoal > 0:
		actual = safeDiv(float64(g.impressions), float64(t.ImpressionsGoal))
	case t.Budget > 0:
		actual = safeDiv(g.spend, t.Budget)
	}
	pacing := safeDiv(actual, expected) * 100

	burnData, burnPct := burnRate(rows, t, totalDays, elapsed, g.impressions)

	var overspend float64
	if t.Budget > 0 && g.spend > t.Budget {
		overspend = g.spend - t.Budget
	}

	h := models.CampaignHealth{
		CampaignName:         t.CampaignName,
		ROAS:                 roas,
		ROASScore:            bucketScore(roas, roasScoreTable),
		DeliveryPacing:       round1(pacing),
		DeliveryPacingScore:  targetScore(pacing),
		BurnRatePercentage:   round1(burnPct),
		BurnRateScore:        targetScore(burnPct),
		CTR:                  ctr,
		CTRScore:             bucketScore(ctr, ctrScoreTable),
		Overspend:            round2(overspend),
		OverspendScore:       overspendScore(overspend, t.Budget),
		CompletionPercentage: round1(completion),
		BurnRateData:         burnData,
	}
	h.HealthScore = round1((h.ROASScore*w.ROAS +
		h.DeliveryPacingScore*w.Pacing +
		h.BurnRateScore*w.BurnRate +
		h.CTRScore*w.CTR +
		h.OverspendScore*w.Overspend) / w.sum())
	return h
}

// burnRate reports 1/3/7-day rolling delivery windows against the daily goal
// and the recent rate against the rate still required to hit the goal. The
// per-window confidence tags are informational only.
func burnRate(rows []models.CampaignRow, t models.ContractTerms, totalDays, elapsed, delivered int) ([]models.BurnRateWindow, float64) {
	latest := latestDate(rows)
	dailyGoal := safeDiv(float64(t.ImpressionsGoal), float64(totalDays))

	windows := make([]models.BurnRateWindow, 0, len(burnWindows))
	var threeDayRate float64
	for _, bw := range burnWindows {
		var imps int
		if !latest.IsZero() {
			start := latest.AddDate(0, 0, -(bw.days - 1))
			for _, r := range rows {
				if r.HasDate() && !r.Date.Before(start) && !r.Date.After(latest) {
					imps += r.Impressions
				}
			}
		}
		rate := safeDiv(float64(imps), float64(bw.days))
		if bw.days == 3 {
			threeDayRate = rate
		}
		windows = append(windows, models.BurnRateWindow{
			WindowDays:    bw.days,
			Impressions:   imps,
			DailyRate:     round1(rate),
			PercentOfGoal: round1(safeDiv(rate, dailyGoal) * 100),
			Confidence:    bw.confidence,
		})
	}

	remainingDays := totalDays - elapsed
	remainingGoal := float64(t.ImpressionsGoal - delivered)
	var burnPct float64
	switch {
	case remainingDays <= 0 || remainingGoal <= 0:
		// Nothing left to pace against: fully delivered (or out of time
		// with goal met) reads as on-target, otherwise as stalled.
		if remainingGoal <= 0 {
			burnPct = 100
		}
	default:
		required := remainingGoal / float64(remainingDays)
		burnPct = safeDiv(threeDayRate, required) * 100
	}
	return windows, burnPct
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
