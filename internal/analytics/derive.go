// Package analytics implements the aggregation, anomaly-detection and
// health-scoring pipeline. Every function is pure: inputs are never mutated
// and results carry no shared state.
package analytics

import (
	"strings"

	"github.com/adpulse/adpulse/internal/models"
)

// ROASMode selects which return-on-ad-spend convention applies. The two are
// not interchangeable; one mode is used consistently per deployment.
type ROASMode string

const (
	// ROASBySpend is revenue/spend, the default.
	ROASBySpend ROASMode = "spend"
	// ROASByImpressions is revenue/impressions*1000, for datasets where
	// spend is not tracked.
	ROASByImpressions ROASMode = "impressions"
)

// ForcedCPM is the flat CPM applied to campaigns booked through the agency
// configured in Deriver.ForcedCPMAgency, overriding any dataset spend.
const ForcedCPM = 7.0

// Deriver computes ratio metrics from aggregated sums. The zero value uses
// spend-based ROAS with no spend substitution.
type Deriver struct {
	Mode ROASMode
	// CustomCPM, when > 0, recomputes spend as impressions/1000*CustomCPM
	// before any ratio metric is taken.
	CustomCPM float64
	// ForcedCPMAgency forces ForcedCPM for rows whose agency matches this
	// name or abbreviation, regardless of the dataset's own spend.
	ForcedCPMAgency string
}

// ApplySpend returns a copy of rows with the spend substitutions applied.
// Substitution happens before any ratio metric is computed.
func (d Deriver) ApplySpend(rows []models.CampaignRow) []models.CampaignRow {
	if d.CustomCPM <= 0 && d.ForcedCPMAgency == "" {
		return rows
	}
	out := make([]models.CampaignRow, len(rows))
	copy(out, rows)
	for i := range out {
		switch {
		case d.agencyForced(out[i].Agency):
			out[i].Spend = float64(out[i].Impressions) / 1000 * ForcedCPM
		case d.CustomCPM > 0:
			out[i].Spend = float64(out[i].Impressions) / 1000 * d.CustomCPM
		}
	}
	return out
}

func (d Deriver) agencyForced(agency string) bool {
	if d.ForcedCPMAgency == "" || agency == "" {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(d.ForcedCPMAgency))
	got := strings.ToLower(strings.TrimSpace(agency))
	if got == want {
		return true
	}
	for _, tok := range strings.Fields(got) {
		if strings.Trim(tok, "().,") == want {
			return true
		}
	}
	return false
}

// ROAS computes return on ad spend under the configured mode. A zero
// denominator yields 0, never NaN or Inf.
func (d Deriver) ROAS(revenue, spend float64, impressions int) float64 {
	if d.Mode == ROASByImpressions {
		return safeDiv(revenue, float64(impressions)) * 1000
	}
	return safeDiv(revenue, spend)
}

// CTR is clicks/impressions expressed as a percentage.
func CTR(clicks, impressions int) float64 {
	return safeDiv(float64(clicks), float64(impressions)) * 100
}

// AOV is average order value, revenue/transactions.
func AOV(revenue float64, transactions int) float64 {
	return safeDiv(revenue, float64(transactions))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
