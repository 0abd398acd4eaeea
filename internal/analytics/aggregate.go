package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/adpulse/adpulse/internal/models"
)

// GroupMode selects the aggregation key.
type GroupMode string

const (
	GroupByDate       GroupMode = "date"
	GroupByCampaign   GroupMode = "campaign"
	GroupByAdvertiser GroupMode = "advertiser"
	GroupByAgency     GroupMode = "agency"
	GroupByWeekday    GroupMode = "weekday"
)

// ValidGroupMode reports whether m names a known grouping.
func ValidGroupMode(m GroupMode) bool {
	switch m {
	case GroupByDate, GroupByCampaign, GroupByAdvertiser, GroupByAgency, GroupByWeekday:
		return true
	}
	return false
}

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

type acc struct {
	impressions  int
	clicks       int
	revenue      float64
	spend        float64
	transactions int
	rows         int
}

func (a *acc) add(r models.CampaignRow) {
	a.impressions += r.Impressions
	a.clicks += r.Clicks
	a.revenue += r.Revenue
	a.spend += r.Spend
	a.transactions += r.Transactions
	a.rows++
}

// Aggregate groups rows by the given mode in a single pass and fills the
// derived ratio metrics from the summed values. "Totals" sentinel rows never
// contribute; rows without a parseable date are skipped for the date and
// weekday modes only. Ordering: date ascending for GroupByDate, Sun→Sat for
// GroupByWeekday, case-insensitive key ascending otherwise.
func Aggregate(rows []models.CampaignRow, mode GroupMode, d Deriver) []models.GroupTotals {
	rows = d.ApplySpend(rows)
	groups := make(map[string]*acc)
	for _, r := range rows {
		if r.CampaignName == models.TotalsSentinel {
			continue
		}
		key, ok := groupKey(r, mode)
		if !ok {
			continue
		}
		g := groups[key]
		if g == nil {
			g = &acc{}
			groups[key] = g
		}
		g.add(r)
	}

	out := make([]models.GroupTotals, 0, len(groups))
	for key, g := range groups {
		out = append(out, models.GroupTotals{
			Key:          key,
			Impressions:  g.impressions,
			Clicks:       g.clicks,
			Revenue:      g.revenue,
			Spend:        g.spend,
			Transactions: g.transactions,
			Rows:         g.rows,
			CTR:          CTR(g.clicks, g.impressions),
			ROAS:         d.ROAS(g.revenue, g.spend, g.impressions),
			AOV:          AOV(g.revenue, g.transactions),
		})
	}
	sortTotals(out, mode)
	return out
}

func groupKey(r models.CampaignRow, mode GroupMode) (string, bool) {
	switch mode {
	case GroupByDate:
		if !r.HasDate() {
			return "", false
		}
		return r.Date.Format("2006-01-02"), true
	case GroupByWeekday:
		if !r.HasDate() {
			return "", false
		}
		return weekdayNames[int(r.Date.Weekday())], true
	case GroupByAdvertiser:
		return r.Advertiser, true
	case GroupByAgency:
		return r.Agency, true
	default:
		return r.CampaignName, true
	}
}

func sortTotals(out []models.GroupTotals, mode GroupMode) {
	switch mode {
	case GroupByDate:
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	case GroupByWeekday:
		sort.Slice(out, func(i, j int) bool { return weekdayIndex(out[i].Key) < weekdayIndex(out[j].Key) })
	default:
		sort.Slice(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].Key), strings.ToLower(out[j].Key)
			if a != b {
				return a < b
			}
			return out[i].Key < out[j].Key
		})
	}
}

func weekdayIndex(name string) int {
	for i, n := range weekdayNames {
		if n == name {
			return i
		}
	}
	return len(weekdayNames)
}

// DailySeries aggregates rows into a date-ascending time series with derived
// metrics per day. Rows without a date and "Totals" rows are excluded.
func DailySeries(rows []models.CampaignRow, d Deriver) []models.TimeSeriesPoint {
	rows = d.ApplySpend(rows)
	days := make(map[time.Time]*acc)
	for _, r := range rows {
		if r.CampaignName == models.TotalsSentinel || !r.HasDate() {
			continue
		}
		g := days[r.Date]
		if g == nil {
			g = &acc{}
			days[r.Date] = g
		}
		g.add(r)
	}
	out := make([]models.TimeSeriesPoint, 0, len(days))
	for day, g := range days {
		out = append(out, models.TimeSeriesPoint{
			Date:         day,
			Impressions:  g.impressions,
			Clicks:       g.clicks,
			Revenue:      g.revenue,
			Spend:        g.spend,
			Transactions: g.transactions,
			CTR:          CTR(g.clicks, g.impressions),
			ROAS:         d.ROAS(g.revenue, g.spend, g.impressions),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
