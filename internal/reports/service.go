// Package reports turns stored performance rows into the payloads the
// dashboard renders. Everything here is a pure recomputation over rows
// fetched from the store; results are cached under a fingerprint of the
// dataset version plus the query, never shared or mutated.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adpulse/adpulse/internal/analytics"
	"github.com/adpulse/adpulse/internal/cache"
	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/store"
)

// ErrBadGroup marks an unknown grouping mode in the query.
var ErrBadGroup = errors.New("unknown group mode")

type Service struct {
	st      store.Store
	cache   cache.Cache
	ttl     time.Duration
	deriver analytics.Deriver
	anomCfg analytics.AnomalyConfig
	weights analytics.HealthWeights
	log     *slog.Logger
	now     func() time.Time
}

func New(st store.Store, c cache.Cache, ttl time.Duration, d analytics.Deriver, anomCfg analytics.AnomalyConfig, w analytics.HealthWeights, log *slog.Logger) *Service {
	return &Service{
		st:      st,
		cache:   c,
		ttl:     ttl,
		deriver: d,
		anomCfg: anomCfg,
		weights: w,
		log:     log,
		now:     time.Now,
	}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// csvList splits a comma-separated query parameter into trimmed values.
func csvList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func filterFromQuery(v url.Values) store.RowFilter {
	var f store.RowFilter
	if t, err := time.Parse("2006-01-02", v.Get("from")); err == nil {
		f.From = t
	}
	if t, err := time.Parse("2006-01-02", v.Get("to")); err == nil {
		f.To = t
	}
	f.Campaigns = csvList(v.Get("campaign"))
	f.Advertisers = csvList(v.Get("advertiser"))
	f.Agencies = csvList(v.Get("agency"))
	return f
}

// deriverFromQuery applies the per-request custom spend mode on top of the
// configured deriver.
func (s *Service) deriverFromQuery(v url.Values) analytics.Deriver {
	d := s.deriver
	if cpm, err := strconv.ParseFloat(v.Get("custom_cpm"), 64); err == nil && cpm > 0 {
		d.CustomCPM = cpm
	}
	return d
}

func filterKey(f store.RowFilter) string {
	return strings.Join([]string{
		f.From.Format("2006-01-02"), f.To.Format("2006-01-02"),
		strings.Join(f.Campaigns, ","), strings.Join(f.Advertisers, ","), strings.Join(f.Agencies, ","),
	}, ";")
}

// cached runs compute and memoizes its marshaled result under the dataset
// fingerprint. A failing DatasetVersion read just skips the cache.
func (s *Service) cached(ctx context.Context, op string, v url.Values, compute func(rows []models.CampaignRow) (interface{}, error)) ([]byte, error) {
	f := filterFromQuery(v)
	d := s.deriverFromQuery(v)

	var key string
	if version, err := s.st.DatasetVersion(ctx); err == nil {
		key = cache.Fingerprint(version, op, filterKey(f),
			string(d.Mode), fmt.Sprintf("%g", d.CustomCPM),
			v.Get("group"), v.Get("fill"), v.Get("limit"), v.Get("offset"))
		if b, ok := s.cache.Get(ctx, key); ok {
			return b, nil
		}
	} else {
		s.log.Warn("dataset version unavailable, skipping cache", slog.String("err", err.Error()))
	}

	rows, err := s.st.PerformanceRows(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	out, err := compute(rows)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", op, err)
	}
	if key != "" {
		s.cache.Set(ctx, key, b, s.ttl)
	}
	return b, nil
}

// Series returns the daily time series, gap-filled to a contiguous range
// unless fill=0.
func (s *Service) Series(ctx context.Context, v url.Values) ([]byte, error) {
	return s.cached(ctx, "series", v, func(rows []models.CampaignRow) (interface{}, error) {
		d := s.deriverFromQuery(v)
		series := analytics.DailySeries(rows, d)
		if v.Get("fill") != "0" {
			f := filterFromQuery(v)
			series = analytics.FillDateRange(series, f.From, f.To)
		}
		if series == nil {
			series = []models.TimeSeriesPoint{}
		}
		return series, nil
	})
}

// Totals returns grouped totals for the requested mode (default campaign).
func (s *Service) Totals(ctx context.Context, v url.Values) ([]byte, error) {
	mode := analytics.GroupMode(norm(v.Get("group")))
	if mode == "" {
		mode = analytics.GroupByCampaign
	}
	if !analytics.ValidGroupMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrBadGroup, mode)
	}
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)
	return s.cached(ctx, "totals", v, func(rows []models.CampaignRow) (interface{}, error) {
		out := analytics.Aggregate(rows, mode, s.deriverFromQuery(v))
		l, o := clampLimitOffset(limit, offset, len(out))
		return paginate(out, l, o), nil
	})
}

// Trend compares the last two days of the (unfilled) series.
func (s *Service) Trend(ctx context.Context, v url.Values) (models.TrendData, error) {
	rows, err := s.st.PerformanceRows(ctx, filterFromQuery(v))
	if err != nil {
		return models.TrendData{}, fmt.Errorf("load rows: %w", err)
	}
	return analytics.Trend(analytics.DailySeries(rows, s.deriverFromQuery(v))), nil
}

// Anomalies recomputes the full candidate set and merges the persisted
// suppression flags. Ignored anomalies are dropped unless includeIgnored.
func (s *Service) Anomalies(ctx context.Context, includeIgnored bool) ([]models.Anomaly, error) {
	rows, err := s.st.PerformanceRows(ctx, store.RowFilter{})
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	flags, err := s.st.AnomalyFlags(ctx)
	if err != nil {
		return nil, fmt.Errorf("load anomaly flags: %w", err)
	}
	detected := analytics.DetectAnomalies(rows, s.anomCfg)
	out := make([]models.Anomaly, 0, len(detected))
	for _, a := range detected {
		if f, ok := flags[a.Fingerprint]; ok {
			a.Ignored = f.Ignored
		}
		if a.Ignored && !includeIgnored {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Health scores every campaign that has contract terms. Duration overrides
// come from persisted anomaly flags; when several exist for one campaign the
// most recent wins.
func (s *Service) Health(ctx context.Context) ([]models.CampaignHealth, error) {
	rows, err := s.st.PerformanceRows(ctx, store.RowFilter{})
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	terms, err := s.st.ContractTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contract terms: %w", err)
	}
	flags, err := s.st.AnomalyFlags(ctx)
	if err != nil {
		return nil, fmt.Errorf("load anomaly flags: %w", err)
	}
	overrides := durationOverrides(flags)
	return analytics.ScoreCampaigns(rows, terms, overrides, s.deriver, s.weights, s.now()), nil
}

func durationOverrides(flags map[string]models.AnomalyFlag) map[string]int {
	latest := make(map[string]models.AnomalyFlag)
	for _, f := range flags {
		if f.CustomDurationDays <= 0 {
			continue
		}
		if cur, ok := latest[f.CampaignName]; !ok || f.UpdatedAt.After(cur.UpdatedAt) {
			latest[f.CampaignName] = f
		}
	}
	out := make(map[string]int, len(latest))
	for name, f := range latest {
		out[name] = f.CustomDurationDays
	}
	return out
}

func paginate(rows []models.GroupTotals, limit, offset int) []models.GroupTotals {
	if offset >= len(rows) {
		return []models.GroupTotals{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
