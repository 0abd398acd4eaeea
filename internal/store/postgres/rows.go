package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/store"
)

func (s *Store) UpsertPerformanceRows(ctx context.Context, rows []models.CampaignRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO performance_rows
			(date, campaign_name, advertiser, agency, impressions, clicks, revenue, spend, transactions, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (date, campaign_name, advertiser, agency) DO UPDATE SET
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			revenue = EXCLUDED.revenue,
			spend = EXCLUDED.spend,
			transactions = EXCLUDED.transactions,
			updated_at = now()
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Date, r.CampaignName, r.Advertiser, r.Agency,
			r.Impressions, r.Clicks, r.Revenue, r.Spend, r.Transactions); err != nil {
			return 0, fmt.Errorf("upsert row %s/%s: %w", r.Date.Format("2006-01-02"), r.CampaignName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return len(rows), nil
}

func (s *Store) PerformanceRows(ctx context.Context, f store.RowFilter) ([]models.CampaignRow, error) {
	q := `
		SELECT date, campaign_name, advertiser, agency, impressions, clicks, revenue, spend, transactions
		FROM performance_rows`
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.From.IsZero() {
		conds = append(conds, "date >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "date <= "+arg(f.To))
	}
	if len(f.Campaigns) > 0 {
		conds = append(conds, "LOWER(campaign_name) = ANY("+arg(pq.Array(lowered(f.Campaigns)))+")")
	}
	if len(f.Advertisers) > 0 {
		conds = append(conds, "LOWER(advertiser) = ANY("+arg(pq.Array(lowered(f.Advertisers)))+")")
	}
	if len(f.Agencies) > 0 {
		conds = append(conds, "LOWER(agency) = ANY("+arg(pq.Array(lowered(f.Agencies)))+")")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date ASC, campaign_name ASC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list performance rows: %w", err)
	}
	defer rows.Close()

	var out []models.CampaignRow
	for rows.Next() {
		var r models.CampaignRow
		var d time.Time
		if err := rows.Scan(&d, &r.CampaignName, &r.Advertiser, &r.Agency,
			&r.Impressions, &r.Clicks, &r.Revenue, &r.Spend, &r.Transactions); err != nil {
			return nil, fmt.Errorf("scan performance row: %w", err)
		}
		if d.Year() > 1 {
			r.Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DatasetVersion(ctx context.Context) (string, error) {
	var count int64
	var max string
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(updated_at)::text, '') FROM performance_rows`,
	).Scan(&count, &max)
	if err != nil {
		return "", fmt.Errorf("dataset version: %w", err)
	}
	return fmt.Sprintf("%d:%s", count, max), nil
}

func lowered(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
