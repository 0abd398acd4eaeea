package postgres

import (
	"context"
	"fmt"

	"github.com/adpulse/adpulse/internal/models"
)

// The two setters upsert independently so toggling suppression never clears a
// saved duration override and vice versa. An empty campaign name keeps the
// stored one.

func (s *Store) SetAnomalyIgnored(ctx context.Context, fingerprint, campaignName string, ignored bool) (models.AnomalyFlag, error) {
	return s.upsertFlag(ctx, `
		INSERT INTO anomaly_flags (fingerprint, campaign_name, is_ignored, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (fingerprint) DO UPDATE SET
			campaign_name = COALESCE(NULLIF(EXCLUDED.campaign_name, ''), anomaly_flags.campaign_name),
			is_ignored = EXCLUDED.is_ignored,
			updated_at = now()
		RETURNING fingerprint, campaign_name, is_ignored, custom_duration, updated_at
	`, fingerprint, campaignName, ignored)
}

func (s *Store) SetAnomalyDuration(ctx context.Context, fingerprint, campaignName string, days int) (models.AnomalyFlag, error) {
	return s.upsertFlag(ctx, `
		INSERT INTO anomaly_flags (fingerprint, campaign_name, custom_duration, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (fingerprint) DO UPDATE SET
			campaign_name = COALESCE(NULLIF(EXCLUDED.campaign_name, ''), anomaly_flags.campaign_name),
			custom_duration = EXCLUDED.custom_duration,
			updated_at = now()
		RETURNING fingerprint, campaign_name, is_ignored, custom_duration, updated_at
	`, fingerprint, campaignName, days)
}

func (s *Store) upsertFlag(ctx context.Context, q string, args ...interface{}) (models.AnomalyFlag, error) {
	var f models.AnomalyFlag
	err := s.db.QueryRowContext(ctx, q, args...).
		Scan(&f.Fingerprint, &f.CampaignName, &f.Ignored, &f.CustomDurationDays, &f.UpdatedAt)
	if err != nil {
		return models.AnomalyFlag{}, fmt.Errorf("set anomaly flag: %w", err)
	}
	return f, nil
}

func (s *Store) AnomalyFlags(ctx context.Context) (map[string]models.AnomalyFlag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, campaign_name, is_ignored, custom_duration, updated_at
		FROM anomaly_flags
	`)
	if err != nil {
		return nil, fmt.Errorf("list anomaly flags: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.AnomalyFlag)
	for rows.Next() {
		var f models.AnomalyFlag
		if err := rows.Scan(&f.Fingerprint, &f.CampaignName, &f.Ignored, &f.CustomDurationDays, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly flag: %w", err)
		}
		out[f.Fingerprint] = f
	}
	return out, rows.Err()
}
