package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/store"
)

func (s *Store) UpsertContractTerms(ctx context.Context, terms []models.ContractTerms) (int, error) {
	if len(terms) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin contract upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contract_terms (campaign_name, start_date, end_date, budget, cpm, impressions_goal, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (campaign_name) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			budget = EXCLUDED.budget,
			cpm = EXCLUDED.cpm,
			impressions_goal = EXCLUDED.impressions_goal,
			updated_at = now()
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare contract upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range terms {
		if _, err := stmt.ExecContext(ctx, t.CampaignName, t.StartDate, t.EndDate,
			t.Budget, t.CPM, t.ImpressionsGoal); err != nil {
			return 0, fmt.Errorf("upsert contract %q: %w", t.CampaignName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit contract upsert: %w", err)
	}
	return len(terms), nil
}

func (s *Store) ContractTerms(ctx context.Context) ([]models.ContractTerms, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_name, start_date, end_date, budget, cpm, impressions_goal, updated_at
		FROM contract_terms
		ORDER BY LOWER(campaign_name) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list contract terms: %w", err)
	}
	defer rows.Close()

	var out []models.ContractTerms
	for rows.Next() {
		var t models.ContractTerms
		if err := rows.Scan(&t.CampaignName, &t.StartDate, &t.EndDate,
			&t.Budget, &t.CPM, &t.ImpressionsGoal, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contract terms: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) DeleteContractTerms(ctx context.Context, campaignName string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contract_terms WHERE LOWER(campaign_name) = LOWER($1)`, campaignName)
	if err != nil {
		return fmt.Errorf("delete contract terms: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
