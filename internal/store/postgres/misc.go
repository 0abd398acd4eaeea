package postgres

import (
	"context"
	"fmt"

	"github.com/adpulse/adpulse/internal/models"
)

func (s *Store) AppendActivity(ctx context.Context, e models.ActivityEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, actor, action, subject, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, e.ID, e.Actor, e.Action, e.Subject, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *Store) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, action, subject, created_at
		FROM activity_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Subject, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateAnnouncement(ctx context.Context, a models.Announcement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO announcements (id, title, body, created_at)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.Title, a.Body, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (s *Store) Announcements(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, created_at FROM announcements ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) CreateResource(ctx context.Context, r models.TeamResource) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_resources (id, title, url, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.Title, r.URL, r.Category, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (s *Store) Resources(ctx context.Context) ([]models.TeamResource, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, category, created_at FROM team_resources ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []models.TeamResource
	for rows.Next() {
		var r models.TeamResource
		if err := rows.Scan(&r.ID, &r.Title, &r.URL, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteResource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM team_resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return requireAffected(res)
}
