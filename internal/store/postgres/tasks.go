package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adpulse/adpulse/internal/models"
	"github.com/adpulse/adpulse/internal/store"
)

func (s *Store) CreateTask(ctx context.Context, t models.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, t models.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, nullTime(t.DueDate), t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) Task(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	var due sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Task{}, store.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return t, nil
}

func (s *Store) Tasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		var due sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if due.Valid {
			t.DueDate = &due.Time
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
