// Package postgres implements store.Store against PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/adpulse/adpulse/internal/store"
)

type Store struct{ db *sql.DB }

var _ store.Store = (*Store)(nil)

// New wraps an existing connection pool.
func New(db *sql.DB) *Store { return &Store{db: db} }

// Open connects, pings and bootstraps the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS performance_rows (
	-- '0001-01-01' stands in for rows whose source date was unparsable.
	date          DATE NOT NULL DEFAULT '0001-01-01',
	campaign_name TEXT NOT NULL,
	advertiser    TEXT NOT NULL DEFAULT '',
	agency        TEXT NOT NULL DEFAULT '',
	impressions   BIGINT NOT NULL DEFAULT 0,
	clicks        BIGINT NOT NULL DEFAULT 0,
	revenue       DOUBLE PRECISION NOT NULL DEFAULT 0,
	spend         DOUBLE PRECISION NOT NULL DEFAULT 0,
	transactions  BIGINT NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS performance_rows_day_key
	ON performance_rows (date, campaign_name, advertiser, agency);

CREATE TABLE IF NOT EXISTS contract_terms (
	campaign_name    TEXT PRIMARY KEY,
	start_date       DATE NOT NULL,
	end_date         DATE NOT NULL,
	budget           DOUBLE PRECISION NOT NULL DEFAULT 0,
	cpm              DOUBLE PRECISION NOT NULL DEFAULT 0,
	impressions_goal BIGINT NOT NULL DEFAULT 0,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS anomaly_flags (
	fingerprint     TEXT PRIMARY KEY,
	campaign_name   TEXT NOT NULL,
	is_ignored      BOOLEAN NOT NULL DEFAULT FALSE,
	custom_duration INTEGER NOT NULL DEFAULT 0,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'todo',
	priority    TEXT NOT NULL DEFAULT 'normal',
	due_date    TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS activity_log (
	id         TEXT PRIMARY KEY,
	actor      TEXT NOT NULL DEFAULT '',
	action     TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS announcements (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS team_resources (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the backing tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
