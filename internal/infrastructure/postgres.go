package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres opens and verifies a PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// Migrate creates the tables the service needs if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS business_managers (
			bm_id        TEXT PRIMARY KEY,
			access_token TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			report_type TEXT NOT NULL,
			bm_id       TEXT NOT NULL,
			object_id   TEXT NOT NULL,
			date_preset TEXT NOT NULL DEFAULT '',
			insights    JSONB NOT NULL DEFAULT '[]',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_lookup
			ON reports (bm_id, object_id, report_type, date_preset, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS share_links (
			id            BIGSERIAL PRIMARY KEY,
			token         TEXT NOT NULL UNIQUE,
			report_id     BIGINT REFERENCES reports (id) ON DELETE SET NULL,
			bm_id         TEXT NOT NULL,
			ad_account_id TEXT NOT NULL DEFAULT '',
			campaign_id   TEXT NOT NULL DEFAULT '',
			date_preset   TEXT NOT NULL DEFAULT '',
			expires_at    TIMESTAMPTZ NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
