package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/inventory-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS inventory_runs (
	id          BIGSERIAL PRIMARY KEY,
	source      TEXT        NOT NULL,
	status      TEXT        NOT NULL,
	count       INTEGER     NOT NULL DEFAULT 0,
	fail_reason TEXT        NOT NULL DEFAULT '',
	duration_ms BIGINT      NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS inventory_runs_source_started_idx
	ON inventory_runs (source, started_at DESC);`

// PostgresStore keeps the history of pipeline runs in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// EnsureSchema creates the run table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// RecordRun appends one run to the history.
func (s *PostgresStore) RecordRun(ctx context.Context, run domain.RunRecord) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO inventory_runs (source, status, count, fail_reason, duration_ms, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.Source, run.Status, run.Count, run.FailReason, run.DurationMS, run.StartedAt,
	)
	return err
}

// LastRun returns the most recent run for source.
func (s *PostgresStore) LastRun(ctx context.Context, source string) (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := s.db.QueryRow(ctx,
		`SELECT source, status, count, fail_reason, duration_ms, started_at
		 FROM inventory_runs WHERE source = $1
		 ORDER BY started_at DESC, id DESC LIMIT 1`,
		source,
	).Scan(&run.Source, &run.Status, &run.Count, &run.FailReason, &run.DurationMS, &run.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
