// Package postgres records runs into PostgreSQL. A run, its parameters and
// its metrics are written in one transaction.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/hemajv/insights-clustering/tracking"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB is the subset of *pgxpool.Pool the sink uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sink is a tracking.Sink writing to PostgreSQL.
type Sink struct {
	db   DB
	pool *pgxpool.Pool // nil when built over a caller's DB
}

// Connect opens a pool for dsn, pings it and creates the schema.
func Connect(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s := &Sink{db: pool, pool: pool}
	if err := s.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The caller owns db.
func New(db DB) *Sink {
	return &Sink{db: db}
}

// InitSchema executes the embedded DDL. It is idempotent.
func (s *Sink) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: init schema: %w", err)
	}
	return nil
}

// Close closes a pool opened by Connect.
func (s *Sink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const (
	insertRunSQL = `
		INSERT INTO tracking_runs (run_id, experiment, started_at)
		VALUES ($1, $2, $3)`
	insertParamSQL = `
		INSERT INTO tracking_params (run_id, key, value)
		VALUES ($1, $2, $3)`
	insertMetricSQL = `
		INSERT INTO tracking_metrics (run_id, key, value)
		VALUES ($1, $2, $3)`
)

// Record implements tracking.Sink.
func (s *Sink) Record(ctx context.Context, run *tracking.Run) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertRunSQL, run.ID, run.Experiment, run.Start); err != nil {
		return fmt.Errorf("postgres: insert run %s: %w", run.ID, err)
	}
	for _, p := range run.Params() {
		if _, err := tx.Exec(ctx, insertParamSQL, run.ID, p.Key, p.Value); err != nil {
			return fmt.Errorf("postgres: insert param %s: %w", p.Key, err)
		}
	}
	for _, m := range run.Metrics() {
		if _, err := tx.Exec(ctx, insertMetricSQL, run.ID, m.Key, m.Value); err != nil {
			return fmt.Errorf("postgres: insert metric %s: %w", m.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}
