package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS import_runs (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	file_name   TEXT NOT NULL,
	rows        INTEGER NOT NULL DEFAULT 0,
	state       TEXT NOT NULL,
	outcome     TEXT NOT NULL DEFAULT '',
	created     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	message     TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS import_runs_at_idx ON import_runs (at DESC);
`

const insertRunSQL = `
INSERT INTO import_runs (id, kind, file_name, rows, state, outcome, created, failed, message, duration_ms, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const recentRunsSQL = `
SELECT id, kind, file_name, rows, state, outcome, created, failed, message, duration_ms, at
FROM import_runs
ORDER BY at DESC
LIMIT $1`

// PostgresStore keeps runs in the import_runs table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an open pool. Call EnsureSchema before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the import_runs table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create import_runs: %w", err)
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, run Run) error {
	_, err := s.pool.Exec(ctx, insertRunSQL,
		run.ID, string(run.Kind), run.FileName, run.Rows, string(run.State),
		string(run.Outcome), run.Created, run.Failed, run.Message, run.DurationMs, run.At,
	)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.pool.Query(ctx, recentRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	runs, err := pgx.CollectRows(rows, scanRun)
	if err != nil {
		return nil, fmt.Errorf("scan import runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.CollectableRow) (Run, error) {
	var (
		run                  Run
		kind, state, outcome string
	)
	err := row.Scan(
		&run.ID, &kind, &run.FileName, &run.Rows, &state, &outcome,
		&run.Created, &run.Failed, &run.Message, &run.DurationMs, &run.At,
	)
	run.Kind = importer.EventKind(kind)
	run.State = importer.State(state)
	run.Outcome = importer.OutcomeKind(outcome)
	return run, err
}
