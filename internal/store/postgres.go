package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/gpu-prices/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a small connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	result        JSONB NOT NULL,
	record_count  INTEGER NOT NULL DEFAULT 0,
	failure_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, res *model.Result) (string, error) {
	b, err := marshalResult(res)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()

	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, result, record_count, failure_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, b, len(res.Records), len(res.Failures), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert snapshot")
	}
	return id, nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	var snap model.Snapshot
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, result, created_at FROM snapshots WHERE id = $1`, id,
	).Scan(&snap.ID, &resultJSON, &snap.CreatedAt)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "snapshot %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", id)
	}

	snap.Result, err = unmarshalResult(resultJSON)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, limit int) ([]model.SnapshotSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, created_at, record_count, failure_count FROM snapshots ORDER BY created_at DESC LIMIT $1`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	out := []model.SnapshotSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}
