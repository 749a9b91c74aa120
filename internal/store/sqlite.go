package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/gpu-prices/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	result        TEXT NOT NULL,
	record_count  INTEGER NOT NULL DEFAULT 0,
	failure_count INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, res *model.Result) (string, error) {
	b, err := marshalResult(res)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, result, record_count, failure_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(b), len(res.Records), len(res.Failures), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert snapshot")
	}
	return id, nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	var snap model.Snapshot
	var resultJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, result, created_at FROM snapshots WHERE id = ?`, id,
	).Scan(&snap.ID, &resultJSON, &snap.CreatedAt)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "snapshot %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", id)
	}

	snap.Result, err = unmarshalResult([]byte(resultJSON))
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, limit int) ([]model.SnapshotSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, record_count, failure_count FROM snapshots ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close() //nolint:errcheck

	out := []model.SnapshotSummary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSummary(row scannable) (*model.SnapshotSummary, error) {
	var sum model.SnapshotSummary
	if err := row.Scan(&sum.ID, &sum.CreatedAt, &sum.Records, &sum.Failures); err != nil {
		return nil, eris.Wrap(err, "store: scan snapshot summary")
	}
	return &sum, nil
}
