package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gpu-prices/internal/config"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return &PostgresStore{pool: mock}, mock
}

func configFor(driver, url string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, DatabaseURL: url}
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS snapshots`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO snapshots \(id, result, record_count, failure_count, created_at\)`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), 2, 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := s.SaveSnapshot(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveSnapshotError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO snapshots`).
		WillReturnError(eris.New("connection reset"))

	_, err := s.SaveSnapshot(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert snapshot")
}

func TestPostgresStore_GetSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	body, err := json.Marshal(sampleResult())
	require.NoError(t, err)
	created := time.Date(2025, 3, 1, 12, 0, 1, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, result, created_at FROM snapshots WHERE id = \$1`).
		WithArgs("snap-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "result", "created_at"}).
			AddRow("snap-1", body, created))

	snap, err := s.GetSnapshot(context.Background(), "snap-1")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, created, snap.CreatedAt)
	assert.Len(t, snap.Result.Records, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSnapshotNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, result, created_at FROM snapshots`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSnapshot(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSnapshots(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, created_at, record_count, failure_count FROM snapshots ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(DefaultListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "record_count", "failure_count"}).
			AddRow("b", now, 10, 0).
			AddRow("a", now.Add(-time.Hour), 7, 1))

	out, err := s.ListSnapshots(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, 1, out[1].Failures)
	assert.NoError(t, mock.ExpectationsWereMet())
}
