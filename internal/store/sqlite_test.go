package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gpu-prices/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleResult() *model.Result {
	res := model.NewResult(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	res.Records = []model.Record{
		{Provider: "RunPod", Item: "A100 80GB", Price: "$1.1900/hr (Community)", Specs: "Memory: 80 GB"},
		{Provider: "Vast.ai", Item: "RTX 4090", Price: "$0.35/hr (Median)", Specs: "Total Available: 124"},
	}
	res.Failures = []model.Failure{{Provider: "DigitalOcean", Reason: "digitalocean: open browser"}}
	res.Sources = []model.SourceSummary{
		{Provider: "RunPod", Records: 1, DurationMS: 120},
		{Provider: "Vast.ai", Records: 1, DurationMS: 340},
		{Provider: "DigitalOcean", Error: "digitalocean: open browser"},
	}
	res.DurationMS = 350
	return res
}

func TestSQLite_SaveAndGetSnapshot(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.SaveSnapshot(ctx, sampleResult())
	require.NoError(t, err)
	assert.Len(t, id, 36)

	snap, err := st.GetSnapshot(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.False(t, snap.CreatedAt.IsZero())
	assert.Equal(t, sampleResult().Records, snap.Result.Records)
	assert.Equal(t, sampleResult().Failures, snap.Result.Failures)
	assert.Equal(t, int64(350), snap.Result.DurationMS)
}

func TestSQLite_GetSnapshotNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetSnapshot(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_ListSnapshots(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		id, err := st.SaveSnapshot(ctx, sampleResult())
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	all, err := st.ListSnapshots(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Equal(t, 2, all[0].Records)
	assert.Equal(t, 1, all[0].Failures)

	two, err := st.ListSnapshots(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestSQLite_ListSnapshotsEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	out, err := st.ListSnapshots(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSQLite_SaveNilResult(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.SaveSnapshot(context.Background(), nil)
	require.Error(t, err)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, configFor("sqlite", filepath.Join(t.TempDir(), "open.db")))
	require.NoError(t, err)
	_, ok := st.(*SQLiteStore)
	assert.True(t, ok)
	require.NoError(t, st.Close())

	_, err = Open(ctx, configFor("mongo", "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
