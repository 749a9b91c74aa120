// Package store persists aggregation snapshots.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/gpu-prices/internal/config"
	"github.com/sells-group/gpu-prices/internal/model"
)

// ErrNotFound is returned when a snapshot ID does not exist.
var ErrNotFound = eris.New("store: not found")

// DefaultListLimit caps ListSnapshots when no limit is given.
const DefaultListLimit = 20

// Store defines snapshot persistence.
type Store interface {
	SaveSnapshot(ctx context.Context, res *model.Result) (string, error)
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)
	// ListSnapshots returns summaries newest first.
	ListSnapshots(ctx context.Context, limit int) ([]model.SnapshotSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store selected by cfg.Driver. Callers run Migrate.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func marshalResult(res *model.Result) ([]byte, error) {
	if res == nil {
		return nil, eris.New("store: nil result")
	}
	b, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal result")
	}
	return b, nil
}

func unmarshalResult(b []byte) (*model.Result, error) {
	res := &model.Result{}
	if err := json.Unmarshal(b, res); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal result")
	}
	return res, nil
}
