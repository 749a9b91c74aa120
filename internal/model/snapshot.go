package model

import "time"

// Snapshot is a persisted aggregation result.
type Snapshot struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Result    *Result   `json:"result" yaml:"result"`
}

// SnapshotSummary is the listing view of a snapshot.
type SnapshotSummary struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Records   int       `json:"records" yaml:"records"`
	Failures  int       `json:"failures" yaml:"failures"`
}
