// Package steplog persists the per-step search history for offline analysis.
// Three backends exist: plain JSONL, size-rotated JSONL and SQLite.
package steplog

import (
	"context"
	"time"

	"github.com/kilianp07/feasnet/core/model"
)

// Record is one persisted search step with its trial context.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	TrialID    string    `json:"trial_id"`
	Bias       float64   `json:"bias"`
	Generation int       `json:"generation"`
	Step       int       `json:"step"`
	model.StepRecord
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	TrialID      string
	Start        time.Time
	End          time.Time
	FeasibleOnly bool
}

// Matches reports whether the record passes the query filters.
func (q Query) Matches(r Record) bool {
	if q.TrialID != "" && r.TrialID != q.TrialID {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.FeasibleOnly && r.RotationsBelowZero != 0 {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
