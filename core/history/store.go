// Package history keeps a JSONL log of scenario outcomes so past runs can be
// listed and compared.
package history

import (
	"context"
	"time"
)

// Record captures the outcome of one scenario solve.
type Record struct {
	RunID       string             `json:"run_id"`
	Timestamp   time.Time          `json:"timestamp"`
	Scenario    string             `json:"scenario"`
	Status      string             `json:"status"`
	Message     string             `json:"message,omitempty"`
	Objective   float64            `json:"objective"`
	Emissions   float64            `json:"emissions"`
	Variables   int                `json:"variables"`
	Constraints int                `json:"constraints"`
	DurationMS  int64              `json:"duration_ms"`
	Capacity    map[string]float64 `json:"capacity,omitempty"`
}

// Query filters records. Zero values match everything.
type Query struct {
	Start    time.Time
	End      time.Time
	RunID    string
	Scenario string
	Status   string
}

// Match reports whether r passes the filters of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Scenario != "" && r.Scenario != q.Scenario {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return true
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
