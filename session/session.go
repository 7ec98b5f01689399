package session

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/tripgraph/core"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("session: record not found")

// Run status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is the persisted outcome of a single run.
type Record struct {
	RunID     string      `json:"run_id"`
	SessionID string      `json:"session_id"`
	Status    string      `json:"status"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	State     *core.State `json:"state"`
}

// Clone returns a deep enough copy for callers to mutate the state freely.
func (r *Record) Clone() *Record {
	c := *r
	if r.State != nil {
		c.State = r.State.Clone()
	}
	return &c
}

// Store persists run records.
type Store interface {
	// Save stores rec, replacing any record with the same RunID, and marks it
	// as the latest run of its session.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record of a run.
	Get(ctx context.Context, runID string) (*Record, error)

	// Latest returns the most recently saved record of a session.
	Latest(ctx context.Context, sessionID string) (*Record, error)

	// Delete removes a run record. Deleting an unknown run is not an error.
	Delete(ctx context.Context, runID string) error
}
