// Package store persists simulation runs and their event logs. Two backends
// implement the same Store interface: an in-memory store for tests and
// short-lived tooling, and a SQLite store for durable result sets.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pta-xyz/go-pta/eventlog"
	"github.com/pta-xyz/go-pta/pta"
	"github.com/pta-xyz/go-pta/sim"
)

// Common store errors.
var (
	ErrRunNotFound  = errors.New("run not found")
	ErrDuplicateRun = errors.New("run already exists")
)

// Run is the persisted record of one simulation run.
type Run struct {
	ID            string    `json:"id"`
	ModelCID      string    `json:"model_cid"`
	Seed          int64     `json:"seed"`
	Policy        string    `json:"policy"`
	Steps         int       `json:"steps"`
	TotalTime     float64   `json:"total_time"`
	FinalLocation string    `json:"final_location"`
	Deadlocked    bool      `json:"deadlocked"`
	CreatedAt     time.Time `json:"created_at"`
}

// RunFilter selects runs in ListRuns. Zero fields match everything.
type RunFilter struct {
	ModelCID   string
	Deadlocked *bool
	Limit      int
}

// Store persists runs and their flattened trace events.
type Store interface {
	// SaveRun stores a run and its events atomically. Returns
	// ErrDuplicateRun when the run ID is already present.
	SaveRun(ctx context.Context, run *Run, events []eventlog.Event) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns retrieves runs matching the filter, newest first.
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// Events retrieves a run's events in step order.
	Events(ctx context.Context, runID string) ([]eventlog.Event, error)

	// DeleteRun removes a run and its events.
	DeleteRun(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// RecordTrace persists a simulator's accumulated trace as a new run with a
// fresh UUID and returns the stored record.
func RecordTrace(ctx context.Context, s Store, auto *pta.Automaton, simulator *sim.Simulator) (*Run, error) {
	trace := simulator.Trace()
	run := &Run{
		ID:            uuid.New().String(),
		ModelCID:      auto.CID(),
		Seed:          simulator.Seed(),
		Policy:        simulator.Policy().Name(),
		Steps:         trace.Len() - 1,
		TotalTime:     trace.TotalTime(),
		FinalLocation: trace.Final().Location,
		Deadlocked:    trace.Deadlocked(),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.SaveRun(ctx, run, eventlog.FromTrace(run.ID, trace)); err != nil {
		return nil, err
	}
	return run, nil
}

// matches reports whether a run passes the filter, ignoring Limit.
func (f RunFilter) matches(run *Run) bool {
	if f.ModelCID != "" && run.ModelCID != f.ModelCID {
		return false
	}
	if f.Deadlocked != nil && run.Deadlocked != *f.Deadlocked {
		return false
	}
	return true
}
