// Package eventlog records and serializes simulation traces as flat event
// logs. Supports CSV and JSONL formats for interchange with analysis
// tooling.
package eventlog

import (
	"fmt"
	"sort"

	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/sim"
)

// Event is one step of one simulation run in flat form.
type Event struct {
	RunID    string          `json:"run_id"`
	Step     int             `json:"step"`
	Delay    float64         `json:"delay"`
	Edge     string          `json:"edge"`     // empty for the initial event
	Outcome  int             `json:"outcome"`  // index within the edge's distribution
	Location string          `json:"location"` // location after the step
	Time     float64         `json:"time"`     // cumulative simulated time
	Clocks   clock.Valuation `json:"clocks"`
}

// Log groups events by run ID.
type Log struct {
	Runs map[string][]Event
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{Runs: make(map[string][]Event)}
}

// AddEvent appends an event to its run, creating the run if needed.
func (log *Log) AddEvent(event Event) {
	log.Runs[event.RunID] = append(log.Runs[event.RunID], event)
}

// AddTrace flattens a committed trace into events under the given run ID.
func (log *Log) AddTrace(runID string, trace *sim.Trace) {
	for _, event := range FromTrace(runID, trace) {
		log.AddEvent(event)
	}
}

// FromTrace converts a committed trace into flat events. The first event
// carries the initial configuration with an empty edge label.
func FromTrace(runID string, trace *sim.Trace) []Event {
	events := make([]Event, 0, trace.Len())
	for _, entry := range trace.Snapshot() {
		events = append(events, Event{
			RunID:    runID,
			Step:     entry.Config.Step,
			Delay:    entry.Delay,
			Edge:     entry.Edge,
			Outcome:  entry.Outcome,
			Location: entry.Config.Location,
			Time:     entry.Config.Time,
			Clocks:   entry.Config.Valuation,
		})
	}
	return events
}

// SortRuns orders events within each run by step.
func (log *Log) SortRuns() {
	for _, events := range log.Runs {
		sort.Slice(events, func(i, j int) bool {
			return events[i].Step < events[j].Step
		})
	}
}

// RunIDs returns the run IDs in sorted order.
func (log *Log) RunIDs() []string {
	ids := make([]string, 0, len(log.Runs))
	for id := range log.Runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NumRuns returns the number of recorded runs.
func (log *Log) NumRuns() int {
	return len(log.Runs)
}

// NumEvents returns the total number of events across all runs.
func (log *Log) NumEvents() int {
	total := 0
	for _, events := range log.Runs {
		total += len(events)
	}
	return total
}

// Edges returns the sorted set of edge labels appearing in the log.
func (log *Log) Edges() []string {
	seen := make(map[string]bool)
	for _, events := range log.Runs {
		for _, event := range events {
			if event.Edge != "" {
				seen[event.Edge] = true
			}
		}
	}

	result := make([]string, 0, len(seen))
	for label := range seen {
		result = append(result, label)
	}
	sort.Strings(result)
	return result
}

// clockNames returns the sorted clock names used across the log. Every event
// is expected to carry the same clock set.
func (log *Log) clockNames() []string {
	for _, events := range log.Runs {
		for _, event := range events {
			names := make([]string, 0, len(event.Clocks))
			for name := range event.Clocks {
				names = append(names, name)
			}
			sort.Strings(names)
			return names
		}
	}
	return nil
}

// String summarizes a single event.
func (e Event) String() string {
	if e.Edge == "" {
		return fmt.Sprintf("%s step 0: init at %s", e.RunID, e.Location)
	}
	return fmt.Sprintf("%s step %d: %s -> %s (delay %g, t=%g)",
		e.RunID, e.Step, e.Edge, e.Location, e.Delay, e.Time)
}
