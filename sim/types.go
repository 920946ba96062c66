// Package sim executes validated probabilistic timed automata. A Simulator
// owns one configuration, one trace, and one explicit random source; it
// advances time by a delay policy, races enabled edges by weight, samples an
// outcome, applies clock resets, and commits each step to the trace.
package sim

import (
	"github.com/pta-xyz/go-pta/clock"
)

// Status is the simulator's execution state after a step.
type Status int

const (
	// StatusRunning means the simulator can keep stepping.
	StatusRunning Status = iota

	// StatusDeadlocked means no delay makes any edge enabled while keeping
	// the invariant satisfied. Deadlock is a normal terminal outcome, not
	// an error.
	StatusDeadlocked
)

// String renders the status.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDeadlocked:
		return "deadlocked"
	default:
		return "unknown"
	}
}

// Configuration is the automaton's full state at an instant.
type Configuration struct {
	Location  string
	Valuation clock.Valuation
	Time      float64 // cumulative simulated time
	Step      int
}

// copyConfig returns a deep copy so callers can never alias live state.
func copyConfig(c Configuration) Configuration {
	return Configuration{
		Location:  c.Location,
		Valuation: clock.Copy(c.Valuation),
		Time:      c.Time,
		Step:      c.Step,
	}
}

// Entry is one committed trace element: the delay taken and the resulting
// configuration. The edge and outcome that produced it are recorded for
// reporting; both are empty for the initial entry.
type Entry struct {
	Delay   float64
	Edge    string
	Outcome int
	Config  Configuration
}

// Trace is the append-only execution history from the initial configuration
// to the most recent step. Entries are never mutated after being appended.
type Trace struct {
	entries    []Entry
	deadlocked bool
}

// Len returns the number of committed entries, including the initial one.
func (t *Trace) Len() int { return len(t.entries) }

// Deadlocked reports whether the run ended in deadlock.
func (t *Trace) Deadlocked() bool { return t.deadlocked }

// Entry returns a copy of the i-th committed entry.
func (t *Trace) Entry(i int) Entry {
	e := t.entries[i]
	e.Config = copyConfig(e.Config)
	return e
}

// Final returns a copy of the last committed configuration.
func (t *Trace) Final() Configuration {
	return copyConfig(t.entries[len(t.entries)-1].Config)
}

// Snapshot returns a copy of all committed entries; the trace itself stays
// owned by its simulator.
func (t *Trace) Snapshot() []Entry {
	out := make([]Entry, len(t.entries))
	for i := range t.entries {
		out[i] = t.Entry(i)
	}
	return out
}

// TotalTime returns the cumulative simulated time of the final entry.
func (t *Trace) TotalTime() float64 {
	return t.entries[len(t.entries)-1].Config.Time
}

func (t *Trace) append(e Entry) {
	t.entries = append(t.entries, e)
}
