// Package pta implements the probabilistic timed automaton model: locations
// with invariants, clocks, and guarded edges that resolve probabilistically
// among outcomes. An Automaton is assembled through the Builder, validated
// in one pass, and immutable afterwards.
package pta

import (
	"github.com/pta-xyz/go-pta/clock"
	"github.com/pta-xyz/go-pta/dist"
)

// ProbTolerance is the allowed deviation of an edge's outcome probability
// mass from 1.
const ProbTolerance = 1e-9

// Outcome is one probabilistic branch of an edge: with probability Prob the
// automaton moves to Target and resets the named clocks to 0.
type Outcome struct {
	Prob   float64
	Target string
	Resets []string
}

// Outcomes builds an outcome list from (probability, target, resets) triples.
func Outcomes(outcomes ...Outcome) []Outcome { return outcomes }

// To returns the single certain outcome moving to target with the given
// resets.
func To(target string, resets ...string) Outcome {
	return Outcome{Prob: 1.0, Target: target, Resets: resets}
}

// Edge is a guarded probabilistic transition out of a location. Weight is
// the relative rate used to resolve races between simultaneously enabled
// edges; it defaults to 1 (uniform race).
type Edge struct {
	Label    string
	Source   string
	Guard    clock.Constraint
	Weight   float64
	Outcomes []Outcome
}

// Distribution returns the edge's outcome distribution.
func (e *Edge) Distribution() dist.Discrete[int] {
	entries := make([]dist.Entry[int], len(e.Outcomes))
	for i, o := range e.Outcomes {
		entries[i] = dist.Entry[int]{Value: i, Weight: o.Prob}
	}
	return dist.Weighted(entries...)
}

// Location is a discrete state of the automaton. The invariant constrains
// how long the automaton may remain; Labels are atomic propositions for
// external analysis.
type Location struct {
	Name      string
	Invariant clock.Constraint
	Labels    []string
}

// Automaton is the validated, immutable automaton: declared clocks,
// locations, edges grouped by source, an initial location, and an initial
// valuation covering exactly the declared clocks.
type Automaton struct {
	clocks    []string // sorted
	locations []*Location
	locIndex  map[string]int
	edges     map[string][]*Edge // source -> ordered outgoing edges
	initial   string
	initVal   clock.Valuation
}

// Clocks returns the sorted declared clock names.
func (a *Automaton) Clocks() []string {
	out := make([]string, len(a.clocks))
	copy(out, a.clocks)
	return out
}

// Locations returns the locations in declaration order.
func (a *Automaton) Locations() []*Location {
	out := make([]*Location, len(a.locations))
	copy(out, a.locations)
	return out
}

// Location returns the named location, or nil if it does not exist.
func (a *Automaton) Location(name string) *Location {
	if i, ok := a.locIndex[name]; ok {
		return a.locations[i]
	}
	return nil
}

// Initial returns the initial location name.
func (a *Automaton) Initial() string { return a.initial }

// InitialValuation returns a copy of the initial clock valuation.
func (a *Automaton) InitialValuation() clock.Valuation {
	return clock.Copy(a.initVal)
}

// Edges returns the ordered outgoing edges of a location.
func (a *Automaton) Edges(source string) []*Edge {
	edges := a.edges[source]
	out := make([]*Edge, len(edges))
	copy(out, edges)
	return out
}

// Labels returns the atomic propositions attached to a location.
func (a *Automaton) Labels(name string) []string {
	loc := a.Location(name)
	if loc == nil {
		return nil
	}
	out := make([]string, len(loc.Labels))
	copy(out, loc.Labels)
	return out
}

// Invariant returns the invariant of a location; the empty constraint when
// the location has none or does not exist.
func (a *Automaton) Invariant(name string) clock.Constraint {
	if loc := a.Location(name); loc != nil {
		return loc.Invariant
	}
	return clock.True()
}

// EnabledEdges returns the outgoing edges of the location whose guards are
// satisfied at the valuation, in declaration order.
func (a *Automaton) EnabledEdges(source string, v clock.Valuation) []*Edge {
	var out []*Edge
	for _, e := range a.edges[source] {
		if e.Guard.Satisfied(v) {
			out = append(out, e)
		}
	}
	return out
}

// AdmissibleDelays computes the exact set of delays d >= 0 such that
// advancing the valuation by d keeps the location's invariant satisfied and
// enables at least one outgoing edge: invariant-delays intersected with the
// union over edges of guard-delays.
func (a *Automaton) AdmissibleDelays(source string, v clock.Valuation) clock.IntervalSet {
	inv := a.Invariant(source).Delays(v)
	if inv.IsEmpty() {
		return nil
	}

	var enabled clock.IntervalSet
	for _, e := range a.edges[source] {
		enabled = append(enabled, e.Guard.Delays(v)...)
	}
	if len(enabled) == 0 {
		return nil
	}
	return inv.Intersect(enabled.Normalize())
}

// IsTerminal reports whether the location has no outgoing edges.
func (a *Automaton) IsTerminal(name string) bool {
	return len(a.edges[name]) == 0
}
