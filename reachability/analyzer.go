// Package reachability analyzes the location graph of an automaton:
// which locations are reachable from the initial one, which edges can ever
// fire, and which reachable locations are terminal.
package reachability

import (
	"sort"

	"github.com/pta-xyz/go-pta/pta"
)

// Analyzer performs location-graph analysis on a validated automaton.
type Analyzer struct {
	auto *pta.Automaton
}

// NewAnalyzer creates an analyzer over the automaton.
func NewAnalyzer(auto *pta.Automaton) *Analyzer {
	return &Analyzer{auto: auto}
}

// Result contains the location-graph analysis.
type Result struct {
	Reachable   []string            // sorted reachable location names
	Unreachable []string            // sorted unreachable location names
	Terminal    []string            // sorted reachable terminal locations
	DeadEdges   []string            // edges whose source is unreachable
	Paths       map[string][]string // edge labels of one shortest path per reachable location
}

// Analyze explores the location graph breadth-first from the initial
// location. Guards are treated structurally: an edge connects its source to
// every outcome target. A satisfiable-guard check is part of model
// validation, so every edge here can in principle fire.
func (a *Analyzer) Analyze() *Result {
	result := &Result{Paths: make(map[string][]string)}

	initial := a.auto.Initial()
	visited := map[string]bool{initial: true}
	result.Paths[initial] = []string{}
	queue := []string{initial}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range a.auto.Edges(current) {
			for _, outcome := range edge.Outcomes {
				if visited[outcome.Target] {
					continue
				}
				visited[outcome.Target] = true
				path := append(append([]string(nil), result.Paths[current]...), edge.Label)
				result.Paths[outcome.Target] = path
				queue = append(queue, outcome.Target)
			}
		}
	}

	for _, loc := range a.auto.Locations() {
		if visited[loc.Name] {
			result.Reachable = append(result.Reachable, loc.Name)
			if a.auto.IsTerminal(loc.Name) {
				result.Terminal = append(result.Terminal, loc.Name)
			}
		} else {
			result.Unreachable = append(result.Unreachable, loc.Name)
			for _, edge := range a.auto.Edges(loc.Name) {
				result.DeadEdges = append(result.DeadEdges, edge.Label)
			}
		}
	}
	sort.Strings(result.Reachable)
	sort.Strings(result.Unreachable)
	sort.Strings(result.Terminal)
	sort.Strings(result.DeadEdges)
	return result
}

// IsReachable reports whether the named location is reachable from the
// initial location.
func (a *Analyzer) IsReachable(name string) bool {
	result := a.Analyze()
	for _, loc := range result.Reachable {
		if loc == name {
			return true
		}
	}
	return false
}

// PathTo returns the edge labels of one shortest path from the initial
// location to the target, or nil when the target is unreachable. The empty
// non-nil path means the target is the initial location.
func (a *Analyzer) PathTo(name string) []string {
	result := a.Analyze()
	return result.Paths[name]
}

// CanDeadlock reports whether any terminal location is reachable. Runs
// reaching one will deadlock there.
func (a *Analyzer) CanDeadlock() bool {
	return len(a.Analyze().Terminal) > 0
}
