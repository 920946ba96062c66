package pta

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pta-xyz/go-pta/clock"
)

// Issue describes one validation finding.
type Issue struct {
	Severity   string   `json:"severity"` // "error", "warning", "info"
	Category   string   `json:"category"` // "identity", "reference", "probability", "satisfiability", "valuation"
	Message    string   `json:"message"`
	Location   []string `json:"location,omitempty"` // affected locations/edges/clocks
	Suggestion string   `json:"suggestion,omitempty"`
}

// ValidationError reports every defect found while validating a model.
type ValidationError struct {
	Issues []Issue
}

// Error summarizes the defects; individual issues are in Issues.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		if i.Severity == "error" {
			msgs = append(msgs, i.Message)
		}
	}
	return fmt.Sprintf("model validation failed: %s", strings.Join(msgs, "; "))
}

// Errors returns only the error-severity issues.
func (e *ValidationError) Errors() []Issue {
	var out []Issue
	for _, i := range e.Issues {
		if i.Severity == "error" {
			out = append(out, i)
		}
	}
	return out
}

// validator performs one-pass, collect-all validation of a draft model.
type validator struct {
	clocks    []string
	locations []*Location
	edges     []*Edge
	initial   string
	initVal   clock.Valuation

	issues []Issue
}

func newValidator(clocks []string, locations []*Location, edges []*Edge, initial string, initVal clock.Valuation) *validator {
	return &validator{
		clocks:    clocks,
		locations: locations,
		edges:     edges,
		initial:   initial,
		initVal:   initVal,
	}
}

func (v *validator) addError(category, message string, location []string, suggestion string) {
	v.issues = append(v.issues, Issue{
		Severity:   "error",
		Category:   category,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

func (v *validator) addInfo(category, message string, location []string) {
	v.issues = append(v.issues, Issue{
		Severity: "info",
		Category: category,
		Message:  message,
		Location: location,
	})
}

// validate runs every check, then assembles the Automaton only if no
// error-severity issue was found.
func (v *validator) validate() (*Automaton, error) {
	v.checkIdentity()
	v.checkReferences()
	v.checkProbability()
	v.checkSatisfiability()
	v.checkValuation()

	for _, i := range v.issues {
		if i.Severity == "error" {
			return nil, &ValidationError{Issues: v.issues}
		}
	}
	return v.assemble(), nil
}

// checkIdentity verifies uniqueness of clock and location identifiers.
func (v *validator) checkIdentity() {
	seenClock := make(map[string]bool)
	for _, c := range v.clocks {
		if c == "" {
			v.addError("identity", "Clock has empty name", nil, "Give every clock a non-empty name")
			continue
		}
		if seenClock[c] {
			v.addError("identity", fmt.Sprintf("Duplicate clock %q", c), []string{c}, "Declare each clock once")
		}
		seenClock[c] = true
	}

	seenLoc := make(map[string]bool)
	for _, loc := range v.locations {
		if loc.Name == "" {
			v.addError("identity", "Location has empty name", nil, "Give every location a non-empty name")
			continue
		}
		if seenLoc[loc.Name] {
			v.addError("identity", fmt.Sprintf("Duplicate location %q", loc.Name), []string{loc.Name}, "Declare each location once")
		}
		seenLoc[loc.Name] = true
	}

	if len(v.locations) == 0 {
		v.addError("identity", "Automaton has no locations", nil, "Add at least one location")
	}
}

// checkReferences verifies referential integrity: edge sources and targets
// name declared locations, resets and constraints name declared clocks, and
// the initial location exists.
func (v *validator) checkReferences() {
	locs := make(map[string]bool)
	for _, loc := range v.locations {
		locs[loc.Name] = true
	}
	clocks := make(map[string]bool)
	for _, c := range v.clocks {
		clocks[c] = true
	}

	for _, e := range v.edges {
		if !locs[e.Source] {
			v.addError("reference", fmt.Sprintf("Edge %q has undeclared source location %q", e.Label, e.Source),
				[]string{e.Label, e.Source}, "Declare the location or fix the edge source")
		}
		for _, c := range e.Guard.Clocks() {
			if !clocks[c] {
				v.addError("reference", fmt.Sprintf("Edge %q guard uses undeclared clock %q", e.Label, c),
					[]string{e.Label, c}, "Declare the clock or fix the guard")
			}
		}
		for i, o := range e.Outcomes {
			if !locs[o.Target] {
				v.addError("reference", fmt.Sprintf("Edge %q outcome %d targets undeclared location %q", e.Label, i, o.Target),
					[]string{e.Label, o.Target}, "Declare the location or fix the outcome target")
			}
			for _, c := range o.Resets {
				if !clocks[c] {
					v.addError("reference", fmt.Sprintf("Edge %q outcome %d resets undeclared clock %q", e.Label, i, c),
						[]string{e.Label, c}, "Declare the clock or fix the reset set")
				}
			}
		}
		if e.Weight <= 0 || math.IsNaN(e.Weight) {
			v.addError("reference", fmt.Sprintf("Edge %q has non-positive race weight %v", e.Label, e.Weight),
				[]string{e.Label}, "Set the edge weight to a positive value")
		}
	}

	for _, loc := range v.locations {
		for _, c := range loc.Invariant.Clocks() {
			if !clocks[c] {
				v.addError("reference", fmt.Sprintf("Location %q invariant uses undeclared clock %q", loc.Name, c),
					[]string{loc.Name, c}, "Declare the clock or fix the invariant")
			}
		}
	}

	if v.initial != "" && !locs[v.initial] {
		v.addError("reference", fmt.Sprintf("Initial location %q is not declared", v.initial),
			[]string{v.initial}, "Declare the location or pick a declared one")
	}
}

// checkProbability verifies that each edge's outcome probabilities form a
// proper distribution summing to 1 within ProbTolerance.
func (v *validator) checkProbability() {
	for _, e := range v.edges {
		if len(e.Outcomes) == 0 {
			v.addError("probability", fmt.Sprintf("Edge %q has no outcomes", e.Label),
				[]string{e.Label}, "Add at least one outcome")
			continue
		}
		total := 0.0
		bad := false
		for i, o := range e.Outcomes {
			if o.Prob <= 0 || o.Prob > 1 || math.IsNaN(o.Prob) {
				v.addError("probability", fmt.Sprintf("Edge %q outcome %d has probability %v outside (0, 1]", e.Label, i, o.Prob),
					[]string{e.Label}, "Use probabilities in (0, 1]")
				bad = true
			}
			total += o.Prob
		}
		if !bad && math.Abs(total-1) > ProbTolerance {
			v.addError("probability", fmt.Sprintf("Edge %q outcome probabilities sum to %v, not 1", e.Label, total),
				[]string{e.Label}, "Adjust outcome probabilities to sum to 1")
		}
	}
}

// checkSatisfiability verifies that each edge's guard, in conjunction with
// its source location's invariant, admits some reachable valuation. It also
// reports terminal locations as explicit info findings.
func (v *validator) checkSatisfiability() {
	invariants := make(map[string]clock.Constraint)
	for _, loc := range v.locations {
		invariants[loc.Name] = loc.Invariant
	}

	outgoing := make(map[string]int)
	for _, e := range v.edges {
		outgoing[e.Source]++
		inv, ok := invariants[e.Source]
		if !ok {
			continue // dangling source already reported
		}
		if !e.Guard.And(inv).Satisfiable() {
			v.addError("satisfiability",
				fmt.Sprintf("Edge %q guard (%s) can never hold under invariant of %q (%s)", e.Label, e.Guard, e.Source, inv),
				[]string{e.Label, e.Source}, "Relax the guard or the invariant")
		}
	}

	for _, loc := range v.locations {
		if outgoing[loc.Name] == 0 {
			v.addInfo("satisfiability", fmt.Sprintf("Location %q is terminal (no outgoing edges)", loc.Name),
				[]string{loc.Name})
		}
	}
}

// checkValuation verifies the initial valuation covers exactly the declared
// clocks with non-negative values.
func (v *validator) checkValuation() {
	declared := make(map[string]bool)
	for _, c := range v.clocks {
		declared[c] = true
	}

	for _, c := range v.clocks {
		if _, ok := v.initVal[c]; !ok {
			v.addError("valuation", fmt.Sprintf("Initial valuation missing clock %q", c),
				[]string{c}, "Assign every declared clock an initial value")
		}
	}
	for c, x := range v.initVal {
		if !declared[c] {
			v.addError("valuation", fmt.Sprintf("Initial valuation has undeclared clock %q", c),
				[]string{c}, "Remove the extra clock or declare it")
		}
		if x < 0 || math.IsNaN(x) {
			v.addError("valuation", fmt.Sprintf("Initial valuation of %q is %v, must be non-negative", c, x),
				[]string{c}, "Use a non-negative initial value")
		}
	}
}

// assemble freezes the validated draft into an Automaton.
func (v *validator) assemble() *Automaton {
	clocks := make([]string, len(v.clocks))
	copy(clocks, v.clocks)
	sort.Strings(clocks)

	locIndex := make(map[string]int, len(v.locations))
	locations := make([]*Location, len(v.locations))
	for i, loc := range v.locations {
		frozen := &Location{Name: loc.Name, Invariant: loc.Invariant}
		frozen.Labels = append(frozen.Labels, loc.Labels...)
		locations[i] = frozen
		locIndex[loc.Name] = i
	}

	edges := make(map[string][]*Edge, len(v.locations))
	for _, e := range v.edges {
		frozen := &Edge{
			Label:  e.Label,
			Source: e.Source,
			Guard:  e.Guard,
			Weight: e.Weight,
		}
		frozen.Outcomes = append(frozen.Outcomes, e.Outcomes...)
		edges[e.Source] = append(edges[e.Source], frozen)
	}

	return &Automaton{
		clocks:    clocks,
		locations: locations,
		locIndex:  locIndex,
		edges:     edges,
		initial:   v.initial,
		initVal:   clock.Copy(v.initVal),
	}
}
