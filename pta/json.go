package pta

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/pta-xyz/go-pta/clock"
)

// Wire format for model files. Bounds default to closed; a missing upper
// bound means unbounded above, since JSON cannot carry +Inf.
type modelJSON struct {
	Clocks    []string           `json:"clocks"`
	Locations []locationJSON     `json:"locations"`
	Edges     []edgeJSON         `json:"edges"`
	Initial   string             `json:"initial,omitempty"`
	Valuation map[string]float64 `json:"valuation,omitempty"`
}

type locationJSON struct {
	Name      string          `json:"name"`
	Invariant []conditionJSON `json:"invariant,omitempty"`
	Labels    []string        `json:"labels,omitempty"`
}

type edgeJSON struct {
	Label    string          `json:"label"`
	Source   string          `json:"source"`
	Guard    []conditionJSON `json:"guard,omitempty"`
	Weight   float64         `json:"weight,omitempty"`
	Outcomes []outcomeJSON   `json:"outcomes"`
}

type outcomeJSON struct {
	Prob   float64  `json:"prob"`
	Target string   `json:"target"`
	Resets []string `json:"resets,omitempty"`
}

type conditionJSON struct {
	Clock     string         `json:"clock"`
	Intervals []intervalJSON `json:"intervals"`
}

type intervalJSON struct {
	Lower     float64  `json:"lower"`
	Upper     *float64 `json:"upper,omitempty"`
	LowerOpen bool     `json:"lower_open,omitempty"`
	UpperOpen bool     `json:"upper_open,omitempty"`
}

// MarshalModel serializes the automaton as indented JSON.
func MarshalModel(a *Automaton) ([]byte, error) {
	model := modelJSON{
		Clocks:    a.Clocks(),
		Initial:   a.initial,
		Valuation: clock.Copy(a.initVal),
	}

	for _, loc := range a.locations {
		model.Locations = append(model.Locations, locationJSON{
			Name:      loc.Name,
			Invariant: constraintToJSON(loc.Invariant),
			Labels:    append([]string(nil), loc.Labels...),
		})
	}
	for _, loc := range a.locations {
		for _, e := range a.edges[loc.Name] {
			edge := edgeJSON{
				Label:  e.Label,
				Source: e.Source,
				Guard:  constraintToJSON(e.Guard),
				Weight: e.Weight,
			}
			for _, o := range e.Outcomes {
				edge.Outcomes = append(edge.Outcomes, outcomeJSON{
					Prob:   o.Prob,
					Target: o.Target,
					Resets: append([]string(nil), o.Resets...),
				})
			}
			model.Edges = append(model.Edges, edge)
		}
	}

	return json.MarshalIndent(model, "", "  ")
}

// UnmarshalModel parses and validates a model file. The returned error is a
// *ValidationError when the structure parses but the model is invalid.
func UnmarshalModel(data []byte) (*Automaton, error) {
	var model modelJSON
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}

	b := Build().Clocks(model.Clocks...)
	for _, loc := range model.Locations {
		invariant := constraintFromJSON(loc.Invariant)
		if len(loc.Labels) > 0 {
			b.LocationWithLabels(loc.Name, loc.Labels, invariant)
		} else {
			b.Location(loc.Name, invariant)
		}
	}
	for _, edge := range model.Edges {
		weight := edge.Weight
		if weight == 0 {
			weight = 1
		}
		outcomes := make([]Outcome, len(edge.Outcomes))
		for i, o := range edge.Outcomes {
			outcomes[i] = Outcome{Prob: o.Prob, Target: o.Target, Resets: o.Resets}
		}
		b.EdgeWeighted(edge.Label, edge.Source, constraintFromJSON(edge.Guard), weight, outcomes...)
	}
	if model.Initial != "" {
		b.Initial(model.Initial)
	}
	if model.Valuation != nil {
		b.InitialValuation(model.Valuation)
	}
	return b.Done()
}

// LoadModel reads and validates a model file.
func LoadModel(filename string) (*Automaton, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	return UnmarshalModel(data)
}

// SaveModel writes the automaton to a model file.
func SaveModel(filename string, a *Automaton) error {
	data, err := MarshalModel(a)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0o644)
}

func constraintToJSON(c clock.Constraint) []conditionJSON {
	var out []conditionJSON
	for _, cond := range c {
		cj := conditionJSON{Clock: cond.Clock}
		for _, iv := range cond.Intervals {
			ij := intervalJSON{
				Lower:     iv.Lower,
				LowerOpen: !iv.LowerClosed,
				UpperOpen: !iv.UpperClosed,
			}
			if !iv.Unbounded() {
				upper := iv.Upper
				ij.Upper = &upper
			} else {
				ij.UpperOpen = false
			}
			cj.Intervals = append(cj.Intervals, ij)
		}
		out = append(out, cj)
	}
	return out
}

func constraintFromJSON(conditions []conditionJSON) clock.Constraint {
	var out clock.Constraint
	for _, cj := range conditions {
		cond := clock.Condition{Clock: cj.Clock}
		for _, ij := range cj.Intervals {
			iv := clock.Interval{
				Lower:       ij.Lower,
				Upper:       math.Inf(1),
				LowerClosed: !ij.LowerOpen,
			}
			if ij.Upper != nil {
				iv.Upper = *ij.Upper
				iv.UpperClosed = !ij.UpperOpen
			}
			cond.Intervals = append(cond.Intervals, iv)
		}
		out = append(out, cond)
	}
	return out
}
