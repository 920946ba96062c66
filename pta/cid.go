package pta

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// CID computes the content-addressed identifier of the automaton. Any change
// to the structure (clocks, locations, invariants, edges, outcomes, initial
// state) changes the CID; declaration order of locations and edges does not.
func (a *Automaton) CID() string {
	data, err := json.Marshal(a.normalize())
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return "cid:" + hex.EncodeToString(hash[:])
}

type normalForm struct {
	Clocks    []string           `json:"clocks"`
	Locations []normalLocation   `json:"locations"`
	Edges     []normalEdge       `json:"edges"`
	Initial   string             `json:"initial"`
	Valuation map[string]float64 `json:"valuation"`
}

type normalLocation struct {
	Name      string   `json:"name"`
	Invariant string   `json:"invariant"`
	Labels    []string `json:"labels,omitempty"`
}

type normalEdge struct {
	Label    string          `json:"label"`
	Source   string          `json:"source"`
	Guard    string          `json:"guard"`
	Weight   float64         `json:"weight"`
	Outcomes []normalOutcome `json:"outcomes"`
}

type normalOutcome struct {
	Prob   float64  `json:"prob"`
	Target string   `json:"target"`
	Resets []string `json:"resets,omitempty"`
}

func (a *Automaton) normalize() normalForm {
	nf := normalForm{
		Clocks:    a.Clocks(),
		Initial:   a.initial,
		Valuation: a.initVal,
	}

	for _, loc := range a.locations {
		labels := append([]string(nil), loc.Labels...)
		sort.Strings(labels)
		nf.Locations = append(nf.Locations, normalLocation{
			Name:      loc.Name,
			Invariant: loc.Invariant.String(),
			Labels:    labels,
		})
	}
	sort.Slice(nf.Locations, func(i, j int) bool { return nf.Locations[i].Name < nf.Locations[j].Name })

	for _, loc := range a.locations {
		for _, e := range a.edges[loc.Name] {
			ne := normalEdge{
				Label:  e.Label,
				Source: e.Source,
				Guard:  e.Guard.String(),
				Weight: e.Weight,
			}
			for _, o := range e.Outcomes {
				resets := append([]string(nil), o.Resets...)
				sort.Strings(resets)
				ne.Outcomes = append(ne.Outcomes, normalOutcome{Prob: o.Prob, Target: o.Target, Resets: resets})
			}
			nf.Edges = append(nf.Edges, ne)
		}
	}
	sort.Slice(nf.Edges, func(i, j int) bool {
		if nf.Edges[i].Source != nf.Edges[j].Source {
			return nf.Edges[i].Source < nf.Edges[j].Source
		}
		return nf.Edges[i].Label < nf.Edges[j].Label
	})

	return nf
}
