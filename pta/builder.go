package pta

import (
	"github.com/pta-xyz/go-pta/clock"
)

// Builder provides a fluent API for assembling automata. Done() validates
// the accumulated model in one pass and returns either the immutable
// Automaton or a *ValidationError listing every defect found.
//
// Example:
//
//	auto, err := pta.Build().
//	    Clocks("x").
//	    Location("A", clock.LessEq("x", 5)).
//	    Location("B").
//	    Edge("work", "A", clock.Between("x", 1, 5), pta.To("B")).
//	    Initial("A").
//	    Done()
type Builder struct {
	clocks    []string
	locations []*Location
	edges     []*Edge
	initial   string
	initVal   clock.Valuation
}

// Build creates a new Builder.
func Build() *Builder {
	return &Builder{}
}

// Clocks declares clock names.
func (b *Builder) Clocks(names ...string) *Builder {
	b.clocks = append(b.clocks, names...)
	return b
}

// Location adds a location. An optional invariant constrains sojourn time;
// omitting it leaves the location unconstrained.
func (b *Builder) Location(name string, invariant ...clock.Constraint) *Builder {
	loc := &Location{Name: name}
	if len(invariant) > 0 {
		loc.Invariant = loc.Invariant.And(invariant...)
	}
	b.locations = append(b.locations, loc)
	return b
}

// LocationWithLabels adds a location carrying atomic-proposition labels.
func (b *Builder) LocationWithLabels(name string, labels []string, invariant ...clock.Constraint) *Builder {
	b.Location(name, invariant...)
	b.locations[len(b.locations)-1].Labels = labels
	return b
}

// Edge adds an edge with race weight 1.
func (b *Builder) Edge(label, source string, guard clock.Constraint, outcomes ...Outcome) *Builder {
	return b.EdgeWeighted(label, source, guard, 1.0, outcomes...)
}

// EdgeWeighted adds an edge with an explicit race weight.
func (b *Builder) EdgeWeighted(label, source string, guard clock.Constraint, weight float64, outcomes ...Outcome) *Builder {
	b.edges = append(b.edges, &Edge{
		Label:    label,
		Source:   source,
		Guard:    guard,
		Weight:   weight,
		Outcomes: outcomes,
	})
	return b
}

// Initial designates the initial location. Defaults to the first declared
// location.
func (b *Builder) Initial(name string) *Builder {
	b.initial = name
	return b
}

// InitialValuation sets a custom initial valuation. Defaults to all clocks
// at 0. The valuation must cover exactly the declared clocks.
func (b *Builder) InitialValuation(v clock.Valuation) *Builder {
	b.initVal = clock.Copy(v)
	return b
}

// Done validates the model and returns the immutable Automaton. On failure
// the returned error is a *ValidationError carrying every defect.
func (b *Builder) Done() (*Automaton, error) {
	initial := b.initial
	if initial == "" && len(b.locations) > 0 {
		initial = b.locations[0].Name
	}

	initVal := b.initVal
	if initVal == nil {
		initVal = clock.ZeroValuation(b.clocks)
	}

	v := newValidator(b.clocks, b.locations, b.edges, initial, initVal)
	return v.validate()
}
