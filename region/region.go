// Package region implements the integral clock-region data structure for
// region-based PTA simulation, after Hartmanns, Sedwards and D'Argenio,
// "Efficient simulation-based verification of probabilistic timed automata"
// (Winter Simulation Conference 2017). Instead of real-valued clocks, a
// region tracks integer parts and the ordering of fractional parts, which is
// all the guard semantics of a PTA can observe.
package region

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pta-xyz/go-pta/clock"
)

// Errors for region operations.
var (
	// ErrUnknownClock is returned when an operation names a clock the
	// region does not track.
	ErrUnknownClock = errors.New("unknown clock")

	// ErrInvalidSteps is returned when Delay is asked for fewer than one
	// step.
	ErrInvalidSteps = errors.New("delay requires at least one step")
)

// Region models one integral region over a fixed clock set. Clocks share an
// integer/fractional phase flag: in the integer phase every representative
// value sits on its integer part, in the fractional phase half-way to the
// next region boundary.
type Region struct {
	clocks  []string // sorted
	isInt   bool
	value   map[string]int // integer parts
	fracOrd map[string]int // fractional order per clock
	numFrac int            // number of distinct fractional values
}

// New creates the initial region with every clock at exactly 0.
func New(clocks []string) *Region {
	sorted := make([]string, len(clocks))
	copy(sorted, clocks)
	sort.Strings(sorted)

	r := &Region{
		clocks:  sorted,
		isInt:   true,
		value:   make(map[string]int, len(sorted)),
		fracOrd: make(map[string]int, len(sorted)),
		numFrac: 1,
	}
	for _, c := range sorted {
		r.value[c] = 0
		r.fracOrd[c] = 0
	}
	return r
}

// NumClocks returns the number of tracked clocks.
func (r *Region) NumClocks() int { return len(r.clocks) }

// IsInt reports whether the region is in its integer phase.
func (r *Region) IsInt() bool { return r.isInt }

// Value returns the representative valuation of the region: the integer
// part plus a fractional offset derived from the fractional order. In the
// integer phase the offset is zero.
func (r *Region) Value() clock.Valuation {
	v := make(clock.Valuation, len(r.clocks))
	for _, c := range r.clocks {
		v[c] = float64(r.value[c]) + float64(2*r.fracOrd[c]+r.phase())/(2*float64(r.numFrac))
	}
	return v
}

// phase is 0 in the integer phase and 1 in the fractional phase.
func (r *Region) phase() int {
	if r.isInt {
		return 0
	}
	return 1
}

// Delay advances the region by the given number of representative steps.
// One step moves to the immediately following region; larger step counts
// collapse the equivalent sequence of single steps.
func (r *Region) Delay(steps int) error {
	if steps < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSteps, steps)
	}

	if steps == 1 {
		if !r.isInt {
			for _, c := range r.clocks {
				r.fracOrd[c] = (r.fracOrd[c] + 1) % r.numFrac
				if r.fracOrd[c] == 0 {
					r.value[c]++
				}
			}
		}
		r.isInt = !r.isInt
		return nil
	}

	b := r.phase()
	for _, c := range r.clocks {
		r.value[c] += (2*r.fracOrd[c] + b + steps) / (2 * r.numFrac)
	}
	for _, c := range r.clocks {
		r.fracOrd[c] = (r.fracOrd[c] + (steps+b)/2) % r.numFrac
	}
	if steps%2 == 1 {
		r.isInt = !r.isInt
	}
	return nil
}

// Reset sets one clock to exactly 0, rearranging the fractional order of
// the remaining clocks.
func (r *Region) Reset(name string) error {
	if _, ok := r.value[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClock, name)
	}

	if r.isInt && r.fracOrd[name] == 0 {
		r.value[name] = 0
		return nil
	}

	// Does any other clock share this clock's fractional value?
	same := false
	for _, c := range r.clocks {
		if c != name && r.fracOrd[c] == r.fracOrd[name] {
			same = true
			break
		}
	}

	if !same {
		r.numFrac++
	}
	if r.isInt {
		r.numFrac--
	}
	if r.numFrac < 1 {
		r.numFrac = 1
	}

	for _, c := range r.clocks {
		if c == name {
			continue
		}
		if !same && r.fracOrd[c] > r.fracOrd[name] {
			r.fracOrd[c] = (r.fracOrd[c] - 1) % r.numFrac
		}
		if !r.isInt {
			r.fracOrd[c] = (r.fracOrd[c] + 1) % r.numFrac
		}
	}

	r.fracOrd[name] = 0
	r.value[name] = 0
	r.isInt = true
	return nil
}
