package sim

import (
	"fmt"
	"math/rand"

	"github.com/pta-xyz/go-pta/clock"
)

// openBoundOffset nudges a sampled delay off an open interval boundary.
const openBoundOffset = 1e-9

// DelayPolicy picks one delay from the admissible delay set. Policies must
// be deterministic given the random source, so a fixed seed reproduces the
// same trace. When the set is a union of disjoint windows, both provided
// policies commit to the earliest non-empty window before choosing inside
// it.
type DelayPolicy interface {
	// Pick returns a delay contained in the set. The set is non-empty.
	Pick(rng *rand.Rand, set clock.IntervalSet) (float64, error)

	// Name identifies the policy for reporting and persistence.
	Name() string
}

// EarliestDelay always picks the smallest admissible delay: the lower bound
// of the earliest window, nudged inward when that bound is open. It consumes
// no randomness.
type EarliestDelay struct{}

// Name returns "earliest".
func (EarliestDelay) Name() string { return "earliest" }

// Pick returns the earliest admissible delay.
func (EarliestDelay) Pick(_ *rand.Rand, set clock.IntervalSet) (float64, error) {
	window, ok := set.Earliest()
	if !ok {
		return 0, fmt.Errorf("earliest delay: empty admissible set")
	}
	d := window.Lower
	if !window.LowerClosed {
		d += openBoundOffset
	}
	if !window.Contains(d) {
		// Open window narrower than the offset; take its midpoint.
		d = (window.Lower + window.Upper) / 2
	}
	return d, nil
}

// UniformDelay picks uniformly at random inside the earliest admissible
// window. When the window is unbounded above it picks the lower bound,
// since any choice is equivalent for enabling purposes. This is the default
// policy.
type UniformDelay struct{}

// Name returns "uniform".
func (UniformDelay) Name() string { return "uniform" }

// Pick samples a delay from the earliest admissible window.
func (UniformDelay) Pick(rng *rand.Rand, set clock.IntervalSet) (float64, error) {
	window, ok := set.Earliest()
	if !ok {
		return 0, fmt.Errorf("uniform delay: empty admissible set")
	}

	lo := window.Lower
	if !window.LowerClosed {
		lo += openBoundOffset
	}
	if window.Unbounded() {
		return lo, nil
	}

	hi := window.Upper
	if !window.UpperClosed {
		hi -= openBoundOffset
	}
	if hi <= lo {
		return (window.Lower + window.Upper) / 2, nil
	}
	return lo + rng.Float64()*(hi-lo), nil
}
