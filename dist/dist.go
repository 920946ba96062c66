// Package dist implements discrete weighted distributions with explicit,
// injectable randomness. Every sampling operation takes a *rand.Rand so
// simulation runs are reproducible for a fixed seed.
package dist

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrProbabilityMass is returned when a draw cannot be resolved because the
// distribution's total weight is non-positive or not a number. For validated
// models this indicates an internal-consistency fault.
var ErrProbabilityMass = errors.New("unresolvable probability mass")

// Entry is one (value, weight) pair of a discrete distribution.
type Entry[T comparable] struct {
	Value  T
	Weight float64
}

// Discrete is a discrete distribution over a finite support. Entries keep
// their construction order so sampling consumes randomness deterministically.
type Discrete[T comparable] struct {
	entries []Entry[T]
}

// Weighted builds a distribution from explicit entries.
func Weighted[T comparable](entries ...Entry[T]) Discrete[T] {
	out := make([]Entry[T], len(entries))
	copy(out, entries)
	return Discrete[T]{entries: out}
}

// Delta returns the distribution placing all mass on a single value.
func Delta[T comparable](value T) Discrete[T] {
	return Discrete[T]{entries: []Entry[T]{{Value: value, Weight: 1}}}
}

// Uniform returns the uniform distribution over the given values.
func Uniform[T comparable](values ...T) Discrete[T] {
	if len(values) == 0 {
		return Discrete[T]{}
	}
	w := 1.0 / float64(len(values))
	entries := make([]Entry[T], len(values))
	for i, v := range values {
		entries[i] = Entry[T]{Value: v, Weight: w}
	}
	return Discrete[T]{entries: entries}
}

// Entries returns a copy of the distribution's entries.
func (d Discrete[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the support size.
func (d Discrete[T]) Len() int { return len(d.entries) }

// Total returns the sum of all weights.
func (d Discrete[T]) Total() float64 {
	total := 0.0
	for _, e := range d.entries {
		total += e.Weight
	}
	return total
}

// Prob returns the probability mass assigned to x, or 0 if x is not in the
// support.
func (d Discrete[T]) Prob(x T) float64 {
	p := 0.0
	for _, e := range d.entries {
		if e.Value == x {
			p += e.Weight
		}
	}
	return p
}

// Validate checks that the distribution is proper: non-empty, every weight
// in (0, 1], and total mass 1 within the given tolerance.
func (d Discrete[T]) Validate(tol float64) error {
	if len(d.entries) == 0 {
		return fmt.Errorf("%w: empty support", ErrProbabilityMass)
	}
	for i, e := range d.entries {
		if e.Weight <= 0 || e.Weight > 1 || math.IsNaN(e.Weight) {
			return fmt.Errorf("%w: entry %d has weight %v outside (0, 1]", ErrProbabilityMass, i, e.Weight)
		}
	}
	if total := d.Total(); math.Abs(total-1) > tol {
		return fmt.Errorf("%w: total %v differs from 1 by more than %v", ErrProbabilityMass, total, tol)
	}
	return nil
}

// Sample draws one value proportionally to the weights using the given
// random source.
func (d Discrete[T]) Sample(rng *rand.Rand) (T, error) {
	var zero T
	total := d.Total()
	if total <= 0 || math.IsNaN(total) {
		return zero, fmt.Errorf("%w: total weight %v", ErrProbabilityMass, total)
	}

	r := rng.Float64() * total
	acc := 0.0
	for _, e := range d.entries {
		acc += e.Weight
		if r < acc {
			return e.Value, nil
		}
	}
	// Float round-off can leave r just beyond the accumulated total.
	return d.entries[len(d.entries)-1].Value, nil
}
