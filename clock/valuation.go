// Package clock implements clock valuations and interval constraints for
// timed automata. A valuation maps every declared clock to its elapsed time;
// constraints restrict valuations through unions and conjunctions of
// intervals and support exact admissible-delay computation.
package clock

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Errors for valuation operations.
var (
	// ErrInvalidDelay is returned when a delay is negative or NaN.
	ErrInvalidDelay = errors.New("invalid delay")

	// ErrUnknownClock is returned when an operation names an undeclared clock.
	ErrUnknownClock = errors.New("unknown clock")
)

// Valuation maps clock names to non-negative elapsed time.
type Valuation map[string]float64

// ZeroValuation returns a valuation with every given clock at 0.
func ZeroValuation(clocks []string) Valuation {
	v := make(Valuation, len(clocks))
	for _, c := range clocks {
		v[c] = 0
	}
	return v
}

// Copy returns a deep copy of the valuation.
func Copy(v Valuation) Valuation {
	if v == nil {
		return nil
	}
	out := make(Valuation, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Advance returns a new valuation with every clock increased by dt.
// The input valuation is not modified.
func Advance(v Valuation, dt float64) (Valuation, error) {
	if dt < 0 || math.IsNaN(dt) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDelay, dt)
	}
	out := make(Valuation, len(v))
	for k, x := range v {
		out[k] = x + dt
	}
	return out, nil
}

// Reset returns a new valuation with the named clocks set to 0 and all
// other clocks unchanged. Every named clock must exist in the valuation.
func Reset(v Valuation, clocks []string) (Valuation, error) {
	out := Copy(v)
	for _, c := range clocks {
		if _, ok := out[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownClock, c)
		}
		out[c] = 0
	}
	return out, nil
}

// Equal returns true if two valuations have the same clocks and values.
func Equal(a, b Valuation) bool {
	if len(a) != len(b) {
		return false
	}
	for k, x := range a {
		if bx, ok := b[k]; !ok || x != bx {
			return false
		}
	}
	return true
}

// EqualTol returns true if two valuations have the same clocks and values
// within tolerance.
func EqualTol(a, b Valuation, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, x := range a {
		bx, ok := b[k]
		if !ok || math.Abs(x-bx) > tol {
			return false
		}
	}
	return true
}

// Clocks returns the sorted clock names of the valuation.
func Clocks(v Valuation) []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
