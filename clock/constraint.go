package clock

import (
	"fmt"
	"math"
	"strings"
)

// Condition constrains a single clock to a union of intervals.
type Condition struct {
	Clock     string
	Intervals IntervalSet
}

// Satisfied reports whether the clock's value lies in the interval union.
// A clock missing from the valuation fails the condition.
func (c Condition) Satisfied(v Valuation) bool {
	x, ok := v[c.Clock]
	if !ok {
		return false
	}
	return c.Intervals.Contains(x)
}

// Delays returns the set of delays d >= 0 such that the clock advanced by d
// satisfies the condition.
func (c Condition) Delays(v Valuation) IntervalSet {
	x, ok := v[c.Clock]
	if !ok {
		return nil
	}
	out := make(IntervalSet, 0, len(c.Intervals))
	for _, i := range c.Intervals {
		if s := i.Shift(x); !s.IsEmpty() {
			out = append(out, s)
		}
	}
	return out.Normalize()
}

// Constraint is a conjunction of conditions. The empty constraint is true
// everywhere, which is how an absent guard or invariant is represented.
type Constraint []Condition

// True is the constraint satisfied by every valuation.
func True() Constraint { return nil }

// LessEq returns the constraint clock <= bound.
func LessEq(clock string, bound float64) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet{Closed(0, bound)}}}
}

// Less returns the constraint clock < bound.
func Less(clock string, bound float64) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet{ClosedOpen(0, bound)}}}
}

// GreaterEq returns the constraint clock >= bound.
func GreaterEq(clock string, bound float64) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet{AtLeast(bound)}}}
}

// Greater returns the constraint clock > bound.
func Greater(clock string, bound float64) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet{Above(bound)}}}
}

// Between returns the constraint lo <= clock <= hi.
func Between(clock string, lo, hi float64) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet{Closed(lo, hi)}}}
}

// BetweenOpen returns the constraint lo < clock < hi.
func BetweenOpen(clock string, lo, hi float64) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet{Open(lo, hi)}}}
}

// In returns a constraint restricting the clock to an arbitrary interval
// union.
func In(clock string, intervals ...Interval) Constraint {
	return Constraint{{Clock: clock, Intervals: IntervalSet(intervals).Normalize()}}
}

// And returns the conjunction of this constraint with others.
func (c Constraint) And(others ...Constraint) Constraint {
	out := make(Constraint, 0, len(c))
	out = append(out, c...)
	for _, o := range others {
		out = append(out, o...)
	}
	return out
}

// Satisfied reports whether the valuation satisfies every condition.
func (c Constraint) Satisfied(v Valuation) bool {
	for _, cond := range c {
		if !cond.Satisfied(v) {
			return false
		}
	}
	return true
}

// Delays returns the exact set of delays d >= 0 for which Advance(v, d)
// satisfies the constraint. The empty constraint admits every delay.
func (c Constraint) Delays(v Valuation) IntervalSet {
	set := IntervalSet{AtLeast(0)}
	for _, cond := range c {
		set = set.Intersect(cond.Delays(v))
		if set.IsEmpty() {
			return nil
		}
	}
	return set
}

// Clocks returns the clock names referenced by the constraint.
func (c Constraint) Clocks() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(c))
	for _, cond := range c {
		if !seen[cond.Clock] {
			seen[cond.Clock] = true
			out = append(out, cond.Clock)
		}
	}
	return out
}

// Satisfiable reports whether some reachable valuation satisfies the
// constraint, assuming every clock starts at 0 and can advance without
// bound. Each condition must individually admit a non-negative point; a
// conjunction over distinct clocks is then satisfiable because resets allow
// clocks to be positioned independently over time.
func (c Constraint) Satisfiable() bool {
	byClock := make(map[string]IntervalSet)
	for _, cond := range c {
		if prev, ok := byClock[cond.Clock]; ok {
			byClock[cond.Clock] = prev.Intersect(cond.Intervals)
		} else {
			byClock[cond.Clock] = cond.Intervals.Normalize()
		}
	}
	for _, set := range byClock {
		nonNeg := set.Intersect(IntervalSet{AtLeast(0)})
		if nonNeg.IsEmpty() {
			return false
		}
	}
	return true
}

// String renders the constraint for diagnostics.
func (c Constraint) String() string {
	if len(c) == 0 {
		return "true"
	}
	parts := make([]string, 0, len(c))
	for _, cond := range c {
		ivs := make([]string, 0, len(cond.Intervals))
		for _, i := range cond.Intervals {
			ivs = append(ivs, i.String())
		}
		parts = append(parts, fmt.Sprintf("%s in %s", cond.Clock, strings.Join(ivs, " u ")))
	}
	return strings.Join(parts, " & ")
}

// UpperBound returns the largest finite value any condition allows for the
// given clock, or +Inf when the clock is unconstrained above.
func (c Constraint) UpperBound(clock string) float64 {
	bound := math.Inf(1)
	for _, cond := range c {
		if cond.Clock != clock {
			continue
		}
		hi := math.Inf(-1)
		for _, i := range cond.Intervals {
			if i.Upper > hi {
				hi = i.Upper
			}
		}
		if hi < bound {
			bound = hi
		}
	}
	return bound
}
