package clock

import (
	"fmt"
	"math"
)

// Interval is a single interval over the non-negative reals. Each bound is
// independently open or closed; Upper may be +Inf for guards with only a
// lower bound.
type Interval struct {
	Lower       float64
	Upper       float64
	LowerClosed bool
	UpperClosed bool
}

// Closed returns the closed interval [lo, hi].
func Closed(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, LowerClosed: true, UpperClosed: true}
}

// Open returns the open interval (lo, hi).
func Open(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi}
}

// ClosedOpen returns the half-open interval [lo, hi).
func ClosedOpen(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, LowerClosed: true}
}

// OpenClosed returns the half-open interval (lo, hi].
func OpenClosed(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, UpperClosed: true}
}

// AtLeast returns the unbounded-above interval [lo, +Inf).
func AtLeast(lo float64) Interval {
	return Interval{Lower: lo, Upper: math.Inf(1), LowerClosed: true}
}

// Above returns the unbounded-above interval (lo, +Inf).
func Above(lo float64) Interval {
	return Interval{Lower: lo, Upper: math.Inf(1)}
}

// Contains reports whether x lies inside the interval, honoring the
// boundary kinds.
func (i Interval) Contains(x float64) bool {
	if x < i.Lower || (x == i.Lower && !i.LowerClosed) {
		return false
	}
	if x > i.Upper || (x == i.Upper && !i.UpperClosed) {
		return false
	}
	return true
}

// IsEmpty reports whether the interval contains no points.
func (i Interval) IsEmpty() bool {
	if i.Lower > i.Upper {
		return true
	}
	if i.Lower == i.Upper {
		return !(i.LowerClosed && i.UpperClosed)
	}
	return false
}

// Unbounded reports whether the interval has no finite upper bound.
func (i Interval) Unbounded() bool {
	return math.IsInf(i.Upper, 1)
}

// Intersect returns the exact intersection of two intervals.
func (i Interval) Intersect(o Interval) Interval {
	out := i
	if o.Lower > out.Lower {
		out.Lower = o.Lower
		out.LowerClosed = o.LowerClosed
	} else if o.Lower == out.Lower {
		out.LowerClosed = out.LowerClosed && o.LowerClosed
	}
	if o.Upper < out.Upper {
		out.Upper = o.Upper
		out.UpperClosed = o.UpperClosed
	} else if o.Upper == out.Upper {
		out.UpperClosed = out.UpperClosed && o.UpperClosed
	}
	return out
}

// Shift returns the interval translated by -x and clamped to d >= 0: the
// delays d such that x+d lies in the original interval.
func (i Interval) Shift(x float64) Interval {
	out := Interval{
		Lower:       i.Lower - x,
		Upper:       i.Upper - x,
		LowerClosed: i.LowerClosed,
		UpperClosed: i.UpperClosed,
	}
	if out.Lower < 0 {
		out.Lower = 0
		out.LowerClosed = true
	}
	return out
}

// String renders the interval in mathematical notation.
func (i Interval) String() string {
	lb, rb := "(", ")"
	if i.LowerClosed {
		lb = "["
	}
	if i.UpperClosed {
		rb = "]"
	}
	if i.Unbounded() {
		return fmt.Sprintf("%s%g, +inf)", lb, i.Lower)
	}
	return fmt.Sprintf("%s%g, %g%s", lb, i.Lower, i.Upper, rb)
}

// IntervalSet is an ordered union of intervals. Sets produced by Normalize
// contain only non-empty intervals in ascending order of lower bound.
type IntervalSet []Interval

// Normalize drops empty members and orders the rest by lower bound.
func (s IntervalSet) Normalize() IntervalSet {
	out := make(IntervalSet, 0, len(s))
	for _, i := range s {
		if !i.IsEmpty() {
			out = append(out, i)
		}
	}
	for a := 1; a < len(out); a++ {
		for b := a; b > 0 && out[b].Lower < out[b-1].Lower; b-- {
			out[b], out[b-1] = out[b-1], out[b]
		}
	}
	return out
}

// Contains reports whether x lies in any member interval.
func (s IntervalSet) Contains(x float64) bool {
	for _, i := range s {
		if i.Contains(x) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the union contains no points.
func (s IntervalSet) IsEmpty() bool {
	for _, i := range s {
		if !i.IsEmpty() {
			return false
		}
	}
	return true
}

// Intersect computes the exact pairwise intersection of two unions.
func (s IntervalSet) Intersect(o IntervalSet) IntervalSet {
	out := make(IntervalSet, 0)
	for _, a := range s {
		for _, b := range o {
			if x := a.Intersect(b); !x.IsEmpty() {
				out = append(out, x)
			}
		}
	}
	return out.Normalize()
}

// Earliest returns the non-empty member with the smallest lower bound.
// The second result is false for an empty set.
func (s IntervalSet) Earliest() (Interval, bool) {
	found := false
	var best Interval
	for _, i := range s {
		if i.IsEmpty() {
			continue
		}
		if !found || i.Lower < best.Lower {
			best = i
			found = true
		}
	}
	return best, found
}
