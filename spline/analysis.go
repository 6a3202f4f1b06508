package spline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Range returns the tight bounds of the values s attains on [t0,t1].
// Local extrema of Bezier segments are included. For empty splines and
// for values without a total order, min and max are absent values.
func (s *Spline) Range(t0, t1 float64) (min, max Value, err error) {
	if t0 > t1 {
		return Value{}, Value{}, fmt.Errorf("%w: range [%g,%g]", ErrInvalidInterval, t0, t1)
	}
	if !s.kind.Orderable() || s.IsEmpty() {
		return Value{}, Value{}, nil
	}
	var vals []float64
	add := func(v Value) {
		if d, ok := v.Float(); ok {
			vals = append(vals, d)
		}
	}
	for _, t := range []float64{t0, t1} {
		l, _ := s.Eval(t, Left)
		r, _ := s.Eval(t, Right)
		if t == t0 {
			add(r)
			continue
		}
		add(l)
		add(r)
	}
	v := s.view()
	knots := v.between(t0, t1)
	for _, k := range knots {
		add(k.value)
		l, _ := s.Eval(k.Time, Left)
		add(l)
	}
	if p, ok := v.before(t0, true); ok {
		knots = append([]vknot{p}, knots...)
	}
	if n, ok := v.after(t1, true); ok {
		knots = append(knots, n)
	}
	for i := 0; i+1 < len(knots); i++ {
		k0, k1 := knots[i], knots[i+1]
		if k0.typ != Bezier {
			continue
		}
		lo, hi := math.Max(t0, k0.Time), math.Min(t1, k1.Time)
		if lo >= hi {
			continue
		}
		segMin, segMax := segmentRange(k0.Knot, k1.Knot, lo, hi)
		add(segMin)
		add(segMax)
	}
	tracer().Debugf("range of [%g,%g] from %d candidates", t0, t1, len(vals))
	return Double(floats.Min(vals)), Double(floats.Max(vals)), nil
}

// IsVarying is a predicate: does s attain more than one value?
func (s *Spline) IsVarying() bool {
	return s.IsVaryingSignificantly(0)
}

// IsVaryingSignificantly is a predicate: does s attain values differing by
// more than tol? Variation may stem from knot values, from the tangents of
// Bezier segments between equal knot values, or from linear extrapolation
// with non-zero slope.
func (s *Spline) IsVaryingSignificantly(tol float64) bool {
	v := s.view()
	all := v.all()
	if len(all) == 0 {
		return false
	}
	ref := all[0].LeftValue()
	differs := func(x Value) bool {
		return !x.IsClose(ref, tol)
	}
	for i, k := range all {
		if differs(k.value) {
			return true
		}
		if i > 0 && differs(segmentValue(all[i-1].Knot, k.Knot, k.Time)) {
			return true
		}
		if i+1 < len(all) && k.typ == Bezier {
			lo, hi := segmentRange(k.Knot, all[i+1].Knot, k.Time, all[i+1].Time)
			if differs(lo) || differs(hi) {
				return true
			}
		}
	}
	if s.kind.arithmetic() {
		if !s.extrapolationSlope(v, Left).IsZero(0) || !s.extrapolationSlope(v, Right).IsZero(0) {
			return true
		}
	}
	return false
}
