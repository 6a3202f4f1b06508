package spline

import (
	"math"

	"github.com/npillmayer/keyframe"
	"github.com/npillmayer/keyframe/bezier"
)

// Eval evaluates s at time t. At a knot, side selects between the value of
// the knot (Right) and the limit of the curve approaching the knot from
// earlier times (Left). Evaluating an empty spline yields no value.
func (s *Spline) Eval(t float64, side Side) (Value, bool) {
	v := s.view()
	first, ok := v.first()
	if !ok {
		return Value{}, false
	}
	if side == Right {
		p, ok := v.before(t, true)
		if !ok {
			return s.extrapolateLeft(v, first.Knot, t), true
		}
		if p.Time == t {
			return p.value, true
		}
		n, ok := v.after(t, false)
		if !ok {
			return s.extrapolateRight(v, p.Knot, t), true
		}
		return segmentValue(p.Knot, n.Knot, t), true
	}
	n, ok := v.after(t, true)
	if !ok {
		last, _ := v.last()
		return s.extrapolateRight(v, last.Knot, t), true
	}
	p, ok := v.before(t, false)
	if !ok {
		return s.extrapolateLeft(v, first.Knot, t), true
	}
	return segmentValue(p.Knot, n.Knot, t), true
}

// EvalDerivative evaluates the time derivative of s at time t, as a one-sided
// derivative at knots. Only scalar and vector splines have derivatives.
func (s *Spline) EvalDerivative(t float64, side Side) (Value, bool) {
	if !s.kind.arithmetic() {
		return Value{}, false
	}
	v := s.view()
	if _, ok := v.first(); !ok {
		return Value{}, false
	}
	if side == Right {
		p, ok := v.before(t, true)
		if !ok {
			return s.extrapolationSlope(v, Left), true
		}
		n, ok := v.after(t, false)
		if !ok {
			return s.extrapolationSlope(v, Right), true
		}
		return segmentDerivative(p.Knot, n.Knot, t), true
	}
	n, ok := v.after(t, true)
	if !ok {
		return s.extrapolationSlope(v, Right), true
	}
	p, ok := v.before(t, false)
	if !ok {
		return s.extrapolationSlope(v, Left), true
	}
	return segmentDerivative(p.Knot, n.Knot, t), true
}

// EvalHeld evaluates s at time t as if every knot were held. Side Left
// returns the value of the knot preceding t, even at a knot.
func (s *Spline) EvalHeld(t float64, side Side) (Value, bool) {
	v := s.view()
	first, ok := v.first()
	if !ok {
		return Value{}, false
	}
	p, ok := v.before(t, side == Right)
	if !ok {
		return first.LeftValue(), true
	}
	return p.value, true
}

// DoSidesDiffer is a predicate: do the left and right value of s at time t
// differ? This is true for dual-valued knots with different values, and for
// knots ending a held segment with a change in value.
func (s *Spline) DoSidesDiffer(t float64) bool {
	l, ok := s.Eval(t, Left)
	if !ok {
		return false
	}
	r, _ := s.Eval(t, Right)
	return !l.Equal(r)
}

// --- Extrapolation ---------------------------------------------------------

func (s *Spline) extrapolateLeft(v view, first Knot, t float64) Value {
	val := first.LeftValue()
	if s.extrap.Left != ExtrapLinear || !val.kind.arithmetic() {
		return val
	}
	slope := s.extrapolationSlope(v, Left)
	return val.Add(slope.Scale(t - first.Time))
}

func (s *Spline) extrapolateRight(v view, last Knot, t float64) Value {
	val := last.value
	if s.extrap.Right != ExtrapLinear || !val.kind.arithmetic() {
		return val
	}
	slope := s.extrapolationSlope(v, Right)
	return val.Add(slope.Scale(t - last.Time))
}

// extrapolationSlope returns the slope of the curve beyond the first
// (Left) or last (Right) knot. Held extrapolation has slope 0.
func (s *Spline) extrapolationSlope(v view, side Side) Value {
	if side == Left {
		f, ok := v.first()
		if !ok || s.extrap.Left != ExtrapLinear {
			return zeroOf(s.kind)
		}
		n, ok := v.after(f.Time, false)
		return edgeSlope(f.Knot, n.Knot, ok, Left)
	}
	l, ok := v.last()
	if !ok || s.extrap.Right != ExtrapLinear {
		return zeroOf(s.kind)
	}
	p, ok := v.before(l.Time, false)
	return edgeSlope(l.Knot, p.Knot, ok, Right)
}

// edgeSlope returns the slope linear extrapolation continues with beyond an
// end knot k. If k has an inner neighbour nb, this is the slope of the
// segment between them at k. A single knot uses its Bezier tangent on the
// respective side, if that has a length.
func edgeSlope(k, nb Knot, hasNb bool, side Side) Value {
	switch {
	case hasNb && side == Left:
		return segmentDerivative(k, nb, k.Time)
	case hasNb:
		return segmentDerivative(nb, k, k.Time)
	case k.typ != Bezier:
	case side == Left && k.leftLen > 0:
		return k.leftSlope
	case side == Right && k.rightLen > 0:
		return k.rightSlope
	}
	return zeroOf(k.Kind())
}

// --- Segments --------------------------------------------------------------

// segmentValue evaluates the segment between adjacent knots k0 and k1 at
// time t, k0.Time ≤ t ≤ k1.Time. At k1.Time it returns the left limit.
func segmentValue(k0, k1 Knot, t float64) Value {
	switch k0.typ {
	case Linear:
		u := (t - k0.Time) / (k1.Time - k0.Time)
		return k0.value.Lerp(k1.LeftValue(), u)
	case Bezier:
		segs := bezierSegments(k0, k1)
		c := make([]float64, len(segs))
		for i, seg := range segs {
			c[i] = seg.Eval(t)
		}
		return fromComponents(k0.Kind(), c)
	}
	return k0.value
}

// segmentDerivative returns the time derivative of the segment between
// adjacent knots k0 and k1 at time t.
func segmentDerivative(k0, k1 Knot, t float64) Value {
	switch k0.typ {
	case Linear:
		if !k0.Kind().arithmetic() {
			return Value{}
		}
		return k1.LeftValue().Sub(k0.value).Scale(1 / (k1.Time - k0.Time))
	case Bezier:
		segs := bezierSegments(k0, k1)
		c := make([]float64, len(segs))
		for i, seg := range segs {
			c[i] = seg.Derivative(t)
		}
		return fromComponents(k0.Kind(), c)
	}
	return zeroOf(k0.Kind())
}

// bezierSegments constructs the Bezier segments between adjacent knots k0
// and k1, one per value component. k0 has to be of type Bezier.
//
// The tangent leaving k0 is k0's right tangent. The tangent arriving at k1
// is k1's left tangent if k1 is a Bezier knot or has a tangent of positive
// length; otherwise it follows the secant of the segment.
func bezierSegments(k0, k1 Knot) []bezier.Segment {
	n := len(k0.value.components())
	segs := make([]bezier.Segment, n)
	pinned := k1.typ == Bezier || k1.leftLen > 0
	for i := 0; i < n; i++ {
		start := keyframe.P(k0.Time, k0.value.component(i))
		end := keyframe.P(k1.Time, k1.LeftValue().component(i))
		sk := bezier.Between(start, end).PostTangent(k0.rightSlope.component(i), k0.rightLen)
		if pinned {
			sk.PreTangent(k1.leftSlope.component(i), k1.leftLen)
		} else {
			sk.AutoPreTangent()
		}
		seg, err := bezier.FindControls(sk)
		if err != nil {
			tracer().Errorf("segment [%g,%g]: %v", k0.Time, k1.Time, err)
			seg = bezier.NewSegment(start, start, end, end)
		}
		segs[i] = seg
	}
	return segs
}

// segmentRange returns the extreme values of the segment between adjacent
// knots k0 and k1 on [t0,t1], per component.
func segmentRange(k0, k1 Knot, t0, t1 float64) (lo, hi Value) {
	switch k0.typ {
	case Bezier:
		segs := bezierSegments(k0, k1)
		mins, maxs := make([]float64, len(segs)), make([]float64, len(segs))
		for i, seg := range segs {
			mins[i], maxs[i] = seg.ValueRange(t0, t1)
		}
		return fromComponents(k0.Kind(), mins), fromComponents(k0.Kind(), maxs)
	case Linear:
		a, b := segmentValue(k0, k1, t0), segmentValue(k0, k1, t1)
		if !a.Kind().arithmetic() {
			return a, b
		}
		ac, bc := a.components(), b.components()
		for i := range ac {
			ac[i], bc[i] = math.Min(ac[i], bc[i]), math.Max(ac[i], bc[i])
		}
		return fromComponents(a.Kind(), ac), fromComponents(a.Kind(), bc)
	}
	return k0.value, k0.value
}
