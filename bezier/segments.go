package bezier

import (
	"math"
	"sort"

	"github.com/npillmayer/keyframe"
)

// Duration returns the time between start and end knot.
func (seg Segment) Duration() float64 {
	return seg.P3.X() - seg.P0.X()
}

// ParamAt finds the curve parameter u for time t, i.e. solves
// time(u) = t. Times outside the segment are clamped to its ends.
func (seg Segment) ParamAt(t float64) float64 {
	if t <= seg.P0.X() {
		return 0
	}
	if t >= seg.P3.X() {
		return 1
	}
	u, err := seg.x.Invert(t, 0, 1)
	if err != nil {
		tracer().Errorf("cannot find parameter for t=%g in %s: %v", t, AsString(seg), err)
		return (t - seg.P0.X()) / seg.Duration()
	}
	return u
}

// PointAt returns the point on the curve at parameter u.
func (seg Segment) PointAt(u float64) keyframe.Pair {
	switch u {
	case 0:
		return seg.P0
	case 1:
		return seg.P3
	}
	return keyframe.P(seg.x.Eval(u), seg.y.Eval(u))
}

// ValueAt returns the value of the curve at parameter u.
func (seg Segment) ValueAt(u float64) float64 {
	return seg.PointAt(u).Y()
}

// Eval returns the value of the curve at time t.
func (seg Segment) Eval(t float64) float64 {
	return seg.ValueAt(seg.ParamAt(t))
}

// Derivative returns dvalue/dtime at time t.
func (seg Segment) Derivative(t float64) float64 {
	return seg.SlopeAt(seg.ParamAt(t))
}

// SlopeAt returns dvalue/dtime at parameter u. Where dtime/du vanishes, as at
// the end of a zero-length tangent, the slope is taken towards the next
// distinct control point.
func (seg Segment) SlopeAt(u float64) float64 {
	dx := seg.x.Derivative().Eval(u)
	if dx > _epsilon*seg.Duration() {
		return seg.y.Derivative().Eval(u) / dx
	}
	if u < 0.5 {
		return seg.StartSlope()
	}
	return seg.EndSlope()
}

// StartSlope returns the slope of the curve at its start knot.
func (seg Segment) StartSlope() float64 {
	for _, p := range []keyframe.Pair{seg.P1, seg.P2, seg.P3} {
		if p.X()-seg.P0.X() > _epsilon*seg.Duration() {
			return seg.P0.Slope(p)
		}
	}
	return 0
}

// EndSlope returns the slope of the curve at its end knot.
func (seg Segment) EndSlope() float64 {
	for _, p := range []keyframe.Pair{seg.P2, seg.P1, seg.P0} {
		if seg.P3.X()-p.X() > _epsilon*seg.Duration() {
			return p.Slope(seg.P3)
		}
	}
	return 0
}

// PostTangent returns the tangent leaving the start knot as (slope, length).
func (seg Segment) PostTangent() (slope, length float64) {
	return seg.StartSlope(), seg.P1.X() - seg.P0.X()
}

// PreTangent returns the tangent arriving at the end knot as (slope, length).
func (seg Segment) PreTangent() (slope, length float64) {
	return seg.EndSlope(), seg.P3.X() - seg.P2.X()
}

// Extrema returns the parameters strictly between 0 and 1 where the value
// derivative vanishes, sorted ascending.
func (seg Segment) Extrema() []float64 {
	dy := seg.y.Derivative()
	if dy.IsZero() {
		return nil
	}
	roots := dy.Roots(0, 1)
	extrema := roots[:0]
	for _, r := range roots {
		if r > _epsilon && r < 1-_epsilon {
			extrema = append(extrema, r)
		}
	}
	return extrema
}

// ValueRange returns the minimum and maximum value the curve attains between
// times t0 and t1, including local extrema.
func (seg Segment) ValueRange(t0, t1 float64) (min, max float64) {
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	u0, u1 := seg.ParamAt(t0), seg.ParamAt(t1)
	min, max = seg.ValueAt(u0), seg.ValueAt(u0)
	candidates := append(seg.Extrema(), u1)
	for _, u := range candidates {
		if u < u0 || u > u1 {
			continue
		}
		v := seg.ValueAt(u)
		min, max = math.Min(min, v), math.Max(max, v)
	}
	return
}

// IsFlat is a predicate: does the value of the curve stay within eps?
func (seg Segment) IsFlat(eps float64) bool {
	if _, constant := seg.y.IsConstant(); constant {
		return true
	}
	min, max := seg.ValueRange(seg.P0.X(), seg.P3.X())
	return max-min <= eps
}

// IsMonotonic is a predicate: is the value of the curve either non-decreasing
// or non-increasing over the whole segment? A strict local minimum or maximum
// in the interior makes a segment non-monotonic, whatever its end values are.
func (seg Segment) IsMonotonic() bool {
	crit := append([]float64{0}, seg.Extrema()...)
	crit = append(crit, 1)
	dy := seg.y.Derivative()
	scale := math.Max(1, math.Abs(seg.P3.Y()-seg.P0.Y()))
	var up, down bool
	for i := 1; i < len(crit); i++ {
		s := dy.Eval((crit[i-1] + crit[i]) / 2)
		if s > _epsilon*scale {
			up = true
		} else if s < -_epsilon*scale {
			down = true
		}
	}
	return !(up && down)
}

// SplitAt splits a segment at parameter u (de Casteljau). Both parts
// together have the shape of the original segment.
func (seg Segment) SplitAt(u float64) (Segment, Segment) {
	p01, p12, p23 := seg.P0.Lerp(seg.P1, u), seg.P1.Lerp(seg.P2, u), seg.P2.Lerp(seg.P3, u)
	p012, p123 := p01.Lerp(p12, u), p12.Lerp(p23, u)
	p0123 := p012.Lerp(p123, u)
	return NewSegment(seg.P0, p01, p012, p0123), NewSegment(p0123, p123, p23, seg.P3)
}

// SplitAtTimes splits a segment at several times at once. All split points
// are located on the original segment. Times outside of the open interval
// between the knots are ignored, as are duplicates.
func (seg Segment) SplitAtTimes(ts ...float64) []Segment {
	times := append([]float64(nil), ts...)
	sort.Float64s(times)
	var parts []Segment
	rest, prevU, prevT := seg, 0.0, seg.P0.X()
	for _, t := range times {
		if t <= prevT || t >= seg.P3.X() {
			continue
		}
		u := seg.ParamAt(t)
		left, right := rest.SplitAt((u - prevU) / (1 - prevU))
		left.P3 = keyframe.P(t, left.P3.Y())
		right.P0 = left.P3
		parts = append(parts, NewSegment(left.P0, left.P1, left.P2, left.P3))
		rest = NewSegment(right.P0, right.P1, right.P2, right.P3)
		prevU, prevT = u, t
	}
	return append(parts, rest)
}
