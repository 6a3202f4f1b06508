package spline

import (
	"math"
)

// Value changes below flatEpsilon do not count as variation.
const flatEpsilon = 1e-6

// Interval is a closed time interval.
type Interval struct {
	Start, End float64
}

// AllTime is the interval covering every time.
var AllTime = Interval{Start: math.Inf(-1), End: math.Inf(1)}

// Contains is a predicate: is t within i?
func (i Interval) Contains(t float64) bool {
	return t >= i.Start && t <= i.End
}

// IsSegmentFlat is a predicate: does the segment between adjacent knots k0
// and k1 keep its value within a small epsilon? Held segments are always
// flat. A Bezier segment between equal values is flat if its tangents are,
// or if the tangents are too short to make a visible difference.
func IsSegmentFlat(k0, k1 Knot) bool {
	switch k0.typ {
	case Held:
		return true
	case Linear:
		return k0.value.IsClose(k1.LeftValue(), flatEpsilon)
	}
	if !k0.value.IsClose(k1.LeftValue(), flatEpsilon) {
		return false
	}
	if k0.rightSlope.IsZero(flatEpsilon) && (k1.leftLen == 0 || k1.leftSlope.IsZero(flatEpsilon)) {
		return true
	}
	lo, hi := segmentRange(k0, k1, k0.Time, k1.Time)
	return lo.IsClose(hi, flatEpsilon)
}

// IsSegmentValueMonotonic is a predicate: is the value of the segment between
// adjacent knots k0 and k1 either non-decreasing or non-increasing? Bezier
// segments with a strict local extremum in their interior are not monotonic.
// Vector values are checked per component.
func IsSegmentValueMonotonic(k0, k1 Knot) bool {
	if k0.typ != Bezier {
		return true
	}
	for _, seg := range bezierSegments(k0, k1) {
		if !seg.IsMonotonic() {
			return false
		}
	}
	return true
}

// IsKeyFrameRedundant is a predicate: could the visible knot at time k.Time
// be removed without changing the curve? The knot's neighbouring segments
// have to be flat at the knot's value, and so does the segment replacing
// them. For a knot at either end the extrapolation must not change.
//
// A single knot is redundant only with respect to a default value def, if
// def is present and equal to the knot's value.
func (s *Spline) IsKeyFrameRedundant(k Knot, def Value) bool {
	v := s.view()
	vk, ok := v.at(k.Time)
	if !ok {
		return false
	}
	return s.isRedundant(v, vk.Knot, def)
}

func (s *Spline) isRedundant(v view, k Knot, def Value) bool {
	if !k.LeftValue().IsClose(k.value, flatEpsilon) {
		return false
	}
	p, hasP := v.before(k.Time, false)
	n, hasN := v.after(k.Time, false)
	switch {
	case !hasP && !hasN:
		return !def.IsNone() && k.value.IsClose(def, flatEpsilon) &&
			s.extrapolationSlope(v, Left).IsZero(flatEpsilon) &&
			s.extrapolationSlope(v, Right).IsZero(flatEpsilon)
	case hasP && hasN:
		return segmentValue(p.Knot, k, k.Time).IsClose(k.value, flatEpsilon) &&
			IsSegmentFlat(p.Knot, k) && IsSegmentFlat(k, n.Knot) &&
			IsSegmentFlat(p.Knot, n.Knot)
	case hasN:
		// first knot: n takes over the left extrapolation
		if !IsSegmentFlat(k, n.Knot) || !n.LeftValue().IsClose(k.value, flatEpsilon) {
			return false
		}
		if s.extrap.Left != ExtrapLinear {
			return true
		}
		nn, ok := v.after(n.Time, false)
		return edgeSlope(k, n.Knot, true, Left).IsZero(flatEpsilon) &&
			edgeSlope(n.Knot, nn.Knot, ok, Left).IsZero(flatEpsilon)
	}
	// last knot: p takes over the right extrapolation
	if !segmentValue(p.Knot, k, k.Time).IsClose(k.value, flatEpsilon) ||
		!IsSegmentFlat(p.Knot, k) || !p.value.IsClose(k.value, flatEpsilon) {
		return false
	}
	if s.extrap.Right != ExtrapLinear {
		return true
	}
	pp, ok := v.before(p.Time, false)
	return edgeSlope(k, p.Knot, true, Right).IsZero(flatEpsilon) &&
		edgeSlope(p.Knot, pp.Knot, ok, Right).IsZero(flatEpsilon)
}

// HasRedundantKeyFrames is a predicate: is any visible knot redundant?
func (s *Spline) HasRedundantKeyFrames(def Value) bool {
	v := s.view()
	for _, k := range v.all() {
		if s.isRedundant(v, k.Knot, def) {
			return true
		}
	}
	return false
}

// ClearRedundantKeyFrames removes redundant knots within the given intervals,
// or everywhere if no interval is given. It returns the number of authored
// knots removed.
//
// For a looping spline, a prototype knot is removed only if all of its
// repetitions are redundant, and the first and last prototype knots are
// always kept.
func (s *Spline) ClearRedundantKeyFrames(def Value, intervals ...Interval) int {
	if len(intervals) == 0 {
		intervals = []Interval{AllTime}
	}
	removed := 0
	for {
		key, ok := s.findRedundant(def, intervals)
		if !ok {
			break
		}
		s.knots.Remove(key)
		removed++
		tracer().Infof("removed redundant knot at t=%g", key)
	}
	s.resetKind()
	return removed
}

// findRedundant finds the authored time of a removable redundant knot.
func (s *Spline) findRedundant(def Value, intervals []Interval) (float64, bool) {
	v := s.view()
	var proto []Knot
	if v.loop {
		proto = v.prototype()
	}
	for _, vk := range v.all() {
		if vk.tile != 0 || !covered(vk.Time, intervals) || !s.isRedundant(v, vk.Knot, def) {
			continue
		}
		if !v.loop || !s.loop.inPrototype(vk.key) {
			return vk.key, true
		}
		if vk.key == proto[0].Time || vk.key == proto[len(proto)-1].Time {
			continue
		}
		if s.allRepetitionsRedundant(v, vk.Knot, def) {
			return vk.key, true
		}
	}
	return 0, false
}

func (s *Spline) allRepetitionsRedundant(v view, k Knot, def Value) bool {
	for j := -s.loop.NumPreLoops; j <= s.loop.NumPostLoops; j++ {
		if !s.isRedundant(v, v.repetition(k, j).Knot, def) {
			return false
		}
	}
	return true
}

func covered(t float64, intervals []Interval) bool {
	for _, i := range intervals {
		if i.Contains(t) {
			return true
		}
	}
	return false
}
