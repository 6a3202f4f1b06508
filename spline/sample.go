package spline

import (
	"fmt"
	"math"
)

// Sample is a straight piece of a polyline approximating a spline.
// A sample with LeftTime == RightTime is a cliff: a discontinuity of the
// curve, with the left limit as LeftValue and the value at the knot as
// RightValue. Every other sample starts at Eval(LeftTime, Right) and ends at
// Eval(RightTime, Left).
type Sample struct {
	LeftTime   float64
	LeftValue  Value
	RightTime  float64
	RightValue Value
	// IsBlur marks samples which do not meet the tolerance, because
	// subdividing them further would go below the minimum spacing.
	IsBlur bool
}

// IsCliff is a predicate: is smp a discontinuity?
func (smp Sample) IsCliff() bool {
	return smp.LeftTime == smp.RightTime
}

func (smp Sample) String() string {
	return fmt.Sprintf("[%g,%s]-[%g,%s]", smp.LeftTime, smp.LeftValue, smp.RightTime, smp.RightValue)
}

type sampler struct {
	s          *Spline
	minSpacing float64
	maxSpacing float64
	tol        float64
	samples    []Sample
}

// Sample approximates s on [t0,t1] by a polyline, deviating from the curve
// by at most tol. Pieces are bisected until they are within tolerance, but
// not below minSpacing. No piece is longer than maxSpacing. Discontinuities
// show up as cliff samples.
//
// A minSpacing ≤ 0 defaults to a millionth of the interval, a maxSpacing ≤ 0
// means unlimited. Values of kinds without arithmetic are held between
// knots and only split at knots and by maxSpacing.
func (s *Spline) Sample(t0, t1, minSpacing, maxSpacing, tol float64) ([]Sample, error) {
	if t0 > t1 {
		return nil, fmt.Errorf("%w: sampling [%g,%g]", ErrInvalidInterval, t0, t1)
	}
	if !(tol > 0) {
		return nil, fmt.Errorf("%w: tolerance %g", ErrInvalidSampling, tol)
	}
	if s.IsEmpty() || t0 == t1 {
		return nil, nil
	}
	if minSpacing <= 0 {
		minSpacing = (t1 - t0) * 1e-6
	}
	if maxSpacing <= 0 {
		maxSpacing = math.Inf(1)
	}
	sp := sampler{
		s:          s,
		minSpacing: math.Min(minSpacing, maxSpacing),
		maxSpacing: maxSpacing,
		tol:        tol,
	}
	breaks := []float64{t0}
	for _, k := range s.view().between(t0, t1) {
		breaks = append(breaks, k.Time)
	}
	breaks = append(breaks, t1)
	for i := 0; i+1 < len(breaks); i++ {
		a, b := breaks[i], breaks[i+1]
		if i > 0 {
			sp.cliff(a)
		}
		va, _ := s.Eval(a, Right)
		vb, _ := s.Eval(b, Left)
		sp.subdivide(a, va, b, vb)
	}
	sp.cliff(t1)
	tracer().Debugf("sampled [%g,%g] with %d samples", t0, t1, len(sp.samples))
	return sp.samples, nil
}

func (sp *sampler) cliff(t float64) {
	if !sp.s.DoSidesDiffer(t) {
		return
	}
	l, _ := sp.s.Eval(t, Left)
	r, _ := sp.s.Eval(t, Right)
	sp.samples = append(sp.samples, Sample{LeftTime: t, LeftValue: l, RightTime: t, RightValue: r})
}

// subdivide emits samples for [a,b], where the curve has no knots in the
// open interval.
func (sp *sampler) subdivide(a float64, va Value, b float64, vb Value) {
	w := b - a
	m := a + w/2
	if w > sp.maxSpacing {
		vm, _ := sp.s.Eval(m, Right)
		sp.subdivide(a, va, m, vm)
		sp.subdivide(m, vm, b, vb)
		return
	}
	deviation := 0.0
	var vm Value
	if va.Kind().Interpolatable() {
		for _, u := range []float64{0.5, 0.25, 0.75} {
			v, _ := sp.s.Eval(a+u*w, Right)
			if u == 0.5 {
				vm = v
			}
			deviation = math.Max(deviation, v.Dist(va.Lerp(vb, u)))
		}
	}
	if deviation <= sp.tol {
		sp.emit(a, va, b, vb, false)
		return
	}
	if w/2 < sp.minSpacing {
		sp.emit(a, va, b, vb, true)
		return
	}
	sp.subdivide(a, va, m, vm)
	sp.subdivide(m, vm, b, vb)
}

func (sp *sampler) emit(a float64, va Value, b float64, vb Value, blur bool) {
	sp.samples = append(sp.samples, Sample{
		LeftTime: a, LeftValue: va, RightTime: b, RightValue: vb, IsBlur: blur,
	})
}
