package spline

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, knots ...Knot) *Spline {
	t.Helper()
	s := New()
	require.NoError(t, s.SetKeyFrames(knots...))
	return s
}

func eval(t *testing.T, s *Spline, at float64, side Side) float64 {
	t.Helper()
	v, ok := s.Eval(at, side)
	require.True(t, ok, "no value at t=%g", at)
	d, ok := v.Float()
	require.True(t, ok, "value at t=%g is of kind %s", at, v.Kind())
	return d
}

func derivative(t *testing.T, s *Spline, at float64, side Side) float64 {
	t.Helper()
	v, ok := s.EvalDerivative(at, side)
	require.True(t, ok, "no derivative at t=%g", at)
	d, _ := v.Float()
	return d
}

func linearRamp(t *testing.T) *Spline {
	return build(t, NewKnot(0, Double(0), Linear), NewKnot(10, Double(20), Linear))
}

// ease from (0,0) to (10,10), flat at both knots
func ease(t *testing.T) *Spline {
	return build(t,
		NewKnot(0, Double(0), Bezier).WithTangents(0, 0, 0, 10.0/3),
		NewKnot(10, Double(10), Bezier).WithTangents(0, 10.0/3, 0, 0))
}

func TestEvalLinear(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := linearRamp(t)
	assert.Equal(t, 5.0, eval(t, s, 2.5, Right))
	assert.Equal(t, 10.0, eval(t, s, 5, Right))
	assert.Equal(t, 15.0, eval(t, s, 7.5, Left))
	assert.Equal(t, 20.0, eval(t, s, 10, Left))
	assert.InDelta(t, 2.0, derivative(t, s, 5, Right), 1e-12)
	assert.InDelta(t, 2.0, derivative(t, s, 5, Left), 1e-12)
	assert.InDelta(t, 2.0, derivative(t, s, 10, Left), 1e-12)
	assert.Equal(t, 0.0, derivative(t, s, 10, Right))
	// held extrapolation
	assert.Equal(t, 0.0, eval(t, s, -5, Right))
	assert.Equal(t, 20.0, eval(t, s, 15, Right))
}

func TestEvalSingleKnot(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t, NewKnot(5, Double(2), Held))
	for _, at := range []float64{-100, 4.9, 5, 5.1, 100} {
		assert.Equal(t, 2.0, eval(t, s, at, Right))
		assert.Equal(t, 2.0, eval(t, s, at, Left))
		assert.Equal(t, 0.0, derivative(t, s, at, Right))
	}
	assert.False(t, s.IsVarying())
	b := build(t, NewKnot(5, Double(2), Bezier).WithTangents(1, 1, 1, 1))
	assert.False(t, b.IsVarying())
	b.SetExtrapolation(Extrapolation{Left: ExtrapLinear, Right: ExtrapLinear})
	assert.Equal(t, 3.0, eval(t, b, 6, Right))
	assert.Equal(t, 1.0, eval(t, b, 4, Right))
	assert.Equal(t, 1.0, derivative(t, b, 4, Right))
	assert.True(t, b.IsVarying())
}

func TestEvalEmpty(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := New()
	_, ok := s.Eval(1, Right)
	assert.False(t, ok)
	_, ok = s.EvalDerivative(1, Right)
	assert.False(t, ok)
	_, ok = s.EvalHeld(1, Left)
	assert.False(t, ok)
	assert.False(t, s.DoSidesDiffer(1))
	assert.False(t, s.IsVarying())
	min, max, err := s.Range(0, 1)
	require.NoError(t, err)
	assert.True(t, min.IsNone())
	assert.True(t, max.IsNone())
}

func TestEvalDualKnots(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t,
		NewKnot(0, Double(0), Linear),
		NewDualKnot(10, Double(10), Double(20), Linear),
		NewDualKnot(20, Double(30), Double(30), Bezier),
		NewKnot(30, Double(30), Held))
	assert.Equal(t, 5.0, eval(t, s, 5, Right))
	assert.Equal(t, 10.0, eval(t, s, 10, Left))
	assert.Equal(t, 20.0, eval(t, s, 10, Right))
	assert.Equal(t, 25.0, eval(t, s, 15, Right))
	assert.True(t, s.DoSidesDiffer(10))
	assert.False(t, s.DoSidesDiffer(5))
	assert.False(t, s.DoSidesDiffer(20))
	assert.False(t, s.DoSidesDiffer(30))
	// the first knot's left value rules held extrapolation
	d := build(t, NewDualKnot(0, Double(-1), Double(1), Linear), NewKnot(1, Double(2), Linear))
	assert.Equal(t, -1.0, eval(t, d, -3, Right))
	assert.Equal(t, -1.0, eval(t, d, 0, Left))
	assert.Equal(t, 1.0, eval(t, d, 0, Right))
	assert.True(t, d.DoSidesDiffer(0))
}

func TestEvalHeldPredecessor(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t,
		NewKnot(0, Double(1), Held),
		NewDualKnot(10, Double(3), Double(5), Linear),
		NewKnot(20, Double(7), Linear))
	assert.Equal(t, 1.0, eval(t, s, 10, Left))
	assert.Equal(t, 5.0, eval(t, s, 10, Right))
	assert.True(t, s.DoSidesDiffer(10))
	held, _ := s.EvalHeld(10, Left)
	assert.True(t, held.Equal(Double(1)))
	held, _ = s.EvalHeld(10, Right)
	assert.True(t, held.Equal(Double(5)))
	held, _ = s.EvalHeld(15, Right)
	assert.True(t, held.Equal(Double(5)))
	held, _ = s.EvalHeld(-1, Right)
	assert.True(t, held.Equal(Double(1)))
	assert.Equal(t, 0.0, derivative(t, s, 5, Right))
	assert.InDelta(t, 0.2, derivative(t, s, 10, Right), 1e-12)
}

func TestEvalBezier(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := ease(t)
	assert.InDelta(t, 5.0, eval(t, s, 5, Right), 1e-9)
	assert.InDelta(t, 0.0, derivative(t, s, 0, Right), 1e-9)
	assert.InDelta(t, 0.0, derivative(t, s, 10, Left), 1e-9)
	assert.InDelta(t, 1.5, derivative(t, s, 5, Right), 1e-9)
	for at := 0.5; at < 10; at += 0.5 {
		assert.Less(t, eval(t, s, at-0.5, Right), eval(t, s, at, Right))
	}
	// a non-Bezier end knot without tangent gets an automatic one
	auto := build(t,
		NewKnot(0, Double(0), Bezier).WithTangents(0, 0, 1, 10.0/3),
		NewKnot(10, Double(10), Held))
	assert.InDelta(t, 5.0, eval(t, auto, 5, Right), 1e-9)
}

func TestEvalLinearExtrapolation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := linearRamp(t)
	s.SetExtrapolation(Extrapolation{Left: ExtrapLinear, Right: ExtrapLinear})
	assert.Equal(t, -10.0, eval(t, s, -5, Right))
	assert.Equal(t, 30.0, eval(t, s, 15, Right))
	assert.InDelta(t, 2.0, derivative(t, s, -5, Left), 1e-12)
	assert.InDelta(t, 2.0, derivative(t, s, 10, Right), 1e-12)
	e := ease(t)
	e.SetExtrapolation(Extrapolation{Left: ExtrapLinear, Right: ExtrapLinear})
	assert.InDelta(t, 0.0, eval(t, e, -5, Right), 1e-9)
	assert.InDelta(t, 10.0, eval(t, e, 20, Right), 1e-9)
}

func TestEvalVectorsAndStrings(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	v := build(t, NewKnot(0, Vec3(0, 0, 0), Linear), NewKnot(10, Vec3(10, 20, 30), Linear))
	val, ok := v.Eval(5, Right)
	require.True(t, ok)
	assert.True(t, val.Equal(Vec3(5, 10, 15)))
	d, ok := v.EvalDerivative(5, Right)
	require.True(t, ok)
	assert.True(t, d.IsClose(Vec3(1, 2, 3), 1e-12))
	s := build(t, NewKnot(0, String("a"), Linear), NewKnot(10, String("b"), Held))
	val, _ = s.Eval(9.9, Right)
	assert.True(t, val.Equal(String("a")))
	val, _ = s.Eval(10, Right)
	assert.True(t, val.Equal(String("b")))
	_, ok = s.EvalDerivative(5, Right)
	assert.False(t, ok)
	assert.True(t, s.IsVarying())
	_, err := s.SetKeyFrame(NewKnot(5, Double(1), Held))
	assert.True(t, errors.Is(err, ErrKindMismatch))
}

func TestRange(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	// segment overshooting on both sides: extrema lie between the knots
	s := build(t,
		NewKnot(0, Double(0), Bezier).WithTangents(0, 0, -3, 3),
		NewKnot(10, Double(1), Bezier).WithTangents(-3, 3, 0, 0))
	min, max, err := s.Range(0, 10)
	require.NoError(t, err)
	mx, _ := max.Float()
	mn, _ := min.Float()
	assert.Greater(t, mx, 1.0)
	assert.Less(t, mn, 0.0)
	for at := 0.0; at <= 10; at += 0.125 {
		v := eval(t, s, at, Right)
		assert.LessOrEqual(t, v, mx+1e-9)
		assert.GreaterOrEqual(t, v, mn-1e-9)
	}
	_, _, err = s.Range(5, 1)
	assert.True(t, errors.Is(err, ErrInvalidInterval))
	l := linearRamp(t)
	min, max, err = l.Range(2.5, 5)
	require.NoError(t, err)
	assert.True(t, min.Equal(Double(5)))
	assert.True(t, max.Equal(Double(10)))
	str := build(t, NewKnot(0, String("a"), Held))
	min, _, err = str.Range(0, 1)
	require.NoError(t, err)
	assert.True(t, min.IsNone())
}

func TestIsVarying(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	flat := build(t, NewKnot(0, Double(1), Linear), NewKnot(10, Double(1), Linear))
	assert.False(t, flat.IsVarying())
	// equal knot values, but a bulging Bezier segment
	bulge := build(t,
		NewKnot(0, Double(1), Bezier).WithTangents(0, 0, 1, 3),
		NewKnot(10, Double(1), Bezier).WithTangents(-1, 3, 0, 0))
	assert.True(t, bulge.IsVarying())
	assert.False(t, bulge.IsVaryingSignificantly(100))
	assert.True(t, linearRamp(t).IsVaryingSignificantly(1))
	assert.False(t, linearRamp(t).IsVaryingSignificantly(20))
}
