package spline

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, s *Spline, from, to, step float64) []float64 {
	var vals []float64
	for at := from; at <= to; at += step {
		vals = append(vals, eval(t, s, at, Right))
	}
	return vals
}

func TestBreakdownKeepsBezierShape(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t,
		NewKnot(0, Double(0), Bezier).WithTangents(0, 0, 2, 3),
		NewKnot(10, Double(10), Bezier).WithTangents(0, 3, 0, 0))
	before := snapshot(t, s, 0, 10, 0.25)
	k, err := s.Breakdown(4, Bezier, false, 1)
	require.NoError(t, err)
	assert.Equal(t, Bezier, k.Type())
	assert.Equal(t, 3, s.Len())
	after := snapshot(t, s, 0, 10, 0.25)
	require.Len(t, after, len(before))
	for i := range before {
		assert.InDelta(t, before[i], after[i], 1e-6, "t=%g", float64(i)*0.25)
	}
}

func TestBreakdownBatch(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t,
		NewKnot(0, Double(0), Bezier).WithTangents(0, 0, 2, 3),
		NewKnot(10, Double(10), Bezier).WithTangents(0, 3, 0, 0))
	before := snapshot(t, s, 0, 10, 0.5)
	knots, err := s.BreakdownBatch([]BreakdownRequest{
		{Time: 7, Type: Bezier},
		{Time: 2, Type: Bezier},
		{Time: 5, Type: Bezier},
	}, false, 1)
	require.NoError(t, err)
	require.Len(t, knots, 3)
	assert.Equal(t, 7.0, knots[0].Time)
	assert.Equal(t, 5, s.Len())
	after := snapshot(t, s, 0, 10, 0.5)
	for i := range before {
		assert.InDelta(t, before[i], after[i], 1e-6, "t=%g", float64(i)*0.5)
	}
	// values are taken from the curve before any insertion
	r := linearRamp(t)
	knots, err = r.BreakdownBatch([]BreakdownRequest{
		{Time: 3, Type: Linear, Value: Double(100)},
		{Time: 7, Type: Linear},
	}, false, 1)
	require.NoError(t, err)
	assert.True(t, knots[0].Value().Equal(Double(100)))
	assert.True(t, knots[1].Value().IsClose(Double(14), 1e-12))
	// the last request for a time wins
	r = linearRamp(t)
	knots, err = r.BreakdownBatch([]BreakdownRequest{
		{Time: 3, Type: Linear, Value: Double(100)},
		{Time: 3, Type: Held, Value: Double(50)},
	}, false, 1)
	require.NoError(t, err)
	assert.True(t, knots[0].Value().Equal(Double(50)))
	assert.Equal(t, 3, r.Len())
}

func TestBreakdownLinearAndHeld(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := linearRamp(t)
	k, err := s.Breakdown(5, Linear, false, 1)
	require.NoError(t, err)
	assert.True(t, k.Value().Equal(Double(10)))
	assert.Equal(t, 15.0, eval(t, s, 7.5, Right))
	assert.Equal(t, 5.0, eval(t, s, 2.5, Right))
	// a Bezier knot on a line keeps the line
	b := linearRamp(t)
	_, err = b.Breakdown(5, Bezier, false, 1)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, eval(t, b, 7.5, Right), 1e-6)
	assert.InDelta(t, 4.0, eval(t, b, 2, Right), 1e-6)
	h := build(t, NewKnot(0, Double(0), Held), NewKnot(10, Double(10), Linear))
	k, err = h.Breakdown(5, Bezier, false, 1)
	require.NoError(t, err)
	assert.Equal(t, Held, k.Type())
	assert.True(t, k.Value().Equal(Double(0)))
	assert.Equal(t, 0.0, eval(t, h, 9, Right))
}

func TestBreakdownExtrapolation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := linearRamp(t)
	s.SetExtrapolation(Extrapolation{Left: ExtrapLinear, Right: ExtrapLinear})
	k, err := s.Breakdown(-5, Linear, false, 1)
	require.NoError(t, err)
	assert.True(t, k.Value().Equal(Double(-10)))
	assert.Equal(t, -15.0, eval(t, s, -7.5, Right))
	k, err = s.Breakdown(15, Linear, false, 1)
	require.NoError(t, err)
	assert.True(t, k.Value().Equal(Double(30)))
	assert.Equal(t, 40.0, eval(t, s, 20, Right))
	// held extrapolation
	h := linearRamp(t)
	k, err = h.Breakdown(15, Linear, false, 1)
	require.NoError(t, err)
	assert.True(t, k.Value().Equal(Double(20)))
}

func TestBreakdownLoop(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := looping(t, NewKnot(0, Double(0), Linear), NewKnot(5, Double(5), Linear))
	k, err := s.Breakdown(12.5, Linear, false, 1)
	require.NoError(t, err)
	assert.Equal(t, 12.5, k.Time)
	assert.True(t, k.Value().Equal(Double(12.5)))
	assert.Equal(t, 12, s.Len())
	_, ok := s.KnotAt(2.5)
	assert.True(t, ok)
	_, ok = s.KnotAt(22.5)
	assert.True(t, ok)
	assert.Len(t, s.AuthoredKnots(), 3)
}

func TestBreakdownLoopSeam(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t,
		NewKnot(0, Double(0), Bezier).WithTangents(1, 1, 1, 1),
		NewKnot(4, Double(3), Bezier).WithTangents(-1, 1, -1, 1))
	require.NoError(t, s.SetLoopParams(LoopParams{
		Enabled: true, ProtoEnd: 10, NumPreLoops: 1, NumPostLoops: 1, ValueOffset: 3,
	}))
	assert.InDelta(t, 2.25, eval(t, s, 7, Right), 1e-9)
	assert.Equal(t, 6.0, eval(t, s, 20, Right))
	before := make(map[float64]float64)
	for at := -12.0; at <= 14; at += 0.5 {
		before[at] = eval(t, s, at, Right)
	}
	assert.True(t, s.inSeam(7))
	assert.False(t, s.inSeam(2))
	assert.False(t, s.inSeam(17))
	k, err := s.Breakdown(7, Bezier, false, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.25, k.Value().d, 1e-9)
	for at, v := range before {
		assert.InDelta(t, v, eval(t, s, at, Right), 1e-9, "t=%g", at)
	}
	// the last repetition has no seam, its copy of the new knot ends the curve
	_, ok := s.KnotAt(17)
	assert.True(t, ok)
	assert.InDelta(t, 5.25, eval(t, s, 20, Right), 1e-9)
}

func TestBreakdownEdgeCases(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e := New()
	_, err := e.Breakdown(1, Linear, false, 1)
	assert.True(t, errors.Is(err, ErrEmptySpline))
	k, err := e.BreakdownWithValue(1, Linear, Double(3), false, 1)
	require.NoError(t, err)
	assert.True(t, k.Value().Equal(Double(3)))
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, KindDouble, e.Kind())
	// existing knots are left alone
	s := linearRamp(t)
	orig, _ := s.KnotAt(10)
	k, err = s.Breakdown(10, Bezier, true, 5)
	require.NoError(t, err)
	assert.True(t, k.Equal(orig))
	assert.Equal(t, 2, s.Len())
	_, err = s.Breakdown(5, Linear, false, -1)
	assert.True(t, errors.Is(err, ErrNegativeLength))
	_, err = s.BreakdownWithValue(5, Linear, String("x"), false, 1)
	assert.True(t, errors.Is(err, ErrKindMismatch))
}

func TestBreakdownFlat(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := linearRamp(t)
	k, err := s.Breakdown(5, Bezier, true, 1)
	require.NoError(t, err)
	slope, length := k.LeftTangent()
	assert.True(t, slope.Equal(Double(0)))
	assert.Equal(t, 1.0, length)
	slope, length = k.RightTangent()
	assert.True(t, slope.Equal(Double(0)))
	assert.Equal(t, 1.0, length)
	assert.InDelta(t, 0.0, derivative(t, s, 5, Right), 1e-9)
}
