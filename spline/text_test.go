package spline

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
)

func roundTrip(t *testing.T, s *Spline) *Spline {
	t.Helper()
	text, err := s.MarshalText()
	require.NoError(t, err)
	parsed, err := Parse(string(text))
	require.NoError(t, err, "cannot parse %q", text)
	assert.True(t, s.Equal(parsed), "round trip of %q", text)
	return parsed
}

func TestMarshalSimple(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t, NewKnot(0, Double(1), Held))
	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "spline kind=double extrap=held,held loop=off,0,0,0,0,0 "+
		"knot t=0 type=held v=1 ls=0 ll=0 rs=0 rl=0", string(text))
	text, err = New().MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "spline kind=none extrap=held,held loop=off,0,0,0,0,0", string(text))
	assert.True(t, roundTrip(t, New()).IsEmpty())
}

func TestTextRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := build(t,
		NewKnot(-1.5, Double(0.1), Bezier).WithTangents(0, 0, 2.5, 1.0/3),
		NewDualKnot(2, Double(-3), Double(4e-7), Linear),
		NewKnot(10, Double(1e21), Held))
	s.SetExtrapolation(Extrapolation{Left: ExtrapLinear, Right: ExtrapHeld})
	roundTrip(t, s)
	roundTrip(t, looping(t, NewKnot(0, Double(0), Linear), NewKnot(5, Double(5), Linear)))
	roundTrip(t, build(t,
		NewKnot(0, Vec3(1, 2, 3), Bezier).WithTangents(0, 0, 1, 1),
		NewKnot(4, Vec3(-1, 0.5, 0), Linear)))
	roundTrip(t, build(t,
		NewKnot(0, Quat(quat.Number{Real: 1}), Linear),
		NewKnot(1, Quat(quat.Number{Real: 0.5, Imag: 0.5, Jmag: 0.5, Kmag: 0.5}), Linear)))
	str := roundTrip(t, build(t,
		NewKnot(0, String("hello world"), Held),
		NewKnot(1, String(`say "knot t=2"`), Held)))
	assert.Equal(t, 2, str.Len())
	roundTrip(t, build(t, NewKnot(0, Bool(true), Held), NewKnot(1, Bool(false), Held)))
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, text := range []string{
		"",
		"curve kind=double",
		"spline kind=foo",
		"spline kind=double extrap=held",
		"spline kind=double extrap=held,cubic",
		"spline kind=double loop=on,5,5,0,0,0",
		"spline kind=double loop=maybe,0,1,0,0,0",
		"spline kind=double color=red",
		"spline kind=double knot t=0",
		"spline kind=double knot t=x v=1",
		"spline kind=double knot t=0 v=1 type=smooth",
		"spline kind=double knot t=0 v=1 ls=0 ll=-1",
		"spline kind=vec3 knot t=0 v=1,2",
		`spline kind=string knot t=0 v="abc`,
		"spline kind=none knot t=0 v=1",
		"spline kind=double knot t=0 v",
	} {
		_, err := Parse(text)
		assert.True(t, errors.Is(err, ErrSyntax), "expected syntax error for %q, have %v", text, err)
	}
	assert.Panics(t, func() { MustParse("spline kind=foo") })
}

func TestUnmarshalText(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s := New()
	err := s.UnmarshalText([]byte("spline kind=double extrap=linear,linear loop=off,0,0,0,0,0 " +
		"knot t=0 type=linear v=0 knot t=10 type=linear v=20"))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 30.0, eval(t, s, 15, Right))
	assert.Error(t, s.UnmarshalText([]byte("spline kind=foo")))
	assert.Equal(t, 2, s.Len())
}

func TestSplineString(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	str := looping(t, NewKnot(0, Double(0), Bezier).WithTangents(0, 0, 1, 1),
		NewKnot(5, Double(5), Linear)).String()
	t.Logf("\n%s", str)
	assert.Contains(t, str, "controls")
	assert.Contains(t, str, "loop")
	assert.Contains(t, str, "[repeats t=0]")
}
