package keyframe

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNumericBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := 0.000000008
	if !Is0(a) {
		t.Errorf("Expected a to be zero, is not")
	}
	if Zap(a) != 0 {
		t.Errorf("Expected zapped a to be 0, is %g", Zap(a))
	}
	if IsFinite(math.Inf(-1)) || IsFinite(math.NaN()) || !IsFinite(1e300) {
		t.Errorf("IsFinite misclassifies")
	}
}

func TestLerp(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	if Lerp(0, 20, 0.25) != 5 {
		t.Errorf("Expected lerp(0,20,1/4) = 5, is %g", Lerp(0, 20, 0.25))
	}
	if Lerp(0.1, 0.7, 1) != 0.7 {
		t.Errorf("Expected lerp at u=1 to yield b exactly")
	}
	if !P(0, 0).Lerp(P(10, 20), 0.5).Equal(P(5, 10)) {
		t.Errorf("Expected pair lerp to be (5,10)")
	}
}

func TestPairBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := P(3, 2)
	q := P(-3, -2)
	r := p + q
	if !r.Equal(P(0, 0)) {
		t.Errorf("Expected p + q to be (0,0), is %v", r)
	}
	if P(0, 0).Slope(P(10, 20)) != 2 {
		t.Errorf("Expected slope 2, is %g", P(0, 0).Slope(P(10, 20)))
	}
	if P(1, 0).Slope(P(1, 5)) != 0 {
		t.Errorf("Expected slope of vertical pair to be 0")
	}
}

func TestTranslation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	if !P(1, 1).Shifted(P(-1, -1)).Equal(P(0, 0)) {
		t.Errorf("Expected (1,1) shifted (-1,-1) to be origin, is not")
	}
	if p := P(1, -2).Scaled(1.5); !p.Equal(P(1.5, -3)) {
		t.Errorf("Expected (1,-2) scaled by 1.5 to be (1.5,-3), is %v", p)
	}
	T := Translation(P(10, 0.5)).Combine(Translation(P(10, 0.5)))
	if p := T.Transform(P(1, 1)); !p.Equal(P(21, 2)) {
		t.Errorf("Expected double translation to yield (21,2), is %v", p)
	}
	if tt := T.TransformTime(1); tt != 21 {
		t.Errorf("Expected time transform to yield 21, is %g", tt)
	}
}

func TestCombine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	T := Translation(P(10, 0)).Combine(Translation(P(0, -3)))
	if p := T.Transform(P(1, 1)); !p.Equal(P(11, -2)) {
		t.Errorf("Expected time shift and value shift to yield (11,-2), is %v", p)
	}
	if tt := T.TransformTime(-10); tt != 0 {
		t.Errorf("Expected value shift to leave time alone, is %g", tt)
	}
	if !Identity().Transform(P(7, 8)).Equal(P(7, 8)) {
		t.Errorf("Expected identity to keep point")
	}
	if p := P(0.00000001, 3).Zap(); p != P(0, 3) {
		t.Errorf("Expected zapped pair to be (0,3), is %v", p)
	}
}
