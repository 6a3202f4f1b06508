package bezier

import (
	"fmt"

	"github.com/npillmayer/keyframe"
	"github.com/npillmayer/keyframe/polyn"
)

// Validate checks if a skeleton can be turned into a segment.
func (sk *Skeleton) Validate() error {
	if sk == nil {
		return ErrNilSkeleton
	}
	for i, z := range []keyframe.Pair{sk.start, sk.end} {
		if !keyframe.IsFinite(z.X()) || !keyframe.IsFinite(z.Y()) {
			return fmt.Errorf("%w at knot %d: %s", ErrInvalidKnot, i, z)
		}
	}
	for _, f := range []float64{sk.postSlope, sk.postLen, sk.preSlope, sk.preLen} {
		if !keyframe.IsFinite(f) {
			return fmt.Errorf("%w: tangent (%g,%g) / (%g,%g)", ErrInvalidKnot,
				sk.postSlope, sk.postLen, sk.preSlope, sk.preLen)
		}
	}
	if sk.postLen < 0 || sk.preLen < 0 {
		return fmt.Errorf("%w: post=%g, pre=%g", ErrNegativeLength, sk.postLen, sk.preLen)
	}
	if sk.end.X() <= sk.start.X() {
		return fmt.Errorf("%w between %s and %s", ErrDegenerateSegment, sk.start, sk.end)
	}
	return nil
}

// FindControls finds the control points for a skeleton segment.
// It validates the skeleton and returns an error for invalid geometry.
//
// Tangent lengths with a sum exceeding the duration of the segment are
// shortened proportionally.
func FindControls(sk *Skeleton) (Segment, error) {
	if err := sk.Validate(); err != nil {
		return Segment{}, err
	}
	postLen, preLen := clampLengths(sk.postLen, sk.preLen, sk.Duration())
	p1 := sk.start.Shifted(keyframe.P(1, sk.postSlope).Scaled(postLen))
	p2 := sk.end.Shifted(keyframe.P(1, sk.preSlope).Scaled(-preLen))
	seg := NewSegment(sk.start, p1, p2, sk.end)
	tracer().Debugf("controls for %s", AsString(seg))
	return seg, nil
}

// MustFindControls is a helper which panics on validation errors.
func MustFindControls(sk *Skeleton) Segment {
	seg, err := FindControls(sk)
	if err != nil {
		panic(err)
	}
	return seg
}

// NewSegment creates a segment from explicit control points. Clients are
// responsible for keeping time monotone, i.e.
//
//	P0.X ≤ P1.X ≤ P2.X ≤ P3.X
func NewSegment(p0, p1, p2, p3 keyframe.Pair) Segment {
	return Segment{
		P0: p0, P1: p1, P2: p2, P3: p3,
		x: polyn.FromBernstein(p0.X(), p1.X(), p2.X(), p3.X()),
		y: polyn.FromBernstein(p0.Y(), p1.Y(), p2.Y(), p3.Y()),
	}
}

func clampLengths(post, pre, duration float64) (float64, float64) {
	if sum := post + pre; sum > duration {
		scale := duration / sum
		tracer().Debugf("tangent lengths %g + %g exceed duration %g, scaling by %g",
			post, pre, duration, scale)
		return post * scale, pre * scale
	}
	return post, pre
}
