package bezier

import (
	"errors"

	"github.com/npillmayer/keyframe"
	"github.com/npillmayer/keyframe/polyn"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'keyframe.bezier'
func tracer() tracing.Trace {
	return tracing.Select("keyframe.bezier")
}

// Relative size of a time derivative treated as vanishing.
const _epsilon = 1e-12

var (
	// ErrNilSkeleton indicates a nil skeleton pointer.
	ErrNilSkeleton = errors.New("skeleton must not be nil")
	// ErrInvalidKnot indicates a knot coordinate or tangent containing NaN/Inf.
	ErrInvalidKnot = errors.New("segment has invalid knot coordinate")
	// ErrDegenerateSegment indicates a segment whose end knot does not lie
	// strictly after its start knot.
	ErrDegenerateSegment = errors.New("segment has degenerate duration")
	// ErrNegativeLength indicates a tangent with negative length.
	ErrNegativeLength = errors.New("tangent length must not be negative")
)

// Skeleton is a segment without control points: two knots and their
// tangents. To construct one, start with Between() and extend it.
type Skeleton struct {
	start, end keyframe.Pair
	postSlope  float64 // tangent leaving start
	postLen    float64
	preSlope   float64 // tangent arriving at end
	preLen     float64
}

// Segment is a cubic Bezier segment with calculated control points.
// X-parts are times, Y-parts are values.
type Segment struct {
	P0, P1, P2, P3 keyframe.Pair
	x, y           polyn.Polynomial // power forms of time(u) and value(u)
}
