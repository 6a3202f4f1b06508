package bezier

import (
	"github.com/npillmayer/keyframe"
)

// Between creates a skeleton segment from start to end, to be extended by
// subsequent builder calls. Without tangents the segment degenerates to a
// straight line.
func Between(start, end keyframe.Pair) *Skeleton {
	return &Skeleton{start: start, end: end}
}

// PostTangent sets the tangent leaving the start knot.
// Part of builder functionality.
func (sk *Skeleton) PostTangent(slope, length float64) *Skeleton {
	sk.postSlope, sk.postLen = slope, length
	return sk
}

// PreTangent sets the tangent arriving at the end knot.
// Part of builder functionality.
func (sk *Skeleton) PreTangent(slope, length float64) *Skeleton {
	sk.preSlope, sk.preLen = slope, length
	return sk
}

// AutoPostTangent sets the tangent leaving the start knot to follow the
// secant of the segment, reaching a third of the way to the end knot.
// Part of builder functionality.
func (sk *Skeleton) AutoPostTangent() *Skeleton {
	slope, length := AutoTangent(sk.start, sk.end)
	return sk.PostTangent(slope, length)
}

// AutoPreTangent sets the tangent arriving at the end knot to follow the
// secant of the segment, reaching a third of the way back to the start knot.
// Part of builder functionality.
func (sk *Skeleton) AutoPreTangent() *Skeleton {
	slope, length := AutoTangent(sk.start, sk.end)
	return sk.PreTangent(slope, length)
}

// AutoTangent is the tangent used for knots which do not carry tangent
// information of their own: the slope of the secant from a to b and a third
// of the time between them.
func AutoTangent(a, b keyframe.Pair) (slope, length float64) {
	return a.Slope(b), (b.X() - a.X()) / 3
}

// Start returns the start knot.
func (sk *Skeleton) Start() keyframe.Pair {
	return sk.start
}

// End returns the end knot.
func (sk *Skeleton) End() keyframe.Pair {
	return sk.end
}

// Duration returns the time between start and end knot.
func (sk *Skeleton) Duration() float64 {
	return sk.end.X() - sk.start.X()
}
