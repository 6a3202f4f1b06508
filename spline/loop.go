package spline

import (
	"fmt"

	"github.com/npillmayer/keyframe"
)

// LoopParams describes the repetition of a prototype interval of a spline.
//
// The knots within [ProtoStart, ProtoEnd) are repeated NumPreLoops times
// before and NumPostLoops times after the prototype. Every repetition k
// (negative before the prototype) is shifted in time by k⋅period and, for
// scalar splines, in value by k⋅ValueOffset. The union of the prototype and
// its repetitions is the repeat range.
type LoopParams struct {
	Enabled      bool
	ProtoStart   float64
	ProtoEnd     float64
	NumPreLoops  int
	NumPostLoops int
	ValueOffset  float64
}

// Validate checks enabled loop parameters for consistency. Disabled
// parameters are always valid.
func (lp LoopParams) Validate() error {
	if !lp.Enabled {
		return nil
	}
	if !keyframe.IsFinite(lp.ProtoStart) || !keyframe.IsFinite(lp.ProtoEnd) ||
		lp.ProtoEnd <= lp.ProtoStart {
		return fmt.Errorf("%w: prototype [%g,%g) is empty", ErrInvalidLoop, lp.ProtoStart, lp.ProtoEnd)
	}
	if lp.NumPreLoops < 0 || lp.NumPostLoops < 0 {
		return fmt.Errorf("%w: negative loop count %d/%d", ErrInvalidLoop,
			lp.NumPreLoops, lp.NumPostLoops)
	}
	if !keyframe.IsFinite(lp.ValueOffset) {
		return fmt.Errorf("%w: value offset %g", ErrInvalidLoop, lp.ValueOffset)
	}
	return nil
}

// Period returns the length of the prototype interval.
func (lp LoopParams) Period() float64 {
	return lp.ProtoEnd - lp.ProtoStart
}

// RepeatRange returns the half-open time interval covered by the prototype
// and all of its repetitions.
func (lp LoopParams) RepeatRange() (start, end float64) {
	p := lp.Period()
	return lp.ProtoStart - float64(lp.NumPreLoops)*p, lp.ProtoEnd + float64(lp.NumPostLoops)*p
}

func (lp LoopParams) active() bool {
	return lp.Enabled && lp.Validate() == nil
}

// inPrototype is a predicate: is t within [ProtoStart, ProtoEnd)?
func (lp LoopParams) inPrototype(t float64) bool {
	return t >= lp.ProtoStart && t < lp.ProtoEnd
}

// inRepeat is a predicate: is t within the repeat range?
func (lp LoopParams) inRepeat(t float64) bool {
	rs, re := lp.RepeatRange()
	return t >= rs && t < re
}

// hides is a predicate: is t within a repetition of the prototype?
func (lp LoopParams) hides(t float64) bool {
	return lp.inRepeat(t) && !lp.inPrototype(t)
}

// transform returns the mapping of the prototype onto repetition k: a shift
// in time, followed by the value offset.
func (lp LoopParams) transform(k int) keyframe.AT {
	shift := keyframe.Translation(keyframe.P(float64(k)*lp.Period(), 0))
	return shift.Combine(keyframe.Translation(keyframe.P(0, float64(k)*lp.ValueOffset)))
}

// LoopParams returns the loop parameters of s.
func (s *Spline) LoopParams() LoopParams {
	return s.loop
}

// SetLoopParams changes the loop parameters of s.
//
// Disabling a loop bakes the repetitions: every knot visible before the
// change becomes an authored knot, so the shape of the curve is preserved.
// Authored knots hidden by the loop are dropped in the process.
func (s *Spline) SetLoopParams(lp LoopParams) error {
	if err := lp.Validate(); err != nil {
		return err
	}
	if s.loop.active() && !lp.active() {
		visible := s.view().all()
		s.knots.Clear()
		for _, vk := range visible {
			s.knots.Put(vk.Time, vk.Knot)
		}
		tracer().Debugf("baked %d knots of loop", len(visible))
	}
	s.loop = lp
	return nil
}
