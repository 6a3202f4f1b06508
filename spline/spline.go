/*
Package spline implements piecewise curves for keyframe animation.

A spline is an ordered collection of knots, keyed by time. Between two
adjacent knots the curve is held, linear, or a cubic Bezier segment, as
determined by the type of the earlier knot. Before the first and after the
last knot the curve is extrapolated. A spline may loop: a prototype interval
of knots is repeated a number of times before and after itself, optionally
offsetting the values of every repetition.

Knots may be dual-valued, giving the curve a jump discontinuity. Evaluation
therefore always asks for a side: the limit from the left or the value at
and to the right of a time.

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
package spline

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'keyframe.spline'
func tracer() tracing.Trace {
	return tracing.Select("keyframe.spline")
}

var (
	// ErrKindMismatch indicates a value of a kind different from the spline's.
	ErrKindMismatch = errors.New("value kind does not match")
	// ErrNegativeLength indicates a tangent with negative length.
	ErrNegativeLength = errors.New("tangent length must not be negative")
	// ErrInvalidTangent indicates a tangent with a non-finite slope or length.
	ErrInvalidTangent = errors.New("tangent must be finite")
	// ErrInvalidInterval indicates an interval with start after end.
	ErrInvalidInterval = errors.New("interval start must not be after its end")
	// ErrInvalidLoop indicates loop parameters with an empty prototype
	// interval or negative repetition counts.
	ErrInvalidLoop = errors.New("invalid loop parameters")
	// ErrEmptySpline indicates an operation which needs at least one knot.
	ErrEmptySpline = errors.New("spline has no knots")
	// ErrInvalidSampling indicates a non-positive sampling tolerance.
	ErrInvalidSampling = errors.New("sampling tolerance must be positive")
	// ErrSyntax indicates malformed text input for Parse.
	ErrSyntax = errors.New("syntax error in spline text")
)

// Side selects which one-sided limit evaluation returns at a knot.
type Side uint8

// Right is the value at and after a time, Left the limit from earlier times.
const (
	Right Side = iota
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// ExtrapolationMode determines the curve outside of the knots.
type ExtrapolationMode uint8

// Held continues the end value, Linear continues along the end slope.
const (
	ExtrapHeld ExtrapolationMode = iota
	ExtrapLinear
)

func (m ExtrapolationMode) String() string {
	if m == ExtrapLinear {
		return "linear"
	}
	return "held"
}

// Extrapolation holds the extrapolation modes for both ends of a spline.
type Extrapolation struct {
	Left, Right ExtrapolationMode
}

// Spline is a keyframe curve. The zero value is not usable, create splines
// with New.
//
// A spline stores authored knots. If looping is enabled, the knots visible
// to clients differ from the authored ones: the prototype knots are repeated
// across the repeat range, and authored knots within the repeat range, but
// outside the prototype, are hidden. Queries and evaluation always see the
// visible knots.
type Spline struct {
	knots  *treemap.Map // float64 -> Knot
	kind   Kind
	extrap Extrapolation
	loop   LoopParams
}

// New creates an empty spline with held extrapolation and no looping.
func New() *Spline {
	return &Spline{knots: treemap.NewWith(utils.Float64Comparator)}
}

// Kind returns the kind of the spline's values, or KindNone for a spline
// without authored knots.
func (s *Spline) Kind() Kind {
	return s.kind
}

// SetKeyFrame inserts k, replacing an authored knot with the same time.
// It returns false if the knot has been discarded because it falls into
// a repetition of the loop prototype. Knots of a kind different from the
// spline's are rejected.
func (s *Spline) SetKeyFrame(k Knot) (bool, error) {
	if k.Kind() == KindNone {
		return false, fmt.Errorf("%w: knot at t=%g has no value", ErrKindMismatch, k.Time)
	}
	if s.knots.Size() > 0 && k.Kind() != s.kind {
		return false, fmt.Errorf("%w: knot of kind %s for spline of kind %s",
			ErrKindMismatch, k.Kind(), s.kind)
	}
	if s.loop.active() && s.loop.hides(k.Time) {
		tracer().Debugf("discarding knot at t=%g within loop repetition", k.Time)
		return false, nil
	}
	k.coerce()
	s.kind = k.Kind()
	s.knots.Put(k.Time, k)
	return true, nil
}

// SetKeyFrames inserts several knots. It stops at the first error.
func (s *Spline) SetKeyFrames(knots ...Knot) error {
	for _, k := range knots {
		if _, err := s.SetKeyFrame(k); err != nil {
			return err
		}
	}
	return nil
}

// RemoveKeyFrame removes the authored knot at time t, if any.
func (s *Spline) RemoveKeyFrame(t float64) bool {
	if _, found := s.knots.Get(t); !found {
		return false
	}
	s.knots.Remove(t)
	s.resetKind()
	return true
}

// MoveKeyFrame moves the authored knot at time from to time to. A knot
// already present at time to is replaced. Moving fails, leaving s unchanged,
// if there is no authored knot at from or if to lies within a loop repetition.
func (s *Spline) MoveKeyFrame(from, to float64) bool {
	v, found := s.knots.Get(from)
	if !found {
		return false
	}
	if s.loop.active() && s.loop.hides(to) {
		tracer().Debugf("cannot move knot from t=%g into loop repetition at t=%g", from, to)
		return false
	}
	k := v.(Knot)
	s.knots.Remove(from)
	k.Time = to
	if _, replaced := s.knots.Get(to); replaced {
		tracer().Debugf("knot moved to t=%g replaces existing knot", to)
	}
	s.knots.Put(to, k)
	return true
}

// RemoveRange removes all authored knots with t0 ≤ time < t1 and returns
// their number.
func (s *Spline) RemoveRange(t0, t1 float64) int {
	var doomed []interface{}
	s.knots.Each(func(key, _ interface{}) {
		if t := key.(float64); t >= t0 && t < t1 {
			doomed = append(doomed, key)
		}
	})
	for _, key := range doomed {
		s.knots.Remove(key)
	}
	s.resetKind()
	return len(doomed)
}

// Clear removes all knots. Extrapolation and loop parameters are kept.
func (s *Spline) Clear() {
	s.knots.Clear()
	s.kind = KindNone
}

func (s *Spline) resetKind() {
	if s.knots.Empty() {
		s.kind = KindNone
	}
}

// Extrapolation returns the extrapolation modes of s.
func (s *Spline) Extrapolation() Extrapolation {
	return s.extrap
}

// SetExtrapolation sets the extrapolation modes of s.
func (s *Spline) SetExtrapolation(e Extrapolation) {
	s.extrap = e
}

// Len returns the number of visible knots.
func (s *Spline) Len() int {
	return len(s.view().all())
}

// IsEmpty is a predicate: does s have no visible knots?
func (s *Spline) IsEmpty() bool {
	_, ok := s.view().first()
	return !ok
}

// Knots returns the visible knots, ordered by time.
func (s *Spline) Knots() []Knot {
	all := s.view().all()
	knots := make([]Knot, len(all))
	for i, vk := range all {
		knots[i] = vk.Knot
	}
	return knots
}

// AuthoredKnots returns the stored knots, ordered by time, regardless of
// looping.
func (s *Spline) AuthoredKnots() []Knot {
	knots := make([]Knot, 0, s.knots.Size())
	s.knots.Each(func(_, value interface{}) {
		knots = append(knots, value.(Knot))
	})
	return knots
}

// KnotAt returns the visible knot at time t.
func (s *Spline) KnotAt(t float64) (Knot, bool) {
	vk, ok := s.view().at(t)
	return vk.Knot, ok
}

// TimeSpan returns the times of the first and last visible knot.
func (s *Spline) TimeSpan() (first, last float64, ok bool) {
	v := s.view()
	f, ok := v.first()
	if !ok {
		return 0, 0, false
	}
	l, _ := v.last()
	return f.Time, l.Time, true
}

// Clone returns a deep copy of s.
func (s *Spline) Clone() *Spline {
	c := New()
	c.kind, c.extrap, c.loop = s.kind, s.extrap, s.loop
	s.knots.Each(func(key, value interface{}) {
		c.knots.Put(key, value)
	})
	return c
}

// Equal is a predicate: do s and o have identical authored knots,
// extrapolation and loop parameters?
func (s *Spline) Equal(o *Spline) bool {
	if s.kind != o.kind || s.extrap != o.extrap || s.loop != o.loop ||
		s.knots.Size() != o.knots.Size() {
		return false
	}
	a, b := s.AuthoredKnots(), o.AuthoredKnots()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// put writes a knot back to the store, bypassing loop checks. Callers
// provide knots at authored times.
func (s *Spline) put(k Knot) {
	s.kind = k.Kind()
	s.knots.Put(k.Time, k)
}
