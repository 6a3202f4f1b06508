package spline

import (
	"fmt"
	"strings"

	"github.com/npillmayer/keyframe"
)

// Type is the interpolation method of the segment following a knot.
type Type uint8

// Interpolation methods.
const (
	Held Type = iota
	Linear
	Bezier
)

var typeNames = [...]string{"held", "linear", "bezier"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func typeFromString(s string) (Type, bool) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), true
		}
	}
	return Held, false
}

// Verdict is the answer to a "may I do this?" query. If OK is false,
// Reason tells why.
type Verdict struct {
	OK     bool
	Reason string
}

var yes = Verdict{OK: true}

func no(format string, args ...interface{}) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Knot is a control point of a spline.
//
// A knot carries a value, or two values if it is dual-valued: the left
// (pre) value applies when approaching the knot from earlier times, the
// right (post) value at and after the knot's time. A knot's type is the
// interpolation method of the segment to its right.
//
// Tangents are (slope, length) pairs, with length measured along the time
// axis. They shape Bezier segments on either side of the knot. A knot of a
// non-Bezier type may still carry tangents: they are used for the end of a
// Bezier segment arriving at the knot, if their length is positive.
type Knot struct {
	Time       float64
	typ        Type
	value      Value
	leftValue  Value
	dual       bool
	leftSlope  Value
	rightSlope Value
	leftLen    float64
	rightLen   float64
}

// NewKnot creates a knot at time t with a single value.
//
// The type is downgraded if the value does not support it: non-finite and
// non-interpolatable values are held, quaternions are interpolated linearly
// instead of by Bezier segments.
func NewKnot(t float64, v Value, typ Type) Knot {
	k := Knot{Time: t, typ: typ, value: v, leftValue: v}
	k.leftSlope, k.rightSlope = zeroOf(v.kind), zeroOf(v.kind)
	k.coerce()
	return k
}

// NewDualKnot creates a dual-valued knot at time t. The knot is dual even if
// left and right are equal.
func NewDualKnot(t float64, left, right Value, typ Type) Knot {
	k := NewKnot(t, right, typ)
	k.leftValue, k.dual = left, true
	k.coerce()
	return k
}

// WithTangents returns a copy of k with scalar tangents. Slopes are applied
// to every component of vector values. Negative lengths are set to 0.
func (k Knot) WithTangents(leftSlope, leftLen, rightSlope, rightLen float64) Knot {
	ls, rs := uniform(k.value.kind, leftSlope), uniform(k.value.kind, rightSlope)
	if err := k.SetLeftTangent(ls, leftLen); err != nil {
		tracer().Errorf("knot at t=%g: %v", k.Time, err)
		_ = k.SetLeftTangent(ls, 0)
	}
	if err := k.SetRightTangent(rs, rightLen); err != nil {
		tracer().Errorf("knot at t=%g: %v", k.Time, err)
		_ = k.SetRightTangent(rs, 0)
	}
	return k
}

func uniform(kind Kind, f float64) Value {
	if kind == KindVec3 {
		return Vec3(f, f, f)
	}
	return Double(f)
}

// coerce enforces the compatibility of type and values.
func (k *Knot) coerce() {
	if !k.value.IsFinite() || (k.dual && !k.leftValue.IsFinite()) {
		if k.typ != Held {
			tracer().Errorf("knot at t=%g has non-finite value %s, setting it to held",
				k.Time, k.value)
		}
		k.typ = Held
		return
	}
	if k.typ != Held && !k.value.kind.Interpolatable() {
		tracer().Infof("values of kind %s cannot be interpolated, knot at t=%g is held",
			k.value.kind, k.Time)
		k.typ = Held
	}
	if k.typ == Bezier && !k.value.kind.SupportsBezier() {
		tracer().Infof("values of kind %s do not support Bezier, knot at t=%g is linear",
			k.value.kind, k.Time)
		k.typ = Linear
	}
}

// Type returns the interpolation method of the segment following k.
func (k Knot) Type() Type {
	return k.typ
}

// Kind returns the kind of k's values.
func (k Knot) Kind() Kind {
	return k.value.kind
}

// Value returns the (right) value of k.
func (k Knot) Value() Value {
	return k.value
}

// LeftValue returns the left value of a dual-valued knot, and the value of
// single-valued knots.
func (k Knot) LeftValue() Value {
	if k.dual {
		return k.leftValue
	}
	return k.value
}

// IsDual is a predicate: has k been given separate left and right values?
func (k Knot) IsDual() bool {
	return k.dual
}

// LeftTangent returns the tangent arriving at k.
func (k Knot) LeftTangent() (slope Value, length float64) {
	return k.leftSlope, k.leftLen
}

// RightTangent returns the tangent leaving k.
func (k Knot) RightTangent() (slope Value, length float64) {
	return k.rightSlope, k.rightLen
}

// CanSetType answers whether k may be changed to interpolation type typ.
func (k Knot) CanSetType(typ Type) Verdict {
	switch {
	case typ > Bezier:
		return no("unknown interpolation type %d", int(typ))
	case typ == Held:
		return yes
	case !k.value.IsFinite() || (k.dual && !k.leftValue.IsFinite()):
		return no("knot at t=%g has non-finite value %s", k.Time, k.value)
	case !k.value.kind.Interpolatable():
		return no("values of kind %s cannot be interpolated", k.value.kind)
	case typ == Bezier && !k.value.kind.SupportsBezier():
		return no("values of kind %s do not support Bezier interpolation", k.value.kind)
	}
	return yes
}

// SetType changes k's interpolation type, if permitted.
func (k *Knot) SetType(typ Type) Verdict {
	v := k.CanSetType(typ)
	if v.OK {
		k.typ = typ
	}
	return v
}

// SetValue sets the (right) value of k. For single-valued knots this is
// the left value as well. A value of a different kind resets tangent slopes.
func (k *Knot) SetValue(v Value) {
	if v.kind != k.value.kind {
		k.leftSlope, k.rightSlope = zeroOf(v.kind), zeroOf(v.kind)
		if k.dual {
			k.leftValue = v
		}
	}
	k.value = v
	if !k.dual {
		k.leftValue = v
	}
	k.coerce()
}

// SetLeftValue sets the left value of k, making it dual-valued.
func (k *Knot) SetLeftValue(v Value) error {
	if v.kind != k.value.kind {
		return fmt.Errorf("%w: left value %s for knot of kind %s", ErrKindMismatch, v, k.value.kind)
	}
	k.leftValue, k.dual = v, true
	k.coerce()
	return nil
}

// SetDual switches k between single- and dual-valued. Making a knot
// single-valued drops its left value.
func (k *Knot) SetDual(dual bool) {
	if !dual {
		k.leftValue = k.value
	}
	k.dual = dual
}

// SetLeftTangent sets the tangent arriving at k.
func (k *Knot) SetLeftTangent(slope Value, length float64) error {
	if err := k.checkTangent(slope, length); err != nil {
		return err
	}
	k.leftSlope, k.leftLen = slope, length
	return nil
}

// SetRightTangent sets the tangent leaving k.
func (k *Knot) SetRightTangent(slope Value, length float64) error {
	if err := k.checkTangent(slope, length); err != nil {
		return err
	}
	k.rightSlope, k.rightLen = slope, length
	return nil
}

func (k Knot) checkTangent(slope Value, length float64) error {
	if length < 0 {
		return fmt.Errorf("%w: %g at t=%g", ErrNegativeLength, length, k.Time)
	}
	if slope.kind != k.value.kind || !slope.kind.arithmetic() {
		return fmt.Errorf("%w: slope %s for knot of kind %s", ErrKindMismatch, slope, k.value.kind)
	}
	if !slope.IsFinite() || !keyframe.IsFinite(length) {
		return fmt.Errorf("%w: slope %s, length %g at t=%g", ErrInvalidTangent, slope, length, k.Time)
	}
	return nil
}

// Equal is a predicate: are k and o identical in every respect?
func (k Knot) Equal(o Knot) bool {
	return k.Time == o.Time && k.typ == o.typ && k.dual == o.dual &&
		k.value.Equal(o.value) && k.LeftValue().Equal(o.LeftValue()) &&
		k.leftSlope.Equal(o.leftSlope) && k.rightSlope.Equal(o.rightSlope) &&
		k.leftLen == o.leftLen && k.rightLen == o.rightLen
}

// transformed returns a copy of k, moved in the time/value plane by m.
// Only scalar values take part in the value transform.
func (k Knot) transformed(m keyframe.AT) Knot {
	if k.Kind() == KindDouble {
		k.value = Double(m.Transform(keyframe.P(k.Time, k.value.d)).Y())
		k.leftValue = Double(m.Transform(keyframe.P(k.Time, k.leftValue.d)).Y())
	}
	k.Time = m.TransformTime(k.Time)
	return k
}

func (k Knot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%g %s %s", k.Time, k.typ, k.value)
	if k.dual {
		fmt.Fprintf(&b, " (left %s)", k.leftValue)
	}
	if k.value.kind.arithmetic() && (k.leftLen > 0 || k.rightLen > 0) {
		fmt.Fprintf(&b, " tangents l=(%s,%g) r=(%s,%g)", k.leftSlope, k.leftLen,
			k.rightSlope, k.rightLen)
	}
	return b.String()
}
