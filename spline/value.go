package spline

import (
	"fmt"
	"math"
	"strconv"

	"github.com/npillmayer/keyframe"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind is the type tag of a Value.
type Kind uint8

// Value kinds. KindNone is the kind of the zero Value, which signals
// absence of data.
const (
	KindNone Kind = iota
	KindDouble
	KindVec3
	KindQuat
	KindString
	KindBool
)

var kindNames = [...]string{"none", "double", "vec3", "quat", "string", "bool"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func kindFromString(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return KindNone, false
}

// Interpolatable is a predicate: may values of kind k be interpolated
// linearly?
func (k Kind) Interpolatable() bool {
	return k == KindDouble || k == KindVec3 || k == KindQuat
}

// SupportsBezier is a predicate: may values of kind k be interpolated by
// Bezier segments?
func (k Kind) SupportsBezier() bool {
	return k == KindDouble || k == KindVec3
}

// Orderable is a predicate: do values of kind k have a total order?
func (k Kind) Orderable() bool {
	return k == KindDouble
}

// arithmetic is a predicate: may values of kind k be added and scaled?
func (k Kind) arithmetic() bool {
	return k == KindDouble || k == KindVec3
}

// Value is a tagged union of the value types a spline may carry.
// The zero Value has kind KindNone and represents "no value".
type Value struct {
	kind Kind
	d    float64
	v    r3.Vec
	q    quat.Number
	s    string
	b    bool
}

// Double creates a scalar value.
func Double(d float64) Value {
	return Value{kind: KindDouble, d: d}
}

// Vec3 creates a 3-vector value.
func Vec3(x, y, z float64) Value {
	return Value{kind: KindVec3, v: r3.Vec{X: x, Y: y, Z: z}}
}

// Quat creates a quaternion value.
func Quat(q quat.Number) Value {
	return Value{kind: KindQuat, q: q}
}

// String creates a string value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// zeroOf returns the additive identity for kind k, or the zero Value.
func zeroOf(k Kind) Value {
	switch k {
	case KindDouble:
		return Double(0)
	case KindVec3:
		return Vec3(0, 0, 0)
	}
	return Value{}
}

// Kind returns the type tag of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNone is a predicate: is v the absent value?
func (v Value) IsNone() bool {
	return v.kind == KindNone
}

// Float returns the scalar of a double value.
func (v Value) Float() (float64, bool) {
	return v.d, v.kind == KindDouble
}

// Vector returns the vector of a vec3 value.
func (v Value) Vector() (r3.Vec, bool) {
	return v.v, v.kind == KindVec3
}

// Quaternion returns the quaternion of a quat value.
func (v Value) Quaternion() (quat.Number, bool) {
	return v.q, v.kind == KindQuat
}

// Str returns the string of a string value.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

// Boolean returns the flag of a bool value.
func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

// IsFinite is a predicate: are all numeric components of v finite?
// Non-numeric values are always finite.
func (v Value) IsFinite() bool {
	switch v.kind {
	case KindDouble:
		return keyframe.IsFinite(v.d)
	case KindVec3:
		return keyframe.IsFinite(v.v.X) && keyframe.IsFinite(v.v.Y) && keyframe.IsFinite(v.v.Z)
	case KindQuat:
		return !quat.IsInf(v.q) && !quat.IsNaN(v.q)
	}
	return true
}

// components returns the numeric components of a double or vec3 value.
func (v Value) components() []float64 {
	switch v.kind {
	case KindDouble:
		return []float64{v.d}
	case KindVec3:
		return []float64{v.v.X, v.v.Y, v.v.Z}
	}
	return nil
}

// fromComponents is the inverse of components.
func fromComponents(k Kind, c []float64) Value {
	if k == KindVec3 {
		return Vec3(c[0], c[1], c[2])
	}
	return Double(c[0])
}

// component returns component i of v, treating absent values as 0.
func (v Value) component(i int) float64 {
	switch v.kind {
	case KindDouble:
		return v.d
	case KindVec3:
		return [3]float64{v.v.X, v.v.Y, v.v.Z}[i]
	}
	return 0
}

// Add returns v + w for arithmetic kinds. An absent w counts as zero.
// For other kinds v is returned unchanged.
func (v Value) Add(w Value) Value {
	switch v.kind {
	case KindDouble:
		return Double(v.d + w.component(0))
	case KindVec3:
		return Vec3(v.v.X+w.component(0), v.v.Y+w.component(1), v.v.Z+w.component(2))
	}
	return v
}

// Sub returns v - w for arithmetic kinds, v otherwise.
func (v Value) Sub(w Value) Value {
	return v.Add(w.Scale(-1))
}

// Scale returns f⋅v for arithmetic kinds, v otherwise.
func (v Value) Scale(f float64) Value {
	switch v.kind {
	case KindDouble:
		return Double(v.d * f)
	case KindVec3:
		return Value{kind: KindVec3, v: r3.Scale(f, v.v)}
	}
	return v
}

// Lerp interpolates between v and w. Quaternions are interpolated
// spherically along the shortest arc. Values of non-interpolatable kinds
// are held: the result is v for u < 1 and w for u = 1.
func (v Value) Lerp(w Value, u float64) Value {
	switch v.kind {
	case KindDouble:
		return Double(keyframe.Lerp(v.d, w.d, u))
	case KindVec3:
		return Vec3(keyframe.Lerp(v.v.X, w.v.X, u), keyframe.Lerp(v.v.Y, w.v.Y, u),
			keyframe.Lerp(v.v.Z, w.v.Z, u))
	case KindQuat:
		return Quat(slerp(v.q, w.q, u))
	}
	if u >= 1 {
		return w
	}
	return v
}

// slerp interpolates unit quaternions, q0⋅(q0⁻¹⋅q1)^u.
func slerp(q0, q1 quat.Number, u float64) quat.Number {
	switch u {
	case 0:
		return q0
	case 1:
		return q1
	}
	dot := q0.Real*q1.Real + q0.Imag*q1.Imag + q0.Jmag*q1.Jmag + q0.Kmag*q1.Kmag
	if dot < 0 {
		q1 = quat.Scale(-1, q1)
	}
	delta := quat.Mul(quat.Inv(q0), q1)
	return quat.Mul(q0, quat.PowReal(delta, u))
}

// Equal is a predicate: are v and w of the same kind and identical?
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindDouble:
		return v.d == w.d
	case KindVec3:
		return v.v == w.v
	case KindQuat:
		return v.q == w.q
	case KindString:
		return v.s == w.s
	case KindBool:
		return v.b == w.b
	}
	return true
}

// Dist returns a distance between two values of the same kind: the
// largest absolute component difference for numeric kinds, and 0 or +Inf
// for other kinds.
func (v Value) Dist(w Value) float64 {
	if v.kind != w.kind {
		return math.Inf(1)
	}
	switch v.kind {
	case KindDouble:
		return math.Abs(v.d - w.d)
	case KindVec3:
		d := r3.Sub(v.v, w.v)
		return math.Max(math.Abs(d.X), math.Max(math.Abs(d.Y), math.Abs(d.Z)))
	case KindQuat:
		d := quat.Sub(v.q, w.q)
		return math.Max(math.Max(math.Abs(d.Real), math.Abs(d.Imag)),
			math.Max(math.Abs(d.Jmag), math.Abs(d.Kmag)))
	}
	if v.Equal(w) {
		return 0
	}
	return math.Inf(1)
}

// IsClose is a predicate: are v and w equal within tolerance tol?
// A tolerance of 0 demands exact equality.
func (v Value) IsClose(w Value, tol float64) bool {
	if v.Equal(w) {
		return true
	}
	return v.Dist(w) <= tol
}

// IsZero is a predicate: is every numeric component of v within tol of 0?
// Absent values count as zero.
func (v Value) IsZero(tol float64) bool {
	for _, c := range v.components() {
		if math.Abs(c) > tol {
			return false
		}
	}
	return true
}

// Less orders two orderable values.
func (v Value) Less(w Value) bool {
	return v.kind == KindDouble && w.kind == KindDouble && v.d < w.d
}

// String returns a human readable form of v.
func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "<none>"
	case KindString:
		return strconv.Quote(v.s)
	}
	return v.token()
}

// token returns the machine readable form of v, without its kind.
func (v Value) token() string {
	switch v.kind {
	case KindDouble:
		return formatFloat(v.d)
	case KindVec3:
		return formatFloat(v.v.X) + "," + formatFloat(v.v.Y) + "," + formatFloat(v.v.Z)
	case KindQuat:
		return fmt.Sprintf("%v", v.q)
	case KindString:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.b)
	}
	return "none"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
