/*
Package keyframe implements numeric foundations for animation curves:
time/value points, tolerance predicates and affine transforms of the
time/value plane.

Sub-packages provide polynomials (polyn), cubic Bezier segments (bezier),
keyframe splines (spline) and a baseline file format for regression
testing of sampled splines (baseline).

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package keyframe

import (
	"fmt"
	"math"
)

// === Numeric Data Type =====================================================

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// IsFinite is a predicate: is n neither ±Inf nor NaN?
func IsFinite(n float64) bool {
	return !math.IsInf(n, 0) && !math.IsNaN(n)
}

// Lerp interpolates linearly between a and b. u = 0 yields a, u = 1 yields b.
func Lerp(a, b, u float64) float64 {
	if u == 1 {
		return b
	}
	return a + (b-a)*u
}

// === Pair Data Type ========================================================

// Pair is a point in the time/value plane. The x-part is the time, the
// y-part is the value.
type Pair complex128

// Pretty Stringer for simple pairs.
func (p Pair) String() string {
	return fmt.Sprintf("(%g,%g)", real(p), imag(p))
}

// C returns a Pair as a complex number.
func (p Pair) C() complex128 {
	return complex128(p)
}

// P is a quick notation for contructing a pair from floats.
func P(x, y float64) Pair {
	return Pair(complex(x, y))
}

// X is the time-part of a pair.
func (p Pair) X() float64 {
	return real(p)
}

// Y is the value-part of a pair.
func (p Pair) Y() float64 {
	return imag(p)
}

// Zap rounds x-part and y-part to Epsilon.
func (p Pair) Zap() Pair {
	return P(Zap(p.X()), Zap(p.Y()))
}

// Equal compares two pairs.
func (p Pair) Equal(p2 Pair) bool {
	return Is0(p.X()-p2.X()) && Is0(p.Y()-p2.Y())
}

// Slope returns the value change per unit of time from p to p2.
// For pairs with equal times the slope is 0.
func (p Pair) Slope(p2 Pair) float64 {
	dx := p2.X() - p.X()
	if dx == 0 {
		return 0
	}
	return (p2.Y() - p.Y()) / dx
}

// Lerp interpolates between two pairs.
func (p Pair) Lerp(p2 Pair, u float64) Pair {
	return P(Lerp(p.X(), p2.X(), u), Lerp(p.Y(), p2.Y(), u))
}

// Scaled returns a new pair scaled by factor a.
func (p Pair) Scaled(a float64) Pair {
	return P(p.X()*a, p.Y()*a)
}

// Shifted returns a new pair translated by v.
func (p Pair) Shifted(v Pair) Pair {
	T := Translation(v)
	return T.Transform(p)
}

// === Affine Transformations ================================================

// AT is an affine transform, a matrix type used for transforming points
// of the time/value plane.
type AT []float64 // a 3x3 matrix, flattened by rows

// Internal constructor. Clients implicitely use this as a starting point for
// transform combinations.
func newAT() AT {
	m := make([]float64, 9)
	return m
}

func (m AT) set(row, col int, value float64) {
	m[row*3+col] = value
}

func (m AT) row(row int) []float64 {
	return m[row*3 : (row+1)*3]
}

func (m AT) col(col int) []float64 {
	c := make([]float64, 3)
	c[0] = m[col]
	c[1] = m[3+col]
	c[2] = m[6+col]
	return c
}

// Identity transform. Will transform a point onto itself.
func Identity() AT {
	m := newAT()
	m.set(0, 0, 1.0)
	m.set(1, 1, 1.0)
	m.set(2, 2, 1.0)
	return m
}

// Translation transform. Translate a point by (dt,dv).
func Translation(p Pair) AT {
	m := Identity()
	m.set(0, 2, p.X())
	m.set(1, 2, p.Y())
	return m
}

// Debug Stringer for an affine transform.
func (m AT) String() string {
	s := fmt.Sprintf("[%g,%g,%g|%g,%g,%g|%g,%g,%g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
	return s
}

// v1 × v2, v.n = [a,b,c]
func dotProd(vec1, vec2 []float64) float64 {
	return vec1[0]*vec2[0] + vec1[1]*vec2[1] + vec1[2]*vec2[2]
}

// Combine 2 affine transformation to a new one. The result applies m first,
// then n. Returns a new transformation without changing the argument(s).
func (m AT) Combine(n AT) AT {
	o := newAT()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			o.set(row, col, dotProd(n.row(row), m.col(col)))
		}
	}
	return o
}

func (m AT) multiplyVector(v []float64) []float64 {
	c := make([]float64, 3)
	c[0] = dotProd(m.row(0), v)
	c[1] = dotProd(m.row(1), v)
	c[2] = dotProd(m.row(2), v)
	return c
}

// Transform a point. The argument is unchanged and a new pair is returned.
func (m AT) Transform(p Pair) Pair {
	c := []float64{p.X(), p.Y(), 1.0}
	c = m.multiplyVector(c)
	return P(c[0], c[1])
}

// TransformTime applies the time-part of m to a time value.
func (m AT) TransformTime(t float64) float64 {
	return m[0]*t + m[2]
}
