// Package polyn is for arithmetic with polynomials of one variable,
// including closed-form root finding and inversion of monotone polynomials.
/*
BSD 3-Clause License

Copyright (c) 2017–21, Norbert Pillmayer.

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
   list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
   this list of conditions and the following disclaimer in the documentation
   and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
   contributors may be used to endorse or promote products derived from
   this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
package polyn

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/keyframe"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'keyframe.polyn'
func tracer() tracing.Trace {
	return tracing.Select("keyframe.polyn")
}

var (
	// ErrInvalidExponent indicates a term with an exponent < 1 in New.
	ErrInvalidExponent = errors.New("term exponent must be at least 1")
	// ErrNotBracketed indicates that Invert has been called for a value outside
	// of the polynomial's range on the given interval.
	ErrNotBracketed = errors.New("value is not bracketed by interval")
)

// X is a helper for quick construction of polynomials.
// It denotes a term
//
//	C⋅x^I
//
// I > 0
type X struct {
	I int     // exponent of x
	C float64 // coefficient
}

// New creates a polynomial, given the constant term and further terms.
//
// Use it as
//
//	polyn.New(8, polyn.X{2,5}, polyn.X{1,2/3} )
//
// to get
//
//	P(x) = 8 + 2/3x + 5x²
func New(c float64, tms ...X) (Polynomial, error) {
	p := NewConstantPolynomial(c)
	var err error
	for _, t := range tms {
		if t.I < 1 {
			err = fmt.Errorf("%w: skipping term with exponent %d", ErrInvalidExponent, t.I)
		} else {
			p.SetTerm(t.I, t.C)
		}
	}
	return p, err
}

// MustNew is like New, but panics on invalid terms.
func MustNew(c float64, tms ...X) Polynomial {
	p, err := New(c, tms...)
	if err != nil {
		panic(err)
	}
	return p
}

// Polynomial is a type for polynomials of one variable
//
//	c + a.1 x + a.2 x² + ... a.n xⁿ .
//
// We store the coefficients only. Index 0 is the constant term.
// We store the coefficients in a TreeMap (sorted map), keyed by exponent.
type Polynomial struct {
	Terms *treemap.Map
}

// NewConstantPolynomial creates a Polynomial consisting of just a constant term.
func NewConstantPolynomial(c float64) Polynomial {
	p := Polynomial{}
	p.checkTerms()
	p.Terms.Put(0, c) // initialize with constant term (at position 0)
	return p
}

// Cubic Bernstein basis polynomials in power form.
var bernstein = cubicBernsteinBasis()

func cubicBernsteinBasis() [4]Polynomial {
	u := MustNew(0, X{1, 1})  // u
	v := MustNew(1, X{1, -1}) // 1-u
	vv, uu := v.Multiply(v), u.Multiply(u)
	return [4]Polynomial{
		vv.Multiply(v),
		u.Multiply(vv).Scale(3),
		uu.Multiply(v).Scale(3),
		uu.Multiply(u),
	}
}

// FromBernstein converts the Bernstein coefficients of a cubic to power form.
//
//	B(u) = b0(1-u)³ + 3b1 u(1-u)² + 3b2 u²(1-u) + b3 u³
func FromBernstein(b0, b1, b2, b3 float64) Polynomial {
	return bernstein[0].Scale(b0).
		Add(bernstein[1].Scale(b1)).
		Add(bernstein[2].Scale(b2)).
		Add(bernstein[3].Scale(b3))
}

func (p *Polynomial) checkTerms() {
	if p.Terms == nil {
		p.Terms = treemap.NewWithIntComparator()
	}
}

// SetTerm sets the coefficient for a term a.i within a Polynomial.
// For i=0, sets the constant term.
func (p Polynomial) SetTerm(i int, scale float64) Polynomial {
	p.checkTerms()
	p.Terms.Put(i, scale)
	return p
}

// GetCoeffForTerm gets the coefficient for term # i.
//
// Example:
//
//	p = x + 3x²
//
// ⇒
//
//	coeff(2) = 3
func (p Polynomial) GetCoeffForTerm(i int) float64 {
	if p.Terms == nil {
		return 0.0
	}
	if sc, found := p.Terms.Get(i); found {
		return sc.(float64)
	}
	return 0.0
}

// Degree returns the highest exponent with a non-zero coefficient.
// The zero polynomial has degree 0.
func (p Polynomial) Degree() int {
	if p.Terms == nil {
		return 0
	}
	keys := p.Terms.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		if p.GetCoeffForTerm(keys[i].(int)) != 0 {
			return keys[i].(int)
		}
	}
	return 0
}

// CopyPolynomial makes a copy of a Polynomial.
func (p Polynomial) CopyPolynomial() Polynomial {
	p1 := NewConstantPolynomial(0.0)
	if p.Terms == nil {
		return p1
	}
	it := p.Terms.Iterator()
	for it.Next() {
		p1.SetTerm(it.Key().(int), it.Value().(float64))
	}
	return p1
}

// Internal method: add or subtract 2 polynomials. The high level methods
// are based on this one.
func (p Polynomial) addOrSub(p2 Polynomial, doAdd bool) Polynomial {
	p1 := p.CopyPolynomial()
	if p2.Terms == nil {
		return p1
	}
	it2 := p2.Terms.Iterator()
	for it2.Next() {
		pos2 := it2.Key().(int)
		scale2 := it2.Value().(float64)
		scale1 := p1.GetCoeffForTerm(pos2)
		if doAdd {
			scale1 += scale2
		} else {
			scale1 -= scale2
		}
		p1.SetTerm(pos2, scale1)
	}
	return p1
}

// Add adds two Polynomials. Returns a new Polynomial.
func (p Polynomial) Add(p2 Polynomial) Polynomial {
	return p.addOrSub(p2, true)
}

// Subtract subtracts two Polynomials. Returns a new Polynomial.
func (p Polynomial) Subtract(p2 Polynomial) Polynomial {
	return p.addOrSub(p2, false)
}

// Multiply multiplies two Polynomials. Returns a new Polynomial.
func (p Polynomial) Multiply(p2 Polynomial) Polynomial {
	p1 := NewConstantPolynomial(0.0)
	if p.Terms == nil || p2.Terms == nil {
		return p1
	}
	it := p.Terms.Iterator()
	for it.Next() {
		i, a := it.Key().(int), it.Value().(float64)
		it2 := p2.Terms.Iterator()
		for it2.Next() {
			j, b := it2.Key().(int), it2.Value().(float64)
			p1.SetTerm(i+j, p1.GetCoeffForTerm(i+j)+a*b)
		}
	}
	return p1
}

// Scale multiplies every coefficient by a. Returns a new Polynomial.
func (p Polynomial) Scale(a float64) Polynomial {
	p1 := p.CopyPolynomial()
	it := p1.Terms.Iterator()
	for it.Next() {
		p1.Terms.Put(it.Key(), it.Value().(float64)*a)
	}
	return p1
}

// Derivative returns p'.
func (p Polynomial) Derivative() Polynomial {
	d := NewConstantPolynomial(0.0)
	if p.Terms == nil {
		return d
	}
	it := p.Terms.Iterator()
	for it.Next() {
		i := it.Key().(int)
		if i > 0 {
			d.SetTerm(i-1, float64(i)*it.Value().(float64))
		}
	}
	return d
}

// Eval evaluates p at x (Horner scheme).
func (p Polynomial) Eval(x float64) float64 {
	n := p.Degree()
	y := p.GetCoeffForTerm(n)
	for i := n - 1; i >= 0; i-- {
		y = y*x + p.GetCoeffForTerm(i)
	}
	return y
}

// IsConstant checks wether a Polynomial is a constant, i.e. p = { c }?
// Returns the constant and a flag.
func (p Polynomial) IsConstant() (float64, bool) {
	return p.GetCoeffForTerm(0), p.Degree() == 0
}

// IsZero is a predicate: are all coefficients 0?
func (p Polynomial) IsZero() bool {
	c, isconst := p.IsConstant()
	return isconst && c == 0
}

// String creates a readable string representation for a Polynomial.
func (p Polynomial) String() string {
	return p.TraceString("x")
}

// TraceString creates a string representation for a Polynomial, using
// the given variable name. Coefficients below ε are printed as 0.
func (p Polynomial) TraceString(varname string) string {
	var buffer bytes.Buffer
	p.checkTerms()
	it := p.Terms.Iterator()
	for it.Next() {
		pos := it.Key().(int)
		scale := keyframe.Zap(it.Value().(float64))
		switch pos {
		case 0:
			buffer.WriteString(fmt.Sprintf("{ %g } ", scale))
		case 1:
			buffer.WriteString(fmt.Sprintf("{ %g %s } ", scale, varname))
		default:
			buffer.WriteString(fmt.Sprintf("{ %g %s^%d } ", scale, varname, pos))
		}
	}
	return buffer.String()
}
