package polyn

import (
	"fmt"
	"math"
	"sort"
)

// Coefficients smaller than this, relative to the largest coefficient,
// do not raise the degree of a polynomial for root finding.
const degreeCutoff = 1e-12

// Roots sharing this distance are merged.
const rootMerge = 1e-9

// Number of sign-change probes for polynomials of degree > 3.
const probes = 64

// Roots finds the real roots of p within [lo,hi], sorted ascending.
// Polynomials up to degree 3 are solved in closed form, followed by a
// Newton polishing step. Higher degrees are bracketed by sign changes and
// bisected, which may miss roots of even multiplicity.
//
// The zero polynomial has no isolated roots and yields an empty slice.
func (p Polynomial) Roots(lo, hi float64) []float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	c := p.effectiveCoeffs()
	var cand []float64
	switch len(c) {
	case 0, 1:
		return nil
	case 2:
		cand = []float64{-c[0] / c[1]}
	case 3:
		cand = solveQuadratic(c[0], c[1], c[2])
	case 4:
		cand = solveCubic(c[0], c[1], c[2], c[3])
	default:
		cand = p.bracketRoots(lo, hi)
	}
	d := p.Derivative()
	roots := make([]float64, 0, len(cand))
	slack := rootMerge * math.Max(1, hi-lo)
	for _, r := range cand {
		r = polish(p, d, r)
		if math.IsNaN(r) || r < lo-slack || r > hi+slack {
			continue
		}
		roots = append(roots, math.Min(hi, math.Max(lo, r)))
	}
	sort.Float64s(roots)
	merged := roots[:0]
	for i, r := range roots {
		if i > 0 && r-merged[len(merged)-1] <= rootMerge {
			continue
		}
		merged = append(merged, r)
	}
	tracer().Debugf("roots of %s in [%g,%g] = %v", p.String(), lo, hi, merged)
	return merged
}

// effectiveCoeffs returns c[0..n] with negligible leading coefficients dropped.
func (p Polynomial) effectiveCoeffs() []float64 {
	n := p.Degree()
	c := make([]float64, n+1)
	maxc := 0.0
	for i := 0; i <= n; i++ {
		c[i] = p.GetCoeffForTerm(i)
		maxc = math.Max(maxc, math.Abs(c[i]))
	}
	if maxc == 0 {
		return nil
	}
	for len(c) > 1 && math.Abs(c[len(c)-1]) <= degreeCutoff*maxc {
		c = c[:len(c)-1]
	}
	return c
}

func polish(p, d Polynomial, x float64) float64 {
	for i := 0; i < 3; i++ {
		dx := d.Eval(x)
		if dx == 0 {
			break
		}
		xn := x - p.Eval(x)/dx
		if math.IsNaN(xn) || math.IsInf(xn, 0) || math.Abs(p.Eval(xn)) > math.Abs(p.Eval(x)) {
			break
		}
		x = xn
	}
	return x
}

func (p Polynomial) bracketRoots(lo, hi float64) []float64 {
	var roots []float64
	step := (hi - lo) / probes
	a, fa := lo, p.Eval(lo)
	for i := 1; i <= probes; i++ {
		b := lo + float64(i)*step
		fb := p.Eval(b)
		if fa == 0 {
			roots = append(roots, a)
		} else if fa*fb < 0 {
			roots = append(roots, bisect(p, a, b, fa))
		}
		a, fa = b, fb
	}
	if fa == 0 {
		roots = append(roots, hi)
	}
	return roots
}

func bisect(p Polynomial, a, b, fa float64) float64 {
	for i := 0; i < 100 && b-a > 1e-15; i++ {
		m := (a + b) / 2
		fm := p.Eval(m)
		if fm == 0 {
			return m
		}
		if fa*fm < 0 {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return (a + b) / 2
}

// solveQuadratic returns the real roots of c0 + c1 x + c2 x².
func solveQuadratic(c0, c1, c2 float64) []float64 {
	disc := c1*c1 - 4*c2*c0
	if disc < 0 {
		return nil
	}
	if disc == 0 {
		return []float64{-c1 / (2 * c2)}
	}
	// cancellation-free form, see Numerical Recipes 5.6
	q := -0.5 * (c1 + math.Copysign(math.Sqrt(disc), c1))
	r1 := q / c2
	if q == 0 {
		return []float64{r1}
	}
	return []float64{r1, c0 / q}
}

// solveCubic returns the real roots of c0 + c1 x + c2 x² + c3 x³,
// following Jim Blinn's "How to Solve a Cubic Equation".
func solveCubic(c0, c1, c2, c3 float64) []float64 {
	a := c2 / (3 * c3)
	b := c1 / (3 * c3)
	c := c0 / c3
	d0 := math.FMA(-a, a, b)
	d1 := math.FMA(-b, a, c)
	d2 := a*c - b*b
	disc := 4*d0*d2 - d1*d1
	de := math.FMA(-2*a, d0, d1)
	switch {
	case disc < 0:
		sq := math.Sqrt(-0.25 * disc)
		r := -0.5 * de
		t1 := math.Cbrt(r+sq) + math.Cbrt(r-sq)
		return []float64{t1 - a}
	case disc == 0:
		t1 := math.Copysign(math.Sqrt(-d0), de)
		return []float64{t1 - a, -2*t1 - a}
	}
	th := math.Atan2(math.Sqrt(disc), -de) / 3
	sin, cos := math.Sincos(th)
	ss3 := sin * math.Sqrt(3)
	t := 2 * math.Sqrt(-d0)
	return []float64{
		math.FMA(t, cos, -a),
		math.FMA(t, 0.5*(-cos+ss3), -a),
		math.FMA(t, 0.5*(-cos-ss3), -a),
	}
}

// Invert finds x within [lo,hi] with p(x) = y. p has to be monotone on
// [lo,hi]. Values of y slightly outside of p's range on [lo,hi] are clamped
// to the nearest interval end; values further away result in ErrNotBracketed.
//
// Invert uses Newton iteration, safeguarded by bisection.
func (p Polynomial) Invert(y, lo, hi float64) (float64, error) {
	q := p.Subtract(NewConstantPolynomial(y))
	flo, fhi := q.Eval(lo), q.Eval(hi)
	tol := 1e-9 * math.Max(1, math.Abs(y))
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if flo*fhi > 0 {
		if math.Abs(flo) <= tol && math.Abs(flo) <= math.Abs(fhi) {
			return lo, nil
		}
		if math.Abs(fhi) <= tol {
			return hi, nil
		}
		return 0, fmt.Errorf("%w: y=%g not within [%g,%g]", ErrNotBracketed, y, flo+y, fhi+y)
	}
	d := q.Derivative()
	x := lo + (hi-lo)*flo/(flo-fhi)
	for i := 0; i < 100; i++ {
		fx := q.Eval(x)
		if fx == 0 {
			return x, nil
		}
		if (fx < 0) == (flo < 0) {
			lo, flo = x, fx
		} else {
			hi = x
		}
		xn := math.NaN()
		if dx := d.Eval(x); dx != 0 {
			xn = x - fx/dx
		}
		if math.IsNaN(xn) || xn <= lo || xn >= hi {
			xn = (lo + hi) / 2
		}
		if math.Abs(xn-x) <= 1e-15 || hi-lo <= 1e-15 {
			return xn, nil
		}
		x = xn
	}
	tracer().Debugf("invert did not converge for y=%g, x=%g", y, x)
	return x, nil
}
