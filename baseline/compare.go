package baseline

import (
	"fmt"
	"math"
	"strings"

	"github.com/npillmayer/keyframe/spline"
	"github.com/pmezard/go-difflib/difflib"
)

// FromSpline creates a candidate baseline by sampling s with the given
// options. Every sample contributes its left point, the last one its right
// point as well. Cliffs therefore show up as two points with equal time.
//
// If opts does not fix an interval, s is sampled over the time span of its
// knots, widened by a tenth on either side to include extrapolation.
func FromSpline(s *spline.Spline, creation string, opts Options) (*Baseline, error) {
	if k := s.Kind(); k != spline.KindDouble && k != spline.KindNone {
		return nil, fmt.Errorf("%w: spline of kind %s", ErrNotScalar, k)
	}
	params, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	b := &Baseline{
		Creation:    creation,
		Description: strings.TrimRight(s.String(), "\n"),
		Params:      string(params),
		Precision:   opts.Precision,
	}
	t0, t1, ok := opts.interval(s)
	if !ok {
		return b, nil
	}
	samples, err := s.Sample(t0, t1, opts.MinSpacing, opts.MaxSpacing, opts.tolerance())
	if err != nil {
		return nil, err
	}
	for _, smp := range samples {
		v, _ := smp.LeftValue.Float()
		b.Samples = append(b.Samples, Point{Time: smp.LeftTime, Value: v})
	}
	if n := len(samples); n > 0 {
		v, _ := samples[n-1].RightValue.Float()
		b.Samples = append(b.Samples, Point{Time: samples[n-1].RightTime, Value: v})
	}
	tracer().Infof("sampled [%g,%g] into %d points", t0, t1, len(b.Samples))
	return b, nil
}

// Result is the outcome of comparing a candidate against a stored baseline.
type Result struct {
	Stored *Baseline
	// Merged is the stored baseline with every mismatching part replaced
	// by the candidate's.
	Merged *Baseline
	// Mismatches counts the replaced sample numbers and text sections.
	Mismatches int
}

// Match is a predicate: did the candidate agree with the stored baseline?
func (r Result) Match() bool {
	return r.Mismatches == 0
}

// Compare compares a candidate baseline against a stored one. Sample
// numbers are compared with a tolerance of 10^-precision of the stored
// baseline, text sections must be equal. The merged baseline keeps every
// token of the stored one which is within tolerance, so that a diff
// between stored and merged shows relevant changes only.
func Compare(stored, candidate *Baseline) Result {
	merged := *stored
	merged.Samples = append([]Point(nil), stored.Samples...)
	r := Result{Stored: stored, Merged: &merged}
	if !sameText(stored.Description, candidate.Description) {
		merged.Description = candidate.Description
		r.Mismatches++
	}
	if !sameText(stored.Params, candidate.Params) {
		merged.Params = candidate.Params
		r.Mismatches++
	}
	tol := math.Pow(10, -float64(stored.Precision))
	if len(stored.Samples) != len(candidate.Samples) {
		tracer().Infof("sample count differs: stored %d, candidate %d",
			len(stored.Samples), len(candidate.Samples))
		merged.Samples = append([]Point(nil), candidate.Samples...)
		r.Mismatches += max(len(stored.Samples), len(candidate.Samples))
		return r
	}
	for i, c := range candidate.Samples {
		p := &merged.Samples[i]
		if !within(p.Time, c.Time, tol) {
			p.Time = c.Time
			r.Mismatches++
		}
		if !within(p.Value, c.Value, tol) {
			p.Value = c.Value
			r.Mismatches++
		}
	}
	tracer().Debugf("comparison with tolerance %g found %d mismatches", tol, r.Mismatches)
	return r
}

// within compares numbers with the tolerance of a printed baseline, where
// rounding may add half a unit in the last place on either side.
func within(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*(1+1e-9)
}

func sameText(a, b string) bool {
	return strings.TrimRight(a, "\n") == strings.TrimRight(b, "\n")
}

// Diff renders the differences between stored and merged baseline as a
// unified diff with context lines of context.
func (r Result) Diff(name string, context int) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Stored.String()),
		B:        difflib.SplitLines(r.Merged.String()),
		FromFile: name,
		ToFile:   name + ".candidate",
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(diff)
}
