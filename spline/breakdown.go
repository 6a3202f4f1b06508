package spline

import (
	"fmt"
	"math"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/npillmayer/keyframe"
	"github.com/npillmayer/keyframe/bezier"
)

// BreakdownRequest asks for a knot to be inserted at Time. If Value is
// absent, the knot takes the current value of the curve.
type BreakdownRequest struct {
	Time  float64
	Type  Type
	Value Value
}

// Breakdown inserts a knot at time t without changing the shape of the
// curve. See BreakdownBatch.
func (s *Spline) Breakdown(t float64, typ Type, flat bool, tanLen float64) (Knot, error) {
	return s.BreakdownWithValue(t, typ, Value{}, flat, tanLen)
}

// BreakdownWithValue inserts a knot at time t with value v. The tangents of
// the new knot and its neighbours follow the current shape of the curve.
func (s *Spline) BreakdownWithValue(t float64, typ Type, v Value, flat bool,
	tanLen float64) (Knot, error) {
	//
	knots, err := s.BreakdownBatch([]BreakdownRequest{{Time: t, Type: typ, Value: v}}, flat, tanLen)
	if err != nil {
		return Knot{}, err
	}
	return knots[0], nil
}

// BreakdownBatch inserts knots at several times. All insertions are planned
// against the curve as it was before the call, then applied together.
//
// A new knot takes the value of the curve at its time, unless the request
// carries a value. Its tangents and the tangents of its neighbours are
// chosen to preserve the shape of the curve: Bezier segments are split,
// linear segments and linear extrapolation get tangents along the line.
// If flat is set, the slopes of the new knots are 0 and their tangent
// lengths are tanLen. Knots inserted into a held segment are held.
//
// Requests for times with an existing knot leave that knot unchanged.
// Requests within a loop repetition are mapped to the prototype. A knot
// inserted into the loop seam, after the last or before the first prototype
// knot, is copied into the outermost repetitions as well. These have no
// seam to split, so the curve changes there.
// The visible knots at the requested times are returned.
func (s *Spline) BreakdownBatch(reqs []BreakdownRequest, flat bool, tanLen float64) ([]Knot, error) {
	if tanLen < 0 {
		return nil, fmt.Errorf("%w: breakdown tangent length %g", ErrNegativeLength, tanLen)
	}
	if !keyframe.IsFinite(tanLen) {
		return nil, fmt.Errorf("%w: breakdown tangent length %g", ErrInvalidTangent, tanLen)
	}
	planned := make([]BreakdownRequest, 0, len(reqs))
	for _, r := range reqs {
		if !keyframe.IsFinite(r.Time) {
			return nil, fmt.Errorf("%w: breakdown at t=%g", ErrInvalidInterval, r.Time)
		}
		if !r.Value.IsNone() && s.kind != KindNone && r.Value.Kind() != s.kind {
			return nil, fmt.Errorf("%w: breakdown value %s at t=%g for spline of kind %s",
				ErrKindMismatch, r.Value, r.Time, s.kind)
		}
		p := s.toPrototype(r)
		if s.inSeam(p.Time) {
			tracer().Infof("breakdown at t=%g falls into the loop seam, outermost repetitions change", r.Time)
		}
		planned = append(planned, p)
	}
	planned = dedup(planned)
	b := breakdown{s: s, v: s.view(), flat: flat, tanLen: tanLen, edits: make(map[float64]Knot)}
	if err := b.plan(planned); err != nil {
		return nil, err
	}
	if len(b.edits) > 0 {
		tracer().Debugf("breakdown writes knots:\n%s", spew.Sdump(b.edits))
	}
	for _, k := range b.edits {
		s.put(k)
	}
	result := make([]Knot, len(reqs))
	v := s.view()
	for i, r := range reqs {
		if vk, ok := v.at(r.Time); ok {
			result[i] = vk.Knot
			continue
		}
		if k, ok := s.knots.Get(s.toPrototype(r).Time); ok {
			result[i] = k.(Knot).transformed(s.loop.transform(s.tileOf(r.Time)))
		}
	}
	return result, nil
}

// tileOf returns the loop repetition containing t, or 0.
func (s *Spline) tileOf(t float64) int {
	if !s.loop.active() || !s.loop.hides(t) {
		return 0
	}
	return int(math.Floor((t - s.loop.ProtoStart) / s.loop.Period()))
}

// toPrototype maps a request within a loop repetition to the prototype.
func (s *Spline) toPrototype(r BreakdownRequest) BreakdownRequest {
	j := s.tileOf(r.Time)
	if j == 0 {
		return r
	}
	m := s.loop.transform(-j)
	if d, ok := r.Value.Float(); ok {
		r.Value = Double(m.Transform(keyframe.P(r.Time, d)).Y())
	}
	r.Time = m.TransformTime(r.Time)
	return r
}

// inSeam is a predicate: is t a prototype time outside the span of the
// prototype knots, with repetitions on either side?
func (s *Spline) inSeam(t float64) bool {
	lp := s.loop
	if !lp.active() || lp.NumPreLoops+lp.NumPostLoops == 0 || !lp.inPrototype(t) {
		return false
	}
	proto := s.view().prototype()
	return len(proto) > 0 && (t < proto[0].Time || t > proto[len(proto)-1].Time)
}

// dedup sorts requests by time. For equal times the last request wins.
func dedup(reqs []BreakdownRequest) []BreakdownRequest {
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].Time < reqs[j].Time })
	out := reqs[:0]
	for _, r := range reqs {
		if len(out) > 0 && out[len(out)-1].Time == r.Time {
			out[len(out)-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

// breakdown collects the knots to write, keyed by authored time.
type breakdown struct {
	s      *Spline
	v      view
	flat   bool
	tanLen float64
	edits  map[float64]Knot
}

// region is a run of requests between the same pair of visible knots.
type region struct {
	p, n       vknot
	hasP, hasN bool
	reqs       []BreakdownRequest
}

func (b *breakdown) plan(reqs []BreakdownRequest) error {
	if b.s.IsEmpty() {
		kind := b.s.kind
		for _, r := range reqs {
			if r.Value.IsNone() {
				return fmt.Errorf("%w: breakdown at t=%g needs a value", ErrEmptySpline, r.Time)
			}
			if kind == KindNone {
				kind = r.Value.Kind()
			} else if r.Value.Kind() != kind {
				return fmt.Errorf("%w: breakdown value %s at t=%g", ErrKindMismatch, r.Value, r.Time)
			}
			k := NewKnot(r.Time, r.Value, r.Type)
			b.setTangents(&k, zeroOf(k.Kind()), zeroOf(k.Kind()), b.tanLen, b.tanLen)
			b.edits[k.Time] = k
		}
		return nil
	}
	var regions []*region
	for _, r := range reqs {
		if _, exists := b.v.at(r.Time); exists {
			continue
		}
		p, hasP := b.v.before(r.Time, false)
		n, hasN := b.v.after(r.Time, false)
		if l := len(regions); l > 0 && regions[l-1].hasP == hasP && regions[l-1].hasN == hasN &&
			regions[l-1].p.Time == p.Time && regions[l-1].n.Time == n.Time {
			regions[l-1].reqs = append(regions[l-1].reqs, r)
			continue
		}
		regions = append(regions, &region{p: p, n: n, hasP: hasP, hasN: hasN, reqs: []BreakdownRequest{r}})
	}
	for _, rg := range regions {
		switch {
		case rg.hasP && rg.hasN && rg.p.typ == Bezier:
			b.splitBezier(rg)
		case rg.hasP && rg.hasN && rg.p.typ == Held:
			b.insertHeld(rg)
		default:
			b.insertStraight(rg)
		}
	}
	return nil
}

// value returns the value for a new knot.
func (b *breakdown) value(r BreakdownRequest) Value {
	if !r.Value.IsNone() {
		return r.Value
	}
	v, _ := b.s.Eval(r.Time, Right)
	return v
}

// spacing returns the default tangent lengths of the i-th new knot of a
// region: a third of the distance to its neighbours.
func (b *breakdown) spacing(rg *region, i int) (left, right float64) {
	t := rg.reqs[i].Time
	left, right = math.NaN(), math.NaN()
	if i > 0 {
		left = (t - rg.reqs[i-1].Time) / 3
	} else if rg.hasP {
		left = (t - rg.p.Time) / 3
	}
	if i+1 < len(rg.reqs) {
		right = (rg.reqs[i+1].Time - t) / 3
	} else if rg.hasN {
		right = (rg.n.Time - t) / 3
	}
	if math.IsNaN(left) {
		left = right
	}
	if math.IsNaN(right) {
		right = left
	}
	if math.IsNaN(left) {
		left, right = b.tanLen, b.tanLen
	}
	return
}

// setTangents sets the tangents of a new knot. Flat breakdowns override
// slopes and lengths.
func (b *breakdown) setTangents(k *Knot, ls, rs Value, ll, rl float64) {
	if !k.Kind().arithmetic() {
		return
	}
	if b.flat {
		ls, rs = zeroOf(k.Kind()), zeroOf(k.Kind())
		ll, rl = b.tanLen, b.tanLen
	}
	if err := k.SetLeftTangent(ls, ll); err != nil {
		tracer().Errorf("breakdown at t=%g: %v", k.Time, err)
	}
	if err := k.SetRightTangent(rs, rl); err != nil {
		tracer().Errorf("breakdown at t=%g: %v", k.Time, err)
	}
}

// update modifies the authored knot behind a visible knot.
func (b *breakdown) update(vk vknot, f func(k *Knot) error) {
	k, ok := b.edits[vk.key]
	if !ok {
		stored, _ := b.s.knots.Get(vk.key)
		k = stored.(Knot)
	}
	if err := f(&k); err != nil {
		tracer().Errorf("breakdown next to t=%g: %v", vk.Time, err)
		return
	}
	b.edits[vk.key] = k
}

func (b *breakdown) add(k Knot) {
	tracer().Infof("breakdown inserts knot %s", k)
	b.edits[k.Time] = k
}

func (b *breakdown) insertHeld(rg *region) {
	for _, r := range rg.reqs {
		b.add(NewKnot(r.Time, b.value(r), Held))
	}
}

// insertStraight handles linear segments and extrapolation, where the
// curve is a line with a fixed slope.
func (b *breakdown) insertStraight(rg *region) {
	var slope Value
	switch {
	case rg.hasP && rg.hasN:
		slope = segmentDerivative(rg.p.Knot, rg.n.Knot, rg.reqs[0].Time)
	case rg.hasN:
		slope = b.s.extrapolationSlope(b.v, Left)
	default:
		slope = b.s.extrapolationSlope(b.v, Right)
	}
	var last Knot
	for i, r := range rg.reqs {
		k := NewKnot(r.Time, b.value(r), r.Type)
		ll, rl := b.spacing(rg, i)
		b.setTangents(&k, slope, slope, ll, rl)
		b.add(k)
		last = k
	}
	if !slope.Kind().arithmetic() {
		return
	}
	first := rg.reqs[0].Time
	if rg.hasP && !rg.hasN && rg.p.typ == Bezier && b.s.extrap.Right == ExtrapLinear {
		b.update(rg.p, func(k *Knot) error {
			return k.SetRightTangent(slope, (first-rg.p.Time)/3)
		})
	}
	if rg.hasN && last.typ == Bezier && (rg.hasP || b.s.extrap.Left == ExtrapLinear) {
		b.update(rg.n, func(k *Knot) error {
			return k.SetLeftTangent(slope, (rg.n.Time-last.Time)/3)
		})
	}
}

// splitBezier splits a Bezier segment at the requested times.
func (b *breakdown) splitBezier(rg *region) {
	times := make([]float64, len(rg.reqs))
	for i, r := range rg.reqs {
		times[i] = r.Time
	}
	segs := bezierSegments(rg.p.Knot, rg.n.Knot)
	pieces := make([][]bezier.Segment, len(segs))
	for c, seg := range segs {
		pieces[c] = seg.SplitAtTimes(times...)
	}
	kind := rg.p.Kind()
	post := func(i int) (Value, float64) {
		slopes := make([]float64, len(pieces))
		var length float64
		for c := range pieces {
			slopes[c], length = pieces[c][i].PostTangent()
		}
		return fromComponents(kind, slopes), length
	}
	pre := func(i int) (Value, float64) {
		slopes := make([]float64, len(pieces))
		var length float64
		for c := range pieces {
			slopes[c], length = pieces[c][i].PreTangent()
		}
		return fromComponents(kind, slopes), length
	}
	b.update(rg.p, func(k *Knot) error {
		rs, rl := post(0)
		return k.SetRightTangent(rs, rl)
	})
	var last Knot
	for i, r := range rg.reqs {
		k := NewKnot(r.Time, b.value(r), r.Type)
		ls, ll := pre(i)
		rs, rl := post(i + 1)
		b.setTangents(&k, ls, rs, ll, rl)
		b.add(k)
		last = k
	}
	if last.typ == Bezier {
		b.update(rg.n, func(k *Knot) error {
			ls, ll := pre(len(rg.reqs))
			return k.SetLeftTangent(ls, ll)
		})
	}
}
