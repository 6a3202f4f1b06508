package spline

import (
	"math"
)

// vknot is a visible knot, together with its origin: the time of the
// authored knot it has been derived from and the loop repetition it
// belongs to (0 for authored knots).
type vknot struct {
	Knot
	key  float64
	tile int
}

// view presents the visible knots of a spline, expanding loop repetitions
// on the fly.
type view struct {
	s    *Spline
	loop bool
	rs   float64 // repeat range
	re   float64
}

func (s *Spline) view() view {
	v := view{s: s, loop: s.loop.active()}
	if v.loop {
		v.rs, v.re = s.loop.RepeatRange()
	}
	return v
}

func authored(k Knot) vknot {
	return vknot{Knot: k, key: k.Time}
}

// floor finds the authored knot with the largest time ≤ t (or < t).
func (v view) floor(t float64, inclusive bool) (Knot, bool) {
	if !inclusive {
		t = math.Nextafter(t, math.Inf(-1))
	}
	key, value := v.s.knots.Floor(t)
	if key == nil {
		return Knot{}, false
	}
	return value.(Knot), true
}

// ceiling finds the authored knot with the smallest time ≥ t (or > t).
func (v view) ceiling(t float64, inclusive bool) (Knot, bool) {
	if !inclusive {
		t = math.Nextafter(t, math.Inf(1))
	}
	key, value := v.s.knots.Ceiling(t)
	if key == nil {
		return Knot{}, false
	}
	return value.(Knot), true
}

// prototype returns the authored knots of the loop prototype.
func (v view) prototype() []Knot {
	var proto []Knot
	lp := v.s.loop
	k, ok := v.ceiling(lp.ProtoStart, true)
	for ok && k.Time < lp.ProtoEnd {
		proto = append(proto, k)
		k, ok = v.ceiling(k.Time, false)
	}
	return proto
}

// repetition returns knot k of the prototype, shifted into repetition j.
func (v view) repetition(k Knot, j int) vknot {
	if j == 0 {
		return authored(k)
	}
	return vknot{Knot: k.transformed(v.s.loop.transform(j)), key: k.Time, tile: j}
}

// tiles returns the repetitions worth searching for a neighbour of t.
func (v view) tiles(t float64) (from, to int) {
	lp := v.s.loop
	k := math.Floor((t - lp.ProtoStart) / lp.Period())
	k = math.Max(-float64(lp.NumPreLoops), math.Min(float64(lp.NumPostLoops), k))
	from, to = int(k)-1, int(k)+1
	if from < -lp.NumPreLoops {
		from = -lp.NumPreLoops
	}
	if to > lp.NumPostLoops {
		to = lp.NumPostLoops
	}
	return
}

// before finds the visible knot with the largest time ≤ t (or < t, if not
// inclusive).
func (v view) before(t float64, inclusive bool) (vknot, bool) {
	k, ok := v.floor(t, inclusive)
	if !v.loop {
		return authored(k), ok
	}
	if ok && k.Time >= v.rs && k.Time < v.re {
		k, ok = v.floor(v.rs, false)
	}
	best, found := authored(k), ok
	from, to := v.tiles(t)
	for _, p := range v.prototype() {
		for j := from; j <= to; j++ {
			r := v.repetition(p, j)
			if (r.Time < t || (inclusive && r.Time == t)) && (!found || r.Time > best.Time) {
				best, found = r, true
			}
		}
	}
	return best, found
}

// after finds the visible knot with the smallest time ≥ t (or > t, if not
// inclusive).
func (v view) after(t float64, inclusive bool) (vknot, bool) {
	k, ok := v.ceiling(t, inclusive)
	if !v.loop {
		return authored(k), ok
	}
	if ok && k.Time >= v.rs && k.Time < v.re {
		k, ok = v.ceiling(v.re, true)
	}
	best, found := authored(k), ok
	from, to := v.tiles(t)
	for _, p := range v.prototype() {
		for j := from; j <= to; j++ {
			r := v.repetition(p, j)
			if (r.Time > t || (inclusive && r.Time == t)) && (!found || r.Time < best.Time) {
				best, found = r, true
			}
		}
	}
	return best, found
}

func (v view) first() (vknot, bool) {
	return v.after(math.Inf(-1), true)
}

func (v view) last() (vknot, bool) {
	return v.before(math.Inf(1), true)
}

// at finds the visible knot at exactly time t.
func (v view) at(t float64) (vknot, bool) {
	k, ok := v.before(t, true)
	if !ok || k.Time != t {
		return vknot{}, false
	}
	return k, true
}

// all returns every visible knot, ordered by time.
func (v view) all() []vknot {
	var knots []vknot
	if !v.loop {
		v.s.knots.Each(func(_, value interface{}) {
			knots = append(knots, authored(value.(Knot)))
		})
		return knots
	}
	v.s.knots.Each(func(_, value interface{}) {
		if k := value.(Knot); k.Time < v.rs {
			knots = append(knots, authored(k))
		}
	})
	proto := v.prototype()
	lp := v.s.loop
	for j := -lp.NumPreLoops; j <= lp.NumPostLoops; j++ {
		for _, p := range proto {
			knots = append(knots, v.repetition(p, j))
		}
	}
	v.s.knots.Each(func(_, value interface{}) {
		if k := value.(Knot); k.Time >= v.re {
			knots = append(knots, authored(k))
		}
	})
	return knots
}

// between returns the visible knots with t0 < time < t1.
func (v view) between(t0, t1 float64) []vknot {
	var knots []vknot
	k, ok := v.after(t0, false)
	for ok && k.Time < t1 {
		knots = append(knots, k)
		k, ok = v.after(k.Time, false)
	}
	return knots
}
