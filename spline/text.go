package spline

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/keyframe/bezier"
	"gonum.org/v1/gonum/num/quat"
)

// MarshalText encodes s as a single line of text, listing its authored
// knots. Parse reads it back.
//
//	spline kind=double extrap=held,linear loop=off,0,0,0,0,0 knot t=0 type=bezier v=1 ls=0 ll=0 rs=0 rl=0.5
func (s *Spline) MarshalText() ([]byte, error) {
	var b bytes.Buffer
	lp := s.loop
	onoff := "off"
	if lp.Enabled {
		onoff = "on"
	}
	fmt.Fprintf(&b, "spline kind=%s extrap=%s,%s loop=%s,%s,%s,%d,%d,%s", s.kind,
		s.extrap.Left, s.extrap.Right, onoff, formatFloat(lp.ProtoStart), formatFloat(lp.ProtoEnd),
		lp.NumPreLoops, lp.NumPostLoops, formatFloat(lp.ValueOffset))
	for _, k := range s.AuthoredKnots() {
		fmt.Fprintf(&b, " knot t=%s type=%s v=%s", formatFloat(k.Time), k.typ, k.value.token())
		if k.dual {
			fmt.Fprintf(&b, " pre=%s", k.leftValue.token())
		}
		if k.Kind().arithmetic() {
			fmt.Fprintf(&b, " ls=%s ll=%s rs=%s rl=%s", k.leftSlope.token(), formatFloat(k.leftLen),
				k.rightSlope.token(), formatFloat(k.rightLen))
		}
	}
	return b.Bytes(), nil
}

// UnmarshalText replaces s with the spline encoded in text.
func (s *Spline) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// MustParse is like Parse, but panics on syntax errors.
func MustParse(text string) *Spline {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse reads a spline from the form written by MarshalText.
func Parse(text string) (*Spline, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 || tokens[0] != "spline" {
		return nil, fmt.Errorf("%w: missing 'spline' keyword", ErrSyntax)
	}
	s := New()
	i := 1
	for ; i < len(tokens) && tokens[i] != "knot"; i++ {
		key, val, err := splitField(tokens[i])
		if err != nil {
			return nil, err
		}
		if err = s.parseHeaderField(key, val); err != nil {
			return nil, err
		}
	}
	for i < len(tokens) {
		j := i + 1
		for j < len(tokens) && tokens[j] != "knot" {
			j++
		}
		k, err := parseKnot(s.kind, tokens[i+1:j])
		if err != nil {
			return nil, err
		}
		s.knots.Put(k.Time, k)
		i = j
	}
	if s.kind != KindNone && s.knots.Empty() {
		s.kind = KindNone
	}
	return s, nil
}

func (s *Spline) parseHeaderField(key, val string) error {
	switch key {
	case "kind":
		kind, ok := kindFromString(val)
		if !ok {
			return fmt.Errorf("%w: unknown kind %q", ErrSyntax, val)
		}
		s.kind = kind
	case "extrap":
		parts := strings.Split(val, ",")
		if len(parts) != 2 {
			return fmt.Errorf("%w: extrapolation %q", ErrSyntax, val)
		}
		for i, p := range parts {
			var m ExtrapolationMode
			switch p {
			case "held":
				m = ExtrapHeld
			case "linear":
				m = ExtrapLinear
			default:
				return fmt.Errorf("%w: extrapolation mode %q", ErrSyntax, p)
			}
			if i == 0 {
				s.extrap.Left = m
			} else {
				s.extrap.Right = m
			}
		}
	case "loop":
		lp, err := parseLoop(val)
		if err != nil {
			return err
		}
		s.loop = lp
	default:
		return fmt.Errorf("%w: unknown field %q", ErrSyntax, key)
	}
	return nil
}

func parseLoop(val string) (LoopParams, error) {
	var lp LoopParams
	parts := strings.Split(val, ",")
	if len(parts) != 6 || (parts[0] != "on" && parts[0] != "off") {
		return lp, fmt.Errorf("%w: loop parameters %q", ErrSyntax, val)
	}
	lp.Enabled = parts[0] == "on"
	var err [5]error
	lp.ProtoStart, err[0] = strconv.ParseFloat(parts[1], 64)
	lp.ProtoEnd, err[1] = strconv.ParseFloat(parts[2], 64)
	lp.NumPreLoops, err[2] = strconv.Atoi(parts[3])
	lp.NumPostLoops, err[3] = strconv.Atoi(parts[4])
	lp.ValueOffset, err[4] = strconv.ParseFloat(parts[5], 64)
	for _, e := range err {
		if e != nil {
			return lp, fmt.Errorf("%w: loop parameters %q: %v", ErrSyntax, val, e)
		}
	}
	if e := lp.Validate(); e != nil {
		return lp, fmt.Errorf("%w: %v", ErrSyntax, e)
	}
	return lp, nil
}

func parseKnot(kind Kind, fields []string) (Knot, error) {
	var t, ll, rl float64
	var typ Type
	var v, pre, ls, rs Value
	var err error
	seen := make(map[string]bool)
	for _, f := range fields {
		key, val, e := splitField(f)
		if e != nil {
			return Knot{}, e
		}
		seen[key] = true
		switch key {
		case "t":
			t, err = strconv.ParseFloat(val, 64)
		case "type":
			var ok bool
			if typ, ok = typeFromString(val); !ok {
				err = fmt.Errorf("unknown type %q", val)
			}
		case "v":
			v, err = parseValue(kind, val)
		case "pre":
			pre, err = parseValue(kind, val)
		case "ls":
			ls, err = parseValue(kind, val)
		case "rs":
			rs, err = parseValue(kind, val)
		case "ll":
			ll, err = strconv.ParseFloat(val, 64)
		case "rl":
			rl, err = strconv.ParseFloat(val, 64)
		default:
			err = fmt.Errorf("unknown field %q", key)
		}
		if err != nil {
			return Knot{}, fmt.Errorf("%w: knot field %q: %v", ErrSyntax, f, err)
		}
	}
	if !seen["t"] || !seen["v"] {
		return Knot{}, fmt.Errorf("%w: knot %v lacks time or value", ErrSyntax, fields)
	}
	k := NewKnot(t, v, typ)
	if seen["pre"] {
		k = NewDualKnot(t, pre, v, typ)
	}
	if seen["ls"] {
		if err = k.SetLeftTangent(ls, ll); err != nil {
			return Knot{}, fmt.Errorf("%w: knot at t=%g: %v", ErrSyntax, t, err)
		}
	}
	if seen["rs"] {
		if err = k.SetRightTangent(rs, rl); err != nil {
			return Knot{}, fmt.Errorf("%w: knot at t=%g: %v", ErrSyntax, t, err)
		}
	}
	return k, nil
}

func parseValue(kind Kind, s string) (Value, error) {
	switch kind {
	case KindDouble:
		d, err := strconv.ParseFloat(s, 64)
		return Double(d), err
	case KindVec3:
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return Value{}, fmt.Errorf("vector %q needs 3 components", s)
		}
		var c [3]float64
		for i, p := range parts {
			var err error
			if c[i], err = strconv.ParseFloat(p, 64); err != nil {
				return Value{}, err
			}
		}
		return Vec3(c[0], c[1], c[2]), nil
	case KindQuat:
		q, err := quat.Parse(s)
		return Quat(q), err
	case KindString:
		str, err := strconv.Unquote(s)
		return String(str), err
	case KindBool:
		b, err := strconv.ParseBool(s)
		return Bool(b), err
	}
	return Value{}, fmt.Errorf("knot value %q for spline of kind %s", s, kind)
}

func splitField(f string) (key, val string, err error) {
	i := strings.IndexByte(f, '=')
	if i <= 0 {
		return "", "", fmt.Errorf("%w: expected key=value, have %q", ErrSyntax, f)
	}
	return f[:i], f[i+1:], nil
}

// tokenize splits text at white space, keeping quoted strings intact.
func tokenize(text string) ([]string, error) {
	var tokens []string
	isSpace := func(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
	for i := 0; i < len(text); {
		if isSpace(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && !isSpace(text[j]) {
			if text[j] != '"' {
				j++
				continue
			}
			q, err := strconv.QuotedPrefix(text[j:])
			if err != nil {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, j)
			}
			j += len(q)
		}
		tokens = append(tokens, text[i:j])
		i = j
	}
	return tokens, nil
}

// String returns a multi-line description of s for debugging, including
// the control points of Bezier segments.
func (s *Spline) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "spline of %s, extrapolation %s/%s", s.kind, s.extrap.Left, s.extrap.Right)
	if s.loop.Enabled {
		fmt.Fprintf(&b, ", loop [%g,%g) -%d +%d offset %g", s.loop.ProtoStart, s.loop.ProtoEnd,
			s.loop.NumPreLoops, s.loop.NumPostLoops, s.loop.ValueOffset)
	}
	b.WriteString("\n")
	all := s.view().all()
	for i, k := range all {
		fmt.Fprintf(&b, "  %s", k.Knot)
		if k.tile != 0 {
			fmt.Fprintf(&b, " [repeats t=%g]", k.key)
		}
		b.WriteString("\n")
		if k.typ == Bezier && i+1 < len(all) {
			for _, seg := range bezierSegments(k.Knot, all[i+1].Knot) {
				fmt.Fprintf(&b, "    %s\n", bezier.AsString(seg))
			}
		}
	}
	return b.String()
}
