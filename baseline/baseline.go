package baseline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Separator is the line separating the sections of a baseline file.
const Separator = "-----"

// ErrNotScalar indicates a spline whose values cannot be written as
// sample points.
var ErrNotScalar = errors.New("baseline needs a spline of scalar values")

// Point is a sample point of a baseline.
type Point struct {
	Time, Value float64
}

// Baseline is the content of a baseline file.
type Baseline struct {
	Creation    string // optional, may span several lines
	Description string // may span several lines
	Params      string // single line
	Precision   int    // fractional digits of sample lines
	Samples     []Point
}

// ParseError reports malformed baseline input, with file name and line.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

var sampleLine = regexp.MustCompile(`^(-?\d+\.(\d+)) (-?\d+\.(\d+))$`)

// Write writes b in baseline file format.
func Write(w io.Writer, b *Baseline) error {
	bw := bufio.NewWriter(w)
	writeSection(bw, b.Creation)
	bw.WriteString(Separator + "\n")
	writeSection(bw, b.Description)
	bw.WriteString(Separator + "\n")
	writeSection(bw, b.Params)
	bw.WriteString(Separator + "\n")
	for _, p := range b.Samples {
		bw.WriteString(b.formatPoint(p) + "\n")
	}
	return bw.Flush()
}

func writeSection(w *bufio.Writer, text string) {
	if text == "" {
		return
	}
	w.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		w.WriteString("\n")
	}
}

// String returns b in baseline file format.
func (b *Baseline) String() string {
	var sb strings.Builder
	_ = Write(&sb, b)
	return sb.String()
}

func (b *Baseline) formatPoint(p Point) string {
	return formatNumber(p.Time, b.Precision) + " " + formatNumber(p.Value, b.Precision)
}

func formatNumber(x float64, precision int) string {
	return strconv.FormatFloat(x, 'f', precision, 64)
}

// Read reads a baseline file. name is used for error messages only.
// Errors are of type *ParseError.
func Read(name string, r io.Reader) (*Baseline, error) {
	var sections [4][]string
	section, lineno := 0, 0
	var samplesAt int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == Separator && section < 3 {
			section++
			if section == 3 {
				samplesAt = lineno + 1
			}
			continue
		}
		sections[section] = append(sections[section], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{File: name, Line: lineno, Msg: err.Error()}
	}
	if section < 3 {
		return nil, &ParseError{File: name, Line: lineno,
			Msg: fmt.Sprintf("expected 3 section separators, found %d", section)}
	}
	b := &Baseline{
		Creation:    strings.Join(sections[0], "\n"),
		Description: strings.Join(sections[1], "\n"),
	}
	switch len(sections[2]) {
	case 0:
	case 1:
		b.Params = sections[2][0]
	default:
		return nil, &ParseError{File: name, Line: samplesAt - len(sections[2]),
			Msg: fmt.Sprintf("parameter section has %d lines, expected one", len(sections[2]))}
	}
	b.Precision = -1
	for i, line := range sections[3] {
		p, prec, err := parseSample(line)
		if err != nil {
			return nil, &ParseError{File: name, Line: samplesAt + i, Msg: err.Error()}
		}
		if b.Precision >= 0 && prec != b.Precision {
			return nil, &ParseError{File: name, Line: samplesAt + i,
				Msg: fmt.Sprintf("precision %d differs from precision %d of previous lines", prec, b.Precision)}
		}
		b.Precision = prec
		b.Samples = append(b.Samples, p)
	}
	if b.Precision < 0 {
		b.Precision = 0
	}
	tracer().Debugf("read baseline %s with %d samples, precision %d", name, len(b.Samples), b.Precision)
	return b, nil
}

func parseSample(line string) (Point, int, error) {
	m := sampleLine.FindStringSubmatch(line)
	if m == nil {
		return Point{}, 0, fmt.Errorf("malformed sample line %q", line)
	}
	if len(m[2]) != len(m[4]) {
		return Point{}, 0, fmt.Errorf("time and value of %q differ in precision", line)
	}
	t, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, 0, err
	}
	v, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Point{}, 0, err
	}
	return Point{Time: t, Value: v}, len(m[2]), nil
}
