package baseline

import (
	"fmt"
	"math"
	"strconv"

	"github.com/npillmayer/keyframe/spline"
	"github.com/npillmayer/schuko"
)

// Options control the sampling of candidate baselines.
type Options struct {
	Precision  int     // fractional digits of sample lines
	MinSpacing float64 // see spline.Sample
	MaxSpacing float64 // see spline.Sample
	Tolerance  float64 // sampling tolerance, 0 for 10^-precision
	Start, End float64 // sampling interval, if Start < End
	Context    int     // lines of context for diffs
}

// DefaultOptions returns options for 6 digits of precision.
func DefaultOptions() Options {
	return Options{Precision: 6, Context: 3}
}

func (opts Options) tolerance() float64 {
	if opts.Tolerance > 0 {
		return opts.Tolerance
	}
	return math.Pow(10, -float64(opts.Precision))
}

func (opts Options) interval(s *spline.Spline) (t0, t1 float64, ok bool) {
	if opts.Start < opts.End {
		return opts.Start, opts.End, true
	}
	first, last, ok := s.TimeSpan()
	if !ok {
		return 0, 0, false
	}
	pad := (last - first) / 10
	if pad == 0 {
		pad = 1
	}
	return first - pad, last + pad, true
}

// Configuration keys for baseline options.
const (
	KeyPrecision  = "baseline.precision"
	KeyMinSpacing = "baseline.minspacing"
	KeyMaxSpacing = "baseline.maxspacing"
	KeyTolerance  = "baseline.tolerance"
	KeyStart      = "baseline.start"
	KeyEnd        = "baseline.end"
	KeyContext    = "baseline.context"
)

// OptionsFromConfig reads options from conf, starting with the defaults.
// Floating point options are given as strings.
func OptionsFromConfig(conf schuko.Configuration) (Options, error) {
	opts := DefaultOptions()
	if conf.IsSet(KeyPrecision) {
		opts.Precision = conf.GetInt(KeyPrecision)
		if opts.Precision < 0 || opts.Precision > 15 {
			return opts, fmt.Errorf("%s must be within [0,15], is %d", KeyPrecision, opts.Precision)
		}
	}
	if conf.IsSet(KeyContext) {
		opts.Context = conf.GetInt(KeyContext)
	}
	floats := []struct {
		key string
		dst *float64
	}{
		{KeyMinSpacing, &opts.MinSpacing},
		{KeyMaxSpacing, &opts.MaxSpacing},
		{KeyTolerance, &opts.Tolerance},
		{KeyStart, &opts.Start},
		{KeyEnd, &opts.End},
	}
	for _, f := range floats {
		if !conf.IsSet(f.key) {
			continue
		}
		x, err := strconv.ParseFloat(conf.GetString(f.key), 64)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = x
	}
	tracer().Debugf("baseline options %+v", opts)
	return opts, nil
}
