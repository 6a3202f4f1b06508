package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/keyframe/baseline"
	"github.com/npillmayer/keyframe/spline"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ramp = "spline kind=double extrap=linear,held loop=off,0,0,0,0,0 " +
	"knot t=0 type=bezier v=0 ls=0 ll=0 rs=0 rl=3 knot t=10 type=linear v=20 ls=0 ll=3 rs=0 rl=0"

func storeBaseline(t *testing.T, dir string, precision int) string {
	opts := baseline.DefaultOptions()
	opts.Precision = precision
	b, err := baseline.FromSpline(spline.MustParse(ramp), "ease in and out", opts)
	require.NoError(t, err)
	name := filepath.Join(dir, "ramp.baseline")
	require.NoError(t, os.WriteFile(name, []byte(b.String()), 0o644))
	return name
}

func TestRunMatch(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	name := storeBaseline(t, t.TempDir(), 4)
	var stdout, stderr bytes.Buffer
	code := run([]string{name}, &stdout, &stderr)
	assert.Equal(t, exitOK, code, stderr.String())
	assert.Empty(t, stdout.String())
	stored, err := os.ReadFile(name)
	require.NoError(t, err)
	candidate, err := os.ReadFile(name + ".candidate")
	require.NoError(t, err)
	assert.Equal(t, string(stored), string(candidate))
}

func TestRunMismatch(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	name := storeBaseline(t, t.TempDir(), 4)
	text, err := os.ReadFile(name)
	require.NoError(t, err)
	tampered := strings.Replace(string(text), "10.0000 20.0000", "10.0000 20.5000", 1)
	require.NotEqual(t, string(text), tampered)
	require.NoError(t, os.WriteFile(name, []byte(tampered), 0o644))
	var stdout, stderr bytes.Buffer
	code := run([]string{"-context", "1", name}, &stdout, &stderr)
	assert.Equal(t, exitMismatch, code)
	assert.Contains(t, stdout.String(), "-10.0000 20.5000")
	assert.Contains(t, stdout.String(), "+10.0000 20.0000")
	_, err = os.Stat(name + ".candidate")
	assert.NoError(t, err)
}

func TestRunCorruptFile(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	name := storeBaseline(t, t.TempDir(), 4)
	text, err := os.ReadFile(name)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(name, append(text, []byte("1.0 2.00\n")...), 0o644))
	var stdout, stderr bytes.Buffer
	code := run([]string{name}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "ramp.baseline:")
	candidate, err := os.ReadFile(name + ".candidate")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(candidate), "ease in and out\n-----\n"))
	assert.Contains(t, string(candidate), "\n10.000000 20.000000\n")
}

func TestRunUsage(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitFailure, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage")
	stderr.Reset()
	assert.Equal(t, exitFailure, run([]string{"-precision", "99", "x"}, &stdout, &stderr))
	assert.Equal(t, exitFailure, run([]string{filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr))
}

func TestRecoverSections(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	creation, params := recoverSections("made\n-----\ndesc\n-----\nspline kind=none\n-----\nbroken\n")
	assert.Equal(t, "made", creation)
	assert.Equal(t, "spline kind=none", params)
	creation, params = recoverSections("-----\ndesc\n-----\nspline kind=none\n-----\n")
	assert.Equal(t, "", creation)
	assert.Equal(t, "spline kind=none", params)
	_, params = recoverSections("garbage")
	assert.Equal(t, "", params)
}

func TestFlagConfig(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("precision", 6, "")
	fs.String("max", "0", "")
	fs.String("min", "0", "")
	require.NoError(t, fs.Parse([]string{"-precision", "3", "-max", "0.25"}))
	var conf schuko.Configuration = newFlagConfig(fs)
	conf.InitDefaults()
	assert.True(t, conf.IsSet(baseline.KeyPrecision))
	assert.False(t, conf.IsSet(baseline.KeyMinSpacing))
	assert.False(t, conf.IsSet(baseline.KeyContext))
	assert.Equal(t, 3, conf.GetInt(baseline.KeyPrecision))
	assert.False(t, conf.GetBool(baseline.KeyMaxSpacing))
	assert.False(t, conf.IsInteractive())
	opts, err := baseline.OptionsFromConfig(conf)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Precision)
	assert.Equal(t, 0.25, opts.MaxSpacing)
	assert.Equal(t, 0.0, opts.MinSpacing)
}
