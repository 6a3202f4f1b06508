/*
Command splinebase checks splines against stored baseline files.

	splinebase [flags] file...

For every file, the spline is read from the parameter section and sampled
afresh. The result is written next to the stored file, with suffix
".candidate", and compared to it. Differences beyond the precision of the
stored file are printed as a unified diff. The exit code is 1 if any
baseline did not match, and 2 if a file could not be processed.

A candidate is written even for corrupt baseline files, as long as the
spline can still be recovered from them. Inspect it and rename it to
re-install the baseline.

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
OWNER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/keyframe/baseline"
	"github.com/npillmayer/keyframe/spline"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'keyframe.splinebase'
func tracer() tracing.Trace {
	return tracing.Select("keyframe.splinebase")
}

const (
	exitOK       = 0
	exitMismatch = 1
	exitFailure  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("splinebase", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Int("precision", 6, "fractional digits of sample lines, defaults to those of the stored file")
	fs.String("min", "0", "minimum sample spacing, 0 for automatic")
	fs.String("max", "0", "maximum sample spacing, 0 for unlimited")
	fs.String("tolerance", "0", "sampling tolerance, 0 for 10^-precision")
	fs.String("start", "0", "start of sampling interval")
	fs.String("end", "0", "end of sampling interval, if after start")
	fs.Int("context", 3, "lines of context in diffs")
	level := fs.String("trace", "error", "trace level: error, info or debug")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	setTraceLevel(*level)
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: splinebase [flags] file...")
		fs.PrintDefaults()
		return exitFailure
	}
	conf := newFlagConfig(fs)
	opts, err := baseline.OptionsFromConfig(conf)
	if err != nil {
		fmt.Fprintf(stderr, "splinebase: %v\n", err)
		return exitFailure
	}
	code := exitOK
	for _, name := range fs.Args() {
		c := check(name, opts, conf.IsSet(baseline.KeyPrecision), stdout, stderr)
		if c > code {
			code = c
		}
	}
	return code
}

func setTraceLevel(level string) {
	l := tracing.LevelError
	switch strings.ToLower(level) {
	case "info":
		l = tracing.LevelInfo
	case "debug":
		l = tracing.LevelDebug
	}
	for _, key := range []string{"keyframe.polyn", "keyframe.bezier",
		"keyframe.spline", "keyframe.baseline", "keyframe.splinebase"} {
		tracing.Select(key).SetTraceLevel(l)
	}
}

// check compares a single baseline file with a fresh candidate.
func check(name string, opts baseline.Options, fixedPrecision bool, stdout, stderr io.Writer) int {
	text, err := os.ReadFile(name)
	if err != nil {
		fmt.Fprintf(stderr, "splinebase: %v\n", err)
		return exitFailure
	}
	stored, readErr := baseline.Read(name, bytes.NewReader(text))
	var creation, params string
	if readErr != nil {
		fmt.Fprintf(stderr, "splinebase: %v\n", readErr)
		creation, params = recoverSections(string(text))
	} else {
		creation, params = stored.Creation, stored.Params
		if !fixedPrecision {
			opts.Precision = stored.Precision
		}
	}
	s, err := spline.Parse(params)
	if err != nil {
		fmt.Fprintf(stderr, "splinebase: %s: %v\n", name, err)
		return exitFailure
	}
	candidate, err := baseline.FromSpline(s, creation, opts)
	if err != nil {
		fmt.Fprintf(stderr, "splinebase: %s: %v\n", name, err)
		return exitFailure
	}
	if err = writeCandidate(name+".candidate", candidate); err != nil {
		fmt.Fprintf(stderr, "splinebase: %v\n", err)
		return exitFailure
	}
	if readErr != nil {
		return exitFailure
	}
	result := baseline.Compare(stored, candidate)
	if result.Match() {
		tracer().Infof("%s matches", name)
		return exitOK
	}
	diff, err := result.Diff(name, opts.Context)
	if err != nil {
		fmt.Fprintf(stderr, "splinebase: %s: %v\n", name, err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "%s: %d mismatches\n%s", name, result.Mismatches, diff)
	return exitMismatch
}

func writeCandidate(name string, b *baseline.Baseline) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = baseline.Write(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// recoverSections extracts creation text and parameter line from a
// baseline file which failed to parse.
func recoverSections(text string) (creation, params string) {
	sections := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"+baseline.Separator+"\n")
	if strings.HasPrefix(text, baseline.Separator+"\n") {
		sections = append([]string{""}, strings.Split(text[len(baseline.Separator)+1:],
			"\n"+baseline.Separator+"\n")...)
	}
	creation = sections[0]
	if len(sections) > 2 {
		params = strings.TrimSpace(strings.SplitN(sections[2], "\n", 2)[0])
	}
	return
}

// flagConfig presents explicitly set flags as configuration keys.
type flagConfig struct {
	fs  *flag.FlagSet
	set map[string]bool
}

var _ schuko.Configuration = flagConfig{}

var flagForKey = map[string]string{
	baseline.KeyPrecision:  "precision",
	baseline.KeyMinSpacing: "min",
	baseline.KeyMaxSpacing: "max",
	baseline.KeyTolerance:  "tolerance",
	baseline.KeyStart:      "start",
	baseline.KeyEnd:        "end",
	baseline.KeyContext:    "context",
}

func newFlagConfig(fs *flag.FlagSet) flagConfig {
	conf := flagConfig{fs: fs, set: make(map[string]bool)}
	fs.Visit(func(f *flag.Flag) {
		conf.set[f.Name] = true
	})
	return conf
}

func (c flagConfig) IsSet(key string) bool {
	return c.set[flagForKey[key]]
}

func (c flagConfig) GetString(key string) string {
	f := c.fs.Lookup(flagForKey[key])
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func (c flagConfig) GetInt(key string) int {
	n, err := strconv.Atoi(c.GetString(key))
	if err != nil {
		tracer().Errorf("configuration key %s: %v", key, err)
	}
	return n
}

func (c flagConfig) GetBool(key string) bool {
	b, _ := strconv.ParseBool(c.GetString(key))
	return b
}

// InitDefaults is a no-op, defaults are the flag defaults.
func (c flagConfig) InitDefaults() {}

func (c flagConfig) IsInteractive() bool { return false }
