// Package bezier deals with cubic Bezier segments of animation curves.
/*

A segment connects two knots of a curve in the time/value plane. In contrast
to paths in the plane, a segment of an animation curve must be a function
of time: for every time between its knots there is exactly one value. The
control points of a segment are therefore not set directly, but derived from
tangents given as (slope, length) pairs, where length is the extent of the
tangent along the time axis. Tangent lengths are non-negative and are
shortened proportionally when their sum would exceed the duration of the
segment. This keeps time monotone in the curve parameter.

Usage

Clients build a skeleton segment between two knots and attach tangents with
a builder pattern (package qualifiers omitted):

   sk := Between(P(0,0), P(3,3)).PostTangent(0, 1).PreTangent(2, 1)

A skeleton is then subjected to a call to FindControls(...)

   seg, err := FindControls(sk)

which validates the knots and tangents and returns a segment with control
points:

  (0,0) .. controls (1.0000,0.0000) and (2.0000,1.0000)
   .. (3,3)

Evaluating a segment at a given time first solves the cubic time(u) = t for
the curve parameter u, then evaluates the value polynomial at u. Derivatives
with respect to time follow from the chain rule.

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package bezier

import "fmt"

// AsString returns a segment including its control points as a (debugging)
// string.
//
// Example:
//
//	(0,0) .. controls (1.0000,0.0000) and (2.0000,1.0000)
//	  .. (3,3)
//
// The format is close to MetaFont's path notation.
func AsString(seg Segment) string {
	return fmt.Sprintf("%s .. controls %s and %s\n  .. %s",
		ptstring(seg.P0, false), ptstring(seg.P1, true),
		ptstring(seg.P2, true), ptstring(seg.P3, false))
}
