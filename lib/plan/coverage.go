// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package plan

// Interval is an inclusive range of byte positions. A file of length
// 10 with nothing claimed is the single interval {0, 9}.
type Interval struct {
	Start int
	Stop  int
}

// Coverage tracks which byte positions of the file being planned are
// still unclaimed. Internally it holds disjoint inclusive intervals
// sorted by start; Remove only ever shrinks or splits intervals, so
// both properties are preserved without re-sorting.
//
// Coverage is not safe for concurrent use. Each planning call owns
// its own instance.
type Coverage struct {
	intervals []Interval
}

// NewCoverage creates a Coverage over [0, length) with every position
// unclaimed. A non-positive length yields an empty set.
func NewCoverage(length int) *Coverage {
	c := &Coverage{}
	if length > 0 {
		c.intervals = []Interval{{Start: 0, Stop: length - 1}}
	}
	return c
}

// Contains reports whether [start, stop] lies entirely within a single
// unclaimed interval. A range whose bytes are all individually free
// but split across two intervals returns false: accepting it would
// require splitting the match that claimed it, which the planner does
// not support. Inverted or out-of-range queries return false.
func (c *Coverage) Contains(start, stop int) bool {
	if start > stop {
		return false
	}
	for _, iv := range c.intervals {
		if start >= iv.Start && stop <= iv.Stop {
			return true
		}
	}
	return false
}

// Remove claims [start, stop], splitting any interval that straddles
// one or both boundaries. Intervals entirely inside the range vanish;
// intervals entirely outside are kept unchanged. Removing a range that
// overlaps nothing is a no-op.
func (c *Coverage) Remove(start, stop int) {
	if start > stop {
		return
	}
	kept := make([]Interval, 0, len(c.intervals)+1)
	for _, iv := range c.intervals {
		if iv.Start < start {
			kept = append(kept, Interval{Start: iv.Start, Stop: min(start-1, iv.Stop)})
		}
		if iv.Stop > stop {
			kept = append(kept, Interval{Start: max(stop+1, iv.Start), Stop: iv.Stop})
		}
	}
	c.intervals = kept
}

// Intervals returns a copy of the remaining unclaimed intervals in
// ascending order.
func (c *Coverage) Intervals() []Interval {
	out := make([]Interval, len(c.intervals))
	copy(out, c.intervals)
	return out
}
