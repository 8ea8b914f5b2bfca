// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"sort"
)

// DefaultMinMatchLength is the minimum shared run length worth turning
// into a reference step. Below 32 bytes the per-step request overhead
// on the append protocol outweighs the bytes saved.
const DefaultMinMatchLength = 32

// Source is one previously uploaded file the planner may reference
// instead of re-sending bytes. ID is the file's name on the server;
// Data is its full content.
type Source struct {
	ID   string
	Data []byte
}

// Step is one element of a transfer plan. A literal step (SourceID
// empty) means target[TargetStart : TargetStart+Length) must be sent
// as raw bytes. A reference step means those bytes already exist on
// the server in file SourceID at offset SourceStart.
type Step struct {
	TargetStart int
	Length      int
	SourceID    string
	SourceStart int
}

// IsLiteral reports whether the step's bytes must be read from the new
// file itself rather than referenced from a previous upload.
func (s Step) IsLiteral() bool { return s.SourceID == "" }

// Build computes the transfer plan for target against the given
// candidate sources. The returned steps are contiguous, ascending by
// TargetStart, start at 0, and end exactly at len(target); applying
// them in order reconstructs target byte for byte.
//
// Matches are selected greedily, largest first, so the biggest shared
// runs win when matches from different candidates conflict. Ties are
// broken by source ID, then target position, then source position —
// a total order, so the caller's candidate ordering never changes the
// plan. A match is accepted only if its whole target range is still
// unclaimed within a single coverage interval; everything left
// unclaimed after selection becomes literal steps.
//
// A minLength of zero or below selects DefaultMinMatchLength. An empty
// target yields a nil plan; a non-empty target with no usable matches
// yields a single literal step spanning the whole file.
func Build(target []byte, sources []Source, minLength int) []Step {
	if minLength <= 0 {
		minLength = DefaultMinMatchLength
	}
	if len(target) == 0 {
		return nil
	}

	var matches []Match
	for _, src := range sources {
		matches = append(matches, findMatches(target, src.Data, src.ID, minLength)...)
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetStart != b.TargetStart {
			return a.TargetStart < b.TargetStart
		}
		return a.SourceStart < b.SourceStart
	})

	coverage := NewCoverage(len(target))
	var accepted []Match
	for _, m := range matches {
		stop := m.TargetStart + m.Length - 1
		if coverage.Contains(m.TargetStart, stop) {
			coverage.Remove(m.TargetStart, stop)
			accepted = append(accepted, m)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].TargetStart < accepted[j].TargetStart
	})

	// Walk the file front to back, emitting accepted matches as
	// reference steps and bridging every gap with a literal step.
	var steps []Step
	pos := 0
	next := 0
	for pos < len(target) {
		if next < len(accepted) && accepted[next].TargetStart == pos {
			m := accepted[next]
			steps = append(steps, Step{
				TargetStart: pos,
				Length:      m.Length,
				SourceID:    m.SourceID,
				SourceStart: m.SourceStart,
			})
			pos += m.Length
			next++
			continue
		}
		end := len(target)
		if next < len(accepted) {
			end = accepted[next].TargetStart
		}
		steps = append(steps, Step{TargetStart: pos, Length: end - pos})
		pos = end
	}
	return steps
}

// Validate checks the plan invariants against a file of the given
// length: steps contiguous and ascending from 0 to length, every step
// of positive length, reference steps with non-negative source
// offsets. A nil plan is valid only for length zero.
func Validate(steps []Step, length int) error {
	pos := 0
	for i, s := range steps {
		if s.TargetStart != pos {
			return fmt.Errorf("step %d starts at %d, want %d", i, s.TargetStart, pos)
		}
		if s.Length <= 0 {
			return fmt.Errorf("step %d has non-positive length %d", i, s.Length)
		}
		if !s.IsLiteral() && s.SourceStart < 0 {
			return fmt.Errorf("step %d has negative source offset %d", i, s.SourceStart)
		}
		pos += s.Length
	}
	if pos != length {
		return fmt.Errorf("plan covers %d bytes, want %d", pos, length)
	}
	return nil
}
