// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import "sort"

// Match is a claim that target[TargetStart : TargetStart+Length) is
// byte-identical to source[SourceStart : SourceStart+Length) in the
// candidate file named SourceID. Length is always positive.
type Match struct {
	Length      int
	TargetStart int
	SourceStart int
	SourceID    string
}

// region is a pending alignment sub-problem: the matcher still has to
// search target[tlo:thi) against source[slo:shi).
type region struct {
	tlo, thi int
	slo, shi int
}

// findMatches returns every contiguous run of at least minLength bytes
// shared by target and source, as Matches tagged with sourceID.
//
// The algorithm is the matching-blocks step of a classic diff: find
// the longest common run in the current region, then queue the regions
// before and after it on both sides. The returned matches are
// therefore mutually non-overlapping within this one candidate and
// appear in increasing position order in both sequences. Runs shorter
// than minLength are discarded — below that size the fixed cost of a
// reference step exceeds the bytes it saves.
func findMatches(target, source []byte, sourceID string, minLength int) []Match {
	if len(target) == 0 || len(source) == 0 {
		return nil
	}

	// Positions of each byte value in source, ascending. Built once;
	// longestMatch narrows to the region bounds as it scans.
	var index [256][]int
	for j, b := range source {
		index[b] = append(index[b], j)
	}

	var matches []Match
	queue := []region{{tlo: 0, thi: len(target), slo: 0, shi: len(source)}}
	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		ti, si, n := longestMatch(target, &index, r)
		if n == 0 {
			continue
		}
		matches = append(matches, Match{
			Length:      n,
			TargetStart: ti,
			SourceStart: si,
			SourceID:    sourceID,
		})
		queue = append(queue,
			region{tlo: r.tlo, thi: ti, slo: r.slo, shi: si},
			region{tlo: ti + n, thi: r.thi, slo: si + n, shi: r.shi},
		)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].TargetStart < matches[j].TargetStart
	})

	kept := matches[:0]
	for _, m := range matches {
		if m.Length >= minLength {
			kept = append(kept, m)
		}
	}
	return kept
}

// longestMatch finds the longest run common to target[tlo:thi) and
// source[slo:shi), returning its start in each sequence and its
// length. Ties go to the run starting earliest in target, then
// earliest in source, so the result is deterministic.
//
// runs[j] holds the length of the common run ending at the current
// target position and source position j. Each target byte extends the
// runs ending at j-1 for every j where source[j] equals it.
func longestMatch(target []byte, index *[256][]int, r region) (bestT, bestS, bestLen int) {
	runs := make(map[int]int)
	for i := r.tlo; i < r.thi; i++ {
		next := make(map[int]int)
		for _, j := range index[target[i]] {
			if j < r.slo {
				continue
			}
			if j >= r.shi {
				break
			}
			k := runs[j-1] + 1
			next[j] = k
			if k > bestLen {
				bestT, bestS, bestLen = i-k+1, j-k+1, k
			}
		}
		runs = next
	}
	return bestT, bestS, bestLen
}
