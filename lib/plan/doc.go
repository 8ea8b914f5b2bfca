// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan computes transfer plans: given the bytes of a new file
// and the bytes of previously uploaded files, it produces an ordered,
// gapless, non-overlapping sequence of steps that reconstructs the new
// file on the server, reusing bytes the server already holds wherever
// possible.
//
// The package has three layers, each usable independently:
//
//   - Coverage: an inclusive interval set tracking which byte
//     positions of the file being planned are still unclaimed. Claims
//     are all-or-nothing against a single interval — a range that
//     straddles an already-claimed gap is rejected outright, because a
//     match cannot be split once discovered.
//
//   - Matching: pairwise sequence alignment between the new file and
//     one candidate file. The matcher finds the set of non-overlapping,
//     order-preserving maximal common runs (the matching-blocks step of
//     a classic diff), filtered to a minimum useful length. There is no
//     hashing or content-defined chunking involved — alignment is exact
//     and positional.
//
//   - Assembly: greedy largest-match-first selection across all
//     candidates, conflict resolution through the coverage set, and a
//     final gap-filling walk that turns accepted matches into reference
//     steps and everything else into literal steps.
//
// Planning is pure computation over in-memory byte slices. A plan is
// built fresh per call and carries no state between calls; independent
// files may be planned concurrently by independent calls.
package plan
