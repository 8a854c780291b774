// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package balance partitions a wavenumber window spanning one or more
// catalog Sources into chunks holding approximately equal total transition
// counts, by read-through binary search rather than loading the sources
// (spec.md §4.3).
package balance

import (
	"math"

	"modernc.org/mathutil"

	"github.com/opacitytools/repack/source"
)

// DefaultTolerance is the default fractional tolerance for the
// intermediate-boundary bisection (spec.md §4.3).
const DefaultTolerance = 0.01

// Plan is a Chunk Plan: Bounds[k][n] is the row index in source k at
// chunk boundary n, for n in [0, NumChunks]. Bounds[k][0] is the first
// in-window row for source k and Bounds[k][NumChunks] is one past its
// last in-window row (an exclusive bound, per spec.md §3: "C[k,K] =
// last_index_with_ν ≤ ν_max + 1").
type Plan struct {
	Bounds    [][]int
	NumChunks int
}

// Range returns the [lo, hi) row range for source k in chunk n.
func (p *Plan) Range(k, n int) (lo, hi int) {
	return p.Bounds[k][n], p.Bounds[k][n+1]
}

// Balance computes a Plan covering [wnMin, wnMax] across srcs so that each
// chunk holds approximately chunkSize transitions summed across all
// sources (spec.md §4.3).
func Balance(srcs []source.Source, wnMin, wnMax float64, chunkSize int, tol float64) (*Plan, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}

	starts := make([]int, len(srcs))
	ends := make([]int, len(srcs)) // exclusive
	total := 0
	for k, s := range srcs {
		lo, hi, err := source.InWindow(s, wnMin, wnMax)
		if err != nil {
			return nil, err
		}
		starts[k] = lo
		ends[k] = hi + 1
		total += ends[k] - starts[k]
	}

	numChunks := total/chunkSize + 1
	target := float64(total) / float64(numChunks)

	bounds := make([][]int, len(srcs))
	for k := range srcs {
		bounds[k] = make([]int, numChunks+1)
		bounds[k][0] = starts[k]
		bounds[k][numChunks] = ends[k]
	}

	if len(srcs) == 1 {
		lo, hi := starts[0], ends[0]
		for n := 0; n <= numChunks; n++ {
			bounds[0][n] = lo + (hi-lo)*n/numChunks
		}
		return &Plan{Bounds: bounds, NumChunks: numChunks}, nil
	}

	maxDepth := int(math.Ceil(math.Log2(float64(mathutil.Max(total, 2)))))
	// wn[n] holds the solved wavenumber boundary for chunk n; each
	// intermediate boundary's search narrows its lower bound to the
	// previous solved boundary rather than restarting from wnMin every
	// time (original_source/repack/repack.py's
	// `wnbalance(lbl, wnchunk[n-1], wnmax, target, zero)`).
	wn := make([]float64, numChunks+1)
	wn[0] = wnMin
	wn[numChunks] = wnMax

	for n := 1; n < numChunks; n++ {
		zero := 0
		for k := range srcs {
			zero += bounds[k][n-1]
		}
		guess, err := refineBoundary(srcs, wn[n-1], wnMax, target, zero, tol, maxDepth)
		if err != nil {
			return nil, err
		}
		wn[n] = guess
		for k, s := range srcs {
			idx, err := s.Bisect(guess, bounds[k][n-1], bounds[k][numChunks])
			if err != nil {
				return nil, err
			}
			bounds[k][n] = mathutil.Max(idx, bounds[k][n-1])
		}
	}

	return &Plan{Bounds: bounds, NumChunks: numChunks}, nil
}

// count approximates the number of transitions, summed across srcs, with
// wavenumber less than target (spec.md §4.3: count(ν) = Σ_k bs_k(ν)).
func count(srcs []source.Source, target float64) (int, error) {
	n := 0
	for _, s := range srcs {
		idx, err := s.Bisect(target, 0, s.Count()-1)
		if err != nil {
			return 0, err
		}
		n += idx
	}
	return n, nil
}

// refineBoundary performs the bisection refinement of spec.md §4.3:
// halve [lo, hi] until the transition count relative to zero is within
// tol of target, or maxDepth recursion-equivalent steps are exhausted
// (spec.md §4.3 "Termination"; kept iterative per spec.md §9).
func refineBoundary(srcs []source.Source, lo, hi, target float64, zero int, tol float64, maxDepth int) (float64, error) {
	best := 0.5 * (lo + hi)
	for depth := 0; depth < maxDepth; depth++ {
		mid := 0.5 * (lo + hi)
		best = mid
		n, err := count(srcs, mid)
		if err != nil {
			return 0, err
		}
		diff := float64(n-zero) - target
		if math.Abs(diff) <= tol*target {
			return mid, nil
		}
		if diff < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return best, nil
}
