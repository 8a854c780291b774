// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classify flags transitions in a merged, wavenumber-sorted chunk
// as strong or weak using the Doppler-width dominance rule of spec.md
// §4.4, evaluated at two reference temperatures and unioned.
package classify

import (
	"math"
	"sort"

	"github.com/biogo/store/interval"

	"github.com/opacitytools/repack/transition"
)

// coordScale discretizes wavenumbers (cm^-1) to the fixed-point integer
// coordinates interval.IntTree requires. Doppler half-widths at line
// densities relevant here are well above 1e-7 cm^-1, so this preserves
// enough precision for the overlap test while fitting a machine int.
const coordScale = 1e7

func toCoord(wn float64) int {
	return int(math.Round(wn * coordScale))
}

// Result holds the per-pass and unioned classification of a chunk.
type Result struct {
	Flag       []bool // true = strong, indexed like the input chunk
	StrongLow  int    // count flagged strong at tLow
	StrongHigh int    // count flagged strong at tHigh
}

// Classify flags chunk as strong/weak at tLow and tHigh and unions the two
// passes (spec.md §4.4). abundance and mass are indexed by
// transition.Transition.IsoIndex; zLow and zHigh are the partition
// function Z(tLow)/Z(tHigh) values, likewise indexed by isotope.
func Classify(chunk []transition.Transition, abundance, mass, zLow, zHigh []float64, tLow, tHigh, sthresh float64) (Result, error) {
	flagLow, err := pass(chunk, abundance, mass, zLow, tLow, sthresh, 1)
	if err != nil {
		return Result{}, err
	}
	flagHigh, err := pass(chunk, abundance, mass, zHigh, tHigh, sthresh, math.Sqrt(math.Pi))
	if err != nil {
		return Result{}, err
	}

	flag := make([]bool, len(chunk))
	var nLow, nHigh int
	for i := range chunk {
		if flagLow[i] {
			nLow++
		}
		if flagHigh[i] {
			nHigh++
		}
		flag[i] = flagLow[i] || flagHigh[i]
	}
	return Result{Flag: flag, StrongLow: nLow, StrongHigh: nHigh}, nil
}

// pass runs one temperature's dominance walk. dopplerDivisor is 1 for the
// low-temperature pass and √π for the high-temperature pass — the
// asymmetry spec.md §9 Open Question 1 preserves verbatim as reference
// behavior rather than "fixing".
func pass(chunk []transition.Transition, abundance, mass, z []float64, t, sthresh, dopplerDivisor float64) ([]bool, error) {
	n := len(chunk)
	dom := make([]float64, n)
	alpha := make([]float64, n)
	for i, tr := range chunk {
		zi := z[tr.IsoIndex]
		s := transition.LineStrength(tr.GF, tr.ELow, tr.Wavenumber, abundance[tr.IsoIndex], zi, t)
		a := transition.DopplerHalfWidth(tr.Wavenumber, mass[tr.IsoIndex], t)
		alpha[i] = a
		if a == 0 {
			dom[i] = 0
		} else {
			dom[i] = s / a / dopplerDivisor
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return dom[order[i]] > dom[order[j]] })

	flag := make([]bool, n)
	for i := range flag {
		flag[i] = true
	}

	var tree interval.IntTree
	for rank, j := range order {
		wnJ := chunk[j].Wavenumber
		alphaJ := alpha[j]
		domJ := dom[j]

		q := domNode{wn: wnJ, alpha: alphaJ}
		threshold := domJ / sthresh // sthresh==0 => +Inf, never dominated
		for _, hit := range tree.Get(q) {
			c := hit.(domNode)
			maxAlpha := math.Max(c.alpha, alphaJ)
			if math.Abs(c.wn-wnJ) <= maxAlpha && c.dom >= threshold {
				flag[j] = false
				break
			}
		}

		err := tree.Insert(domNode{idx: rank, wn: wnJ, alpha: alphaJ, dom: domJ}, true)
		if err != nil {
			return nil, err
		}
		// Re-adjust range augmentation after every insert so the next
		// query sees a correct tree; this trades some of the
		// amortized O(log m) bound for simplicity.
		tree.AdjustRanges()
	}

	return flag, nil
}

// domNode is both the interval.IntTree element and its own query shape,
// mirroring cmd/ins/main.go's subjectInterval / cmd/cull/main.go's
// subjectInterval pattern (insert processed items, then query overlap).
type domNode struct {
	idx          int
	wn, alpha, dom float64
}

func (d domNode) Overlap(b interval.IntRange) bool {
	lo, hi := toCoord(d.wn-d.alpha), toCoord(d.wn+d.alpha)
	return b.Start <= hi && lo <= b.End
}

func (d domNode) ID() uintptr { return uintptr(d.idx) }

func (d domNode) Range() interval.IntRange {
	return interval.IntRange{Start: toCoord(d.wn - d.alpha), End: toCoord(d.wn + d.alpha)}
}
