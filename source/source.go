// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source provides random-access readers over ExoMol and HITRAN
// line-transition catalog files. Each Source exposes the row count, a
// read-through binary search on wavenumber, and a batch decoder that turns
// a contiguous range of rows into transition.Transition values, without
// ever materializing the whole file in memory.
package source

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/opacitytools/repack/transition"
)

// Format identifies the catalog's row encoding.
type Format int

const (
	ExoMol Format = iota
	Hitran
)

func (f Format) String() string {
	switch f {
	case ExoMol:
		return "exomol"
	case Hitran:
		return "hitran"
	default:
		return "unknown"
	}
}

// Source is a per-file random-access line-transition reader.
type Source interface {
	// Count returns the number of rows (transitions) in the file.
	Count() int
	// Wavenumber returns the wavenumber (cm^-1) of row i without
	// decoding the rest of the row.
	Wavenumber(i int) (float64, error)
	// Bisect returns the index in [lo, hi] whose wavenumber is closest
	// to target, read-through (it calls Wavenumber at each step). A
	// target at or below row 0's wavenumber returns 0, and one at or
	// above the last row's returns Count()-1, whatever lo and hi are.
	Bisect(target float64, lo, hi int) (int, error)
	// ReadRange decodes rows [lo, hi) into transitions.
	ReadRange(lo, hi int) ([]transition.Transition, error)
	// Path returns the source file's path, for diagnostics.
	Path() string
	// Close releases the file handle and its memory mapping. Archives are
	// not extracted by this package, so no other file is removed.
	Close() error
}

// fixedWidth holds the memory-mapped bytes of a catalog file addressed by
// a uniform row length, or, when that invariant fails to hold, a one-pass
// index of row start offsets (spec.md §9: "a port must validate the
// invariant at open time; on violation, fall back to a one-pass index
// build rather than guess").
type fixedWidth struct {
	path string
	file *os.File
	data mmap.MMap

	rowLen int64 // 0 when rows are not uniform width
	nRows  int

	// offsets holds each row's start offset when rowLen == 0.
	offsets []int64
}

func openFixedWidth(path string) (*fixedWidth, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	first, err := br.ReadString('\n')
	if err != nil && len(first) == 0 {
		f.Close()
		return nil, fmt.Errorf("source: %s: failed to read first line: %w", path, err)
	}
	rowLen := int64(len(first))

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: stat %s: %w", path, err)
	}
	size := fi.Size()

	fw := &fixedWidth{path: path, file: f}
	if rowLen > 0 && size%rowLen == 0 {
		fw.rowLen = rowLen
		fw.nRows = int(size / rowLen)
		data, err := mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("source: mmap %s: %w", path, err)
		}
		fw.data = data
		return fw, nil
	}

	// Fixed-row invariant failed: fall back to a one-pass index build.
	offsets, err := indexRowOffsets(path)
	if err != nil {
		f.Close()
		return nil, err
	}
	fw.offsets = offsets
	fw.nRows = len(offsets) - 1
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: mmap %s: %w", path, err)
	}
	fw.data = data
	return fw, nil
}

// indexRowOffsets scans path once and returns the byte offset of every
// line start, plus a trailing sentinel equal to the file size.
func indexRowOffsets(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var offsets []int64
	var pos int64
	sc := bufio.NewReader(f)
	offsets = append(offsets, 0)
	for {
		line, err := sc.ReadString('\n')
		pos += int64(len(line))
		if len(line) > 0 {
			offsets = append(offsets, pos)
		}
		if err != nil {
			break
		}
	}
	return offsets, nil
}

func (fw *fixedWidth) Count() int { return fw.nRows }

func (fw *fixedWidth) Path() string { return fw.path }

// row returns the byte slice for row i, excluding its line terminator.
func (fw *fixedWidth) row(i int) []byte {
	var lo, hi int64
	if fw.rowLen != 0 {
		lo = int64(i) * fw.rowLen
		hi = lo + fw.rowLen
	} else {
		lo = fw.offsets[i]
		hi = fw.offsets[i+1]
	}
	b := fw.data[lo:hi]
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func (fw *fixedWidth) Close() error {
	var err error
	if fw.data != nil {
		err = fw.data.Unmap()
	}
	if cerr := fw.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// bisect implements the read-through binary search specified in
// spec.md §4.2: saturation at the absolute first/last row, iterative
// (not recursive, per spec.md §9) halving within [lo, hi], returning the
// higher index only when it is strictly closer (an exact tie returns lo).
func bisect(wn func(int) (float64, error), n int, target float64, lo, hi int) (int, error) {
	first, err := wn(0)
	if err != nil {
		return 0, err
	}
	if target <= first {
		return 0, nil
	}
	last, err := wn(n - 1)
	if err != nil {
		return 0, err
	}
	if target >= last {
		return n - 1, nil
	}

	for hi-lo > 1 {
		mid := (lo + hi) / 2
		wmid, err := wn(mid)
		if err != nil {
			return 0, err
		}
		if wmid > target {
			hi = mid
		} else {
			lo = mid
		}
	}

	wHi, err := wn(hi)
	if err != nil {
		return 0, err
	}
	wLo, err := wn(lo)
	if err != nil {
		return 0, err
	}
	if math.Abs(target-wHi) < math.Abs(target-wLo) {
		return hi, nil
	}
	return lo, nil
}

// InWindow widens [lo, hi] (obtained from a Bisect at wnMin, then a Bisect
// at wnMax bounded below by that lo) to the full set of rows overlapping [wnMin, wnMax],
// mirroring the edge-widening policy of the reference implementation.
//
// The right-widening comparison against wnMin (not wnMax) is preserved
// verbatim as observed reference behavior (spec.md §9, Open Question 2;
// original_source/repack/repack.py lines 223-228).
func InWindow(s Source, wnMin, wnMax float64) (lo, hi int, err error) {
	n := s.Count()
	lo, err = s.Bisect(wnMin, 0, n-1)
	if err != nil {
		return 0, 0, err
	}
	for lo > 0 {
		w, err := s.Wavenumber(lo - 1)
		if err != nil {
			return 0, 0, err
		}
		if w < wnMin {
			break
		}
		lo--
	}

	hi, err = s.Bisect(wnMax, lo, n-1)
	if err != nil {
		return 0, 0, err
	}
	for hi < n-1 {
		w, err := s.Wavenumber(hi + 1)
		if err != nil {
			return 0, 0, err
		}
		if w > wnMin {
			break
		}
		hi++
	}
	return lo, hi, nil
}
