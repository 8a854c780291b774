// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partfunc builds transition.PFunc partition-function callables
// from tabulated (temperature, Z) pairs. Construction of Z(T) is an
// out-of-scope collaborator per spec.md §1 ("only the callable shape
// consumed is specified"); this package supplies one so a run is
// actually runnable end to end.
package partfunc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"

	"github.com/opacitytools/repack/transition"
)

// Table is a tabulated partition function: temp[i] maps to a value for
// each isotope.
type Table struct {
	Temp      []float64
	Isotopes  []string   // empty for a single-isotope (ExoMol per-file) table
	Values    [][]float64 // Values[isotope][i], parallel to Temp
}

// Build turns one isotope's tabulated column into a transition.PFunc
// using piecewise-linear interpolation (the Go analogue of
// original_source/repack/utils/utilities.py's
// scipy.interpolate.interp1d(kind='slinear')), clamped at the ends
// (spec.md: "extrapolation policy is a port decision" per §9-adjacent
// note) rather than mirroring interp1d's extrapolation error.
func Build(temp, values []float64) (transition.PFunc, error) {
	if len(temp) != len(values) {
		return nil, fmt.Errorf("partfunc: temp and values length mismatch: %d != %d", len(temp), len(values))
	}
	if len(temp) < 2 {
		return nil, fmt.Errorf("partfunc: need at least 2 samples, got %d", len(temp))
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(temp, values); err != nil {
		return nil, fmt.Errorf("partfunc: fit: %w", err)
	}

	lo, hi := temp[0], temp[len(temp)-1]
	return func(t float64) float64 {
		switch {
		case t <= lo:
			return pl.Predict(lo)
		case t >= hi:
			return pl.Predict(hi)
		default:
			return pl.Predict(t)
		}
	}, nil
}

// ReadExoMol reads an ExoMol-style single-isotope partition-function
// file: two whitespace-separated columns, temperature then Z, one row
// per line (read_pf with dbtype="exomol").
func ReadExoMol(path string) (temp, values []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("partfunc: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		tv, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("partfunc: %s:%d: temperature: %w", path, lineNo, err)
		}
		zv, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("partfunc: %s:%d: value: %w", path, lineNo, err)
		}
		temp = append(temp, tv)
		values = append(values, zv)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("partfunc: %s: %w", path, err)
	}
	return temp, values, nil
}

// ReadPyrat reads a "pyrat"-style multi-isotope partition-function file:
// an "@ISOTOPES" marker followed by a line naming each column, an "@DATA"
// marker, then
// one row per temperature holding that temperature followed by one Z
// value per isotope (read_pf with dbtype="pyrat").
func ReadPyrat(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("partfunc: open %s: %w", path, err)
	}
	defer f.Close()

	var isotopes []string
	sc := bufio.NewScanner(f)
	inData := false
	var tbl Table
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if inData {
			if line == "" {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != len(isotopes)+1 {
				return Table{}, fmt.Errorf("partfunc: %s: expected %d fields, got %d", path, len(isotopes)+1, len(fields))
			}
			t, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return Table{}, fmt.Errorf("partfunc: %s: temperature: %w", path, err)
			}
			tbl.Temp = append(tbl.Temp, t)
			for j := range isotopes {
				v, err := strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return Table{}, fmt.Errorf("partfunc: %s: isotope %s value: %w", path, isotopes[j], err)
				}
				tbl.Values[j] = append(tbl.Values[j], v)
			}
			continue
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "@ISOTOPES" {
			if !sc.Scan() {
				return Table{}, fmt.Errorf("partfunc: %s: @ISOTOPES with no following line", path)
			}
			isotopes = strings.Fields(strings.TrimSpace(sc.Text()))
			tbl.Isotopes = isotopes
			tbl.Values = make([][]float64, len(isotopes))
			continue
		}
		if line == "@DATA" {
			inData = true
			continue
		}
	}
	if err := sc.Err(); err != nil {
		return Table{}, fmt.Errorf("partfunc: %s: %w", path, err)
	}
	if isotopes == nil {
		return Table{}, fmt.Errorf("partfunc: %s: missing @ISOTOPES section", path)
	}
	return tbl, nil
}

// BuildAll builds a transition.PFunc for every isotope column in tbl.
func BuildAll(tbl Table) ([]transition.PFunc, error) {
	fns := make([]transition.PFunc, len(tbl.Values))
	for i, col := range tbl.Values {
		fn, err := Build(tbl.Temp, col)
		if err != nil {
			return nil, fmt.Errorf("partfunc: isotope %s: %w", tbl.Isotopes[i], err)
		}
		fns[i] = fn
	}
	return fns, nil
}
