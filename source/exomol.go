// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opacitytools/repack/transition"
)

// ExoMolSource reads an ExoMol .trans file. Transition wavenumbers and
// lower-state energies are derived from upper/lower state ids looked up
// in a pre-loaded states table (spec.md §4.1).
type ExoMolSource struct {
	*fixedWidth
	states   []transition.State
	isoIndex uint8
}

// NewExoMol opens path as an ExoMol transitions file. states is the
// pre-loaded (E, g) table for the isotopologue this file belongs to,
// addressed by 1-based state id on disk; isoIndex is this file's index
// into the run's isotope sequence.
func NewExoMol(path string, states []transition.State, isoIndex uint8) (*ExoMolSource, error) {
	fw, err := openFixedWidth(path)
	if err != nil {
		return nil, err
	}
	return &ExoMolSource{fixedWidth: fw, states: states, isoIndex: isoIndex}, nil
}

// stateIDs parses the 1-based upper and lower state ids from row i.
func (s *ExoMolSource) stateIDs(i int) (iup, ilo int, err error) {
	row := s.row(i)
	if len(row) < 25 {
		return 0, 0, fmt.Errorf("source: %s: row %d shorter than expected (%d bytes)", s.path, i, len(row))
	}
	iup, err = atoi(row[0:12])
	if err != nil {
		return 0, 0, fmt.Errorf("source: %s: row %d: bad upper state id: %w", s.path, i, err)
	}
	ilo, err = atoi(row[13:25])
	if err != nil {
		return 0, 0, fmt.Errorf("source: %s: row %d: bad lower state id: %w", s.path, i, err)
	}
	return iup - 1, ilo - 1, nil
}

func (s *ExoMolSource) energy(id int, row int) (float64, error) {
	if id < 0 || id >= len(s.states) {
		return 0, fmt.Errorf("source: %s: row %d: state id %d out of range [0,%d)", s.path, row, id+1, len(s.states))
	}
	return s.states[id].Energy, nil
}

// Wavenumber implements Source.
func (s *ExoMolSource) Wavenumber(i int) (float64, error) {
	iup, ilo, err := s.stateIDs(i)
	if err != nil {
		return 0, err
	}
	eUp, err := s.energy(iup, i)
	if err != nil {
		return 0, err
	}
	eLo, err := s.energy(ilo, i)
	if err != nil {
		return 0, err
	}
	return eUp - eLo, nil
}

// Bisect implements Source.
func (s *ExoMolSource) Bisect(target float64, lo, hi int) (int, error) {
	return bisect(s.Wavenumber, s.Count(), target, lo, hi)
}

// ReadRange implements Source.
func (s *ExoMolSource) ReadRange(lo, hi int) ([]transition.Transition, error) {
	out := make([]transition.Transition, 0, hi-lo)
	for i := lo; i < hi; i++ {
		row := s.row(i)
		if len(row) < 36 {
			return nil, fmt.Errorf("source: %s: row %d shorter than expected (%d bytes)", s.path, i, len(row))
		}
		iup, err := atoi(row[0:12])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad upper state id: %w", s.path, i, err)
		}
		ilo, err := atoi(row[13:25])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad lower state id: %w", s.path, i, err)
		}
		a21, err := atof(row[26:36])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad Einstein A: %w", s.path, i, err)
		}
		iup--
		ilo--
		eUp, err := s.energy(iup, i)
		if err != nil {
			return nil, err
		}
		eLo, err := s.energy(ilo, i)
		if err != nil {
			return nil, err
		}
		wn := eUp - eLo
		if wn <= 0 {
			// Numeric anomaly: skip the row (spec.md §7, "Numeric"
			// taxonomy); the skip is not reported to the caller.
			continue
		}
		g := float64(s.states[ilo].Degeneracy)
		gf := g * a21 * transition.C1() / (8 * math.Pi * 100 * transition.SpeedOfLight * wn * wn)
		out = append(out, transition.Transition{
			Wavenumber: wn,
			ELow:       eLo,
			GF:         gf,
			IsoIndex:   s.isoIndex,
		})
	}
	return out, nil
}

func atoi(b []byte) (int, error) {
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

func atof(b []byte) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
