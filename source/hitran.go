// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"fmt"
	"math"

	"github.com/opacitytools/repack/transition"
)

// HitranSource reads a HITRAN/HITEMP .par file. Rows are self-contained:
// isotope id, wavenumber, Einstein A, lower-state energy and statistical
// weight are all present on the row (spec.md §4.1).
type HitranSource struct {
	*fixedWidth
}

// NewHitran opens path as a HITRAN/HITEMP .par file.
func NewHitran(path string) (*HitranSource, error) {
	fw, err := openFixedWidth(path)
	if err != nil {
		return nil, err
	}
	return &HitranSource{fixedWidth: fw}, nil
}

// Wavenumber implements Source.
func (s *HitranSource) Wavenumber(i int) (float64, error) {
	row := s.row(i)
	if len(row) < 15 {
		return 0, fmt.Errorf("source: %s: row %d shorter than expected (%d bytes)", s.path, i, len(row))
	}
	wn, err := atof(row[3:15])
	if err != nil {
		return 0, fmt.Errorf("source: %s: row %d: bad wavenumber: %w", s.path, i, err)
	}
	return wn, nil
}

// Bisect implements Source.
func (s *HitranSource) Bisect(target float64, lo, hi int) (int, error) {
	return bisect(s.Wavenumber, s.Count(), target, lo, hi)
}

// ReadRange implements Source.
func (s *HitranSource) ReadRange(lo, hi int) ([]transition.Transition, error) {
	out := make([]transition.Transition, 0, hi-lo)
	for i := lo; i < hi; i++ {
		row := s.row(i)
		if len(row) < 55 {
			return nil, fmt.Errorf("source: %s: row %d shorter than expected (%d bytes)", s.path, i, len(row))
		}
		rawIso, err := atoi(row[2:3])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad isotope id: %w", s.path, i, err)
		}
		wn, err := atof(row[3:15])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad wavenumber: %w", s.path, i, err)
		}
		a21, err := atof(row[25:35])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad Einstein A: %w", s.path, i, err)
		}
		elow, err := atof(row[45:55])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad lower energy: %w", s.path, i, err)
		}
		if len(row) < 156 {
			return nil, fmt.Errorf("source: %s: row %d: no statistical weight field (%d bytes)", s.path, i, len(row))
		}
		g, err := atof(row[155:])
		if err != nil {
			return nil, fmt.Errorf("source: %s: row %d: bad statistical weight: %w", s.path, i, err)
		}
		if wn <= 0 {
			// Numeric anomaly: skip (spec.md §7, "Numeric" taxonomy).
			continue
		}
		gf := g * a21 * transition.C1() / (8 * math.Pi * 100 * transition.SpeedOfLight * wn * wn)
		iso := uint8(((rawIso - 1) % 10 + 10) % 10)
		out = append(out, transition.Transition{
			Wavenumber: wn,
			ELow:       elow,
			GF:         gf,
			IsoIndex:   iso,
		})
	}
	return out, nil
}
