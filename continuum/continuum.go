// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package continuum accumulates the aggregate opacity of weak
// (non-dominant) transitions onto a dense wavenumber × temperature grid
// (spec.md §4.5).
package continuum

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/opacitytools/repack/transition"
)

// Grid is the dense (wavenumber × temperature) continuum opacity array.
// It is allocated once at startup and only ever added to during a run
// (spec.md §3: "The Continuum Grid is monotonically non-decreasing in
// magnitude during a run").
type Grid struct {
	WnMin, Dwn   float64
	Temperatures []float64
	Data         [][]float64 // Data[wave][temp], in cm^2·molecule^-1 until Finalize
}

// NewGrid allocates a grid spanning [wnMin, wnMax] at step dwn for the
// given temperatures.
func NewGrid(wnMin, wnMax, dwn float64, temperatures []float64) *Grid {
	nWave := int((wnMax-wnMin)/dwn) + 1
	data := make([][]float64, nWave)
	for i := range data {
		data[i] = make([]float64, len(temperatures))
	}
	return &Grid{WnMin: wnMin, Dwn: dwn, Temperatures: temperatures, Data: data}
}

// NWave is the number of wavenumber grid points.
func (g *Grid) NWave() int { return len(g.Data) }

// Wavenumber returns the wavenumber at grid point i.
func (g *Grid) Wavenumber(i int) float64 { return g.WnMin + float64(i)*g.Dwn }

// WnMax returns the grid's upper wavenumber bound.
func (g *Grid) WnMax() float64 { return g.Wavenumber(g.NWave() - 1) }

// Finalize converts the grid from cm^2·molecule^-1 to cm^-1·amagat^-1 by
// scaling every row by Loschmidt's number (spec.md §4.5/§4.6).
func (g *Grid) Finalize() {
	for i := range g.Data {
		floats.Scale(transition.N0, g.Data[i])
	}
}

// Accumulate distributes the line strength of every weak transition in
// chunk onto the two nearest grid wavenumber points, for every
// temperature on the grid (spec.md §4.5). abundance and mass are indexed
// by transition.Transition.IsoIndex; z[iso] is that isotope's partition
// function. Transitions outside [WnMin, WnMax] are skipped.
func Accumulate(g *Grid, chunk []transition.Transition, abundance, mass []float64, z []transition.PFunc) {
	zVals := make([]float64, len(z))
	for ti, t := range g.Temperatures {
		for iso := range z {
			zVals[iso] = z[iso](t)
		}
		for _, tr := range chunk {
			if tr.Wavenumber < g.WnMin || tr.Wavenumber > g.WnMax() {
				continue
			}
			zv := zVals[tr.IsoIndex]
			if zv <= 0 {
				// Z(T) <= 0 would divide-by-zero in S; numeric
				// anomaly, skip (spec.md §7 "Numeric" taxonomy).
				continue
			}
			s := transition.C3 * transition.LineStrength(tr.GF, tr.ELow, tr.Wavenumber, abundance[tr.IsoIndex], zv, t)

			k := (tr.Wavenumber - g.WnMin) / g.Dwn
			k0 := int(math.Floor(k))
			frac := k - float64(k0)
			if k0 < 0 || k0+1 >= g.NWave() {
				continue
			}
			// The /Δν normalization here is the spec.md §4.5-mandated
			// deviation from the reference implementation, which omits
			// it (spec.md §9 Open Question 3).
			g.Data[k0][ti] += (1 - frac) * s / g.Dwn
			g.Data[k0+1][ti] += frac * s / g.Dwn
		}
	}
}
