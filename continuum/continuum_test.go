// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package continuum

import (
	"testing"

	"github.com/opacitytools/repack/transition"
)

func TestNewGridDimensions(t *testing.T) {
	g := NewGrid(1000, 1010, 1, []float64{300, 600, 900})
	if g.NWave() != 11 {
		t.Fatalf("NWave() = %d, want 11", g.NWave())
	}
	if len(g.Data[0]) != 3 {
		t.Fatalf("len(Data[0]) = %d, want 3", len(g.Data[0]))
	}
	if g.Wavenumber(0) != 1000 || g.WnMax() != 1010 {
		t.Fatalf("Wavenumber(0)/WnMax() = %v/%v, want 1000/1010", g.Wavenumber(0), g.WnMax())
	}
}

func TestAccumulateDistributesToTwoNearestPoints(t *testing.T) {
	g := NewGrid(1000, 1010, 1, []float64{300})
	chunk := []transition.Transition{
		{Wavenumber: 1000.25, ELow: 10, GF: 1e-2, IsoIndex: 0},
	}
	abundance := []float64{1.0}
	mass := []float64{18.0}
	z := []transition.PFunc{func(t float64) float64 { return 100 }}

	Accumulate(g, chunk, abundance, mass, z)

	if g.Data[0][0] <= 0 {
		t.Error("grid point 0 should have received weight (frac 0.75 at the lower neighbor)")
	}
	if g.Data[1][0] <= 0 {
		t.Error("grid point 1 should have received weight (frac 0.25 at the upper neighbor)")
	}
	if g.Data[2][0] != 0 {
		t.Error("grid point 2 is beyond the two nearest points and should be untouched")
	}
	// Lower point (frac=0.75 weight of (1-frac)) should get more than
	// the upper point (frac=0.25 weight).
	if g.Data[0][0] <= g.Data[1][0] {
		t.Errorf("Data[0][0] = %v should exceed Data[1][0] = %v (transition is closer to point 0)", g.Data[0][0], g.Data[1][0])
	}
}

func TestAccumulateSkipsOutOfWindow(t *testing.T) {
	g := NewGrid(1000, 1010, 1, []float64{300})
	chunk := []transition.Transition{
		{Wavenumber: 2000, ELow: 10, GF: 1e-2, IsoIndex: 0},
	}
	abundance := []float64{1.0}
	mass := []float64{18.0}
	z := []transition.PFunc{func(t float64) float64 { return 100 }}

	Accumulate(g, chunk, abundance, mass, z)
	for i := 0; i < g.NWave(); i++ {
		if g.Data[i][0] != 0 {
			t.Fatalf("grid point %d should be untouched by an out-of-window transition, got %v", i, g.Data[i][0])
		}
	}
}

func TestFinalizeScalesByLoschmidt(t *testing.T) {
	g := NewGrid(1000, 1001, 1, []float64{300})
	g.Data[0][0] = 2.0
	g.Finalize()
	want := 2.0 * transition.N0
	if g.Data[0][0] != want {
		t.Fatalf("Data[0][0] after Finalize = %v, want %v", g.Data[0][0], want)
	}
}
