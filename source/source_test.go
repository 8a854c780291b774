// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/opacitytools/repack/transition"
)

func writeExoMolFixture(t *testing.T, path string, rows [][3]int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	for _, r := range rows {
		iup, ilo, _ := r[0], r[1], r[2]
		fmt.Fprintf(f, "%12d %12d %10.4e\n", iup, ilo, 1.2345e-3)
	}
}

func exomolStates() []transition.State {
	// 5 states, energies spaced 10 cm^-1 apart, id = index+1.
	return []transition.State{
		{Energy: 0, Degeneracy: 1},
		{Energy: 10, Degeneracy: 3},
		{Energy: 20, Degeneracy: 3},
		{Energy: 30, Degeneracy: 5},
		{Energy: 40, Degeneracy: 5},
	}
}

func TestExoMolWavenumberAndBisect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.trans")
	// (iup, ilo) pairs giving increasing wavenumbers: 10, 20, 30, 40.
	writeExoMolFixture(t, path, [][3]int{
		{2, 1, 0},
		{3, 1, 0},
		{4, 1, 0},
		{5, 1, 0},
	})

	src, err := NewExoMol(path, exomolStates(), 0)
	if err != nil {
		t.Fatalf("NewExoMol: %v", err)
	}
	defer src.Close()

	if src.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", src.Count())
	}
	wn, err := src.Wavenumber(0)
	if err != nil {
		t.Fatalf("Wavenumber(0): %v", err)
	}
	if wn != 10 {
		t.Errorf("Wavenumber(0) = %v, want 10", wn)
	}

	idx, err := src.Bisect(25, 0, src.Count()-1)
	if err != nil {
		t.Fatalf("Bisect: %v", err)
	}
	if idx != 1 && idx != 2 {
		t.Errorf("Bisect(25) = %d, want 1 or 2 (closest to 20 or 30)", idx)
	}

	trs, err := src.ReadRange(0, 4)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(trs) != 4 {
		t.Fatalf("ReadRange returned %d transitions, want 4", len(trs))
	}
	for i, tr := range trs {
		if tr.GF <= 0 {
			t.Errorf("transition %d: GF = %v, want > 0", i, tr.GF)
		}
	}
}

func TestInWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.trans")
	writeExoMolFixture(t, path, [][3]int{
		{2, 1, 0},
		{3, 1, 0},
		{4, 1, 0},
		{5, 1, 0},
	})

	src, err := NewExoMol(path, exomolStates(), 0)
	if err != nil {
		t.Fatalf("NewExoMol: %v", err)
	}
	defer src.Close()

	lo, hi, err := InWindow(src, 15, 35)
	if err != nil {
		t.Fatalf("InWindow: %v", err)
	}
	if lo < 0 || hi >= src.Count() || lo > hi {
		t.Fatalf("InWindow(15,35) = (%d,%d), out of range [0,%d)", lo, hi, src.Count())
	}
}

func buildHitranRow(iso int, wn, a21, elow, g float64) string {
	buf := make([]byte, 160)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf[2:3], fmt.Sprintf("%d", iso))
	copy(buf[3:15], fmt.Sprintf("%12.6f", wn))
	copy(buf[25:35], fmt.Sprintf("%10.3e", a21))
	copy(buf[45:55], fmt.Sprintf("%10.4f", elow))
	copy(buf[155:160], fmt.Sprintf("%5.1f", g))
	return string(buf) + "\n"
}

func TestHitranReadRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.par")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	fmt.Fprint(f, buildHitranRow(1, 1000.123456, 1.234e-2, 500.1234, 3.0))
	fmt.Fprint(f, buildHitranRow(1, 1001.654321, 2.345e-2, 600.4321, 5.0))
	f.Close()

	src, err := NewHitran(path)
	if err != nil {
		t.Fatalf("NewHitran: %v", err)
	}
	defer src.Close()

	if src.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", src.Count())
	}
	trs, err := src.ReadRange(0, 2)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(trs) != 2 {
		t.Fatalf("ReadRange returned %d, want 2", len(trs))
	}
	if trs[0].Wavenumber < 1000 || trs[0].Wavenumber > 1001 {
		t.Errorf("trs[0].Wavenumber = %v, want ~1000.123456", trs[0].Wavenumber)
	}
	if trs[0].IsoIndex != 0 {
		t.Errorf("trs[0].IsoIndex = %d, want 0 (isotope 1 remaps to 0)", trs[0].IsoIndex)
	}
}
