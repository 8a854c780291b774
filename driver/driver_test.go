// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/opacitytools/repack/internal/config"
	"github.com/opacitytools/repack/lblio"
)

func writeHitranFixture(t *testing.T, path string, rows [][4]float64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create hitran fixture: %v", err)
	}
	defer f.Close()
	for _, r := range rows {
		iso, wn, a21, elow := int(r[0]), r[1], r[2], r[3]
		buf := make([]byte, 160)
		for i := range buf {
			buf[i] = ' '
		}
		copy(buf[2:3], fmt.Sprintf("%d", iso))
		copy(buf[3:15], fmt.Sprintf("%12.6f", wn))
		copy(buf[25:35], fmt.Sprintf("%10.3e", a21))
		copy(buf[45:55], fmt.Sprintf("%10.4f", elow))
		copy(buf[155:160], fmt.Sprintf("%5.1f", 3.0))
		f.Write(buf)
		f.Write([]byte("\n"))
	}
}

func TestRunEndToEndHitran(t *testing.T) {
	dir := t.TempDir()

	parPath := filepath.Join(dir, "02_00000-00010.par")
	writeHitranFixture(t, parPath, [][4]float64{
		{1, 1.0, 1.0e-2, 10},
		{1, 2.0, 1.0e-6, 20},
		{1, 5.0, 5.0e-2, 15},
		{1, 8.0, 1.0e-6, 25},
	})

	pfPath := filepath.Join(dir, "pf.dat")
	if err := os.WriteFile(pfPath, []byte("@ISOTOPES\n1\n\n@DATA\n300.0 100.0\n3000.0 400.0\n"), 0o644); err != nil {
		t.Fatalf("write pf fixture: %v", err)
	}

	isoPath := filepath.Join(dir, "isotopes.dat")
	if err := os.WriteFile(isoPath, []byte("CO2 626 1 0.984 44.0\n"), 0o644); err != nil {
		t.Fatalf("write isotope table: %v", err)
	}

	cfg := config.Config{
		LBLFiles:  []string{parPath},
		DBType:    "hitran",
		OutFile:   "unit",
		PFFile:    pfPath,
		IsoFile:   isoPath,
		ChunkSize: 1000000,
		TMin:      300, TMax: 3000, DTemp: 2700,
		WnMin: 0, WnMax: 10, DWn: 1,
		SThresh: 0.01,
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(wd)

	if err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}

	records, err := lblio.ReadAll("CO2_hitran_unit_lbl.dat")
	if err != nil {
		t.Fatalf("ReadAll lbl output: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("expected at least one strong transition written")
	}
	for i := 1; i < len(records); i++ {
		if records[i].Wavenumber < records[i-1].Wavenumber {
			t.Fatalf("lbl records not ordered by wavenumber at %d", i)
		}
	}

	if _, err := os.Stat("CO2_hitran_unit_continuum.dat"); err != nil {
		t.Fatalf("continuum output missing: %v", err)
	}
	if _, err := os.Stat("CO2_hitran_unit_chunks.db"); err != nil {
		t.Fatalf("chunk-statistics store missing: %v", err)
	}
}
