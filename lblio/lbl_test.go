// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lblio

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/opacitytools/repack/continuum"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.lbl")

	want := []Record{
		{Wavenumber: 1000.123456, ELow: 0, GF: 1.5e-3, IsoID: 1},
		{Wavenumber: 1000.987654, ELow: 512.0, GF: 2.25e-5, IsoID: 2},
		{Wavenumber: 2500.5, ELow: 1.0e4, GF: 9.9e-1, IsoID: 1},
	}

	w, err := CreateLBL(path)
	if err != nil {
		t.Fatalf("CreateLBL: %v", err)
	}
	for _, r := range want {
		if err := w.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if w.Count() != int64(len(want)) {
		t.Fatalf("Count = %d, want %d", w.Count(), len(want))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestRecordSize(t *testing.T) {
	if RecordSize != 28 {
		t.Fatalf("RecordSize = %d, want 28", RecordSize)
	}
}

func TestWriteContinuum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cia")

	g := continuum.NewGrid(1000, 1002, 1, []float64{300, 1000})
	g.Data[0][0] = 1.2345e-30
	g.Data[0][1] = 2.0e-29
	g.Finalize()

	if err := WriteContinuum(path, "H2-H2", g); err != nil {
		t.Fatalf("WriteContinuum: %v", err)
	}
}
