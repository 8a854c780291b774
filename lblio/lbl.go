// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lblio implements the two output emitters of spec.md §4.6: an
// append-only packed binary line-by-line (LBL) stream, and a headered
// text continuum-opacity table.
package lblio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/opacitytools/repack/continuum"
)

// RecordSize is the on-disk size, in bytes, of one packed LBL record:
// little-endian (ν float64, E_low float64, gf float64, iso_id int32).
const RecordSize = 8 + 8 + 8 + 4

// Record is one kept (strong) line-transition, ready for emission. IsoID
// is the run's declared isotope id (not the in-run isotope index).
type Record struct {
	Wavenumber float64
	ELow       float64
	GF         float64
	IsoID      int32
}

// Writer appends packed LBL records to a binary stream, opened once and
// held for the lifetime of a run (spec.md §3 "Lifecycles").
type Writer struct {
	f     *os.File
	w     *bufio.Writer
	count int64
}

// CreateLBL opens path for append-only packed LBL output, truncating any
// existing content.
func CreateLBL(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lblio: create %s: %w", path, err)
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one packed record.
func (w *Writer) Append(r Record) error {
	var buf [RecordSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(r.Wavenumber))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(r.ELow))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(r.GF))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(r.IsoID))
	if _, err := w.w.Write(buf[:]); err != nil {
		return fmt.Errorf("lblio: write record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() int64 { return w.count }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// ReadAll reads every packed record from an LBL file, for diagnostics and
// tests (spec.md §8 "Round-trip of Record Source").
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Record
	var buf [RecordSize]byte
	r := bufio.NewReader(f)
	for {
		_, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("lblio: read record %d: %w", len(out), err)
		}
		out = append(out, Record{
			Wavenumber: math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])),
			ELow:       math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16])),
			GF:         math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
			IsoID:      int32(binary.LittleEndian.Uint32(buf[24:28])),
		})
	}
	return out, nil
}

// WriteContinuum writes the headered continuum text table (spec.md §4.6):
// @SPECIES, @TEMPERATURES and @DATA sections with the field widths the
// spec mandates.
func WriteContinuum(path, molecule string, g *continuum.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lblio: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "@SPECIES\n%s\n\n", molecule)
	fmt.Fprint(bw, "@TEMPERATURES\n        ")
	for _, t := range g.Temperatures {
		fmt.Fprintf(bw, " %10.0f", t)
	}
	fmt.Fprint(bw, "\n\n")
	fmt.Fprint(bw, "# Wavenumber in cm-1, CIA coefficients in cm-1 amagat-1:\n")
	fmt.Fprint(bw, "@DATA\n")
	for i := 0; i < g.NWave(); i++ {
		fmt.Fprintf(bw, " %12.6f ", g.Wavenumber(i))
		for _, v := range g.Data[i] {
			fmt.Fprintf(bw, " %10.4e", v)
		}
		fmt.Fprint(bw, "\n")
	}
	return bw.Flush()
}
