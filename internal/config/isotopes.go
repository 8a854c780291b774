// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IsotopeRow is one line of an isotope table: a molecule name, its
// database-specific name in each supported dbtype, natural abundance
// ratio and mass in amu (original_source/repack/utils/utilities.py's
// read_iso, generalized from "the one molecule this run cares about" to
// a reusable table reader).
type IsotopeRow struct {
	Molecule    string
	ExoMolName  string
	HitranID    string
	Abundance   float64
	Mass        float64
}

// ReadIsotopeTable reads a whitespace-delimited isotope table:
//
//	molecule exomol_name hitran_id abundance mass_amu
//
// Blank lines and lines starting with '#' are skipped.
func ReadIsotopeTable(path string) ([]IsotopeRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open isotope table %s: %w", path, err)
	}
	defer f.Close()

	var rows []IsotopeRow
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, fmt.Errorf("config: %s:%d: expected 5 fields, got %d", path, lineNo, len(fields))
		}
		abundance, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s:%d: abundance: %w", path, lineNo, err)
		}
		mass, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s:%d: mass: %w", path, lineNo, err)
		}
		rows = append(rows, IsotopeRow{
			Molecule:   fields[0],
			ExoMolName: fields[1],
			HitranID:   fields[2],
			Abundance:  abundance,
			Mass:       mass,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return rows, nil
}

// LookupIsotopes resolves abundance and mass for each isotope name in iso
// (in the given dbtype's naming scheme), for molecule mol, returning
// parallel slices indexed like iso.
func LookupIsotopes(rows []IsotopeRow, mol, dbtype string, iso []string) (abundance, mass []float64, err error) {
	abundance = make([]float64, len(iso))
	mass = make([]float64, len(iso))
	want := make(map[string]int, len(iso))
	for i, name := range iso {
		want[name] = i
	}
	found := 0
	for _, r := range rows {
		if r.Molecule != mol {
			continue
		}
		key := r.ExoMolName
		if dbtype == "hitran" {
			key = r.HitranID
		}
		if i, ok := want[key]; ok {
			abundance[i] = r.Abundance
			mass[i] = r.Mass
			found++
		}
	}
	if found != len(iso) {
		return nil, nil, fmt.Errorf("config: isotope table missing entries for molecule %q (found %d of %d)", mol, found, len(iso))
	}
	return abundance, mass, nil
}
