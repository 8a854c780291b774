// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// FileInfo is what a run's Driver needs to know about one input catalog
// file beyond its path: its grouping suffix, molecule, isotope name, and
// (ExoMol only) the sibling states and partition-function files it
// implies (original_source/repack/utils/utilities.py's parse_file).
type FileInfo struct {
	Suffix   string // wavenumber-range grouping key; "" if ungrouped
	Molecule string
	Isotope  string // empty for HITRAN, where it is resolved from the PF file instead
	PFFile   string // implied sibling, ExoMol only
	SFile    string // implied states sibling, ExoMol only
}

var hitempMolID = map[string]string{
	"01": "H2O",
	"02": "CO2",
	"05": "CO",
	"08": "NO",
}

// exomolToken splits one hyphen-joined molecule-name token into its
// leading isotope-mass digits, element letters, and trailing stoichiometry
// count, e.g. "1H2" -> ("1", "H", 2).
var exomolToken = regexp.MustCompile(`^([0-9]+)([a-zA-Z]+)([0-9]*)$`)

// ParseFilename extracts grouping and molecule/isotope information from
// an input catalog file name, following the two dbtype-specific schemes
// of parse_file.
func ParseFilename(path, dbtype string) (FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("config: %s: %w", path, err)
	}
	dir, file := filepath.Split(abs)

	switch dbtype {
	case "exomol":
		return parseExoMolFilename(dir, file)
	case "hitran":
		return parseHitranFilename(file)
	default:
		return FileInfo{}, fmt.Errorf("config: %s: unknown dbtype %q", path, dbtype)
	}
}

func parseExoMolFilename(dir, file string) (FileInfo, error) {
	sfile := strings.Replace(file, "trans", "states", 1)
	var suffix string
	if strings.Count(sfile, "__") == 2 {
		i := strings.LastIndex(sfile, "__")
		j := strings.Index(sfile, ".")
		if j < i {
			return FileInfo{}, fmt.Errorf("config: %s: malformed exomol filename", file)
		}
		suffix = sfile[i:j]
		sfile = strings.Replace(sfile, suffix, "", 1)
	}
	sfile = dir + sfile
	pffile := strings.TrimSuffix(strings.Replace(sfile, "states", "pf", 1), ".bz2")

	stem := file
	if i := strings.Index(stem, "_"); i >= 0 {
		stem = stem[:i]
	}
	var molecule, isotope strings.Builder
	for _, tok := range strings.Split(stem, "-") {
		m := exomolToken.FindStringSubmatch(tok)
		if m == nil {
			return FileInfo{}, fmt.Errorf("config: %s: unrecognized molecule token %q", file, tok)
		}
		massDigits, element, countStr := m[1], m[2], m[3]
		n := 1
		if countStr != "" {
			fmt.Sscanf(countStr, "%d", &n)
		}
		molecule.WriteString(element)
		molecule.WriteString(countStr)
		last := massDigits[len(massDigits)-1:]
		isotope.WriteString(strings.Repeat(last, n))
	}

	return FileInfo{
		Suffix:   suffix,
		Molecule: molecule.String(),
		Isotope:  isotope.String(),
		PFFile:   pffile,
		SFile:    sfile,
	}, nil
}

func parseHitranFilename(file string) (FileInfo, error) {
	if len(file) < 2 {
		return FileInfo{}, fmt.Errorf("config: %s: too short for a HITRAN/HITEMP filename", file)
	}
	mol, ok := hitempMolID[file[0:2]]
	if !ok {
		return FileInfo{}, fmt.Errorf("config: %s: unrecognized HITEMP molecule id %q", file, file[0:2])
	}

	start := strings.Index(file, "_")
	end := strings.LastIndex(file, ".par")
	if start < 0 || end < 0 || end < start {
		return FileInfo{}, fmt.Errorf("config: %s: expected a '_...par' suffix segment", file)
	}
	suffix := file[start+1 : end]
	if i := strings.Index(suffix, "-"); i > 0 {
		suffix = zfill(suffix[:i], 5)
	}

	return FileInfo{Suffix: suffix, Molecule: mol}, nil
}

// zfill left-pads s with '0' to width n, as Python's str.zfill does.
func zfill(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
