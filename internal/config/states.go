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

	"github.com/opacitytools/repack/transition"
)

// ReadStates reads an ExoMol states file: one row per energy level,
// fields "id energy degeneracy ..." (trailing fields, e.g. quantum
// numbers, are ignored), 1-based id on disk mapped to a 0-based index on
// return (original_source/repack/utils/utilities.py's read_states).
func ReadStates(path string) ([]transition.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open states file %s: %w", path, err)
	}
	defer f.Close()

	var states []transition.State
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			return nil, fmt.Errorf("config: %s:%d: expected at least 3 fields, got %d", path, lineNo, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("config: %s:%d: state id: %w", path, lineNo, err)
		}
		energy, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s:%d: energy: %w", path, lineNo, err)
		}
		degen, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("config: %s:%d: degeneracy: %w", path, lineNo, err)
		}
		if id-1 != len(states) {
			return nil, fmt.Errorf("config: %s:%d: state id %d out of sequence (expected %d)", path, lineNo, id, len(states)+1)
		}
		states = append(states, transition.State{Energy: energy, Degeneracy: uint32(degen)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return states, nil
}
