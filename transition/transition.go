// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transition defines the shared data model for line-transition
// repackaging: the Transition record itself, the physical constants used
// to derive line strength and Doppler width from it, and the isotope and
// partition-function types that parameterize those derivations.
package transition

import "math"

// Physical constants, carried bit-exact from the CGS definitions they are
// derived from (see GLOSSARY, spec.md).
const (
	// SpeedOfLight is c in m/s.
	SpeedOfLight = 2.99792458e8

	// BoltzmannK is k_B in J/K.
	BoltzmannK = 1.380649e-23

	// AMU is the atomic mass unit in kg.
	AMU = 1.66053906660e-27

	// C2 is the second radiation constant hc/k_B in cm·K.
	C2 = 1.4387770

	// C3 is the line-strength normalization, numerically π·e²/(m_e·c²) in
	// CGS, delivering cm·molecule^-1 integrated strength.
	C3 = 8.8528206e-13

	// N0 is Loschmidt's number at STP, in cm^-3.
	N0 = 2.6868e19

	// c1 is 8π·c, used by the gf derivation in package source. It is kept
	// here rather than folded into a single constant so that the formula
	// in source mirrors the original gf = g·A·C1/(8π·100·c·ν²) exactly.
	c1 = 8.0 * math.Pi * SpeedOfLight
)

// C1 returns 8π·c in the units the oscillator-strength formula expects.
func C1() float64 { return c1 }

// Transition is one spectral line: wavenumber, lower-state energy,
// weighted oscillator strength and the isotope it belongs to.
type Transition struct {
	Wavenumber float64 // cm^-1
	ELow       float64 // cm^-1
	GF         float64 // unitless
	IsoIndex   uint8   // index into the run's isotope sequence
}

// State is an ExoMol energy level, addressed by 1-based state id.
type State struct {
	Energy     float64 // cm^-1
	Degeneracy uint32
}

// Isotope describes one isotopologue relevant to a run.
type Isotope struct {
	Name      string
	Abundance float64 // fractional natural abundance ratio
	Mass      float64 // amu
}

// PFunc is a partition function Z(T), one per isotope. Construction
// (typically clamped-extrapolation linear interpolation over a tabulated
// sequence, see internal/partfunc) is a collaborator outside this
// package's concern; only the callable shape is specified here.
type PFunc func(t float64) float64

// DopplerHalfWidth returns the Doppler half-width α for a transition at
// wavenumber wn (cm^-1) of an isotope with mass m (amu) at temperature t
// (K): α = wn/(100·c) · √(2·k_B·t / (m·amu)).
func DopplerHalfWidth(wn, mass, t float64) float64 {
	return wn / (100 * SpeedOfLight) * math.Sqrt(2*BoltzmannK*t/(mass*AMU))
}

// LineStrength returns the normalized line strength S_j at temperature t
// for a transition with the given gf, lower-state energy, isotope
// abundance ratio and partition function value:
//
//	S = gf·r/Z · exp(-C2·ELow/t) · (1 - exp(-C2·wn/t))
func LineStrength(gf, elow, wn, abundance, z float64, t float64) float64 {
	return gf * abundance / z * math.Exp(-C2*elow/t) * (1 - math.Exp(-C2*wn/t))
}
