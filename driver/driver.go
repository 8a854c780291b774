// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver implements the Driver of spec.md §4.7: it groups input
// catalog files by wavenumber-range suffix, and for each group in turn
// plans, classifies and accumulates its chunks, emitting a packed LBL
// stream and a continuum text table (original_source/repack/repack.py's
// top-level repack() function).
package driver

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/opacitytools/repack/continuum"
	"github.com/opacitytools/repack/internal/chunkstore"
	"github.com/opacitytools/repack/internal/config"
	"github.com/opacitytools/repack/internal/partfunc"
	"github.com/opacitytools/repack/lblio"
	"github.com/opacitytools/repack/source"
	"github.com/opacitytools/repack/transition"
)

// Run executes one end-to-end repackaging pass: parse and group the
// configured catalog files, build the isotope/partition-function tables,
// then plan, classify and accumulate every chunk of every group.
func Run(cfg config.Config) error {
	infos := make([]config.FileInfo, len(cfg.LBLFiles))
	mol := ""
	for i, path := range cfg.LBLFiles {
		fi, err := config.ParseFilename(path, cfg.DBType)
		if err != nil {
			return err
		}
		if i == 0 {
			mol = fi.Molecule
		} else if fi.Molecule != mol {
			return fmt.Errorf("driver: all input files must be the same molecule: %q != %q", fi.Molecule, mol)
		}
		infos[i] = fi
	}

	isotopes, isoIndex, zFuncs, statesPerIso, err := resolveIsotopes(cfg, infos)
	if err != nil {
		return err
	}

	isoRows, err := config.ReadIsotopeTable(cfg.IsoFile)
	if err != nil {
		return err
	}
	abundance, mass, err := config.LookupIsotopes(isoRows, mol, cfg.DBType, isotopes)
	if err != nil {
		return err
	}

	isotopeIDs := make([]int32, len(isotopes))
	for j, name := range isotopes {
		id, err := strconv.Atoi(name)
		if err != nil {
			return fmt.Errorf("driver: isotope name %q is not an integer id: %w", name, err)
		}
		isotopeIDs[j] = int32(id)
	}

	ntemp := int((cfg.TMax-cfg.TMin)/cfg.DTemp) + 1
	temperatures := make([]float64, ntemp)
	for i := range temperatures {
		if ntemp == 1 {
			temperatures[i] = cfg.TMin
		} else {
			temperatures[i] = cfg.TMin + float64(i)*(cfg.TMax-cfg.TMin)/float64(ntemp-1)
		}
	}
	grid := continuum.NewGrid(cfg.WnMin, cfg.WnMax, cfg.DWn, temperatures)

	zLow := make([]float64, len(zFuncs))
	zHigh := make([]float64, len(zFuncs))
	for j, z := range zFuncs {
		zLow[j] = z(cfg.TMin)
		zHigh[j] = z(cfg.TMax)
	}

	lblPath := fmt.Sprintf("%s_%s_%s_lbl.dat", mol, cfg.DBType, cfg.OutFile)
	contPath := fmt.Sprintf("%s_%s_%s_continuum.dat", mol, cfg.DBType, cfg.OutFile)
	storePath := fmt.Sprintf("%s_%s_%s_chunks.db", mol, cfg.DBType, cfg.OutFile)

	lblw, err := lblio.CreateLBL(lblPath)
	if err != nil {
		return err
	}
	defer lblw.Close()

	cstore, err := chunkstore.Create(storePath)
	if err != nil {
		return err
	}
	defer cstore.Close()

	groups := groupBySuffix(infos)
	suffixes := make([]string, 0, len(groups))
	for s := range groups {
		suffixes = append(suffixes, s)
	}
	sort.Strings(suffixes)

	for _, suffix := range suffixes {
		idxs := groups[suffix]
		srcs := make([]source.Source, len(idxs))
		for k, i := range idxs {
			s, err := openSource(cfg, infos[i], isoIndex, i, statesPerIso)
			if err != nil {
				return err
			}
			srcs[k] = s
		}

		err := runGroup(groupInput{
			suffix:       suffix,
			srcs:         srcs,
			cfg:          cfg,
			abundance:    abundance,
			mass:         mass,
			zFuncs:       zFuncs,
			zLow:         zLow,
			zHigh:        zHigh,
			isotopeIDs:   isotopeIDs,
			grid:         grid,
			lblw:         lblw,
			cstore:       cstore,
		})

		for _, s := range srcs {
			s.Close()
		}
		if err != nil {
			return fmt.Errorf("driver: group %q: %w", suffix, err)
		}
	}

	grid.Finalize()
	if err := lblio.WriteContinuum(contPath, mol, grid); err != nil {
		return err
	}

	log.Printf("kept a total of %d line transitions in %s", lblw.Count(), lblPath)
	return nil
}

func groupBySuffix(infos []config.FileInfo) map[string][]int {
	groups := make(map[string][]int)
	for i, fi := range infos {
		groups[fi.Suffix] = append(groups[fi.Suffix], i)
	}
	return groups
}

func openSource(cfg config.Config, fi config.FileInfo, isoIndex map[string]int, fileIdx int, statesPerIso [][]transition.State) (source.Source, error) {
	path := cfg.LBLFiles[fileIdx]
	switch cfg.DBType {
	case "exomol":
		j := isoIndex[fi.Isotope]
		return source.NewExoMol(path, statesPerIso[j], uint8(j))
	case "hitran":
		return source.NewHitran(path)
	default:
		return nil, fmt.Errorf("driver: unknown dbtype %q", cfg.DBType)
	}
}

// resolveIsotopes builds the run's master isotope list, each input
// file's index into it (exomol only; hitran rows carry their own isotope
// index), the per-isotope partition functions, and (exomol only) each
// isotope's states table (original_source/repack/repack.py's isotope/Z
// resolution block).
func resolveIsotopes(cfg config.Config, infos []config.FileInfo) (isotopes []string, isoIndex map[string]int, zFuncs []transition.PFunc, statesPerIso [][]transition.State, err error) {
	if cfg.PFFile != "" {
		tbl, err := partfunc.ReadPyrat(cfg.PFFile)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		zFuncs, err = partfunc.BuildAll(tbl)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		isotopes = tbl.Isotopes
	} else if cfg.DBType == "hitran" {
		return nil, nil, nil, nil, fmt.Errorf("driver: pffile is required for dbtype hitran")
	} else {
		seen := make(map[string]bool)
		for _, fi := range infos {
			seen[fi.Isotope] = true
		}
		for name := range seen {
			isotopes = append(isotopes, name)
		}
		sort.Strings(isotopes)
	}

	isoIndex = make(map[string]int, len(isotopes))
	for j, name := range isotopes {
		isoIndex[name] = j
	}

	if cfg.DBType == "exomol" {
		statesPerIso = make([][]transition.State, len(isotopes))
		for j, name := range isotopes {
			i := firstWithIsotope(infos, name)
			if i < 0 {
				return nil, nil, nil, nil, fmt.Errorf("driver: no input file found for isotope %q", name)
			}
			states, err := config.ReadStates(infos[i].SFile)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			statesPerIso[j] = states

			if cfg.PFFile == "" {
				temp, values, err := partfunc.ReadExoMol(infos[i].PFFile)
				if err != nil {
					return nil, nil, nil, nil, err
				}
				fn, err := partfunc.Build(temp, values)
				if err != nil {
					return nil, nil, nil, nil, err
				}
				zFuncs = append(zFuncs, fn)
			}
		}
	}

	return isotopes, isoIndex, zFuncs, statesPerIso, nil
}

func firstWithIsotope(infos []config.FileInfo, isotope string) int {
	for i, fi := range infos {
		if fi.Isotope == isotope {
			return i
		}
	}
	return -1
}
