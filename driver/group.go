// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"log"
	"sort"
	"strconv"

	"github.com/opacitytools/repack/balance"
	"github.com/opacitytools/repack/classify"
	"github.com/opacitytools/repack/continuum"
	"github.com/opacitytools/repack/internal/chunkstore"
	"github.com/opacitytools/repack/internal/config"
	"github.com/opacitytools/repack/lblio"
	"github.com/opacitytools/repack/source"
	"github.com/opacitytools/repack/transition"
)

// groupInput holds everything runGroup needs for one wavenumber-range
// suffix group; a plain struct rather than a long parameter list, since
// the fields are passed straight through from Run.
type groupInput struct {
	suffix string
	srcs   []source.Source
	cfg    config.Config

	abundance, mass []float64
	zFuncs          []transition.PFunc
	zLow, zHigh     []float64
	isotopeIDs      []int32

	grid   *continuum.Grid
	lblw   *lblio.Writer
	cstore *chunkstore.Store
}

// runGroup plans, classifies and accumulates every chunk of one suffix
// group (original_source/repack/repack.py's per-wnset loop body).
func runGroup(in groupInput) error {
	plan, err := balance.Balance(in.srcs, in.cfg.WnMin, in.cfg.WnMax, in.cfg.ChunkSize, balance.DefaultTolerance)
	if err != nil {
		return err
	}

	for n := 0; n < plan.NumChunks; n++ {
		chunk, err := readChunk(in.srcs, plan, n)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			continue
		}

		result, err := classify.Classify(chunk, in.abundance, in.mass, in.zLow, in.zHigh, in.cfg.TMin, in.cfg.TMax, in.cfg.SThresh)
		if err != nil {
			return err
		}

		var weak []transition.Transition
		var numStrong int64
		for i, tr := range chunk {
			if result.Flag[i] {
				numStrong++
				err := in.lblw.Append(lblio.Record{
					Wavenumber: tr.Wavenumber,
					ELow:       tr.ELow,
					GF:         tr.GF,
					IsoID:      in.isotopeIDs[tr.IsoIndex],
				})
				if err != nil {
					return err
				}
			} else {
				weak = append(weak, tr)
			}
		}
		continuum.Accumulate(in.grid, weak, in.abundance, in.mass, in.zFuncs)

		comment := ""
		if plan.NumChunks > 1 {
			comment = " (chunk " + strconv.Itoa(n+1) + "/" + strconv.Itoa(plan.NumChunks) + ")"
		}
		total := float64(len(chunk))
		compression := float64(numStrong) / total
		compressionLow := float64(result.StrongLow) / total
		compressionHigh := float64(result.StrongHigh) / total
		log.Printf("group %s%s: compression rate tLow %.2f%%, tHigh %.2f%%, union %.2f%%, %d/%d lines kept",
			in.suffix, comment, compressionLow*100, compressionHigh*100, compression*100, numStrong, len(chunk))

		err = in.cstore.Put(chunkstore.Record{
			Suffix:          in.suffix,
			ChunkIndex:      int64(n),
			WnLo:            chunk[0].Wavenumber,
			WnHi:            chunk[len(chunk)-1].Wavenumber,
			NumTotal:        int64(len(chunk)),
			NumStrong:       numStrong,
			NumWeak:         int64(len(weak)),
			NumStrongLow:    int64(result.StrongLow),
			NumStrongHigh:   int64(result.StrongHigh),
			Compression:     compression,
			CompressionLow:  compressionLow,
			CompressionHigh: compressionHigh,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readChunk reads chunk n from every source in srcs, merging and sorting
// the result by wavenumber (original_source/repack/repack.py's per-chunk
// hstack-then-argsort).
func readChunk(srcs []source.Source, plan *balance.Plan, n int) ([]transition.Transition, error) {
	var chunk []transition.Transition
	for k, s := range srcs {
		lo, hi := plan.Range(k, n)
		trs, err := s.ReadRange(lo, hi)
		if err != nil {
			return nil, err
		}
		chunk = append(chunk, trs...)
	}
	sort.Slice(chunk, func(i, j int) bool { return chunk[i].Wavenumber < chunk[j].Wavenumber })
	return chunk, nil
}
