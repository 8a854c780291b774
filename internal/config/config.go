// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the run configuration, an out-of-scope
// collaborator per spec.md §1 ("we specify only the inputs a run
// consumes"), implemented here from a "[REPACK]" INI section so
// cmd/repack has something concrete to load.
package config

import (
	"fmt"

	"github.com/go-ini/ini"
)

// Config is one repackaging run's full set of inputs, the Go-side
// equivalent of original_source/repack/repack.py's parser() return
// tuple.
type Config struct {
	LBLFiles  []string
	DBType    string // "exomol" or "hitran"
	OutFile   string
	PFFile    string // optional for exomol (empty means "derive per-isotope from LBLFiles"); the driver rejects it empty for hitran
	IsoFile   string // isotope abundance/mass table
	ChunkSize int

	TMin, TMax, DTemp float64
	WnMin, WnMax, DWn float64
	SThresh           float64
}

// DefaultChunkSize is used when the config omits "chunksize".
const DefaultChunkSize = 15000000

// Load parses the "[REPACK]" section of an INI file at path.
func Load(path string) (Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	sec, err := f.GetSection("REPACK")
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: missing [REPACK] section: %w", path, err)
	}

	var cfg Config
	cfg.LBLFiles = sec.Key("lblfiles").Strings(" ")
	if len(cfg.LBLFiles) == 0 {
		return Config{}, fmt.Errorf("config: %s: lblfiles must list at least one file", path)
	}
	cfg.DBType = sec.Key("dbtype").String()
	if cfg.DBType != "exomol" && cfg.DBType != "hitran" {
		return Config{}, fmt.Errorf("config: %s: dbtype must be exomol or hitran, got %q", path, cfg.DBType)
	}
	cfg.OutFile = sec.Key("outfile").String()
	if cfg.OutFile == "" {
		return Config{}, fmt.Errorf("config: %s: outfile is required", path)
	}
	cfg.PFFile = sec.Key("pffile").String()
	cfg.IsoFile = sec.Key("isofile").String()
	if cfg.IsoFile == "" {
		return Config{}, fmt.Errorf("config: %s: isofile is required", path)
	}

	cfg.ChunkSize = DefaultChunkSize
	if sec.HasKey("chunksize") {
		n, err := sec.Key("chunksize").Int()
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: chunksize: %w", path, err)
		}
		cfg.ChunkSize = n
	}

	var ferr error
	getFloat := func(key string) float64 {
		v, err := sec.Key(key).Float64()
		if err != nil && ferr == nil {
			ferr = fmt.Errorf("config: %s: %s: %w", path, key, err)
		}
		return v
	}
	cfg.TMin = getFloat("tmin")
	cfg.TMax = getFloat("tmax")
	cfg.DTemp = getFloat("dtemp")
	cfg.WnMin = getFloat("wnmin")
	cfg.WnMax = getFloat("wnmax")
	cfg.DWn = getFloat("dwn")
	cfg.SThresh = getFloat("sthresh")
	if ferr != nil {
		return Config{}, ferr
	}

	return cfg, nil
}
