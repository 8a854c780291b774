// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The repack-audit command dumps a chunk-statistics store produced by a
// repack run (a "*_chunks.db" file) as a stream of JSON objects on
// stdout, one per chunk, in (suffix, chunk index) order.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/opacitytools/repack/internal/chunkstore"
)

func main() {
	path := flag.String("db", "", "specify chunk-statistics db file to audit (required)")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	s, err := chunkstore.Open(*path)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	enc := json.NewEncoder(os.Stdout)
	err = s.Each(func(r chunkstore.Record) error {
		return enc.Encode(r)
	})
	if err != nil {
		log.Fatal(err)
	}
}
