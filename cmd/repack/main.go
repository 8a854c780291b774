// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// repack reduces an ExoMol or HITRAN line-transition catalog into a
// compact binary line-by-line file of dominant transitions and a text
// continuum-opacity table for the remaining weak transitions.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/opacitytools/repack/driver"
	"github.com/opacitytools/repack/internal/config"
)

func main() {
	cfgPath := flag.String("config", "", "specify run configuration file (required)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage of %[1]s:
  $ %[1]s -config <run.cfg>

Options:
`, os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	if *cfgPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.Println(os.Args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := driver.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
