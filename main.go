// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command device is the CLI shell around the simulator core. It owns
// nothing the core itself doesn't already own: the Mesher that builds a
// real mesh.Mesher from a geometry file and the Parser that reads bias
// schedules into a config.SolverConfig are both external collaborators
// (spec.md §1), reached only through the interfaces package mesh and
// package config already expose. This binary's job ends at wiring those
// collaborators' output into assembly.NewDriver and solver.NewController.
package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/aboutzhao/Genius-TCAD-Open/config"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				io.PfRed("\nERROR: %v", err)
				io.Pf("See location of error below:\n")
				chk.Verbose = true
				for i := 5; i > 3; i-- {
					chk.CallerInfo(i)
				}
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)

	if mpi.Rank() == 0 && verbose {
		io.PfWhite("\nGenius-TCAD-Open -- 3D semiconductor device simulator core\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
		))
	}

	cfg := config.Default()
	if mpi.Rank() == 0 && verbose {
		io.Pf("\nsolver config: kind=%v solution=%v damping=%v maxit=%d rtol=%v\n",
			cfg.Kind, cfg.Solution, cfg.Damping, cfg.MaxIteration, cfg.RelativeToler)
	}

	// This binary does not ship a Mesher or Parser: both are external
	// collaborators per spec.md §1. A real deployment registers one
	// (reading fnamepath) and passes the resulting mesh.Mesher into
	// fvm.NewGraph before building assembly.NewDriver/solver.NewController
	// the way the test fixtures in package assembly and package solver do.
	chk.Panic("no Mesher/Parser registered: device requires a caller that builds a mesh.Mesher from %q and wires it through fvm.NewGraph", fnamepath)
}
