// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the L6 solver controller: the Newton loop with
// damping, BDF1/BDF2 time-stepping, DC sweep, and AC sweep of spec.md §4.4.
// Ground: the teacher's SolverImplicit.Run/run_iterations
// (other_examples/PaddySchmidt-gofem__s_implicit.go), generalized from a
// single la.LinSol-backed FEM Newton loop to the FVM assembly.Driver's
// row-scaled residual/Jacobian and this domain's per-equation-family
// convergence test.
package solver

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/aboutzhao/Genius-TCAD-Open/assembly"
	"github.com/aboutzhao/Genius-TCAD-Open/config"
	"github.com/aboutzhao/Genius-TCAD-Open/linalg"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// Controller owns the solution vector, row-scale vector, and the linear
// solver handle shared across every Newton iteration and time step (spec.md
// §5 "Shared resources").
type Controller struct {
	Driver *assembly.Driver
	Cfg    config.SolverConfig
	Lin    *linalg.LinSol

	X, Scale, XLast []float64
	XLastLast       []float64 // second-to-last accepted state, for BDF2 prediction and error estimation
	TExt            float64   // ambient temperature, K, the damping floors reference

	Verbose    bool
	Distr      bool // true when the graph's CVs are split across MPI ranks
	mpiScratch []float64
}

func NewController(drv *assembly.Driver, cfg config.SolverConfig, tExt float64) *Controller {
	n := drv.Layout.NDof
	return &Controller{
		Driver: drv,
		Cfg:    cfg,
		Lin:    linalg.NewLinSol(cfg.LinSolName),
		X:         make([]float64, n),
		Scale:     make([]float64, n),
		XLast:     make([]float64, n),
		XLastLast: make([]float64, n),
		TExt:      tExt,
	}
}

// Init deposits every CV's current nodal value and row-scale characteristic
// magnitude into X/Scale (spec.md §4.2 step 1), the one-time FillValue pass
// before the first Newton solve.
func (c *Controller) Init() {
	c.Driver.FillValue(c.X, c.Scale)
	copy(c.XLast, c.X)
}

// AcceptStep snapshots the converged X as the new "last accepted state",
// the rollback target DivergedRecovery restores (spec.md §5 Cancellation).
func (c *Controller) AcceptStep() { copy(c.XLast, c.X) }

// DivergedRecovery restores X to the last accepted state, the controller's
// diverged_recovery() hook (spec.md §5).
func (c *Controller) DivergedRecovery() { copy(c.X, c.XLast) }

func vecNorm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// electrodeStart is the lowest global offset any electrode DOF occupies,
// the boundary between node-owned rows (bucketed by variable family) and
// electrode rows (bucketed under EqTolerances.ElectrodeAbs).
func (c *Controller) electrodeStart() int {
	start := c.Driver.Layout.NDof
	for _, off := range c.Driver.Layout.ElectrodeEq {
		if off < start {
			start = off
		}
	}
	return start
}

// familyConverged reports whether every equation family's L2 residual norm
// is below its absolute tolerance (spec.md §4.4 step 2).
func (c *Controller) familyConverged(f []float64) bool {
	sumsq := make(map[nodedata.Variable]float64)
	for _, n := range c.Driver.Graph.Nodes {
		if !n.IsValid() {
			continue
		}
		kind := physics.DataKind(n)
		if !c.Driver.Level.SupportsKind(kind) {
			continue
		}
		for _, v := range c.Driver.Level.VarOrder(kind) {
			eq := physics.EqOffset(c.Driver.Level, n, v)
			if eq < 0 {
				continue
			}
			sumsq[v] += f[eq] * f[eq]
		}
	}
	electrodeSS := 0.0
	for eq := c.electrodeStart(); eq < len(f); eq++ {
		electrodeSS += f[eq] * f[eq]
	}

	tol := c.Cfg.Tol
	ok := true
	check := func(ss, toler float64) {
		if math.Sqrt(ss) > toler {
			ok = false
		}
	}
	check(sumsq[nodedata.Potential], tol.PoissonAbs)
	check(sumsq[nodedata.Electron], tol.ElecContAbs)
	check(sumsq[nodedata.Hole], tol.HoleContAbs)
	check(sumsq[nodedata.Temperature], tol.HeatAbs)
	check(sumsq[nodedata.ETemp], tol.ElecEnergyAbs)
	check(sumsq[nodedata.HTemp], tol.HoleEnergyAbs)
	check(electrodeSS, tol.ElectrodeAbs)
	return ok
}

// NewtonSolve runs the bounded nonlinear iteration of spec.md §4.4 against
// the current TimeCtx, mutating c.X in place. It never returns a fatal Go
// error for plain non-convergence (spec.md §7's "Numerical non-convergence"
// is reported, not fatal) — callers inspect the returned converged flag.
func (c *Controller) NewtonSolve(tc physics.TimeCtx) (iters int, converged bool, err error) {
	n := c.Driver.Layout.NDof
	delta := make([]float64, n)
	lastUpdateNorm := math.Inf(1)

	for it := 0; it < c.Cfg.MaxIteration; it++ {
		iters = it
		f := c.Driver.AssembleFunction(c.X, tc)
		if c.Distr {
			// join contributions from every rank's share of CVs that sit on
			// a subdomain interface, before the convergence test or linear
			// solve sees the residual (ground: SolverImplicit.run_iterations'
			// mpi.AllReduceSum(d.Fb, d.Wb) call, s_implicit.go).
			if len(c.mpiScratch) != len(f.V) {
				c.mpiScratch = make([]float64, len(f.V))
			}
			mpi.AllReduceSum(f.V, c.mpiScratch)
		}
		f.DiagonalScale(c.Scale)

		famOK := c.familyConverged(f.V)
		relOK := it > 0 && lastUpdateNorm/math.Max(vecNorm(c.X), c.Cfg.Eps) < c.Cfg.RelativeToler*c.Cfg.TolerRelax
		if famOK && relOK {
			converged = true
			return
		}

		doAsmFact := it == 0 || !c.Cfg.CteTg
		negf := make([]float64, n)
		for i, v := range f.V {
			negf[i] = -v
		}

		if doAsmFact {
			jac := c.Driver.AssembleJacobian(c.X, tc, c.Scale)
			if err = c.Lin.Factorize(jac, false, c.Verbose, false); err != nil {
				err = chk.Err("solver: factorization failed: %v", err)
				return
			}
		}
		if err = c.Lin.Solve(delta, negf); err != nil {
			err = chk.Err("solver: linear solve failed: %v", err)
			return
		}

		applyDamping(c.Cfg, c.Driver.Level, c.Driver.Graph, c.X, delta, c.TExt)
		for i := range c.X {
			c.X[i] += delta[i]
		}
		projectFloors(c.Driver.Level, c.Driver.Graph, c.X, c.TExt)

		lastUpdateNorm = vecNorm(delta)
		if c.Verbose && c.Cfg.ShowR {
			io.Pf("it=%d |f|=%.3e |du|=%.3e\n", it, vecNorm(f.V), lastUpdateNorm)
		}
	}
	iters = c.Cfg.MaxIteration
	return
}
