// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/aboutzhao/Genius-TCAD-Open/assembly"
	"github.com/aboutzhao/Genius-TCAD-Open/linalg"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// SweepPoint is one accepted solution of a DC bias sweep (spec.md §4.4
// "DC sweep"): the swept terminal voltage and the full solution vector at
// that bias, so a caller can read off terminal current from whichever
// electrode DOF or bc.CircuitCoupled row it cares about.
type SweepPoint struct {
	V float64
	X []float64
}

// DCSweep steps the swept electrode from Sweep.VStart to Sweep.VStop,
// calling setV before each solve to move the active boundary operator's
// Applied bias (spec.md §4.4 "DC sweep": "advance the swept terminal
// voltage... re-run the Newton loop at each step"). The step shrinks by
// ShrinkFactor on non-convergence and grows by up to VStepMax on easy
// convergence, mirroring the adaptive behavior TimeStepLoop uses for dt.
func (c *Controller) DCSweep(setV func(v float64), tc physics.TimeCtx) ([]SweepPoint, error) {
	sw := &c.Cfg.Sweep
	forward := sw.VStop >= sw.VStart

	var out []SweepPoint
	v := sw.VStart
	step := sw.VStepMax
	if step <= 0 {
		step = 0.1
	}

	for {
		done := forward && v >= sw.VStop || !forward && v <= sw.VStop
		setV(v)
		iters, converged, err := c.NewtonSolve(tc)
		if err != nil {
			return out, err
		}
		if !converged {
			c.DivergedRecovery()
			step *= c.Cfg.TS.ShrinkFactor
			if step < 1e-6 {
				return out, chk.Err("solver: DC sweep step collapsed below minimum at V=%g", v)
			}
			if len(out) > 0 {
				last := out[len(out)-1].V
				if forward {
					v = math.Min(last+step, sw.VStop)
				} else {
					v = math.Max(last-step, sw.VStop)
				}
			}
			continue
		}
		c.AcceptStep()
		xs := make([]float64, len(c.X))
		copy(xs, c.X)
		out = append(out, SweepPoint{V: v, X: xs})

		if done {
			return out, nil
		}
		if iters <= 3 {
			grown := step * c.Cfg.TS.GrowthFactor
			if grown > sw.VStepMax {
				grown = sw.VStepMax
			}
			step = grown
		}
		if forward {
			v = math.Min(v+step, sw.VStop)
		} else {
			v = math.Max(v-step, sw.VStop)
		}
	}
}

// ACPoint is one small-signal solution of a frequency sweep.
type ACPoint struct {
	Freq float64
	X    []float64
}

// ACSweep runs a small-signal AC analysis over Sweep.FStart..FStop,
// multiplying the frequency by FMultiple each step (spec.md §4.4 "AC
// sweep"). Each frequency is a single linear solve of the ACLevel's
// doubled re/im system around the zero perturbation FillValue seeds
// (spec.md §4.1 note on the AC variant), so the Newton loop is capped at
// two iterations: one assemble to discover the linear residual is zero,
// one to confirm.
func (c *Controller) ACSweep(acLevel *physics.ACLevel, drv *assembly.Driver) ([]ACPoint, error) {
	sw := &c.Cfg.Sweep
	if sw.FMultiple <= 1 {
		return nil, chk.Err("solver: ACSweep requires Sweep.FMultiple > 1")
	}

	var out []ACPoint
	for f := sw.FStart; f <= sw.FStop; f *= sw.FMultiple {
		acLevel.Omega = 2 * math.Pi * f

		acCfg := c.Cfg
		acCfg.MaxIteration = 2
		ctrl := &Controller{
			Driver:    drv,
			Cfg:       acCfg,
			Lin:       linalg.NewLinSol(c.Cfg.LinSolName),
			X:         make([]float64, drv.Layout.NDof),
			Scale:     make([]float64, drv.Layout.NDof),
			XLast:     make([]float64, drv.Layout.NDof),
			XLastLast: make([]float64, drv.Layout.NDof),
			TExt:      c.TExt,
		}
		ctrl.Init()

		_, converged, err := ctrl.NewtonSolve(physics.TimeCtx{Steady: true})
		if err != nil {
			return out, err
		}
		if !converged {
			return out, chk.Err("solver: AC solve failed to converge at f=%g Hz", f)
		}
		xs := make([]float64, len(ctrl.X))
		copy(xs, ctrl.X)
		out = append(out, ACPoint{Freq: f, X: xs})
	}
	return out, nil
}
