// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// rotateNodeData writes the accepted X back into every live CV's NodeData
// and then calls nodedata.Data.RotateLast, so the "_last" slot the levels'
// transient terms read holds the accepted state: the NodeData counterpart
// of AcceptStep's XLast snapshot.
func (c *Controller) rotateNodeData() {
	for _, n := range c.Driver.Graph.Nodes {
		if !n.IsValid() {
			continue
		}
		if d, ok := n.NodeData.(*nodedata.Data); ok {
			if c.Driver.Level.SupportsKind(d.Kind()) {
				for _, v := range c.Driver.Level.VarOrder(d.Kind()) {
					if eq := physics.EqOffset(c.Driver.Level, n, v); eq >= 0 {
						d.Set(v, c.X[eq])
					}
				}
			}
			d.RotateLast()
		}
	}
}

// localTruncationError estimates the BDF1/BDF2 residual mismatch (spec.md
// §4.4 "Estimate local truncation error from the BDF1/BDF2 residual
// mismatch"): the discrete time-derivative BDF2 predicts for the accepted
// state, compared against the simpler BDF1 estimate at the same step.
func localTruncationError(tc, bdf1 physics.TimeCtx, x, xLast, xLastLast []float64) float64 {
	ss := 0.0
	for i := range x {
		d2 := tc.A0*x[i] + tc.A1*xLast[i] + tc.A2*xLastLast[i]
		d1 := bdf1.A0*x[i] + bdf1.A1*xLast[i]
		diff := (d2 - d1) * tc.Dt
		ss += diff * diff
	}
	return math.Sqrt(ss)
}

// TimeStepLoop integrates from TS.TStart to TS.TStop with adaptive dt
// (spec.md §4.4 "Time stepping"): predict, Newton solve, accept/reject by
// local truncation error, grow/shrink dt, rotate history on accept.
func (c *Controller) TimeStepLoop() error {
	tsCfg := &c.Cfg.TS

	t := tsCfg.TStart
	dt := tsCfg.Dt
	if dt <= 0 {
		dt = tsCfg.TStepMax
	}
	restart := tsCfg.BDF2Restart || tsCfg.DtLast <= 0

	for t < tsCfg.TStop {
		if dt > tsCfg.TStop-t {
			dt = tsCfg.TStop - t
		}
		tc := physics.NewBDF2(dt, tsCfg.DtLast, restart)

		if tsCfg.Predict && tsCfg.DtLast > 0 {
			ratio := dt / tsCfg.DtLast
			for i := range c.X {
				c.X[i] = c.XLast[i] + (c.XLast[i]-c.XLastLast[i])*ratio
			}
		}

		_, converged, err := c.NewtonSolve(tc)
		if err != nil {
			return err
		}
		if !converged {
			c.DivergedRecovery()
			dt *= tsCfg.ShrinkFactor
			if dt < tsCfg.DtMin {
				return chk.Err("solver: dt collapsed below DtMin after non-convergence")
			}
			continue
		}

		if !restart {
			bdf1 := physics.NewBDF1(dt)
			est := localTruncationError(tc, bdf1, c.X, c.XLast, c.XLastLast)
			tol := math.Max(tsCfg.TSAtol, tsCfg.TSRtol*vecNorm(c.X))
			if est > tol {
				c.DivergedRecovery()
				dt *= tsCfg.ShrinkFactor
				if dt < tsCfg.DtMin {
					return chk.Err("solver: dt collapsed below DtMin after truncation-error rejection")
				}
				continue
			}
		}

		t += dt
		copy(c.XLastLast, c.XLast)
		c.AcceptStep()
		c.rotateNodeData()
		tsCfg.DtLastLast = tsCfg.DtLast
		tsCfg.DtLast = dt
		tsCfg.T = t
		restart = false
		tsCfg.BDF2Restart = false

		grown := dt * tsCfg.GrowthFactor
		if grown > tsCfg.TStepMax {
			grown = tsCfg.TStepMax
		}
		dt = grown
	}
	return nil
}
