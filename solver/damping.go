// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import (
	"math"

	"github.com/aboutzhao/Genius-TCAD-Open/config"
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// maxAbsPotentialDelta scans every live CV's potential row for the largest
// magnitude update, the Delta_V_max spec.md §4.4 step 4 damps against.
func maxAbsPotentialDelta(level physics.Level, g *fvm.Graph, delta []float64) float64 {
	m := 0.0
	for _, n := range g.Nodes {
		if !n.IsValid() {
			continue
		}
		eq := physics.EqOffset(level, n, nodedata.Potential)
		if eq < 0 {
			continue
		}
		if a := math.Abs(delta[eq]); a > m {
			m = a
		}
	}
	return m
}

// applyDamping mutates the Newton update delta in place per the chosen
// scheme (spec.md §4.4 step 4): logarithmic potential damping rescales the
// whole potential field by a single factor derived from its largest
// component; positive-density clips the potential step outright;
// Bank-Rose and NoDamping leave delta untouched (Bank-Rose's monotone
// line search is a no-op hook here, per spec.md §4.5's explicit carve-out).
func applyDamping(cfg config.SolverConfig, level physics.Level, g *fvm.Graph, x, delta []float64, text float64) {
	switch cfg.Damping {
	case config.LogPotentialDamping:
		dvmax := maxAbsPotentialDelta(level, g, delta)
		if dvmax > 1e-6 {
			VT := physics.VT(text)
			factor := math.Log(1+dvmax/VT) / (dvmax / VT)
			for _, n := range g.Nodes {
				if !n.IsValid() {
					continue
				}
				eq := physics.EqOffset(level, n, nodedata.Potential)
				if eq >= 0 {
					delta[eq] *= factor
				}
			}
		}
	case config.PositiveDensity:
		for _, n := range g.Nodes {
			if !n.IsValid() {
				continue
			}
			eq := physics.EqOffset(level, n, nodedata.Potential)
			if eq < 0 {
				continue
			}
			if delta[eq] > 1 {
				delta[eq] = 1
			}
			if delta[eq] < -1 {
				delta[eq] = -1
			}
		}
	case config.BankRose, config.NoDamping:
		// no-op
	}
}

// projectFloors enforces the positivity/temperature floors spec.md §4.4
// step 4 names for every damping scheme alike ("projection step"): carrier
// densities >= 1 cm^-3, lattice temperature >= T_ext-50K, carrier
// temperatures >= 0.9*T_ext.
func projectFloors(level physics.Level, g *fvm.Graph, x []float64, text float64) {
	for _, n := range g.Nodes {
		if !n.IsValid() || !level.SupportsKind(physics.DataKind(n)) {
			continue
		}
		for _, v := range level.VarOrder(physics.DataKind(n)) {
			eq := physics.EqOffset(level, n, v)
			if eq < 0 {
				continue
			}
			switch v {
			case nodedata.Electron, nodedata.Hole, nodedata.RICCarrier:
				if x[eq] < physics.MinCarrier {
					x[eq] = physics.MinCarrier
				}
			case nodedata.Temperature:
				if x[eq] < text-50 {
					x[eq] = text - 50
				}
			case nodedata.ETemp, nodedata.HTemp:
				if x[eq] < 0.9*text {
					x[eq] = 0.9 * text
				}
			}
		}
	}
}
