// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// Gate implements a thin-oxide gate electrode coupling (spec.md §4.3 "gate
// oxide capacitance"): the semiconductor surface potential psi couples to
// the electrode voltage through a lumped oxide capacitance rather than a
// meshed oxide region:
//
//	eps_ox/t_ox * (V_e - W - psi) + Q_f - D_s = 0
//
// where D_s is the semiconductor-side displacement (folded in via the
// region Poisson operator's own flux term at this CV, left untouched here)
// and Q_f is a fixed interface charge. This is a Robin condition on psi's
// row, not an overwrite, so it is additive like Schottky's current term.
type Gate struct {
	Node         *fvm.Node
	Applied      float64 // V_e
	WorkFunction float64 // W
	OxideCapArea float64 // eps_ox/t_ox * area, F
	FixedCharge  float64 // Q_f, C
}

func (b *Gate) Name() string { return "Gate" }

func (b *Gate) Preprocess(level physics.Level) []physics.RowOp { return nil }
func (b *Gate) Reserve(level physics.Level) []int              { return nil }

func (b *Gate) Function(level physics.Level, x []float64, f []float64) {
	row := physics.EqOffset(level, b.Node, nodedata.Potential)
	if row < 0 {
		return
	}
	f[row] += b.OxideCapArea*(x[row]-(b.Applied-b.WorkFunction)) - b.FixedCharge
}

func (b *Gate) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {
	row := physics.EqOffset(level, b.Node, nodedata.Potential)
	if row < 0 {
		return
	}
	w.Add(row, row, b.OxideCapArea)
}
