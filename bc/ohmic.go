// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"math"

	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// Ohmic pins potential and carrier densities at an ideal ohmic contact to
// their local charge-neutrality/thermal-equilibrium values (spec.md §4.3
// "Ohmic charge-neutrality"):
//
//	n - p = Ndop (net doping)
//	n*p   = ni^2
//	psi   = psi_equilibrium + V_applied
//
// solved in closed form for n, p, then psi is pinned relative to the bulk
// reference the same way Dirichlet pins an ideal electrode.
type Ohmic struct {
	Node    *fvm.Node
	Applied float64 // V_e, the electrode bias
}

func equilibriumNP(ndop, ni float64) (n, p float64) {
	if ndop >= 0 {
		n = 0.5 * (ndop + math.Sqrt(ndop*ndop+4*ni*ni))
		p = ni * ni / n
		return
	}
	p = 0.5 * (-ndop + math.Sqrt(ndop*ndop+4*ni*ni))
	n = ni * ni / p
	return
}

func (b *Ohmic) Name() string { return "Ohmic" }

func (b *Ohmic) Preprocess(level physics.Level) []physics.RowOp {
	var ops []physics.RowOp
	for _, v := range []nodedata.Variable{nodedata.Potential, nodedata.Electron, nodedata.Hole} {
		row := physics.EqOffset(level, b.Node, v)
		if row >= 0 {
			ops = append(ops, physics.RowOp{Src: row, Dst: row})
		}
	}
	return ops
}

func (b *Ohmic) Reserve(level physics.Level) []int { return nil }

func (b *Ohmic) equilibrium() (psi, n, p float64) {
	d := b.Node.NodeData.(*nodedata.Data)
	ndop := d.Aux("ndop")
	ni := d.Aux("ni")
	if ni == 0 {
		ni = 1e10 * 1e6
	}
	n, p = equilibriumNP(ndop, ni)
	VT := physics.VT(d.Get(nodedata.Temperature))
	if d.Get(nodedata.Temperature) <= 0 {
		VT = physics.VT(300)
	}
	// reference psi=0 at intrinsic n=p=ni; shift by ln(n/ni)*VT to land on
	// the equilibrium electron density the same way the teacher's Ohmic
	// contact model derives the built-in band bending from doping.
	psi = VT * math.Log(n/ni)
	return
}

func (b *Ohmic) Function(level physics.Level, x []float64, f []float64) {
	psiRow := physics.EqOffset(level, b.Node, nodedata.Potential)
	nRow := physics.EqOffset(level, b.Node, nodedata.Electron)
	pRow := physics.EqOffset(level, b.Node, nodedata.Hole)
	psiEq, nEq, pEq := b.equilibrium()
	if psiRow >= 0 {
		f[psiRow] = x[psiRow] - (psiEq + b.Applied)
	}
	if nRow >= 0 {
		f[nRow] = x[nRow] - nEq
	}
	if pRow >= 0 {
		f[pRow] = x[pRow] - pEq
	}
}

func (b *Ohmic) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {
	for _, v := range []nodedata.Variable{nodedata.Potential, nodedata.Electron, nodedata.Hole} {
		row := physics.EqOffset(level, b.Node, v)
		if row >= 0 {
			w.Add(row, row, 1)
		}
	}
}
