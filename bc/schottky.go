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

// Schottky pins potential to the metal-semiconductor barrier and replaces
// each carrier continuity row's boundary flux with a thermionic-emission
// current (spec.md §4.3 "Schottky thermionic emission"):
//
//	psi = V_e - phi_b
//	J_n = q*vn*(n - n0),  vn = A*_Richardson*T^2/(q*Nc)   (effective recomb. velocity)
//
// vn approximates the thermionic emission velocity; n0 is the equilibrium
// density implied by the barrier height, matching the closed-form surface
// recombination model the teacher's Ohmic contact reduces to when vn -> inf.
type Schottky struct {
	Node        *fvm.Node
	Applied     float64 // V_e
	BarrierPhiB float64 // barrier height, eV
	Richardson  float64 // effective Richardson constant * T^2 / q, carriers/m^2/s-ish prefactor
}

func (b *Schottky) Name() string { return "Schottky" }

func (b *Schottky) Preprocess(level physics.Level) []physics.RowOp {
	row := physics.EqOffset(level, b.Node, nodedata.Potential)
	if row < 0 {
		return nil
	}
	return []physics.RowOp{{Src: row, Dst: row}}
}

func (b *Schottky) Reserve(level physics.Level) []int { return nil }

func (b *Schottky) equilibriumDensity(VT float64) float64 {
	ni := b.Node.NodeData.(*nodedata.Data).Aux("ni")
	if ni == 0 {
		ni = 1e10 * 1e6
	}
	return ni * math.Exp(-b.BarrierPhiB/VT)
}

func (b *Schottky) Function(level physics.Level, x []float64, f []float64) {
	psiRow := physics.EqOffset(level, b.Node, nodedata.Potential)
	if psiRow >= 0 {
		f[psiRow] = x[psiRow] - (b.Applied - b.BarrierPhiB)
	}
	d := b.Node.NodeData.(*nodedata.Data)
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	VT := physics.VT(T)
	n0 := b.equilibriumDensity(VT)
	vn := b.Richardson
	nRow := physics.EqOffset(level, b.Node, nodedata.Electron)
	if nRow >= 0 {
		f[nRow] += vn * (x[nRow] - n0) * b.Node.TotalCVBoundaryArea()
	}
	pRow := physics.EqOffset(level, b.Node, nodedata.Hole)
	if pRow >= 0 {
		f[pRow] += vn * (x[pRow] - n0) * b.Node.TotalCVBoundaryArea()
	}
}

func (b *Schottky) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {
	psiRow := physics.EqOffset(level, b.Node, nodedata.Potential)
	if psiRow >= 0 {
		w.Add(psiRow, psiRow, 1)
	}
	vn := b.Richardson
	area := b.Node.TotalCVBoundaryArea()
	nRow := physics.EqOffset(level, b.Node, nodedata.Electron)
	if nRow >= 0 {
		w.Add(nRow, nRow, vn*area)
	}
	pRow := physics.EqOffset(level, b.Node, nodedata.Hole)
	if pRow >= 0 {
		w.Add(pRow, pRow, vn*area)
	}
}
