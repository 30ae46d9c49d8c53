// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// TIDLevel implements total-ionizing-dose trap buildup in oxides (DICTAT,
// spec.md §4.5, GLOSSARY "TID drift/drift-reaction"): a trap-occupancy ODE
// integrated at each Insulator CV with the same BDF machinery as every
// other level's transient term, plus the RIC carrier's capture/emission
// sink/source coupling back into RICLevel's continuity equation.
//
// Ground: the relaxation-ODE shape of DDM2Level's lattice-heat equation,
// reduced to a 0-D reaction (no CV-edge flux term) since trap occupancy
// does not diffuse between CVs.
type TIDLevel struct {
	RIC *RICLevel

	CaptureCoef   float64 // carrier capture cross-section * thermal velocity, m^3/s
	EmissionRate  float64 // trap emission rate, 1/s
	TrapDensity   float64 // total trap site density, m^-3
}

func NewTID() *TIDLevel {
	return &TIDLevel{
		RIC:          NewRIC(),
		CaptureCoef:  1e-14,
		EmissionRate: 1e-6,
		TrapDensity:  1e23,
	}
}

func (l *TIDLevel) Name() string { return "TID" }

func (l *TIDLevel) SupportsKind(k nodedata.Kind) bool { return k == nodedata.Insulator }

func (l *TIDLevel) VarOrder(k nodedata.Kind) []nodedata.Variable {
	base := l.RIC.VarOrder(k)
	if k != nodedata.Insulator {
		return base
	}
	return append(append([]nodedata.Variable{}, base...), nodedata.TrapOccupancy)
}

func (l *TIDLevel) FillValue(n *fvm.Node, x, scale []float64) {
	l.RIC.FillValue(n, x, scale)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Insulator {
		return
	}
	fRow := EqOffset(l, n, nodedata.TrapOccupancy)
	f0 := d.Get(nodedata.TrapOccupancy)
	if f0 < 0 || f0 > 1 {
		f0 = 0
	}
	x[fRow] = f0
	scale[fRow] = 1.0 // occupancy fraction is already O(1)
}

func (l *TIDLevel) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (l *TIDLevel) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

// Function adds RICLevel's volume terms plus the trap drift-reaction ODE
//
//	d(f*Nt)/dt = Cn*n*(1-f)*Nt - en*f*Nt
//
// and feeds the trapped-charge sink back into the RIC carrier continuity
// row, the same way DDM1's recombination term couples n and p.
func (l *TIDLevel) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	l.RIC.Function(n, edges, x, tc, f)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Insulator {
		return
	}
	cRow := EqOffset(l, n, nodedata.RICCarrier)
	fRow := EqOffset(l, n, nodedata.TrapOccupancy)
	cC := x[cRow]
	occ := x[fRow]

	capture := l.CaptureCoef * cC * (1 - occ) * l.TrapDensity
	emission := l.EmissionRate * occ * l.TrapDensity
	net := capture - emission

	f[fRow] += tc.DDt(occ*l.TrapDensity, d.GetLast(nodedata.TrapOccupancy)*l.TrapDensity, 0) * n.Volume
	f[fRow] -= net * n.Volume

	// trapping removes carriers from the RIC continuity equation at the same
	// rate they are captured.
	f[cRow] += net * n.Volume
}

func (l *TIDLevel) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	l.RIC.Jacobian(n, edges, x, tc, w)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Insulator {
		return
	}
	cRow := EqOffset(l, n, nodedata.RICCarrier)
	fRow := EqOffset(l, n, nodedata.TrapOccupancy)
	cC := x[cRow]
	occ := x[fRow]

	dNetDc := l.CaptureCoef * (1 - occ) * l.TrapDensity
	dNetDf := -l.CaptureCoef*cC*l.TrapDensity - l.EmissionRate*l.TrapDensity

	w.Add(fRow, fRow, tc.DDy()*l.TrapDensity*n.Volume-dNetDf*n.Volume)
	w.Add(fRow, cRow, -dNetDc*n.Volume)

	w.Add(cRow, fRow, dNetDf*n.Volume)
	w.Add(cRow, cRow, dNetDc*n.Volume)
}
