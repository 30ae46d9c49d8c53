// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// RICLevel implements radiation-induced conductivity in insulator regions
// (spec.md §4.5, GLOSSARY "RIC"): a generated-carrier continuity equation
// driven by a dose-rate source, sharing Poisson's potential equation and
// the same CV-edge drift-diffusion flux pattern as DDM1, but restricted to
// Insulator CVs and a single lumped conductivity-carrier density.
type RICLevel struct {
	Poisson  PoissonLevel
	Mobility float64 // lumped RIC carrier mobility
}

func NewRIC() *RICLevel { return &RICLevel{Mobility: 1e-6} }

func (l *RICLevel) Name() string { return "RIC" }

func (l *RICLevel) SupportsKind(k nodedata.Kind) bool {
	return k == nodedata.Insulator
}

func (l *RICLevel) VarOrder(k nodedata.Kind) []nodedata.Variable {
	if k == nodedata.Insulator {
		return []nodedata.Variable{nodedata.Potential, nodedata.RICCarrier}
	}
	return l.Poisson.VarOrder(k)
}

func (l *RICLevel) FillValue(n *fvm.Node, x, scale []float64) {
	l.Poisson.FillValue(n, x, scale)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Insulator {
		return
	}
	eq := EqOffset(l, n, nodedata.RICCarrier)
	x[eq] = d.Get(nodedata.RICCarrier)
	char := maxf(d.Get(nodedata.RICCarrier)*n.Volume, MinCarrier*n.Volume)
	scale[eq] = 1.0 / char
}

func (l *RICLevel) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (l *RICLevel) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

// doseRateGeneration returns the generation rate from the dose-rate
// auxiliary field a Mesher/MaterialLib-style external source populates on
// each CV (spec.md §6 "Particle source file format").
func doseRateGeneration(n *fvm.Node) float64 {
	return n.NodeData.(*nodedata.Data).Aux("dose_rate_generation")
}

func (l *RICLevel) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	l.Poisson.Function(n, edges, x, tc, f)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Insulator {
		return
	}
	psiRow := EqOffset(l, n, nodedata.Potential)
	cRow := EqOffset(l, n, nodedata.RICCarrier)
	psiC := x[psiRow]
	cC := x[cRow]
	T := 300.0
	VT := VT(T)
	for _, e := range edges {
		peerPsi := EqOffset(l, e.Peer, nodedata.Potential)
		peerC := EqOffset(l, e.Peer, nodedata.RICCarrier)
		if peerPsi < 0 || peerC < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		dPsi := psiC - x[peerPsi]
		flux, _, _ := sgFlux(l.Mobility, +1, VT, dPsi, dist, cC, x[peerC])
		f[cRow] += flux * e.Area
	}
	f[cRow] -= doseRateGeneration(n) * n.Volume
	f[cRow] += tc.DDt(cC, d.GetLast(nodedata.RICCarrier), 0) * n.Volume
}

func (l *RICLevel) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	l.Poisson.Jacobian(n, edges, x, tc, w)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Insulator {
		return
	}
	psiRow := EqOffset(l, n, nodedata.Potential)
	cRow := EqOffset(l, n, nodedata.RICCarrier)
	psiC := x[psiRow]
	cC := x[cRow]
	T := 300.0
	VT := VT(T)
	diag := 0.0
	for _, e := range edges {
		peerPsi := EqOffset(l, e.Peer, nodedata.Potential)
		peerC := EqOffset(l, e.Peer, nodedata.RICCarrier)
		if peerPsi < 0 || peerC < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		dPsi := psiC - x[peerPsi]
		_, dDc, dDcj := sgFlux(l.Mobility, +1, VT, dPsi, dist, cC, x[peerC])
		diag += dDc * e.Area
		w.Add(cRow, peerC, dDcj*e.Area)
	}
	w.Add(cRow, cRow, diag+tc.DDy()*n.Volume)
}
