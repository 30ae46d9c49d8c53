// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// DDM2Level adds the lattice-heat equation -div(kappa*grad(T)) = H to
// DDM1's potential/electron/hole system (spec.md §4.2, GLOSSARY "DDM
// level-2 with lattice temperature"). Ground: same CV-flux pattern as
// PoissonLevel's Function/Jacobian, reused for a scalar diffusive field.
type DDM2Level struct {
	DDM1 *DDM1Level
	Kappa float64 // lattice thermal conductivity, W/m-K
}

func NewDDM2() *DDM2Level { return &DDM2Level{DDM1: NewDDM1(), Kappa: 150} } // ~Si thermal conductivity

func (l *DDM2Level) Name() string { return "DDML2" }

func (l *DDM2Level) SupportsKind(k nodedata.Kind) bool { return true }

func (l *DDM2Level) VarOrder(k nodedata.Kind) []nodedata.Variable {
	base := l.DDM1.VarOrder(k)
	return append(append([]nodedata.Variable{}, base...), nodedata.Temperature)
}

func (l *DDM2Level) FillValue(n *fvm.Node, x, scale []float64) {
	l.DDM1.FillValue(n, x, scale)
	d := n.NodeData.(*nodedata.Data)
	tEq := EqOffset(l, n, nodedata.Temperature)
	x[tEq] = d.Get(nodedata.Temperature)
	char := l.Kappa * 300 * n.Volume
	if char <= 0 {
		char = 1
	}
	scale[tEq] = 1.0 / char
}

func (l *DDM2Level) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (l *DDM2Level) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

func (l *DDM2Level) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	l.DDM1.Function(n, edges, x, tc, f)
	d := n.NodeData.(*nodedata.Data)
	tRow := EqOffset(l, n, nodedata.Temperature)
	tC := x[tRow]
	for _, e := range edges {
		peerT := EqOffset(l, e.Peer, nodedata.Temperature)
		if peerT < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		f[tRow] += l.Kappa * (tC - x[peerT]) / dist * e.Area
	}
	// Joule self-heating source (q*(Jn+Jp)*E) is the external MaterialLib's
	// responsibility; only the diffusive + transient lattice-heat terms are
	// assembled here.
	f[tRow] += tc.DDt(tC, d.GetLast(nodedata.Temperature), 0) * n.Volume
}

func (l *DDM2Level) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	l.DDM1.Jacobian(n, edges, x, tc, w)
	tRow := EqOffset(l, n, nodedata.Temperature)
	diag := 0.0
	for _, e := range edges {
		peerT := EqOffset(l, e.Peer, nodedata.Temperature)
		if peerT < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		term := l.Kappa / dist * e.Area
		diag += term
		w.Add(tRow, peerT, -term)
	}
	w.Add(tRow, tRow, diag+tc.DDy()*n.Volume)
}
