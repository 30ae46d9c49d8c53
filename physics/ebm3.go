// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// EBM3Level adds separate electron/hole energy-balance equations on top of
// DDM2, with Wiedemann-Franz-style carrier thermal conductivities and
// energy densities (3/2)*n*kB*Tn, (3/2)*p*kB*Tp (spec.md §4.2, GLOSSARY
// "EBM3"). Relaxation to the lattice temperature is the dominant sink term;
// energy moves between CVs only through a kappa-weighted carrier
// temperature-difference flux on each CV edge. No convective energy flux
// tied to the continuity equations' current is assembled.
type EBM3Level struct {
	DDM2 *DDM2Level
	TauERelax float64 // energy relaxation time, s
}

func NewEBM3() *EBM3Level { return &EBM3Level{DDM2: NewDDM2(), TauERelax: 1e-12} }

func (l *EBM3Level) Name() string { return "EBM3" }

func (l *EBM3Level) SupportsKind(k nodedata.Kind) bool { return true }

func (l *EBM3Level) VarOrder(k nodedata.Kind) []nodedata.Variable {
	base := l.DDM2.VarOrder(k)
	if k != nodedata.Semiconductor {
		return base
	}
	return append(append([]nodedata.Variable{}, base...), nodedata.ETemp, nodedata.HTemp)
}

func (l *EBM3Level) FillValue(n *fvm.Node, x, scale []float64) {
	l.DDM2.FillValue(n, x, scale)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Semiconductor {
		return
	}
	tnEq := EqOffset(l, n, nodedata.ETemp)
	tpEq := EqOffset(l, n, nodedata.HTemp)
	Tn := d.Get(nodedata.ETemp)
	if Tn <= 0 {
		Tn = d.Get(nodedata.Temperature)
	}
	Tp := d.Get(nodedata.HTemp)
	if Tp <= 0 {
		Tp = d.Get(nodedata.Temperature)
	}
	x[tnEq] = Tn
	x[tpEq] = Tp
	n3 := 1.5 * KB * maxf(d.Get(nodedata.Electron), MinCarrier) * n.Volume
	p3 := 1.5 * KB * maxf(d.Get(nodedata.Hole), MinCarrier) * n.Volume
	scale[tnEq] = 1.0 / n3
	scale[tpEq] = 1.0 / p3
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (l *EBM3Level) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (l *EBM3Level) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

// carrierKappa approximates the Wiedemann-Franz carrier thermal
// conductivity kappa = (5/2)*(kB/q)^2*q*mu*n*T, reusing DDM1's scalar
// mobility since the full anisotropic mobility model is MaterialLib's job.
func (l *EBM3Level) carrierKappa(mu, carrierDensity, T float64) float64 {
	kOverQ := KB / Q
	return 2.5 * kOverQ * kOverQ * Q * mu * carrierDensity * T
}

func (l *EBM3Level) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	l.DDM2.Function(n, edges, x, tc, f)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Semiconductor {
		return
	}
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	tnRow := EqOffset(l, n, nodedata.ETemp)
	tpRow := EqOffset(l, n, nodedata.HTemp)
	nRow := EqOffset(l, n, nodedata.Electron)
	pRow := EqOffset(l, n, nodedata.Hole)
	Tn := x[tnRow]
	Tp := x[tpRow]
	nC := x[nRow]
	pC := x[pRow]

	kappaN := l.carrierKappa(l.DDM2.DDM1.Mobility, nC, Tn)
	kappaP := l.carrierKappa(l.DDM2.DDM1.Mobility, pC, Tp)
	for _, e := range edges {
		peerTn := EqOffset(l, e.Peer, nodedata.ETemp)
		peerTp := EqOffset(l, e.Peer, nodedata.HTemp)
		if peerTn < 0 || peerTp < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		f[tnRow] += kappaN * (Tn - x[peerTn]) / dist * e.Area
		f[tpRow] += kappaP * (Tp - x[peerTp]) / dist * e.Area
	}

	// relaxation toward the lattice temperature: (3/2)kB*n*(Tn-T)/tau
	f[tnRow] += 1.5 * KB * nC * (Tn - T) / l.TauERelax * n.Volume
	f[tpRow] += 1.5 * KB * pC * (Tp - T) / l.TauERelax * n.Volume

	f[tnRow] += tc.DDt(1.5*KB*nC*Tn, 1.5*KB*d.GetLast(nodedata.Electron)*d.GetLast(nodedata.ETemp), 0) * n.Volume
	f[tpRow] += tc.DDt(1.5*KB*pC*Tp, 1.5*KB*d.GetLast(nodedata.Hole)*d.GetLast(nodedata.HTemp), 0) * n.Volume
}

func (l *EBM3Level) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	l.DDM2.Jacobian(n, edges, x, tc, w)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Semiconductor {
		return
	}
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	tnRow := EqOffset(l, n, nodedata.ETemp)
	tpRow := EqOffset(l, n, nodedata.HTemp)
	nRow := EqOffset(l, n, nodedata.Electron)
	pRow := EqOffset(l, n, nodedata.Hole)
	Tn := x[tnRow]
	Tp := x[tpRow]
	nC := x[nRow]
	pC := x[pRow]

	kappaN := l.carrierKappa(l.DDM2.DDM1.Mobility, nC, Tn)
	kappaP := l.carrierKappa(l.DDM2.DDM1.Mobility, pC, Tp)
	diagN, diagP := 0.0, 0.0
	for _, e := range edges {
		peerTn := EqOffset(l, e.Peer, nodedata.ETemp)
		peerTp := EqOffset(l, e.Peer, nodedata.HTemp)
		if peerTn < 0 || peerTp < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		tn := kappaN / dist * e.Area
		tp := kappaP / dist * e.Area
		diagN += tn
		diagP += tp
		w.Add(tnRow, peerTn, -tn)
		w.Add(tpRow, peerTp, -tp)
	}
	w.Add(tnRow, tnRow, diagN+1.5*KB*nC/l.TauERelax*n.Volume+tc.DDy()*1.5*KB*nC*n.Volume)
	w.Add(tpRow, tpRow, diagP+1.5*KB*pC/l.TauERelax*n.Volume+tc.DDy()*1.5*KB*pC*n.Volume)
	w.Add(tnRow, nRow, 1.5*KB*(Tn-T)/l.TauERelax*n.Volume)
	w.Add(tpRow, pRow, 1.5*KB*(Tp-T)/l.TauERelax*n.Volume)
}
