// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"math"

	"github.com/cpmech/gosl/fun"

	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// DDM1Level implements the isothermal (level-1) drift-diffusion model:
// Poisson plus electron/hole continuity with a Scharfetter-Gummel edge flux
// (spec.md §4.2, GLOSSARY "DDM"). Ground: ele/diffusion.Diffusion's
// nonlinear-flux residual/Jacobian pairing, generalized to the SG
// discretization and dispatched per-CV instead of per integration point.
type DDM1Level struct {
	Poisson PoissonLevel
	Mobility float64 // placeholder scalar mobility; real values come from MaterialLib
}

func NewDDM1() *DDM1Level { return &DDM1Level{Mobility: 0.14} } // ~Si electron mobility scale, m^2/Vs-ish

// InitParams connects this level's Mobility to a named material-parameter
// database, the same prms.Connect binding mdl/diffusion.M1.Init uses for
// its nonlinear-coefficient constants.
func (l *DDM1Level) InitParams(prms fun.Prms) {
	prms.Connect(&l.Mobility, "mobility", "DDML1 carrier mobility")
}

func (l *DDM1Level) Name() string { return "DDML1" }

func (l *DDM1Level) SupportsKind(k nodedata.Kind) bool { return true }

func (l *DDM1Level) VarOrder(k nodedata.Kind) []nodedata.Variable {
	if k == nodedata.Semiconductor {
		return []nodedata.Variable{nodedata.Potential, nodedata.Electron, nodedata.Hole}
	}
	return l.Poisson.VarOrder(k)
}

func (l *DDM1Level) FillValue(n *fvm.Node, x, scale []float64) {
	l.Poisson.FillValue(n, x, scale)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Semiconductor {
		return
	}
	nEq := EqOffset(l, n, nodedata.Electron)
	pEq := EqOffset(l, n, nodedata.Hole)
	x[nEq] = d.Get(nodedata.Electron)
	x[pEq] = d.Get(nodedata.Hole)
	charN := d.Get(nodedata.Electron) * n.Volume
	charP := d.Get(nodedata.Hole) * n.Volume
	if charN <= 0 {
		charN = 1e6 * n.Volume
	}
	if charP <= 0 {
		charP = 1e6 * n.Volume
	}
	scale[nEq] = 1.0 / charN
	scale[pEq] = 1.0 / charP
}

func (l *DDM1Level) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (l *DDM1Level) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

// sgFlux computes the Scharfetter-Gummel edge particle flux (current
// divided by q) for a carrier with mobility mu (sign +1 for electrons, -1
// for holes, matching spec.md §4.2's opposite sign convention), between CV
// C (this node) and neighbor j.
//
//	J/q = (mu*VT/d) * (B(-dPsi/VT)*n_j - B(dPsi/VT)*n_C)   [electrons, sign +1]
func sgFlux(mu, sign, VT, dPsi, d, cC, cJ float64) (flux float64, dFluxDc, dFluxDcJ float64) {
	arg := sign * dPsi / VT
	bNeg := bernoulliScalar(-arg)
	bPos := bernoulliScalar(arg)
	coef := mu * VT / d
	flux = coef * (bNeg*cJ - bPos*cC)
	dFluxDc = -coef * bPos
	dFluxDcJ = coef * bNeg
	return
}

func bernoulliScalar(x float64) float64 {
	if math.Abs(x) < 1e-8 {
		return 1 - x/2 + x*x/12
	}
	return x / (math.Exp(x) - 1)
}

func (l *DDM1Level) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	l.Poisson.Function(n, edges, x, tc, f)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Semiconductor {
		return
	}
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	VT := VT(T)
	psiRow := EqOffset(l, n, nodedata.Potential)
	nRow := EqOffset(l, n, nodedata.Electron)
	pRow := EqOffset(l, n, nodedata.Hole)
	psiC := x[psiRow]
	nC := x[nRow]
	pC := x[pRow]

	// PoissonLevel.Function took p and n for its charge term from NodeData;
	// replace them with this level's unknowns so the Poisson row depends on
	// x[nRow]/x[pRow], the coupling Jacobian adds as +-Q*V.
	f[psiRow] -= Q * ((pC - d.Get(nodedata.Hole)) - (nC - d.Get(nodedata.Electron))) * n.Volume

	for _, e := range edges {
		peerPsi := EqOffset(l, e.Peer, nodedata.Potential)
		peerN := EqOffset(l, e.Peer, nodedata.Electron)
		peerP := EqOffset(l, e.Peer, nodedata.Hole)
		if peerPsi < 0 || peerN < 0 || peerP < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		dPsi := psiC - x[peerPsi]
		Jn, _, _ := sgFlux(l.Mobility, +1, VT, dPsi, dist, nC, x[peerN])
		Jp, _, _ := sgFlux(l.Mobility, -1, VT, dPsi, dist, pC, x[peerP])
		f[nRow] += Jn * e.Area
		f[pRow] -= Jp * e.Area
	}

	// recombination/generation net rate (SRH-style placeholder; real model
	// is supplied by the external MaterialLib).
	ni := d.Aux("ni")
	if ni == 0 {
		ni = 1e10 * 1e6 // ~1e10 cm^-3 in m^-3
	}
	tau := d.Aux("tau")
	if tau == 0 {
		tau = 1e-9
	}
	R := (nC*pC - ni*ni) / (tau * (nC + pC + 2*ni))
	f[nRow] -= R * n.Volume
	f[pRow] -= R * n.Volume

	// BDF transient term: dn/dt - ... (sign convention: continuity residual
	// is d(charge)/dt + div(J)/q - (G-R); flux terms above already carry the
	// div(J)/q sign through the SG discretization).
	f[nRow] += tc.DDt(nC, d.GetLast(nodedata.Electron), 0) * n.Volume
	f[pRow] += tc.DDt(pC, d.GetLast(nodedata.Hole), 0) * n.Volume
}

func (l *DDM1Level) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	l.Poisson.Jacobian(n, edges, x, tc, w)
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() != nodedata.Semiconductor {
		return
	}
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	VT := VT(T)
	psiRow := EqOffset(l, n, nodedata.Potential)
	nRow := EqOffset(l, n, nodedata.Electron)
	pRow := EqOffset(l, n, nodedata.Hole)
	psiC := x[psiRow]
	nC := x[nRow]
	pC := x[pRow]

	// Poisson's own charge-imbalance term -q*(p-n+Net)*V (poisson.go's
	// Function) couples back into n/p, but PoissonLevel.Jacobian cannot see
	// this level's VarOrder to resolve nRow/pRow itself; add that coupling
	// here instead.
	w.Add(psiRow, nRow, Q*n.Volume)
	w.Add(psiRow, pRow, -Q*n.Volume)

	for _, e := range edges {
		peerPsi := EqOffset(l, e.Peer, nodedata.Potential)
		peerN := EqOffset(l, e.Peer, nodedata.Electron)
		peerP := EqOffset(l, e.Peer, nodedata.Hole)
		if peerPsi < 0 || peerN < 0 || peerP < 0 {
			continue
		}
		dist := Dist(n, e.Peer)
		if dist <= 0 {
			continue
		}
		dPsi := psiC - x[peerPsi]
		_, dJnDn, dJnDnj := sgFlux(l.Mobility, +1, VT, dPsi, dist, nC, x[peerN])
		_, dJpDp, dJpDpj := sgFlux(l.Mobility, -1, VT, dPsi, dist, pC, x[peerP])

		w.Add(nRow, nRow, dJnDn*e.Area)
		w.Add(nRow, peerN, dJnDnj*e.Area)
		w.Add(pRow, pRow, -dJpDp*e.Area)
		w.Add(pRow, peerP, -dJpDpj*e.Area)

		// d(flux)/d(dPsi) via a centered finite difference on the Bernoulli
		// argument; like the exact carrier partials above, it is written out
		// here rather than obtained through Dual (see dual.go), which no
		// level's Jacobian uses.
		h := 1e-6 * math.Max(1, math.Abs(dPsi))
		JnP, _, _ := sgFlux(l.Mobility, +1, VT, dPsi+h, dist, nC, x[peerN])
		JnM, _, _ := sgFlux(l.Mobility, +1, VT, dPsi-h, dist, nC, x[peerN])
		dJndPsi := (JnP - JnM) / (2 * h)
		JpP, _, _ := sgFlux(l.Mobility, -1, VT, dPsi+h, dist, pC, x[peerP])
		JpM, _, _ := sgFlux(l.Mobility, -1, VT, dPsi-h, dist, pC, x[peerP])
		dJpdPsi := (JpP - JpM) / (2 * h)

		w.Add(nRow, psiRow, dJndPsi*e.Area)
		w.Add(nRow, peerPsi, -dJndPsi*e.Area)
		w.Add(pRow, psiRow, -dJpdPsi*e.Area)
		w.Add(pRow, peerPsi, dJpdPsi*e.Area)
	}

	ni := d.Aux("ni")
	if ni == 0 {
		ni = 1e10 * 1e6
	}
	tau := d.Aux("tau")
	if tau == 0 {
		tau = 1e-9
	}
	denom := tau * (nC + pC + 2*ni)
	R := (nC*pC - ni*ni) / denom
	dRdn := (pC*denom - (nC*pC-ni*ni)*tau) / (denom * denom)
	dRdp := (nC*denom - (nC*pC-ni*ni)*tau) / (denom * denom)
	_ = R
	w.Add(nRow, nRow, -dRdn*n.Volume)
	w.Add(nRow, pRow, -dRdp*n.Volume)
	w.Add(pRow, nRow, -dRdn*n.Volume)
	w.Add(pRow, pRow, -dRdp*n.Volume)

	w.Add(nRow, nRow, tc.DDy()*n.Volume)
	w.Add(pRow, pRow, tc.DDy()*n.Volume)
}
