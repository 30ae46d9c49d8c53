// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// PoissonLevel implements the Poisson equation volume term of spec.md §4.2:
//
//	-div(eps*grad(psi)) - q*(p - n + Net) = 0
//
// discretized over the CV as
//
//	sum_j eps_ij*(psi_C - psi_j)/d_ij*A_ij - q*(p_C - n_C + Net_C)*V_C = 0
//
// Ground: ele/diffusion.Diffusion's CV-style flux-plus-source residual
// (the teacher's nonlinear-k diffusion element), generalized from an
// integration-point FEM stencil to a single-CV FVM stencil.
type PoissonLevel struct{}

func (PoissonLevel) Name() string { return "POISSON" }

func (PoissonLevel) SupportsKind(k nodedata.Kind) bool { return true }

func (PoissonLevel) VarOrder(k nodedata.Kind) []nodedata.Variable {
	return []nodedata.Variable{nodedata.Potential}
}

// charPoisson is the characteristic magnitude q*N_D*V_CV used for row
// scaling (spec.md §4.2 "Row scaling").
func charPoisson(n *fvm.Node) float64 {
	d := n.NodeData.(*nodedata.Data)
	net := d.Aux("Nd") + d.Aux("Na")
	if net <= 0 {
		net = 1e16 // fallback characteristic doping when undoped (insulator/vacuum CVs)
	}
	c := Q * net * n.Volume
	if c <= 0 {
		return 1
	}
	return c
}

func (PoissonLevel) FillValue(n *fvm.Node, x, scale []float64) {
	eq := EqOffset(PoissonLevel{}, n, nodedata.Potential)
	x[eq] = n.NodeData.(*nodedata.Data).Get(nodedata.Potential)
	scale[eq] = 1.0 / charPoisson(n)
}

func (PoissonLevel) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (PoissonLevel) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

// permittivity returns the CV's dielectric constant, auxiliary data
// populated by the external MaterialLib.
func permittivity(n *fvm.Node) float64 {
	eps := n.NodeData.(*nodedata.Data).Aux("eps")
	if eps == 0 {
		eps = Eps0
	}
	return eps
}

func (PoissonLevel) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	row := EqOffset(PoissonLevel{}, n, nodedata.Potential)
	psiC := x[row]
	epsC := permittivity(n)
	for _, e := range edges {
		peerRow := EqOffset(PoissonLevel{}, e.Peer, nodedata.Potential)
		if peerRow < 0 {
			continue
		}
		epsIJ := 0.5 * (epsC + permittivity(e.Peer))
		d := Dist(n, e.Peer)
		if d <= 0 {
			continue
		}
		f[row] += epsIJ * (psiC - x[peerRow]) / d * e.Area
	}
	d := n.NodeData.(*nodedata.Data)
	if d.Kind() == nodedata.Semiconductor {
		net := d.Aux("Nd") - d.Aux("Na")
		f[row] -= Q * (d.Get(nodedata.Hole) - d.Get(nodedata.Electron) + net) * n.Volume
	}
	if q := d.Aux("Qf"); q != 0 {
		f[row] -= q * n.Volume // fixed charge, e.g. oxide trapped charge
	}
}

func (PoissonLevel) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	row := EqOffset(PoissonLevel{}, n, nodedata.Potential)
	epsC := permittivity(n)
	diag := 0.0
	for _, e := range edges {
		peerRow := EqOffset(PoissonLevel{}, e.Peer, nodedata.Potential)
		if peerRow < 0 {
			continue
		}
		epsIJ := 0.5 * (epsC + permittivity(e.Peer))
		d := Dist(n, e.Peer)
		if d <= 0 {
			continue
		}
		term := epsIJ / d * e.Area
		diag += term
		w.Add(row, peerRow, -term)
	}
	// The Poisson row's coupling to carrier density (∂F_psi/∂n = +Q*V,
	// ∂F_psi/∂p = -Q*V) cannot be added here: PoissonLevel.VarOrder only
	// ever returns [Potential], so it has no way to resolve n/p's actual
	// equation row under a composed level's real VarOrder (DDM1Level etc.).
	// Composed levels add those terms themselves after calling this method
	// (see DDM1Level.Jacobian), using the EqOffset they already computed
	// against their own VarOrder.
	w.Add(row, row, diag)
}
