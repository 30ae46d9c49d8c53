// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// CircuitCoupled ties an electrode CV's potential row to an extra circuit
// current DOF through the external-circuit equation of spec.md §4.3:
//
//	L*dI/dt + R*I + V_node - V_src + (1/C)*Integral(I dt) = 0
//
// V_node is the contact potential plus the electrode work function; the
// capacitor charge integral is carried as a named scalar on the CV the way
// spec.md §6 describes CircuitBridge's save/load checkpoint slots working,
// without depending on the CircuitBridge collaborator itself (out of
// scope, interface-only per spec.md Non-goals).
type CircuitCoupled struct {
	Node         *fvm.Node
	ElectrodeEq  int // global row/column of the extra current DOF I
	Params       CircuitParams
	WorkFunction float64

	// Dt/ILast/ChargeLast are set by the solver controller once per Newton
	// assembly from the accepted previous time step, the same way TimeCtx's
	// BDF coefficients are threaded into every region Level.
	Dt         float64
	ILast      float64
	ChargeLast float64
}

func (b *CircuitCoupled) Name() string { return "CircuitCoupled" }

func (b *CircuitCoupled) Preprocess(level physics.Level) []physics.RowOp { return nil }

func (b *CircuitCoupled) Reserve(level physics.Level) []int {
	psiRow := physics.EqOffset(level, b.Node, nodedata.Potential)
	if psiRow < 0 {
		return nil
	}
	return []int{psiRow, b.ElectrodeEq}
}

func (b *CircuitCoupled) chargeNow(i float64) float64 {
	if b.Dt <= 0 {
		return b.ChargeLast
	}
	return b.ChargeLast + 0.5*(i+b.ILast)*b.Dt // trapezoidal charge accumulation
}

func (b *CircuitCoupled) Function(level physics.Level, x []float64, f []float64) {
	psiRow := physics.EqOffset(level, b.Node, nodedata.Potential)
	if psiRow < 0 {
		return
	}
	I := x[b.ElectrodeEq]
	// the electrode current enters the contact CV's charge balance the same
	// way a Neumann flux would; the region operator's own row keeps its
	// volume/flux terms, this just adds the injected terminal current.
	f[psiRow] += I

	Vnode := x[psiRow] + b.WorkFunction
	dIdt := 0.0
	if b.Dt > 0 {
		dIdt = (I - b.ILast) / b.Dt
	}
	charge := b.chargeNow(I)
	f[b.ElectrodeEq] = b.Params.L*dIdt + b.Params.R*I + Vnode - b.Params.Vsrc
	if b.Params.C > 0 {
		f[b.ElectrodeEq] += charge / b.Params.C
	}
}

func (b *CircuitCoupled) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {
	psiRow := physics.EqOffset(level, b.Node, nodedata.Potential)
	if psiRow < 0 {
		return
	}
	w.Add(psiRow, b.ElectrodeEq, 1)

	dIdtDI := 0.0
	if b.Dt > 0 {
		dIdtDI = 1.0 / b.Dt
	}
	diag := b.Params.L*dIdtDI + b.Params.R
	if b.Params.C > 0 && b.Dt > 0 {
		diag += 0.5 * b.Dt / b.Params.C
	}
	w.Add(b.ElectrodeEq, b.ElectrodeEq, diag)
	w.Add(b.ElectrodeEq, psiRow, 1)
}
