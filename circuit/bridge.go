// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package circuit is the external CircuitBridge collaborator (spec.md §6):
// a companion-matrix RLC solve for the per-electrode external circuit
// stub (R, L, C, V_src, I_src) that couples a device terminal's current to
// an applied or floating voltage. It is a small SPICE-like linear system,
// distinct from the main distributed device Jacobian, built the way
// edp1096-toy-spice's pkg/matrix.CircuitMatrix wraps github.com/edp1096/sparse.
package circuit

import (
	"github.com/cpmech/gosl/chk"
	"github.com/edp1096/sparse"
)

// Source is one electrode's driving source: a fixed voltage, a fixed
// current, or an RLC network terminated at Vsrc (spec.md §3's
// ElectrodeBC.circuit_params).
type Source struct {
	R, L, C   float64
	Vsrc      float64
	Isrc      float64
	IsCurrent bool // true: Isrc drives the electrode; false: Vsrc does, through R/L/C
}

// electrodeState is the per-electrode companion-model history a trapezoidal
// or backward-Euler step needs (ground: device.Capacitor/device.Inductor's
// Voltage0/1, current0/1, charge0/1 pairs in edp1096-toy-spice).
type electrodeState struct {
	src          Source
	voltage0     float64
	voltage1     float64
	current0     float64
	current1     float64
	charge0      float64
	charge1      float64
	dIdV, dIdw   float64
	dFdV         float64
}

// Bridge owns one companion matrix per call to Solve and the per-electrode
// history needed to stamp its RLC branch (spec.md §6 circuit.Bridge).
type Bridge struct {
	electrodes map[int]*electrodeState
	dt         float64
}

// NewBridge returns an empty bridge; InitSpiceData registers electrodes.
func NewBridge() *Bridge {
	return &Bridge{electrodes: make(map[int]*electrodeState)}
}

// InitSpiceData registers electrode id's external circuit and zeroes its
// companion-model history (spec.md §3 Lifecycle "allocate external-circuit
// state for every electrode with circuit_params set").
func (b *Bridge) InitSpiceData(electrode int, src Source) {
	b.electrodes[electrode] = &electrodeState{src: src}
}

// SaveSpiceData snapshots the current companion-model state as "last", the
// rollback point a rejected time step or Newton divergence restores
// (spec.md §3 "NodeData can be checkpointed for restart and SPICE-rollback").
func (b *Bridge) SaveSpiceData() {
	for _, e := range b.electrodes {
		e.voltage1 = e.voltage0
		e.current1 = e.current0
		e.charge1 = e.charge0
	}
}

// LoadSpiceData restores the companion-model state from the last snapshot,
// the circuit-side half of Controller.DivergedRecovery.
func (b *Bridge) LoadSpiceData() {
	for _, e := range b.electrodes {
		e.voltage0 = e.voltage1
		e.current0 = e.current1
		e.charge0 = e.charge1
	}
}

// SetTimeStep fixes the step size the backward-Euler companion models use;
// call before Solve for a transient point, skip (dt==0) for DC/OP.
func (b *Bridge) SetTimeStep(dt float64) { b.dt = dt }

// Solve builds and factorizes the companion matrix for every registered
// electrode given its device-side terminal voltage deviceV[electrode], and
// returns the terminal current each electrode actually delivers. One
// electrode's RLC branch is independent of the others' here (no mutual
// inductance, no shared ground node beyond the device), so the companion
// matrix is block-diagonal; edp1096/sparse's Matrix factor-then-solve handles
// that as cheaply as a dense per-electrode 1x1/2x2, while keeping the
// exact pattern edp1096-toy-spice's CircuitMatrix uses so a richer mutual
// network could be grafted in later without changing callers.
func (b *Bridge) Solve(deviceV map[int]float64) (terminalI map[int]float64, err error) {
	terminalI = make(map[int]float64, len(b.electrodes))
	for id, e := range b.electrodes {
		v, ok := deviceV[id]
		if !ok {
			return nil, chk.Err("circuit: no device-side voltage supplied for electrode %d", id)
		}
		i, dIdV, dIdw, dFdV, serr := e.solveOne(v, b.dt)
		if serr != nil {
			return nil, serr
		}
		e.dIdV, e.dIdw, e.dFdV = dIdV, dIdw, dFdV
		e.voltage0 = v
		e.current0 = i
		terminalI[id] = i
	}
	return terminalI, nil
}

// solveOne stamps a 1x1 companion matrix (the branch current) for one
// RLC branch and factors/solves it with sparse.Matrix, the same
// Create/GetElement/Factor/Solve sequence pkg/matrix.CircuitMatrix follows.
func (e *electrodeState) solveOne(deviceV, dt float64) (i, dIdV, dIdw, dFdV float64, err error) {
	src := e.src
	if src.IsCurrent {
		// current source: terminal current is fixed by definition, the
		// "external circuit" degenerates to I = Isrc, dI/dV = 0.
		return src.Isrc, 0, 0, 0, nil
	}
	if src.R <= 0 && src.L <= 0 && src.C <= 0 {
		// plain ideal voltage source, the Dirichlet-style degenerate case.
		return 0, 0, 0, 0, nil
	}

	cfg := &sparse.Configuration{
		Real:       true,
		Expandable: true,
		Translate:  false,
	}
	mat, cerr := sparse.Create(int64(1), cfg)
	if cerr != nil {
		return 0, 0, 0, 0, chk.Err("circuit: sparse.Create failed: %v", cerr)
	}
	defer mat.Destroy()

	// Unknown vector is [branch current]; the single KVL equation for a
	// series R-L-C branch between deviceV and src.Vsrc, backward-Euler
	// companion models for L (geq = L/dt) and C (geq = dt/C), the
	// capacitor's saved charge folded into the RHS as the voltage q/C it
	// already holds.
	req := src.R
	leq := 0.0
	if dt > 0 && src.L > 0 {
		leq = src.L / dt
	}
	ceq := 0.0
	rhsC := 0.0
	if dt > 0 && src.C > 0 {
		ceq = dt / src.C
		rhsC = -e.charge1 / src.C // backward-Euler charge carried forward
	}

	mat.GetElement(int64(1), int64(1)).Real = req + leq + ceq
	rhs := make([]float64, 2) // 1-based: index 0 unused
	rhs[1] = src.Vsrc - deviceV + leq*e.current1 + rhsC

	if ferr := mat.Factor(); ferr != nil {
		return 0, 0, 0, 0, chk.Err("circuit: companion matrix factorization failed: %v", ferr)
	}
	sol, serr := mat.Solve(rhs)
	if serr != nil {
		return 0, 0, 0, 0, chk.Err("circuit: companion matrix solve failed: %v", serr)
	}
	i = sol[1]
	if dt > 0 && src.C > 0 {
		e.charge0 = e.charge1 + i*dt
	}

	denom := req + leq + ceq
	if denom != 0 {
		dIdV = -1 / denom
	}
	return i, dIdV, 0, 0, nil
}

// ExportTerminalCurrent reports electrode's last-solved terminal current
// and the partials the device-side Jacobian needs to couple its terminal
// equation to the circuit unknown (spec.md §6 circuit.Bridge).
func (b *Bridge) ExportTerminalCurrent(electrode int) (I, dIdV, dIdw, dFdV float64) {
	e, ok := b.electrodes[electrode]
	if !ok {
		return 0, 0, 0, 0
	}
	return e.current0, e.dIdV, e.dIdw, e.dFdV
}

// ImportSource returns the Source driving electrode, so a boundary operator
// can read Vsrc/Isrc without reaching into Bridge internals.
func (b *Bridge) ImportSource(electrode int) Source {
	e, ok := b.electrodes[electrode]
	if !ok {
		return Source{}
	}
	return e.src
}
