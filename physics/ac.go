// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

// ACLevel assembles the complex small-signal linearization around a DC
// operating point (spec.md §4.4 "AC sweep"): each real DOF becomes a
// (re, im) pair and d/dt becomes multiplication by j*omega. Its DOFs are
// laid out in two contiguous blocks per node -- the real block at
// n.GlobalOffset+i and the imaginary block at n.GlobalOffset+nVars+i, where
// nVars is len(Base.VarOrder(k)).
//
// Both blocks reuse Base's own DC Jacobian, evaluated once at the shared
// operating point x, as the spatial operator: the real/real and imag/imag
// diagonal blocks of the AC system are by construction identical copies of
// that one Jacobian (a standard result of linearizing around a fixed
// point), and the residual each block contributes is that same Jacobian
// applied to its own (re or im) perturbation vector -- Base.Jacobian is
// reused both as the tangent matrix and, via jacVecWriter, as the matrix-
// vector product that produces the linear residual. Omega*C terms then
// couple the two blocks off-diagonally. At Omega==0 the coupling vanishes
// and both blocks reduce exactly to Base's DC Jacobian, the AC-reciprocity
// limit spec.md §8 requires.
//
// Ground: the same CV-edge iteration as PoissonLevel/DDM1Level, doubled
// into two stacked (re, im) blocks the way the teacher's Solution struct
// doubles y into {u, p} blocks (ele.Solution).
type ACLevel struct {
	Base  Level
	Omega float64 // angular frequency, rad/s
}

func NewACLevel(base Level, omega float64) *ACLevel { return &ACLevel{Base: base, Omega: omega} }

func (l *ACLevel) Name() string { return "DDMAC" }

func (l *ACLevel) SupportsKind(k nodedata.Kind) bool { return l.Base.SupportsKind(k) }

// VarOrder reports the base ordering; the assembly driver is responsible
// for reserving 2*len(VarOrder) DOFs per node so the real/imaginary block
// split below has room.
func (l *ACLevel) VarOrder(k nodedata.Kind) []nodedata.Variable {
	return l.Base.VarOrder(k)
}

// EqOffsetAC resolves the real or imaginary row for variable v, under the
// two-block layout this level's doc comment describes.
func EqOffsetAC(level *ACLevel, n *fvm.Node, v nodedata.Variable, imag bool) int {
	order := level.Base.VarOrder(DataKind(n))
	nVars := len(order)
	for i, ov := range order {
		if ov == v {
			if imag {
				return n.GlobalOffset + nVars + i
			}
			return n.GlobalOffset + i
		}
	}
	return -1
}

func (l *ACLevel) FillValue(n *fvm.Node, x, scale []float64) {
	// AC perturbations start at zero; the characteristic magnitude is the
	// same capacitance coefficient the AC operator itself multiplies by
	// omega, so row scaling stays self-consistent with Function/Jacobian.
	order := l.Base.VarOrder(DataKind(n))
	nVars := len(order)
	for i, v := range order {
		re := n.GlobalOffset + i
		im := n.GlobalOffset + nVars + i
		x[re], x[im] = 0, 0
		c := capacitance(n, v)
		if c <= 0 {
			c = 1
		}
		scale[re] = 1.0 / c
		scale[im] = scale[re]
	}
}

func (l *ACLevel) FunctionPreprocess(n *fvm.Node) []RowOp { return nil }
func (l *ACLevel) JacobianPreprocess(n *fvm.Node) []RowOp { return nil }

// jacVecWriter turns a JacobianWriter's Add(row, col, v) deposits into the
// matrix-vector product f[row] += v*x[col], the linear residual Base's own
// Jacobian implies at the point it was evaluated at.
type jacVecWriter struct {
	x, f []float64
}

func (w jacVecWriter) Add(row, col int, v float64) { w.f[row] += v * w.x[col] }

// dupToImagWriter mirrors every entry Base.Jacobian deposits at (row, col)
// into the imaginary block at (row+shift, col+shift), so one call to
// Base.Jacobian populates both diagonal blocks with identical coefficients.
type dupToImagWriter struct {
	inner JacobianWriter
	shift int
}

func (w dupToImagWriter) Add(row, col int, v float64) {
	w.inner.Add(row, col, v)
	w.inner.Add(row+w.shift, col+w.shift, v)
}

// Function assembles the complex residual: Base's DC Jacobian applied as a
// linear operator to the real block and, identically, to the imaginary
// block, plus the omega*C terms coupling the two. At Omega==0 the coupling
// vanishes and this is exactly Base's own linearized residual, the DC limit
// spec.md §8's AC-reciprocity law requires.
func (l *ACLevel) Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64) {
	order := l.Base.VarOrder(DataKind(n))
	nVars := len(order)

	l.Base.Jacobian(n, edges, x, tc, dupToImagWriter{inner: jacVecWriter{x: x, f: f}, shift: nVars})

	for i, v := range order {
		re := n.GlobalOffset + i
		im := n.GlobalOffset + nVars + i
		c := capacitance(n, v)
		f[re] += -l.Omega * c * x[im]
		f[im] += l.Omega * c * x[re]
	}
}

func (l *ACLevel) Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter) {
	order := l.Base.VarOrder(DataKind(n))
	nVars := len(order)

	l.Base.Jacobian(n, edges, x, tc, dupToImagWriter{inner: w, shift: nVars})

	for i, v := range order {
		re := n.GlobalOffset + i
		im := n.GlobalOffset + nVars + i
		c := capacitance(n, v)
		w.Add(re, im, -l.Omega*c)
		w.Add(im, re, l.Omega*c)
	}
}

// capacitance returns the per-variable transient "capacity" coefficient
// (dCharge/dVariable) multiplying j*omega in the AC operator: permittivity
// times CV volume for Poisson's psi (displacement current), q times CV
// volume for carrier densities.
func capacitance(n *fvm.Node, v nodedata.Variable) float64 {
	switch v {
	case nodedata.Potential:
		return permittivity(n) * n.Volume
	case nodedata.Electron, nodedata.Hole:
		return Q * n.Volume
	default:
		return 0
	}
}
