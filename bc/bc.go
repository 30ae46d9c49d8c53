// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bc implements the boundary operators of spec.md §4.3: Dirichlet
// electrode, Ohmic, Schottky, gate (oxide capacitance), insulator-insulator
// and homo/heterojunction interface continuity, neutral (no-op), and
// circuit-coupled operators. Ground: fem.EssentialBcs's three-phase
// (Preprocess/Reserve/Function-Jacobian) wrapping of region assembly,
// generalized from FEM essential BCs to FVM boundary/interface CVs.
package bc

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// Operator is the trait every boundary condition implements, wrapped around
// a region Level's own Function/Jacobian for the CVs it decorates (spec.md
// §4.3's three-phase execution).
type Operator interface {
	Name() string

	// Preprocess reports fold-then-clear row operations executed before
	// region assembly (interface continuity folding one side's balance into
	// the other) and the Dirichlet rows to be cleared before overwrite.
	Preprocess(level physics.Level) []physics.RowOp

	// Reserve lists extra column indices this BC's row(s) touch beyond the
	// region operator's own sparsity (ghost peer, electrode DOF), for the
	// one-time structural-zero pass spec.md §4.1 requires.
	Reserve(level physics.Level) []int

	// Function overwrites/adds this BC's equation into f.
	Function(level physics.Level, x []float64, f []float64)

	// Jacobian overwrites/adds this BC's equation into w.
	Jacobian(level physics.Level, x []float64, w physics.JacobianWriter)
}

// CircuitParams holds the lumped RLC companion values for the external-
// circuit equation L*dI/dt + R*I + V_node - V_src + (1/C)*Integral(I dt) = 0
// (spec.md §4.3, "External-circuit equation").
type CircuitParams struct {
	L, R, C float64
	Vsrc    float64
}
