// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// Dirichlet pins the potential row of an ohmic/ideal electrode CV to the
// applied bias: psi - psi_applied = 0 (spec.md §4.3). It is an INSERT-mode
// row: Preprocess reports it for clearing before Function overwrites it.
//
// Ground: fem.EssentialBcs's list of (equation, value) pairs enforced by
// zeroing a row and inserting 1 on the diagonal.
type Dirichlet struct {
	Node    *fvm.Node
	Applied float64 // V_e - W, the electrode potential referenced to the same zero as psi
}

func (b *Dirichlet) Name() string { return "Dirichlet" }

func (b *Dirichlet) Preprocess(level physics.Level) []physics.RowOp {
	row := physics.EqOffset(level, b.Node, nodedata.Potential)
	if row < 0 {
		return nil
	}
	return []physics.RowOp{{Src: row, Dst: row}} // self-clear: Dst==Src signals "clear only"
}

func (b *Dirichlet) Reserve(level physics.Level) []int { return nil }

func (b *Dirichlet) Function(level physics.Level, x []float64, f []float64) {
	row := physics.EqOffset(level, b.Node, nodedata.Potential)
	if row < 0 {
		return
	}
	f[row] = x[row] - b.Applied
}

func (b *Dirichlet) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {
	row := physics.EqOffset(level, b.Node, nodedata.Potential)
	if row < 0 {
		return
	}
	w.Add(row, row, 1)
}
