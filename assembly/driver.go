// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assembly implements the L5 assembly driver: it composes one
// region Level (package physics) and a set of per-node boundary Operators
// (package bc) into the global residual vector and Jacobian matrix,
// enforcing the Insert/Add-mode discipline and the fold-then-clear
// Preprocess ordering of spec.md §4.3.
//
// Ground: fem.Domain.Fill's two-pass (elements, then essential BCs)
// residual/Jacobian construction, generalized from per-element FEM
// assembly to per-CV FVM assembly with explicit row-scale application.
package assembly

import (
	"github.com/cpmech/gosl/la"

	"github.com/aboutzhao/Genius-TCAD-Open/bc"
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/linalg"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// Driver owns the wiring between the CV graph, the active region Level,
// and the boundary Operators attached to specific nodes.
type Driver struct {
	Graph  *fvm.Graph
	Level  physics.Level
	Layout *fvm.Layout

	// NodeBCs maps a CV's arena id to the boundary operators decorating it,
	// in execution order (spec.md §4.3: Preprocess, then Function/Jacobian).
	NodeBCs map[int][]bc.Operator
}

func NewDriver(g *fvm.Graph, level physics.Level, lay *fvm.Layout) *Driver {
	return &Driver{Graph: g, Level: level, Layout: lay, NodeBCs: make(map[int][]bc.Operator)}
}

// AttachBC registers a boundary operator on the CV with the given arena id.
func (d *Driver) AttachBC(nodeId int, op bc.Operator) {
	d.NodeBCs[nodeId] = append(d.NodeBCs[nodeId], op)
}

// matrixWriter adapts *linalg.Matrix to physics.JacobianWriter using ADD
// semantics, the only mode the CV assembly driver ever needs (spec.md §4.3
// Ordering discipline: everything but a Dirichlet overwrite is ADD).
type matrixWriter struct{ m *linalg.Matrix }

func (w matrixWriter) Add(row, col int, v float64) { w.m.SetValue(row, col, v, linalg.Add) }

// maskedWriter drops entries targeting a row in skip, letting a Dirichlet-
// style BC's own diagonal be the row's only Jacobian contribution instead
// of summing on top of the region operator's (spec.md §4.3: BC Preprocess
// reports rows to clear before overwrite; since the underlying Triplet is
// append-only, clearing is implemented by never depositing the region's
// entries for that row in the first place, per linalg.Matrix.ZeroRows's
// documented contract).
type maskedWriter struct {
	inner physics.JacobianWriter
	skip  map[int]bool
}

func (w maskedWriter) Add(row, col int, v float64) {
	if w.skip[row] {
		return
	}
	w.inner.Add(row, col, v)
}

// clearedRows collects the self-clear rows (Preprocess entries with
// Src==Dst) every BC on n requests, the convention Dirichlet/Ohmic/Schottky
// use for their overwritten potential or density rows.
func clearedRows(ops []bc.Operator, level physics.Level) map[int]bool {
	skip := make(map[int]bool)
	for _, op := range ops {
		for _, ro := range op.Preprocess(level) {
			if ro.Src == ro.Dst {
				skip[ro.Src] = true
			}
		}
	}
	return skip
}

// foldWriter redirects entries destined for a folded-away row straight to
// the row absorbing them (spec.md §4.3 interface continuity fold), so the
// append-only Triplet never receives a standalone entry for the folded row
// at all. This is AssembleJacobian's counterpart to AssembleFunction's
// f.V[Dst] += f.V[Src]; f.V[Src] = 0 fold -- performed by construction,
// during the region pass itself, instead of by post-hoc matrix surgery
// (which linalg.Matrix.AddRow's own comment documents as unsupported for
// an append-only Triplet).
type foldWriter struct {
	inner physics.JacobianWriter
	to    map[int]int
}

func (w foldWriter) Add(row, col int, v float64) {
	if dst, ok := w.to[row]; ok {
		row = dst
	}
	w.inner.Add(row, col, v)
}

// foldMap collects every Src!=Dst RowOp the region Level or an attached BC
// reports, across every node, for AssembleJacobian's fold pass. Source:
// both d.Level.JacobianPreprocess (region-declared folds, currently unused
// by any Level) and every attached bc.Operator's Preprocess (Interface's
// continuity fold).
func (d *Driver) foldMap() map[int]int {
	to := make(map[int]int)
	for _, n := range d.Graph.Nodes {
		if !n.IsValid() {
			continue
		}
		for _, ro := range d.Level.JacobianPreprocess(n) {
			if ro.Src != ro.Dst {
				to[ro.Src] = ro.Dst
			}
		}
	}
	for id, ops := range d.NodeBCs {
		n := d.Graph.Nodes[id]
		if !n.IsValid() {
			continue
		}
		for _, op := range ops {
			for _, ro := range op.Preprocess(d.Level) {
				if ro.Src != ro.Dst {
					to[ro.Src] = ro.Dst
				}
			}
		}
	}
	return to
}

// AssembleFunction builds the global residual at x, applying region volume
// terms, region/BC fold-then-clear Preprocess, and BC Function terms, in
// the order spec.md §4.3 mandates.
func (d *Driver) AssembleFunction(x []float64, tc physics.TimeCtx) *linalg.Vector {
	f := linalg.NewVector(d.Layout.NDof)

	for _, n := range d.Graph.Nodes {
		if !n.IsValid() || !d.Level.SupportsKind(physics.DataKind(n)) {
			continue
		}
		edges := physics.Edges(d.Graph, n)
		d.Level.Function(n, edges, x, tc, f.V)
	}

	// region Preprocess: fold interface-duplicate rows before BC terms.
	for _, n := range d.Graph.Nodes {
		if !n.IsValid() {
			continue
		}
		for _, ro := range d.Level.FunctionPreprocess(n) {
			if ro.Src != ro.Dst {
				f.V[ro.Dst] += f.V[ro.Src]
				f.V[ro.Src] = 0
			}
		}
	}

	// BC Preprocess fold (interface continuity across subdomain/material
	// boundaries), then BC Function (overwrite or additive flux terms).
	for id, ops := range d.NodeBCs {
		n := d.Graph.Nodes[id]
		if !n.IsValid() {
			continue
		}
		for _, op := range ops {
			for _, ro := range op.Preprocess(d.Level) {
				if ro.Src != ro.Dst {
					f.V[ro.Dst] += f.V[ro.Src]
					f.V[ro.Src] = 0
				}
			}
		}
		for _, op := range ops {
			op.Function(d.Level, x, f.V)
		}
	}

	return f
}

// AssembleJacobian mirrors AssembleFunction for the tangent matrix. Self-
// clear rows reported by a node's BCs mask the region operator's own
// contribution to that row before the BC deposits its own diagonal.
func (d *Driver) AssembleJacobian(x []float64, tc physics.TimeCtx, scale []float64) *la.CCMatrix {
	pattern := d.Graph.SparsityPattern(d.Layout, d.bcExtraEq)
	m := linalg.NewMatrix(d.Layout.NDof, d.Layout.NDof, fvm.NnzCount(pattern))
	base := matrixWriter{m: m}
	fold := d.foldMap()

	for _, n := range d.Graph.Nodes {
		if !n.IsValid() || !d.Level.SupportsKind(physics.DataKind(n)) {
			continue
		}
		edges := physics.Edges(d.Graph, n)
		skip := clearedRows(d.NodeBCs[n.Id], d.Level)
		var w physics.JacobianWriter = base
		if len(fold) > 0 {
			w = foldWriter{inner: w, to: fold}
		}
		if len(skip) > 0 {
			w = maskedWriter{inner: w, skip: skip}
		}
		d.Level.Jacobian(n, edges, x, tc, w)
	}

	for id, ops := range d.NodeBCs {
		n := d.Graph.Nodes[id]
		if !n.IsValid() {
			continue
		}
		for _, op := range ops {
			op.Jacobian(d.Level, x, base)
		}
	}

	m.AssemblyBegin(linalg.Flush)
	cc := m.AssemblyEnd(linalg.Final)
	if scale != nil {
		linalg.DiagonalScaleMatrix(cc, scale)
	}
	return cc
}

// bcExtraEq reports the extra columns (electrode DOFs, interface peer rows)
// a node's BCs reserve, for fvm.Graph.SparsityPattern's one-time pattern.
// Both sides of every fold pair need the other's column reserved: Dst's row
// gets Src's region entries folded in (needs Src as a column), and Src's
// row gets the continuity equation referencing Dst (needs Dst as a
// column) -- Reserve alone, scoped to whichever node the BC happens to be
// attached to, only covers one direction.
func (d *Driver) bcExtraEq(n *fvm.Node) []int {
	var cols []int
	for _, op := range d.NodeBCs[n.Id] {
		cols = append(cols, op.Reserve(d.Level)...)
	}
	lo := n.GlobalOffset
	hi := lo + len(d.Level.VarOrder(physics.DataKind(n)))
	for src, dst := range d.foldMap() {
		if src >= lo && src < hi {
			cols = append(cols, dst)
		}
		if dst >= lo && dst < hi {
			cols = append(cols, src)
		}
	}
	return cols
}

// FillValue deposits every live CV's current value and row-scale into x and
// scale, the driver-level wrapper around Level.FillValue (spec.md §4.2
// step 1).
func (d *Driver) FillValue(x, scale []float64) {
	for _, n := range d.Graph.Nodes {
		if !n.IsValid() {
			continue
		}
		d.Level.FillValue(n, x, scale)
	}
}
