// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"math"

	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// InterfaceKind distinguishes the three continuity flavors spec.md §4.3
// names: plain insulator-insulator, same-material homojunction, and
// band-offset heterojunction.
type InterfaceKind int

const (
	InsulatorInsulator InterfaceKind = iota
	Homojunction
	Heterojunction
)

// Interface enforces continuity across a subdomain or material boundary
// shared by two CVs on the same root node (spec.md §4.3 "interface
// continuity psi_A - psi_B = 0"). Preprocess folds Peer's volume balance
// into Node's row before clearing Peer's, implementing the "sum then
// clear" flux-continuity rule (spec.md §4.3 Ordering discipline); for
// Heterojunction, BandOffset shifts the potential alignment and scales the
// carrier-density continuity by a thermionic Boltzmann factor.
type Interface struct {
	Kind       InterfaceKind
	Node, Peer *fvm.Node
	BandOffset float64 // Ec(Peer) - Ec(Node), eV; zero for Homojunction/InsulatorInsulator
}

func (b *Interface) Name() string { return "Interface" }

func (b *Interface) Preprocess(level physics.Level) []physics.RowOp {
	var ops []physics.RowOp
	for _, v := range level.VarOrder(physics.DataKind(b.Node)) {
		src := physics.EqOffset(level, b.Peer, v)
		dst := physics.EqOffset(level, b.Node, v)
		if src >= 0 && dst >= 0 && src != dst {
			ops = append(ops, physics.RowOp{Src: src, Dst: dst})
		}
	}
	return ops
}

func (b *Interface) Reserve(level physics.Level) []int {
	var cols []int
	for _, v := range level.VarOrder(physics.DataKind(b.Peer)) {
		if eq := physics.EqOffset(level, b.Peer, v); eq >= 0 {
			cols = append(cols, eq)
		}
	}
	return cols
}

// Function writes the continuity constraint into Peer's row (the Src side
// of Preprocess's fold), leaving Node's row (the Dst side) holding the
// combined conservation residual the fold just deposited there. Writing
// into Node's own row here would discard that combined balance the moment
// after it was folded in (spec.md §4.3 "sum then clear": the clear leaves
// the cleared row free for the BC's own equation, not the row it was
// folded into).
func (b *Interface) Function(level physics.Level, x []float64, f []float64) {
	psiA := physics.EqOffset(level, b.Node, nodedata.Potential)
	psiB := physics.EqOffset(level, b.Peer, nodedata.Potential)
	if psiA >= 0 && psiB >= 0 {
		f[psiB] = x[psiA] - x[psiB] - b.BandOffset
	}
	if b.Kind == InsulatorInsulator {
		return
	}
	d := b.Node.NodeData.(*nodedata.Data)
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	VT := physics.VT(T)
	factor := 1.0
	if b.Kind == Heterojunction {
		factor = math.Exp(-b.BandOffset / VT)
	}
	for _, v := range []nodedata.Variable{nodedata.Electron, nodedata.Hole} {
		a := physics.EqOffset(level, b.Node, v)
		c := physics.EqOffset(level, b.Peer, v)
		if a >= 0 && c >= 0 {
			f[c] = x[a] - factor*x[c]
		}
	}
}

// Jacobian mirrors Function: the continuity constraint's partials land in
// Peer's row, matching AssembleJacobian's fold of Peer's region Jacobian
// entries into Node's row (see assembly.foldWriter).
func (b *Interface) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {
	psiA := physics.EqOffset(level, b.Node, nodedata.Potential)
	psiB := physics.EqOffset(level, b.Peer, nodedata.Potential)
	if psiA >= 0 && psiB >= 0 {
		w.Add(psiB, psiA, 1)
		w.Add(psiB, psiB, -1)
	}
	if b.Kind == InsulatorInsulator {
		return
	}
	d := b.Node.NodeData.(*nodedata.Data)
	T := d.Get(nodedata.Temperature)
	if T <= 0 {
		T = 300
	}
	VT := physics.VT(T)
	factor := 1.0
	if b.Kind == Heterojunction {
		factor = math.Exp(-b.BandOffset / VT)
	}
	for _, v := range []nodedata.Variable{nodedata.Electron, nodedata.Hole} {
		a := physics.EqOffset(level, b.Node, v)
		c := physics.EqOffset(level, b.Peer, v)
		if a >= 0 && c >= 0 {
			w.Add(c, a, 1)
			w.Add(c, c, -factor)
		}
	}
}
