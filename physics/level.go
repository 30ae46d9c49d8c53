// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"math"

	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
)

func sqrt(v float64) float64 { return math.Sqrt(v) }

// RowOp is a (src, dst) pair the assembly driver must sum then clear,
// reported by a Preprocess pass (spec.md §4.2/§4.3).
type RowOp struct {
	Src, Dst int
}

// Level is the trait every physics level (Poisson, DDM1, DDM2, EBM3, AC,
// RIC, TID) implements, dispatched per region kind. Sentinel methods for a
// region kind a level does not touch are no-ops (Design Notes §9).
type Level interface {
	Name() string

	// SupportsKind reports whether this level has any volume contribution
	// for the given region kind.
	SupportsKind(k nodedata.Kind) bool

	// VarOrder is the deterministic ordered list of solution variables this
	// level assembles for region kind k (spec.md §4.1 "ebm_variables"); DOF
	// layout and every per-node equation offset in this package derive from
	// it via EqOffset.
	VarOrder(k nodedata.Kind) []nodedata.Variable

	// FillValue deposits the current nodal values into x and the row-scale
	// characteristic magnitude into scale, for every DOF this CV owns under
	// this level (spec.md §4.2 step 1, §4.2 "Row scaling").
	FillValue(n *fvm.Node, x, scale []float64)

	// FunctionPreprocess reports rows to fold (interface coupling) before
	// residual assembly; empty for levels/kinds with nothing to fold.
	FunctionPreprocess(n *fvm.Node) []RowOp

	// Function adds this CV's volume residual contribution into f.
	Function(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, f []float64)

	// JacobianPreprocess mirrors FunctionPreprocess for the Jacobian.
	JacobianPreprocess(n *fvm.Node) []RowOp

	// Jacobian adds this CV's volume Jacobian contribution via w.
	Jacobian(n *fvm.Node, edges []Edge, x []float64, tc TimeCtx, w JacobianWriter)
}

// Edge is one in-region neighbor of a CV together with the shared CV-face
// area, the per-edge unit the Scharfetter-Gummel flux and the Poisson
// Laplacian both iterate over (spec.md §4.2).
type Edge struct {
	Peer *fvm.Node
	Area float64
}

// Edges resolves n's node_neighbor ids against the owning arena, pairing
// each peer with its CV-face area. The assembly driver calls this once per
// CV per pass and hands the slice to every level's Function/Jacobian.
func Edges(g *fvm.Graph, n *fvm.Node) []Edge {
	out := make([]Edge, 0, len(n.NodeNeighbor))
	for _, peerId := range n.NodeNeighbor {
		out = append(out, Edge{Peer: g.Nodes[peerId], Area: n.CVSurfaceArea[peerId]})
	}
	return out
}

// EqOffset resolves the global equation row for variable v on node n under
// level's variable ordering, or -1 if v is not live for n's region kind.
func EqOffset(level Level, n *fvm.Node, v nodedata.Variable) int {
	order := level.VarOrder(DataKind(n))
	for i, ov := range order {
		if ov == v {
			return n.GlobalOffset + i
		}
	}
	return -1
}

// DataKind extracts the nodedata.Kind of a CV's owned NodeData.
func DataKind(n *fvm.Node) nodedata.Kind {
	return n.NodeData.(*nodedata.Data).Kind()
}

// Dist computes the Euclidean distance between two CVs' geometric nodes,
// the d_ij of spec.md §4.2's discretized Poisson/continuity terms.
func Dist(a, b *fvm.Node) float64 {
	dx := a.RootNode.X[0] - b.RootNode.X[0]
	dy := a.RootNode.X[1] - b.RootNode.X[1]
	dz := a.RootNode.X[2] - b.RootNode.X[2]
	return sqrt(dx*dx + dy*dy + dz*dz)
}

// JacobianWriter is the narrow surface a region/boundary operator needs to
// deposit Jacobian entries without depending on package linalg or gosl/la
// directly (keeping physics free of assembly/ordering concerns, per Design
// Notes §9's typed builder handle).
type JacobianWriter interface {
	Add(row, col int, v float64)
}
