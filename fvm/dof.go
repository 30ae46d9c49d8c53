// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fvm

import "sort"

// VariableSet is the deterministic ordered list of solution variables a
// region kind carries for a given solver kind (spec.md §4.1 "ebm_variables").
type VariableSet []string

// Layout is the result of one DOF-layout pass: contiguous global offsets
// for every live CV, plus the extra electrode DOFs appended after them.
type Layout struct {
	NDof        int
	NodeVars    map[int]VariableSet // arena id -> its variable set
	ElectrodeEq map[int]int         // boundary-condition id -> extra DOF offset
	HaloRanges  []HaloRange         // off-processor neighbor DOF ranges
}

// HaloRange describes a contiguous range of off-processor DOFs that must be
// gathered/scattered for halo exchange (spec.md §4.1).
type HaloRange struct {
	Proc  int
	Start int
	Count int
}

// varsFor is supplied by the caller (it depends on solver kind and region
// kind, which live in package config/physics, both of which would create an
// import cycle if fvm depended on them directly).
type VarsForFunc func(n *Node) VariableSet

// ElectrodeDOFFunc reports how many extra DOFs a boundary condition with id
// bcId contributes (0, 1, or 2 for an AC complex pair); supplied by the bc
// package through the same indirection as VarsForFunc.
type ElectrodeDOFFunc func(bcId int) int

// Layout walks CVs by geometric node id within each processor partition,
// processors concatenated (spec.md §4.1), assigning contiguous
// GlobalOffset/LocalOffset. Electrode DOFs are appended after all node DOFs.
func (g *Graph) Layout(nproc int, varsFor VarsForFunc, electrodeIds []int, electrodeDOF ElectrodeDOFFunc) *Layout {
	lay := &Layout{NodeVars: make(map[int]VariableSet), ElectrodeEq: make(map[int]int)}

	// bucket nodes by owning processor, each bucket sorted by root node id
	byProc := make(map[int][]*Node)
	for _, n := range g.Nodes {
		byProc[n.RootNode.ProcessorId] = append(byProc[n.RootNode.ProcessorId], n)
	}

	offset := 0
	for proc := 0; proc < nproc; proc++ {
		bucket := byProc[proc]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].RootNode.Id < bucket[j].RootNode.Id })
		for _, n := range bucket {
			vars := varsFor(n)
			lay.NodeVars[n.Id] = vars
			n.GlobalOffset = offset
			n.LocalOffset = offset
			offset += len(vars)
		}
	}

	for _, id := range electrodeIds {
		lay.ElectrodeEq[id] = offset
		offset += electrodeDOF(id)
	}

	lay.NDof = offset
	return lay
}

// SparsityPattern lists, for CV n, every column index its Jacobian row may
// touch: itself, each in-region neighbor, each ghost peer, and (if it is a
// boundary/interface row) the owning BC's extra DOF. Pattern is reserved
// once before the first assembly; spec.md §4.1 forbids later structural
// growth.
func (g *Graph) SparsityPattern(lay *Layout, bcExtraEq func(n *Node) []int) map[int][]int {
	pattern := make(map[int][]int, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.IsValid() {
			continue
		}
		seen := map[int]bool{n.GlobalOffset: true}
		cols := []int{n.GlobalOffset}
		addNeighbor := func(peerId int) {
			if peerId == NullPeer {
				return
			}
			peer := g.Nodes[peerId]
			if !peer.IsValid() {
				return
			}
			if !seen[peer.GlobalOffset] {
				seen[peer.GlobalOffset] = true
				cols = append(cols, peer.GlobalOffset)
			}
		}
		for _, peerId := range n.NodeNeighbor {
			addNeighbor(peerId)
		}
		for peerId := range n.Ghosts {
			addNeighbor(peerId)
		}
		if bcExtraEq != nil {
			for _, eq := range bcExtraEq(n) {
				if !seen[eq] {
					seen[eq] = true
					cols = append(cols, eq)
				}
			}
		}
		pattern[n.GlobalOffset] = cols
	}
	return pattern
}

// NnzCount sums the per-row nonzero counts of a sparsity pattern, the
// capacity the assembly driver reserves in the Jacobian triplet.
func NnzCount(pattern map[int][]int) int {
	n := 0
	for _, cols := range pattern {
		n += len(cols)
	}
	return n
}
