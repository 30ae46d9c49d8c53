// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fvm implements the finite-volume control-volume graph: per
// subdomain CV nodes, neighbor edges, CV surface areas, and the ghost-node
// linkage that carries flux continuity across subdomain interfaces
// (spec.md §3, §4.1). Ground: fem.Domain's node/equation bookkeeping
// (element.go, domain.go), generalized from FEM nodes to FVM control
// volumes, with the arena-of-ids scheme Design Notes §9 recommends instead
// of a cyclic pointer graph.
package fvm

import "github.com/aboutzhao/Genius-TCAD-Open/mesh"

const unassigned = -1

// GhostLink records the area shared across a subdomain interface between
// two FVM_Nodes that sit on the same geometric Node but in different
// subdomains, or between a node and the outer boundary (PeerId == NullPeer).
type GhostLink struct {
	PeerId          int // arena id of the peer FVM_Node, or NullPeer
	OtherSubdomain  int
	InterfaceArea   float64
}

// NullPeer is the sentinel peer id recording area on the outer boundary.
const NullPeer = -1

// ElemRef is one (element, local-index) pair in elem_has_this_node.
type ElemRef struct {
	Elem      mesh.Element
	LocalVert int
}

// Node is one control volume: an FVM_Node keyed by (geometric Node,
// subdomain). All FVM_Nodes sharing a RootNode reference each other
// mutually through Ghosts (invariant 1, spec.md §8).
type Node struct {
	Id           int // stable arena id
	RootNode     *mesh.Node
	SubdomainId  int
	BoundaryId   int // -1 == "none"
	Volume       float64

	ElemHasThisNode []ElemRef

	// NodeNeighbor maps a geometric-neighbor *mesh.Node to the arena id of
	// the peer FVM_Node, restricted to neighbors within the same subdomain.
	NodeNeighbor map[*mesh.Node]int

	// CVSurfaceArea maps a neighbor's arena id to the CV-face area shared
	// with that neighbor.
	CVSurfaceArea map[int]float64

	// Ghosts maps the peer FVM_Node arena id (same RootNode, different
	// subdomain) to the interface area; a NullPeer key records outer-
	// boundary area (invariant 2, spec.md §8).
	Ghosts map[int]*GhostLink

	GlobalOffset int
	LocalOffset  int

	NodeData NodeDataHolder // owned; see package nodedata for the concrete type
}

// NodeDataHolder is satisfied by *nodedata.Data; kept as a narrow interface
// here so fvm does not import nodedata.
type NodeDataHolder interface {
	RegionKind() int
}

func newNode(id int, root *mesh.Node, subdomain int) *Node {
	return &Node{
		Id:            id,
		RootNode:      root,
		SubdomainId:   subdomain,
		BoundaryId:    -1,
		NodeNeighbor:  make(map[*mesh.Node]int),
		CVSurfaceArea: make(map[int]float64),
		Ghosts:        make(map[int]*GhostLink),
		GlobalOffset:  unassigned,
		LocalOffset:   unassigned,
	}
}

// IsValid reports invariant 3: both offsets must be assigned.
func (n *Node) IsValid() bool {
	return n.GlobalOffset != unassigned && n.LocalOffset != unassigned
}

// OnProcessor reports invariant 4: root_node.processor_id == this process.
func (n *Node) OnProcessor(proc int) bool {
	return n.RootNode.ProcessorId == proc
}

// TotalCVBoundaryArea sums neighbor CV-face areas and outer-boundary ghost
// area, the left-hand side of invariant 2 (spec.md §8).
func (n *Node) TotalCVBoundaryArea() float64 {
	total := 0.0
	for _, a := range n.CVSurfaceArea {
		total += a
	}
	for _, g := range n.Ghosts {
		if g.PeerId == NullPeer {
			total += g.InterfaceArea
		}
	}
	return total
}
