package fvm

import "testing"

func TestGhostSymmetry(t *testing.T) {
	m := newChainMesh(6, 3)
	g := NewGraph(m)
	if err := g.CheckGhostSymmetry(); err != nil {
		t.Fatalf("ghost symmetry invariant violated: %v", err)
	}
}

func TestInterfaceProducesGhostLink(t *testing.T) {
	m := newChainMesh(6, 3)
	g := NewGraph(m)

	// node 3 (the split point) should exist in both subdomain 0 and 1, and
	// each copy should ghost-link to the other.
	var n0, n1 *Node
	for _, n := range g.Nodes {
		if n.RootNode.Id == 3 {
			if n.SubdomainId == 0 {
				n0 = n
			} else {
				n1 = n
			}
		}
	}
	if n0 == nil || n1 == nil {
		t.Fatalf("expected both subdomain copies of the interface node to exist")
	}
	link, ok := n0.Ghosts[n1.Id]
	if !ok {
		t.Fatalf("node %d missing ghost link to peer %d", n0.Id, n1.Id)
	}
	back := n1.Ghosts[n0.Id]
	if back == nil || back.InterfaceArea != link.InterfaceArea {
		t.Fatalf("ghost link area not mutual")
	}
}

func TestOuterBoundaryAreaAccumulates(t *testing.T) {
	m := newChainMesh(4, 10) // splitAt beyond nElem => single subdomain
	g := NewGraph(m)
	for _, n := range g.Nodes {
		if n.RootNode.Id == 0 || n.RootNode.Id == 4 {
			if n.TotalCVBoundaryArea() <= 0 {
				t.Fatalf("expected boundary node %d to carry outer-boundary area", n.RootNode.Id)
			}
		}
	}
}

func TestDOFLayoutContiguous(t *testing.T) {
	m := newChainMesh(6, 3)
	g := NewGraph(m)
	varsFor := func(n *Node) VariableSet { return VariableSet{"psi"} }
	lay := g.Layout(1, varsFor, nil, nil)
	seen := make([]bool, lay.NDof)
	for _, n := range g.Nodes {
		if !n.IsValid() {
			t.Fatalf("node %d not assigned an offset", n.Id)
		}
		seen[n.GlobalOffset] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("gap in global offset partition at %d", i)
		}
	}
}
