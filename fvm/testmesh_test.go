package fvm

import "github.com/aboutzhao/Genius-TCAD-Open/mesh"

// fakeElem is a minimal 1D two-node "line" element used by the CV-graph
// tests; it satisfies mesh.Element without needing a real Mesher.
type fakeElem struct {
	id      int
	sub     int
	verts   []*mesh.Node
	left    *fakeElem // neighbor across face 0 (nil on outer boundary)
	right   *fakeElem // neighbor across face 1
}

func (e *fakeElem) Id() int          { return e.id }
func (e *fakeElem) SubdomainId() int { return e.sub }
func (e *fakeElem) Verts() []*mesh.Node { return e.verts }
func (e *fakeElem) NeighborAcrossFace(fi int) mesh.Element {
	if fi == 0 {
		if e.left == nil {
			return nil
		}
		return e.left
	}
	if e.right == nil {
		return nil
	}
	return e.right
}
func (e *fakeElem) Level() int          { return 0 }
func (e *fakeElem) Parent() mesh.Element { return nil }
func (e *fakeElem) Child(i int) mesh.Element { return nil }
func (e *fakeElem) BuildEdge(i int) (a, b int) { return 0, 1 }
func (e *fakeElem) NumEdges() int { return 1 }
func (e *fakeElem) NumFaces() int { return 2 }
func (e *fakeElem) FaceVerts(fi int) []int {
	if fi == 0 {
		return []int{0}
	}
	return []int{1}
}

// fakeMesh is a 1D chain of nElem elements split into two subdomains at
// element splitAt, giving exactly one subdomain interface to exercise
// ghost_nodes.
type fakeMesh struct {
	elems []mesh.Element
	nodes []*mesh.Node
}

func newChainMesh(nElem int, splitAt int) *fakeMesh {
	fm := &fakeMesh{}
	for i := 0; i <= nElem; i++ {
		fm.nodes = append(fm.nodes, &mesh.Node{Id: i, X: [3]float64{float64(i), 0, 0}})
	}
	fes := make([]*fakeElem, nElem)
	for i := 0; i < nElem; i++ {
		sub := 0
		if i >= splitAt {
			sub = 1
		}
		fes[i] = &fakeElem{id: i, sub: sub, verts: []*mesh.Node{fm.nodes[i], fm.nodes[i+1]}}
	}
	for i := 0; i < nElem; i++ {
		if i > 0 {
			fes[i].left = fes[i-1]
		}
		if i < nElem-1 {
			fes[i].right = fes[i+1]
		}
	}
	for _, fe := range fes {
		fm.elems = append(fm.elems, fe)
	}
	return fm
}

func (fm *fakeMesh) Elements() []mesh.Element { return fm.elems }
func (fm *fakeMesh) Nodes() []*mesh.Node       { return fm.nodes }
func (fm *fakeMesh) Flag(e mesh.Element) mesh.RefineFlag          { return mesh.DoNothing }
func (fm *fakeMesh) SetFlag(e mesh.Element, f mesh.RefineFlag)     {}
