package assembly

import (
	"testing"

	bcpkg "github.com/aboutzhao/Genius-TCAD-Open/bc"
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// lineElem/lineMesh are a minimal two-node single-element 1D fixture, just
// enough to exercise fvm.NewGraph without a real Mesher (mirrors the
// pattern fvm's own package tests use for the same purpose).
type lineElem struct {
	verts []*mesh.Node
}

func (e *lineElem) Id() int                             { return 0 }
func (e *lineElem) SubdomainId() int                     { return 0 }
func (e *lineElem) Verts() []*mesh.Node                  { return e.verts }
func (e *lineElem) NeighborAcrossFace(fi int) mesh.Element { return nil }
func (e *lineElem) Level() int                           { return 0 }
func (e *lineElem) Parent() mesh.Element                 { return nil }
func (e *lineElem) Child(i int) mesh.Element             { return nil }
func (e *lineElem) BuildEdge(i int) (a, b int)            { return 0, 1 }
func (e *lineElem) NumEdges() int                         { return 1 }
func (e *lineElem) NumFaces() int                         { return 2 }
func (e *lineElem) FaceVerts(fi int) []int {
	if fi == 0 {
		return []int{0}
	}
	return []int{1}
}

type lineMesh struct {
	elems []mesh.Element
	nodes []*mesh.Node
}

func newLineMesh() *lineMesh {
	n0 := &mesh.Node{Id: 0, X: [3]float64{0, 0, 0}}
	n1 := &mesh.Node{Id: 1, X: [3]float64{1, 0, 0}}
	e := &lineElem{verts: []*mesh.Node{n0, n1}}
	return &lineMesh{elems: []mesh.Element{e}, nodes: []*mesh.Node{n0, n1}}
}

func (m *lineMesh) Elements() []mesh.Element                  { return m.elems }
func (m *lineMesh) Nodes() []*mesh.Node                        { return m.nodes }
func (m *lineMesh) Flag(e mesh.Element) mesh.RefineFlag        { return mesh.DoNothing }
func (m *lineMesh) SetFlag(e mesh.Element, f mesh.RefineFlag)  {}

func TestAssembleFunctionHonorsDirichletAtBothEnds(t *testing.T) {
	g := fvm.NewGraph(newLineMesh())
	for _, n := range g.Nodes {
		n.NodeData = nodedata.New(nodedata.Vacuum)
	}
	g.AccumulateSurfaceArea(g.Nodes[0].Id, g.Nodes[1].Id, 1.0)

	level := physics.PoissonLevel{}
	varsFor := func(n *fvm.Node) fvm.VariableSet { return fvm.VariableSet{"psi"} }
	lay := g.Layout(1, varsFor, nil, nil)

	drv := NewDriver(g, level, lay)
	drv.AttachBC(g.Nodes[0].Id, &bcpkg.Dirichlet{Node: g.Nodes[0], Applied: 0.0})
	drv.AttachBC(g.Nodes[1].Id, &bcpkg.Dirichlet{Node: g.Nodes[1], Applied: 1.0})

	x := make([]float64, lay.NDof)
	x[g.Nodes[0].GlobalOffset] = 0.0
	x[g.Nodes[1].GlobalOffset] = 1.0

	f := drv.AssembleFunction(x, physics.TimeCtx{})
	if f.V[g.Nodes[0].GlobalOffset] != 0 {
		t.Fatalf("expected node 0 Dirichlet residual 0, got %v", f.V[g.Nodes[0].GlobalOffset])
	}
	if f.V[g.Nodes[1].GlobalOffset] != 0 {
		t.Fatalf("expected node 1 Dirichlet residual 0, got %v", f.V[g.Nodes[1].GlobalOffset])
	}
}
