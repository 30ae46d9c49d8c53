package assembly

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/la"
	"github.com/stretchr/testify/require"

	bcpkg "github.com/aboutzhao/Genius-TCAD-Open/bc"
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

// chainElem/chainMesh are a two-element, two-subdomain 1D fixture: nodes
// 0-1-2, the first element in subdomain 0 and the second in subdomain 1, so
// node 1 gets two FVM_Node copies linked by a subdomain interface -- just
// enough to exercise bc.Interface without a real Mesher.
type chainElem struct {
	id, sub     int
	verts       []*mesh.Node
	left, right *chainElem
}

func (e *chainElem) Id() int             { return e.id }
func (e *chainElem) SubdomainId() int    { return e.sub }
func (e *chainElem) Verts() []*mesh.Node { return e.verts }
func (e *chainElem) NeighborAcrossFace(fi int) mesh.Element {
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
func (e *chainElem) Level() int                 { return 0 }
func (e *chainElem) Parent() mesh.Element       { return nil }
func (e *chainElem) Child(i int) mesh.Element   { return nil }
func (e *chainElem) BuildEdge(i int) (a, b int) { return 0, 1 }
func (e *chainElem) NumEdges() int              { return 1 }
func (e *chainElem) NumFaces() int              { return 2 }
func (e *chainElem) FaceVerts(fi int) []int {
	if fi == 0 {
		return []int{0}
	}
	return []int{1}
}

type chainMesh struct {
	elems []mesh.Element
	nodes []*mesh.Node
}

func newTwoSubdomainChain() *chainMesh {
	n0 := &mesh.Node{Id: 0, X: [3]float64{0, 0, 0}}
	n1 := &mesh.Node{Id: 1, X: [3]float64{1, 0, 0}}
	n2 := &mesh.Node{Id: 2, X: [3]float64{2, 0, 0}}
	e0 := &chainElem{id: 0, sub: 0, verts: []*mesh.Node{n0, n1}}
	e1 := &chainElem{id: 1, sub: 1, verts: []*mesh.Node{n1, n2}}
	e0.right, e1.left = e1, e0
	return &chainMesh{elems: []mesh.Element{e0, e1}, nodes: []*mesh.Node{n0, n1, n2}}
}

func (m *chainMesh) Elements() []mesh.Element                  { return m.elems }
func (m *chainMesh) Nodes() []*mesh.Node                       { return m.nodes }
func (m *chainMesh) Flag(e mesh.Element) mesh.RefineFlag       { return mesh.DoNothing }
func (m *chainMesh) SetFlag(e mesh.Element, f mesh.RefineFlag) {}

func ccGet(m *la.CCMatrix, row, col int) float64 {
	sum := 0.0
	for k := m.Ap[col]; k < m.Ap[col+1]; k++ {
		if m.Ai[k] == row {
			sum += m.Ax[k]
		}
	}
	return sum
}

// TestHomojunctionInterfaceJacobianMatchesFiniteDifferenceOfResidual builds
// a two-subdomain chain with a Homojunction bc.Interface linking the shared
// node, and checks that AssembleJacobian is the tangent AssembleFunction
// actually has everywhere, including the folded interface rows -- the
// consistency the unfolded Jacobian used to break.
func TestHomojunctionInterfaceJacobianMatchesFiniteDifferenceOfResidual(t *testing.T) {
	g := fvm.NewGraph(newTwoSubdomainChain())
	for _, n := range g.Nodes {
		n.NodeData = nodedata.New(nodedata.Semiconductor)
		d := n.NodeData.(*nodedata.Data)
		d.Set(nodedata.Temperature, 300)
		d.SetAux("ni", 1e16)
		d.SetAux("tau", 1e-9)
		d.SetAux("ndop", 1e21)
	}

	level := physics.NewDDM1()
	varsFor := func(n *fvm.Node) fvm.VariableSet { return fvm.VariableSet{"psi", "n", "p"} }
	lay := g.Layout(1, varsFor, nil, nil)
	drv := NewDriver(g, level, lay)

	var node0, node1a, node1b, node2 *fvm.Node
	for _, n := range g.Nodes {
		switch {
		case n.RootNode.Id == 0:
			node0 = n
		case n.RootNode.Id == 2:
			node2 = n
		case n.RootNode.Id == 1 && n.SubdomainId == 0:
			node1a = n
		case n.RootNode.Id == 1 && n.SubdomainId == 1:
			node1b = n
		}
	}
	if node0 == nil || node1a == nil || node1b == nil || node2 == nil {
		t.Fatalf("fixture did not produce the expected four CVs")
	}

	drv.AttachBC(node0.Id, &bcpkg.Ohmic{Node: node0, Applied: 0})
	drv.AttachBC(node2.Id, &bcpkg.Ohmic{Node: node2, Applied: 0.3})
	drv.AttachBC(node1a.Id, &bcpkg.Interface{Kind: bcpkg.Homojunction, Node: node1a, Peer: node1b})

	x := make([]float64, lay.NDof)
	for _, n := range g.Nodes {
		x[physics.EqOffset(level, n, nodedata.Potential)] = 0.1
		x[physics.EqOffset(level, n, nodedata.Electron)] = 1e16
		x[physics.EqOffset(level, n, nodedata.Hole)] = 1e16
	}

	jac := drv.AssembleJacobian(x, physics.TimeCtx{}, nil)

	// Direct check of the Poisson row's coupling to carrier density
	// (∂F_psi/∂n = +Q*V, ∂F_psi/∂p = -Q*V): node1a's own row is neither
	// masked by an Ohmic self-clear nor folded away by the interface, so
	// its Jacobian entries are exactly DDM1Level.Jacobian's own
	// contribution for that CV. A regression that drops this coupling
	// (e.g. PoissonLevel.Jacobian trying and failing to resolve nRow/pRow
	// against its own bare VarOrder) would leave these at exactly zero,
	// which the loose finite-difference tolerance below is too coarse to
	// catch on its own.
	psiRow1a := physics.EqOffset(level, node1a, nodedata.Potential)
	nRow1a := physics.EqOffset(level, node1a, nodedata.Electron)
	pRow1a := physics.EqOffset(level, node1a, nodedata.Hole)
	wantDPsiDn := physics.Q * node1a.Volume
	wantDPsiDp := -physics.Q * node1a.Volume
	require.InDelta(t, wantDPsiDn, ccGet(jac, psiRow1a, nRow1a), 1e-6*math.Abs(wantDPsiDn),
		"Poisson row's d/dn coupling")
	require.InDelta(t, wantDPsiDp, ccGet(jac, psiRow1a, pRow1a), 1e-6*math.Abs(wantDPsiDp),
		"Poisson row's d/dp coupling")

	for j := 0; j < lay.NDof; j++ {
		step := 1e-6
		if math.Abs(x[j]) > 1 {
			step = 1e-6 * math.Abs(x[j])
		}
		xp := append([]float64{}, x...)
		xm := append([]float64{}, x...)
		xp[j] += step
		xm[j] -= step
		fp := drv.AssembleFunction(xp, physics.TimeCtx{})
		fm := drv.AssembleFunction(xm, physics.TimeCtx{})
		for row := 0; row < lay.NDof; row++ {
			got := ccGet(jac, row, j)
			want := (fp.V[row] - fm.V[row]) / (2 * step)
			tol := 1e-3*math.Max(1, math.Abs(want)) + 1e-6
			if math.Abs(got-want) > tol {
				t.Fatalf("Jacobian[%d][%d]=%v does not match finite-difference %v (step=%v)", row, j, got, want, step)
			}
		}
	}
}
