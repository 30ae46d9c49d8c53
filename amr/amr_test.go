package amr

import (
	"testing"

	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
)

// chainElem/chainMesh is a 1D chain fixture with real per-element level
// and flag storage, letting these tests actually observe Mark/Enforce/
// Eliminate mutating mesh state (unlike fvm's own fixture, whose Flag/
// SetFlag are no-ops because fvm's tests never need AMR semantics).
type chainElem struct {
	id          int
	level       int
	left, right *chainElem
}

func (e *chainElem) Id() int                              { return e.id }
func (e *chainElem) SubdomainId() int                      { return 0 }
func (e *chainElem) Verts() []*mesh.Node                   { return nil }
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
func (e *chainElem) Level() int               { return e.level }
func (e *chainElem) Parent() mesh.Element     { return nil }
func (e *chainElem) Child(i int) mesh.Element { return nil }
func (e *chainElem) BuildEdge(i int) (a, b int) { return 0, 1 }
func (e *chainElem) NumEdges() int              { return 1 }
func (e *chainElem) NumFaces() int              { return 2 }
func (e *chainElem) FaceVerts(fi int) []int     { return []int{fi} }

type chainMesh struct {
	elems []mesh.Element
	flags map[mesh.Element]mesh.RefineFlag
}

func newChain(levels ...int) *chainMesh {
	m := &chainMesh{flags: make(map[mesh.Element]mesh.RefineFlag)}
	ces := make([]*chainElem, len(levels))
	for i, lv := range levels {
		ces[i] = &chainElem{id: i, level: lv}
	}
	for i := range ces {
		if i > 0 {
			ces[i].left = ces[i-1]
		}
		if i < len(ces)-1 {
			ces[i].right = ces[i+1]
		}
		m.elems = append(m.elems, ces[i])
	}
	return m
}

func (m *chainMesh) Elements() []mesh.Element { return m.elems }
func (m *chainMesh) Nodes() []*mesh.Node       { return nil }
func (m *chainMesh) Flag(e mesh.Element) mesh.RefineFlag { return m.flags[e] }
func (m *chainMesh) SetFlag(e mesh.Element, f mesh.RefineFlag) { m.flags[e] = f }

func constError(vals map[mesh.Element]float64) func(mesh.Element) float64 {
	return func(e mesh.Element) float64 { return vals[e] }
}

func TestErrorToleranceMarksOnlyElementsAboveThreshold(t *testing.T) {
	m := newChain(0, 0, 0)
	elems := m.Elements()
	errs := map[mesh.Element]float64{elems[0]: 0.1, elems[1]: 5.0, elems[2]: 0.2}

	ErrorTolerance{Tolerance: 1.0}.Mark(m, elems, constError(errs))

	if m.Flag(elems[0]) != mesh.DoNothing || m.Flag(elems[2]) != mesh.DoNothing {
		t.Fatalf("expected low-error elements to stay DoNothing")
	}
	if m.Flag(elems[1]) != mesh.Refine {
		t.Fatalf("expected the high-error element to be marked Refine")
	}
}

func TestErrorFractionMarksTopFraction(t *testing.T) {
	m := newChain(0, 0, 0, 0)
	elems := m.Elements()
	errs := map[mesh.Element]float64{elems[0]: 1, elems[1]: 4, elems[2]: 3, elems[3]: 2}

	ErrorFraction{Fraction: 0.5}.Mark(m, elems, constError(errs))

	refined := 0
	for _, e := range elems {
		if m.Flag(e) == mesh.Refine {
			refined++
		}
	}
	if refined != 2 {
		t.Fatalf("expected exactly 2 elements refined, got %d", refined)
	}
	if m.Flag(elems[1]) != mesh.Refine || m.Flag(elems[2]) != mesh.Refine {
		t.Fatalf("expected the two highest-error elements to be refined")
	}
}

func TestEnforceLevelMismatchUpgradesNeighbor(t *testing.T) {
	m := newChain(0, 0, 0)
	elems := m.Elements()
	m.SetFlag(elems[0], mesh.Refine) // elems[0] level 0 -> 1 after refine

	EnforceLevelMismatch(m, elems, 0)

	if m.Flag(elems[1]) != mesh.Refine {
		t.Fatalf("expected the level-0 neighbor of a refining element to be upgraded under maxMismatch=0")
	}
}

func TestEliminateIslandsClearsIsolatedMark(t *testing.T) {
	m := newChain(0, 0, 0)
	elems := m.Elements()
	m.SetFlag(elems[1], mesh.Refine) // both neighbors stay DoNothing at level 0

	EliminateIslands(m, elems)

	if m.Flag(elems[1]) != mesh.DoNothing {
		t.Fatalf("expected an isolated Refine mark with no supporting neighbor to be cleared")
	}
}

func TestMeanStddevRefinesOnlyOutliers(t *testing.T) {
	m := newChain(0, 0, 0, 0, 0)
	elems := m.Elements()
	errs := map[mesh.Element]float64{
		elems[0]: 1, elems[1]: 1, elems[2]: 1, elems[3]: 1, elems[4]: 100,
	}

	MeanStddev{K: 1.0}.Mark(m, elems, constError(errs))

	if m.Flag(elems[4]) != mesh.Refine {
		t.Fatalf("expected the outlier to be refined")
	}
	if m.Flag(elems[0]) == mesh.Refine {
		t.Fatalf("expected a non-outlier to remain unmarked")
	}
}
