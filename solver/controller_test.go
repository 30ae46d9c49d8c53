package solver

import (
	"math"
	"testing"

	"github.com/aboutzhao/Genius-TCAD-Open/config"
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
	"github.com/aboutzhao/Genius-TCAD-Open/nodedata"
	"github.com/aboutzhao/Genius-TCAD-Open/physics"
)

func newSolverTestNode(id int) *fvm.Node {
	d := nodedata.New(nodedata.Semiconductor)
	return &fvm.Node{
		Id:            id,
		RootNode:      &mesh.Node{Id: id, X: [3]float64{float64(id), 0, 0}},
		Volume:        1e-18,
		NodeNeighbor:  map[*mesh.Node]int{},
		CVSurfaceArea: map[int]float64{},
		Ghosts:        map[int]*fvm.GhostLink{},
		GlobalOffset:  id * 6,
		LocalOffset:   id * 6,
		NodeData:      d,
	}
}

// TestProjectFloorsEnforcesPositivityAndTemperatureFloors is the regression
// test for the projection step spec.md §4.4 step 4 names: carrier
// densities, lattice temperature, and carrier temperatures must each be
// clamped to their own floor independently of the damping scheme in use.
func TestProjectFloorsEnforcesPositivityAndTemperatureFloors(t *testing.T) {
	n := newSolverTestNode(0)
	level := physics.NewEBM3()
	g := &fvm.Graph{Nodes: []*fvm.Node{n}}

	x := make([]float64, 6)
	nEq := physics.EqOffset(level, n, nodedata.Electron)
	pEq := physics.EqOffset(level, n, nodedata.Hole)
	tEq := physics.EqOffset(level, n, nodedata.Temperature)
	tnEq := physics.EqOffset(level, n, nodedata.ETemp)
	tpEq := physics.EqOffset(level, n, nodedata.HTemp)

	x[nEq] = -1
	x[pEq] = 0
	x[tEq] = 0
	x[tnEq] = 0
	x[tpEq] = 0

	text := 300.0
	projectFloors(level, g, x, text)

	if x[nEq] != physics.MinCarrier {
		t.Fatalf("expected electron floor %v, got %v", physics.MinCarrier, x[nEq])
	}
	if x[pEq] != physics.MinCarrier {
		t.Fatalf("expected hole floor %v, got %v", physics.MinCarrier, x[pEq])
	}
	if x[tEq] != text-50 {
		t.Fatalf("expected lattice temperature floor %v, got %v", text-50, x[tEq])
	}
	if x[tnEq] != 0.9*text || x[tpEq] != 0.9*text {
		t.Fatalf("expected carrier-temperature floor %v, got Tn=%v Tp=%v", 0.9*text, x[tnEq], x[tpEq])
	}
}

// TestApplyDampingLogPotentialShrinksLargeSteps checks the logarithmic
// potential damping scheme: a potential update many VT wide is shrunk
// (never grown or flipped in sign) toward the thermal-voltage scale.
func TestApplyDampingLogPotentialShrinksLargeSteps(t *testing.T) {
	n := newSolverTestNode(0)
	level := physics.PoissonLevel{}
	g := &fvm.Graph{Nodes: []*fvm.Node{n}}

	cfg := config.Default()
	cfg.Damping = config.LogPotentialDamping
	text := 300.0
	vt := physics.VT(text)

	x := []float64{0}
	delta := []float64{10 * vt}
	applyDamping(cfg, level, g, x, delta, text)

	if math.Abs(delta[0]) >= 10*vt {
		t.Fatalf("expected log-potential damping to shrink a 10-VT step, got %v", delta[0])
	}
	if delta[0] <= 0 {
		t.Fatalf("expected damped step to keep its original sign, got %v", delta[0])
	}
}

// TestApplyDampingPositiveDensityClipsUnitStep checks the positive-density
// damping scheme's outright clip to +/-1.
func TestApplyDampingPositiveDensityClipsUnitStep(t *testing.T) {
	n := newSolverTestNode(0)
	level := physics.PoissonLevel{}
	g := &fvm.Graph{Nodes: []*fvm.Node{n}}

	cfg := config.Default()
	cfg.Damping = config.PositiveDensity
	x := []float64{0}
	delta := []float64{5}
	applyDamping(cfg, level, g, x, delta, 300)
	if delta[0] != 1 {
		t.Fatalf("expected PositiveDensity damping to clip to 1, got %v", delta[0])
	}
}
