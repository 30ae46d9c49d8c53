package linalg

import (
	"testing"

	"github.com/cpmech/gosl/la"
)

func denseGet(m *la.CCMatrix, row, col int) float64 {
	sum := 0.0
	for k := m.Ap[col]; k < m.Ap[col+1]; k++ {
		if m.Ai[k] == row {
			sum += m.Ax[k]
		}
	}
	return sum
}

func TestMatrixAssemblySumsAddedEntries(t *testing.T) {
	m := NewMatrix(2, 2, 4)
	m.SetValue(0, 0, 1.0, Add)
	m.SetValue(0, 0, 2.0, Add)
	m.SetValue(1, 1, 5.0, Add)
	m.AssemblyBegin(Flush)
	cc := m.AssemblyEnd(Final)

	if got := denseGet(cc, 0, 0); got != 3.0 {
		t.Fatalf("expected duplicate Add entries to sum to 3, got %v", got)
	}
	if got := denseGet(cc, 1, 1); got != 5.0 {
		t.Fatalf("expected (1,1) entry 5, got %v", got)
	}
}

// TestRequireModePanicsOnIllegalTransition checks the Insert/Add mode
// sentinel: switching mode without an intervening Flush must panic, the
// ordering discipline every Jacobian writer in package assembly relies on.
func TestRequireModePanicsOnIllegalTransition(t *testing.T) {
	m := NewMatrix(1, 1, 1)
	m.SetValue(0, 0, 1.0, Add)
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected a panic switching Add -> Insert without a Flush")
		}
	}()
	m.SetValue(0, 0, 1.0, Insert)
}

func TestDiagonalScaleMultipliesEachRow(t *testing.T) {
	v := NewVector(3)
	v.V[0], v.V[1], v.V[2] = 1, 2, 3
	v.DiagonalScale([]float64{2, 0.5, 10})
	if v.V[0] != 2 || v.V[1] != 1 || v.V[2] != 30 {
		t.Fatalf("unexpected scaled vector %v", v.V)
	}
}

func TestDiagonalScaleMatrixScalesByRowIndex(t *testing.T) {
	m := NewMatrix(2, 2, 2)
	m.SetValue(0, 1, 4.0, Add)
	m.SetValue(1, 0, 6.0, Add)
	m.AssemblyBegin(Flush)
	cc := m.AssemblyEnd(Final)

	DiagonalScaleMatrix(cc, []float64{2, 3})
	if got := denseGet(cc, 0, 1); got != 8.0 {
		t.Fatalf("expected row 0 entry scaled by 2 to 8, got %v", got)
	}
	if got := denseGet(cc, 1, 0); got != 18.0 {
		t.Fatalf("expected row 1 entry scaled by 3 to 18, got %v", got)
	}
}
