package circuit

import "testing"

func TestSolveIdealVoltageSourceHasZeroBranchImpedance(t *testing.T) {
	b := NewBridge()
	b.InitSpiceData(0, Source{Vsrc: 1.0})

	i, err := b.Solve(map[int]float64{0: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i[0] != 0 {
		t.Fatalf("expected 0 current for an ideal voltage source, got %v", i[0])
	}
}

func TestSolveCurrentSourceReturnsFixedCurrent(t *testing.T) {
	b := NewBridge()
	b.InitSpiceData(1, Source{IsCurrent: true, Isrc: 2.5e-6})

	i, err := b.Solve(map[int]float64{1: 0.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if i[1] != 2.5e-6 {
		t.Fatalf("expected fixed current 2.5e-6, got %v", i[1])
	}
}

func TestSolveResistiveBranchDrivesCurrentTowardVsrc(t *testing.T) {
	b := NewBridge()
	b.InitSpiceData(2, Source{R: 100, Vsrc: 1.0})

	i, err := b.Solve(map[int]float64{2: 0.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 / 100
	if diff := i[2] - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected branch current %v, got %v", want, i[2])
	}
}

func TestSaveLoadSpiceDataRoundtrip(t *testing.T) {
	b := NewBridge()
	b.InitSpiceData(0, Source{R: 50, Vsrc: 1.0})
	b.SetTimeStep(1e-9)

	if _, err := b.Solve(map[int]float64{0: 0.2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.SaveSpiceData()
	before, _, _, _ := b.ExportTerminalCurrent(0)

	if _, err := b.Solve(map[int]float64{0: 0.9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.LoadSpiceData()
	after, _, _, _ := b.ExportTerminalCurrent(0)

	if after != before {
		t.Fatalf("expected LoadSpiceData to restore the saved current %v, got %v", before, after)
	}
}

func TestImportSourceReturnsRegisteredSource(t *testing.T) {
	b := NewBridge()
	src := Source{R: 10, Vsrc: 3.3}
	b.InitSpiceData(5, src)
	if got := b.ImportSource(5); got.Vsrc != 3.3 {
		t.Fatalf("expected Vsrc 3.3, got %v", got.Vsrc)
	}
	if got := b.ImportSource(99); got != (Source{}) {
		t.Fatalf("expected zero Source for unregistered electrode")
	}
}
