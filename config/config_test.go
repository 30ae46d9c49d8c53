package config

import "testing"

func TestDefaultProducesSaneNewtonAndToleranceDefaults(t *testing.T) {
	c := Default()
	if c.MaxIteration <= 0 {
		t.Fatalf("expected a positive MaxIteration, got %v", c.MaxIteration)
	}
	if c.Tol.PoissonAbs <= 0 || c.Tol.ElectrodeAbs <= 0 {
		t.Fatalf("expected positive default tolerances, got %+v", c.Tol)
	}
	if c.Damping != LogPotentialDamping {
		t.Fatalf("expected LogPotentialDamping default, got %v", c.Damping)
	}
}

// TestIterationTolerClampsBetweenMachineEpsAndOnePercent checks both arms
// of IterationToler's clamp: a loose RelativeToler hits the 0.01 ceiling,
// a pathologically tight one falls back to the machine-epsilon floor.
func TestIterationTolerClampsBetweenMachineEpsAndOnePercent(t *testing.T) {
	c := Default()
	c.Eps = 1e-16

	c.RelativeToler = 0.5
	if got := c.IterationToler(); got != 0.01 {
		t.Fatalf("expected IterationToler capped at 0.01, got %v", got)
	}

	c.RelativeToler = 1e-20
	want := 10.0 * c.Eps / c.RelativeToler
	if got := c.IterationToler(); got != want {
		t.Fatalf("expected IterationToler floor %v, got %v", want, got)
	}
}
