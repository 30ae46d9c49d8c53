package physics

import (
	"math"
	"testing"
)

// TestBernoulliScalarIdentity checks the exact algebraic identity
// B(x) - B(-x) == -x that the Scharfetter-Gummel Bernoulli function
// satisfies for every x, independent of the series-vs-closed-form branch
// bernoulliScalar picks.
func TestBernoulliScalarIdentity(t *testing.T) {
	for _, x := range []float64{0.001, 0.5, 2, 10, -0.5, -3, -10} {
		got := bernoulliScalar(x) - bernoulliScalar(-x)
		want := -x
		if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(x)) {
			t.Fatalf("expected B(%v)-B(%v) == %v, got %v", x, -x, want, got)
		}
	}
}

// TestBernoulliScalarContinuousAtSeriesBoundary checks the series
// approximation used for |x| < 1e-8 agrees with the closed form just
// outside that boundary, so sgFlux sees no discontinuity at the switchover.
func TestBernoulliScalarContinuousAtSeriesBoundary(t *testing.T) {
	below := bernoulliScalar(9e-9)
	above := bernoulliScalar(1.1e-8)
	if math.Abs(below-above) > 1e-6 {
		t.Fatalf("expected series and closed-form branches to agree near the switchover, got %v and %v", below, above)
	}
}

// TestSgFluxIsAntisymmetricAcrossEdgeDirection is the DDM1 counterpart of
// invariant 1: the Scharfetter-Gummel current computed from CV C's side of
// an edge (C -> J, potential drop dPsi) must be the exact negative of the
// current computed from J's side (J -> C, potential drop -dPsi).
func TestSgFluxIsAntisymmetricAcrossEdgeDirection(t *testing.T) {
	mu, vt, dPsi, d := 0.14, VT(300), 0.08, 2e-7
	cC, cJ := 3e15, 7e15

	fwd, _, _ := sgFlux(mu, +1, vt, dPsi, d, cC, cJ)
	rev, _, _ := sgFlux(mu, +1, vt, -dPsi, d, cJ, cC)
	if math.Abs(fwd+rev) > 1e-6*math.Max(1, math.Abs(fwd)) {
		t.Fatalf("expected sgFlux(C,J,dPsi) == -sgFlux(J,C,-dPsi), got %v and %v", fwd, rev)
	}
}

// TestSgFluxVanishesAtEquilibrium checks the thermal-equilibrium law for a
// single edge: equal carrier densities and zero potential drop between two
// CVs carry no net Scharfetter-Gummel current.
func TestSgFluxVanishesAtEquilibrium(t *testing.T) {
	flux, _, _ := sgFlux(0.14, +1, VT(300), 0, 1e-6, 1e16, 1e16)
	if math.Abs(flux) > 1e-9*1e16 {
		t.Fatalf("expected near-zero equilibrium SG flux, got %v", flux)
	}
}

// TestSgFluxPartialsMatchFiniteDifferenceInCarrierDensities checks sgFlux's
// own analytic dFluxDc/dFluxDcJ against a finite difference of its flux
// output, the partials DDM1Level.Jacobian's diagonal/off-diagonal carrier
// terms are built from directly.
func TestSgFluxPartialsMatchFiniteDifferenceInCarrierDensities(t *testing.T) {
	mu, vt, dPsi, d := 0.14, VT(300), 0.05, 1e-6
	cC, cJ := 1e16, 2e16
	_, dFluxDc, dFluxDcJ := sgFlux(mu, +1, vt, dPsi, d, cC, cJ)

	h := 1e-6 * cC // relative step: a unit step is below float64 resolution at 1e16
	fp, _, _ := sgFlux(mu, +1, vt, dPsi, d, cC+h, cJ)
	fm, _, _ := sgFlux(mu, +1, vt, dPsi, d, cC-h, cJ)
	gotDc := (fp - fm) / (2 * h)
	if math.Abs(gotDc-dFluxDc) > 1e-6*math.Max(1, math.Abs(dFluxDc)) {
		t.Fatalf("dFluxDc=%v does not match finite-difference %v", dFluxDc, gotDc)
	}

	fp, _, _ = sgFlux(mu, +1, vt, dPsi, d, cC, cJ+h)
	fm, _, _ = sgFlux(mu, +1, vt, dPsi, d, cC, cJ-h)
	gotDcJ := (fp - fm) / (2 * h)
	if math.Abs(gotDcJ-dFluxDcJ) > 1e-6*math.Max(1, math.Abs(dFluxDcJ)) {
		t.Fatalf("dFluxDcJ=%v does not match finite-difference %v", dFluxDcJ, gotDcJ)
	}
}
