package nodedata

import "testing"

func TestUnsupportedVariableIsNoOpAndZero(t *testing.T) {
	d := New(Insulator)
	if d.IsVariableValid(Electron) {
		t.Fatalf("insulator should not carry electron density")
	}
	d.Set(Electron, 123) // must be a silent no-op
	if got := d.Get(Electron); got != 0 {
		t.Fatalf("expected 0 for unsupported variable, got %v", got)
	}
	// a supported variable still round-trips
	d.Set(Potential, 0.7)
	if got := d.Get(Potential); got != 0.7 {
		t.Fatalf("potential round-trip failed: got %v", got)
	}
}

func TestRotateLast(t *testing.T) {
	d := New(Semiconductor)
	d.Set(Electron, 1e17)
	d.RotateLast()
	d.Set(Electron, 2e17)
	if d.GetLast(Electron) != 1e17 {
		t.Fatalf("expected last electron density to be the pre-rotation value")
	}
	if d.Get(Electron) != 2e17 {
		t.Fatalf("expected current electron density to be the post-update value")
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	d := New(Semiconductor)
	d.Set(Potential, 0.3)
	d.SetAux("Nd", 1e17)
	d.SetNamedScalar("spice_i", 1e-9)
	snap := d.Encode()

	d2 := New(Semiconductor)
	if err := d2.Decode(snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if d2.Get(Potential) != 0.3 || d2.Aux("Nd") != 1e17 {
		t.Fatalf("decode did not restore state")
	}
	if v, ok := d2.NamedScalar("spice_i"); !ok || v != 1e-9 {
		t.Fatalf("named scalar not restored")
	}
}
