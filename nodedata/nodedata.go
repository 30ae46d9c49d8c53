// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nodedata implements FVM_NodeData: the per-CV polymorphic state
// carried by each control volume, specialized by region kind (Semiconductor,
// Insulator, Conductor, Vacuum). Ground: ele.Solution (the teacher's
// per-node solution-state struct) generalized from one global DOF vector to
// a small per-CV scalar/complex/vector record, matching spec.md §3.
package nodedata

import "github.com/cpmech/gosl/chk"

// Kind tags which FVM_NodeData family a CV carries.
type Kind int

const (
	Semiconductor Kind = iota
	Insulator
	Conductor
	Vacuum
)

func (k Kind) String() string {
	switch k {
	case Semiconductor:
		return "semiconductor"
	case Insulator:
		return "insulator"
	case Conductor:
		return "conductor"
	case Vacuum:
		return "vacuum"
	}
	return "unknown"
}

// Variable names one of the typed accessors spec.md §3 requires.
type Variable int

const (
	Potential Variable = iota
	Electron
	Hole
	Temperature
	ETemp // Tn
	HTemp // Tp
	QFn   // electron quasi-Fermi potential
	QFp   // hole quasi-Fermi potential

	RICCarrier // radiation-induced-conductivity carrier density (insulator)
	TrapOccupancy // TID/DICTAT oxide-trap occupied fraction (insulator)
)

// scalarIndex maps (Kind, Variable) to a slot in the independent-variable
// array, or -1 if that kind does not carry the variable at all — the
// "reader returns 0, writer is a no-op" contract spec.md §3 specifies.
var scalarIndex = map[Kind]map[Variable]int{
	Semiconductor: {Potential: 0, Electron: 1, Hole: 2, Temperature: 3, ETemp: 4, HTemp: 5, QFn: 6, QFp: 7},
	Insulator:     {Potential: 0, Temperature: 1, RICCarrier: 2, TrapOccupancy: 3},
	Conductor:     {Potential: 0, Temperature: 1},
	Vacuum:        {Potential: 0},
}

const nScalarMax = 8

// Data is the concrete FVM_NodeData: a compact scalar array of independent
// variables, an auxiliary-scalar array (materials/band edges/permittivity/
// last-step values), a complex-scalar array for AC/EM, a vector-value array
// (electric field), and an optional named-scalar store for SPICE rollback.
type Data struct {
	kind Kind

	scalar     [nScalarMax]float64
	scalarLast [nScalarMax]float64 // "_last" rotated by the controller on accepted steps

	aux map[string]float64 // materials, band edges, permittivity, last-step aux values

	// complex AC/EM variables: psi_ac, T_ac, OpE, OpH
	psiAC, tempAC complex128
	opE, opH      [3]complex128

	efield [3]float64 // vector-value array: electric field

	// SPICE-coupled checkpointing: user-named scalar store
	named map[string]float64
}

// New allocates a NodeData of the given region kind.
func New(kind Kind) *Data {
	return &Data{kind: kind, aux: make(map[string]float64)}
}

// RegionKind satisfies fvm.NodeDataHolder.
func (d *Data) RegionKind() int { return int(d.kind) }

func (d *Data) Kind() Kind { return d.kind }

// IsVariableValid reports which kinds are live for this region (spec.md §3
// "is_variable_valid").
func (d *Data) IsVariableValid(v Variable) bool {
	_, ok := scalarIndex[d.kind][v]
	return ok
}

// Get reads a typed variable; unsupported variables read as 0.
func (d *Data) Get(v Variable) float64 {
	idx, ok := scalarIndex[d.kind][v]
	if !ok {
		return 0
	}
	return d.scalar[idx]
}

// Set writes a typed variable; unsupported variables are a silent no-op.
func (d *Data) Set(v Variable, val float64) {
	idx, ok := scalarIndex[d.kind][v]
	if !ok {
		return
	}
	d.scalar[idx] = val
}

// GetLast reads the rotated "_last" copy of a variable (used by BDF1/BDF2
// transient terms, spec.md §4.2).
func (d *Data) GetLast(v Variable) float64 {
	idx, ok := scalarIndex[d.kind][v]
	if !ok {
		return 0
	}
	return d.scalarLast[idx]
}

// RotateLast copies the current state into the "_last" slot; the transient
// controller calls this on every accepted time step (spec.md §3 Lifecycle).
func (d *Data) RotateLast() {
	d.scalarLast = d.scalar
}

// Aux reads a named auxiliary scalar (material property, band edge,
// permittivity, ...), returning 0 if unset.
func (d *Data) Aux(key string) float64 { return d.aux[key] }

// SetAux writes a named auxiliary scalar.
func (d *Data) SetAux(key string, v float64) { d.aux[key] = v }

// ACPotential / SetACPotential access the complex AC small-signal potential
// perturbation (psi_ac).
func (d *Data) ACPotential() complex128        { return d.psiAC }
func (d *Data) SetACPotential(v complex128)    { d.psiAC = v }
func (d *Data) ACTemperature() complex128      { return d.tempAC }
func (d *Data) SetACTemperature(v complex128)  { d.tempAC = v }

// EField reads/writes the vector electric field.
func (d *Data) EField() [3]float64        { return d.efield }
func (d *Data) SetEField(e [3]float64)    { d.efield = e }

// NamedScalar backs the optional user-named store SPICE checkpointing needs
// (CircuitBridge.save_spice_data/load_spice_data, spec.md §6).
func (d *Data) NamedScalar(key string) (float64, bool) {
	if d.named == nil {
		return 0, false
	}
	v, ok := d.named[key]
	return v, ok
}

func (d *Data) SetNamedScalar(key string, v float64) {
	if d.named == nil {
		d.named = make(map[string]float64)
	}
	d.named[key] = v
}

// Encode/Decode checkpoint NodeData's kind, scalar and last-scalar arrays,
// aux and named stores, and E field, per SPEC_FULL.md §3's addition for
// restart and SPICE-rollback support. The complex AC perturbations and the
// remaining vector fields are not part of the Snapshot.
type Snapshot struct {
	Kind       Kind
	Scalar     [nScalarMax]float64
	ScalarLast [nScalarMax]float64
	Aux        map[string]float64
	Named      map[string]float64
	EField     [3]float64
}

func (d *Data) Encode() Snapshot {
	aux := make(map[string]float64, len(d.aux))
	for k, v := range d.aux {
		aux[k] = v
	}
	var named map[string]float64
	if d.named != nil {
		named = make(map[string]float64, len(d.named))
		for k, v := range d.named {
			named[k] = v
		}
	}
	return Snapshot{Kind: d.kind, Scalar: d.scalar, ScalarLast: d.scalarLast, Aux: aux, Named: named, EField: d.efield}
}

func (d *Data) Decode(s Snapshot) error {
	if s.Kind != d.kind {
		return chk.Err("nodedata: cannot decode snapshot of kind %v into node of kind %v", s.Kind, d.kind)
	}
	d.scalar = s.Scalar
	d.scalarLast = s.ScalarLast
	d.aux = s.Aux
	d.named = s.Named
	d.efield = s.EField
	return nil
}
