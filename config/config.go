// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the process-wide tunable parameters the original
// design called SolverSpecify. Design Notes §9 flags a package-level
// mutable global as hostile to testability; here it is a plain value,
// built once by a caller (CLI, test, or another collaborator) and passed
// explicitly into the assembly driver and solver controller.
package config

import "github.com/cpmech/gosl/utl"

// SolverKind selects which nonlinear equation system is assembled.
type SolverKind int

const (
	Poisson SolverKind = iota
	DDML1
	DDML2
	EBM3
	MIX3
	DDMAC
	RIC
	DICTAT
	TID
)

// SolutionKind selects the outer driving loop.
type SolutionKind int

const (
	Steady SolutionKind = iota
	Transient
	DCSweep
	ACSweep
	TIDTransient
)

// DampingKind selects the Newton damping strategy (spec.md §4.4 step 4).
type DampingKind int

const (
	NoDamping DampingKind = iota
	LogPotentialDamping
	BankRose
	PositiveDensity
)

// EqTolerances holds the absolute convergence tolerance for each equation
// family named in spec.md §3's SolverSpecify.
type EqTolerances struct {
	PoissonAbs    float64
	ElecContAbs   float64
	HoleContAbs   float64
	HeatAbs       float64
	ElecEnergyAbs float64
	HoleEnergyAbs float64
	QuantumAbs    float64
	ElectrodeAbs  float64
}

// TSConfig holds the time-stepping tunables of spec.md §3 (TS parameters).
type TSConfig struct {
	T            float64
	Dt           float64
	DtLast       float64
	DtLastLast   float64
	TStart       float64
	TStop        float64
	TStep        float64
	TStepMax     float64
	DtMin        float64
	TSRtol       float64
	TSAtol       float64
	AutoStep     bool
	Predict      bool
	BDF2Restart  bool
	GrowthFactor float64 // capped growth factor applied on accepted steps
	ShrinkFactor float64 // applied on rejected steps
}

// SweepConfig holds DC/AC sweep schedules.
type SweepConfig struct {
	VStart, VStop, VStepMax float64
	IStart, IStop, IStepMax float64
	FStart, FStop, FMultiple float64
}

// SolverConfig is the explicit replacement for the global SolverSpecify.
// Ground: inp.SolverData + inp.TimeControl (teacher).
type SolverConfig struct {
	Kind     SolverKind
	Solution SolutionKind
	Damping  DampingKind

	LinSolName string // opaque name handed to the external LinAlg collaborator

	MaxIteration  int     // NmaxIt
	RelativeToler float64 // Rtol
	TolerRelax    float64 // toler_relax multiplier in spec.md §4.4 step 2
	FbTol         float64
	FbMin         float64
	DvgCtrl       bool
	NdvgMax       int
	CteTg         bool // use constant tangent (modified Newton)

	Tol EqTolerances
	TS  TSConfig
	Sweep SweepConfig

	Verbose bool
	ShowR   bool

	// Eps is the smallest number satisfying 1.0 + Eps > 1.0; used to derive
	// the iteration tolerance exactly as inp.SolverData.PostProcess does.
	Eps float64
}

// Default returns the teacher-style numeric defaults (inp.SolverData.SetDefault),
// mapped onto the per-equation-family tolerances this spec requires.
func Default() SolverConfig {
	c := SolverConfig{
		Kind:         DDML1,
		Solution:     Steady,
		Damping:      LogPotentialDamping,
		LinSolName:   "umfpack",
		MaxIteration: 20,
		RelativeToler: 1e-6,
		TolerRelax:   1.0,
		FbTol:        1e-8,
		FbMin:        1e-14,
		NdvgMax:      20,
		Eps:          1e-16,
	}
	c.Tol = EqTolerances{
		PoissonAbs:    1e-25,
		ElecContAbs:   1e-25,
		HoleContAbs:   1e-25,
		HeatAbs:       1e-25,
		ElecEnergyAbs: 1e-25,
		HoleEnergyAbs: 1e-25,
		QuantumAbs:    1e-25,
		ElectrodeAbs:  1e-25,
	}
	c.TS = TSConfig{
		DtMin:        1e-12,
		TStepMax:     1e-9,
		TSRtol:       1e-3,
		TSAtol:       1e-6,
		AutoStep:     true,
		Predict:      true,
		GrowthFactor: 2.0,
		ShrinkFactor: 0.5,
	}
	c.Sweep = SweepConfig{
		VStepMax: 0.1,
		IStepMax: 1e-6,
		FMultiple: 10,
	}
	return c
}

// IterationToler mirrors inp.SolverData.PostProcess's derived Itol:
// RelativeToler clamped against machine epsilon the way the teacher clamps
// its Newton-update tolerance. It does not include TolerRelax, and
// solver.NewtonSolve's relative-update test does not call it (that test
// uses RelativeToler*TolerRelax directly).
func (c *SolverConfig) IterationToler() float64 {
	return utl.Max(10.0*c.Eps/c.RelativeToler, utl.Min(0.01, c.RelativeToler))
}
