// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package physics implements the region operators of spec.md §4.2: one
// trait per physics level (Poisson, DDM1, DDM2, EBM3, AC, RIC, TID),
// dispatched per region kind, per Design Notes §9's tagged-variant
// re-architecture of the teacher's deep single-inheritance element
// hierarchy (ele.Element, ele/diffusion.Diffusion).
package physics

// Physical constants in the same unit convention as the teacher's material
// models (SI, with common device-physics scalings left explicit rather than
// folded into "natural units", so every term in a Level's Function/Jacobian
// reads as the PDE term it discretizes).
const (
	Q      = 1.602176634e-19 // elementary charge, C
	KB     = 1.380649e-23    // Boltzmann constant, J/K
	Eps0   = 8.8541878128e-12
	MinCarrier = 1e6 // positivity floor n,p >= 1 cm^-3 == 1e6 m^-3 (spec.md §4.4 step 4)
)

// VT returns the thermal voltage kB*T/q at temperature T (Kelvin).
func VT(T float64) float64 { return KB * T / Q }
