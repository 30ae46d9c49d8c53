// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import "math"

// MaxDirs bounds the number of independent directions a CV-local kernel
// differentiates against: the CV's own variables plus one neighbor's,
// spec.md §4.2 "usually <= 6". Design Notes §9 asks for this to be "a
// scalar type parameterized by a small, stack-allocated derivative vector";
// Go lacks const-generic array sizes tied to a runtime count, so a fixed
// cap is used and every kernel that needs more directions (e.g. EBM3's two
// extra carrier-temperature unknowns) still fits comfortably.
const MaxDirs = 8

// Dual is a forward-mode AD scalar (Design Notes §9 "Forward-mode AD").
// No region Level in this package evaluates through it: every Level's
// Function and Jacobian are written separately on float64.
type Dual struct {
	V float64
	D [MaxDirs]float64
}

// Const returns a Dual with no active derivatives, for literals.
func Const(v float64) Dual { return Dual{V: v} }

// Var returns a Dual seeded as the independent variable in direction dir.
func Var(v float64, dir int) Dual {
	d := Dual{V: v}
	d.D[dir] = 1
	return d
}

func (a Dual) Add(b Dual) Dual {
	r := Dual{V: a.V + b.V}
	for i := range r.D {
		r.D[i] = a.D[i] + b.D[i]
	}
	return r
}

func (a Dual) Sub(b Dual) Dual {
	r := Dual{V: a.V - b.V}
	for i := range r.D {
		r.D[i] = a.D[i] - b.D[i]
	}
	return r
}

func (a Dual) Mul(b Dual) Dual {
	r := Dual{V: a.V * b.V}
	for i := range r.D {
		r.D[i] = a.D[i]*b.V + a.V*b.D[i]
	}
	return r
}

func (a Dual) Scale(s float64) Dual {
	r := Dual{V: a.V * s}
	for i := range r.D {
		r.D[i] = a.D[i] * s
	}
	return r
}

func (a Dual) Div(b Dual) Dual {
	r := Dual{V: a.V / b.V}
	inv2 := 1.0 / (b.V * b.V)
	for i := range r.D {
		r.D[i] = (a.D[i]*b.V - a.V*b.D[i]) * inv2
	}
	return r
}

func (a Dual) Neg() Dual { return a.Scale(-1) }

func (a Dual) Exp() Dual {
	e := math.Exp(a.V)
	r := Dual{V: e}
	for i := range r.D {
		r.D[i] = e * a.D[i]
	}
	return r
}

// Bernoulli evaluates B(x) = x/(e^x - 1), the Scharfetter-Gummel edge-flux
// weight (spec.md §4.2, GLOSSARY), using the standard small-|x| series to
// avoid the 0/0 cancellation at x == 0.
func Bernoulli(x Dual) Dual {
	const tiny = 1e-8
	if math.Abs(x.V) < tiny {
		// B(x) ~= 1 - x/2 + x^2/12 near 0
		half := x.Scale(-0.5)
		sq := x.Mul(x).Scale(1.0 / 12.0)
		return Const(1).Add(half).Add(sq)
	}
	ex := x.Exp()
	denom := ex.Sub(Const(1))
	return x.Div(denom)
}
