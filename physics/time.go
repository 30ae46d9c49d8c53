// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

// TimeCtx carries the transient-integration state a region operator's
// volume term needs to add its BDF1/BDF2/TR contribution (spec.md §4.2
// "Transient contribution"). Steady-state solves use either a zero-value
// TimeCtx (all BDF coefficients 0) or one with Steady == true; both make
// DDt/DDy return 0, so every level's Function/Jacobian adds nothing
// time-dependent.
type TimeCtx struct {
	Steady      bool
	Dt          float64
	DtLast      float64
	BDF2Restart bool // forces BDF1 for the first step after a restart

	// BDF coefficients such that dy/dt ~= A0*y + A1*y_last + A2*y_last_last.
	A0, A1, A2 float64
}

// NewBDF1 returns the TimeCtx for a backward-Euler step of size dt.
func NewBDF1(dt float64) TimeCtx {
	return TimeCtx{Dt: dt, A0: 1 / dt, A1: -1 / dt}
}

// NewBDF2 returns the TimeCtx for a variable-step BDF2 step, or BDF1 if
// restart is set (spec.md §4.2: "BDF2_restart forces BDF1 for the first
// step after a restart").
func NewBDF2(dt, dtLast float64, restart bool) TimeCtx {
	if restart || dtLast <= 0 {
		return NewBDF1(dt)
	}
	// standard variable-step BDF2 coefficients
	rho := dt / dtLast
	a0 := (1 + 2*rho) / (dt * (1 + rho))
	a1 := -(1 + rho) / dt
	a2 := rho * rho / (dt * (1 + rho))
	return TimeCtx{Dt: dt, DtLast: dtLast, BDF2Restart: restart, A0: a0, A1: a1, A2: a2}
}

// DDt evaluates A0*y + A1*yLast + A2*yLastLast, the discrete d/dt operator.
func (tc TimeCtx) DDt(y, yLast, yLastLast float64) float64 {
	if tc.Steady {
		return 0
	}
	return tc.A0*y + tc.A1*yLast + tc.A2*yLastLast
}

// DDy is d(DDt)/dy, needed by the Jacobian; A2's term drops out since
// y_last_last is not a current unknown.
func (tc TimeCtx) DDy() float64 {
	if tc.Steady {
		return 0
	}
	return tc.A0
}
