// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import "github.com/aboutzhao/Genius-TCAD-Open/physics"

// Neutral is the zero-flux/free-surface boundary: the region operator's own
// CV-edge sum already omits any term for the missing outward neighbor, so
// there is nothing to add, fold, or reserve. It exists so the assembly
// driver can address every boundary CV through the same Operator list
// instead of special-casing "no BC" (spec.md §4.3).
type Neutral struct{}

func (b *Neutral) Name() string                                         { return "Neutral" }
func (b *Neutral) Preprocess(level physics.Level) []physics.RowOp       { return nil }
func (b *Neutral) Reserve(level physics.Level) []int                    { return nil }
func (b *Neutral) Function(level physics.Level, x, f []float64)         {}
func (b *Neutral) Jacobian(level physics.Level, x []float64, w physics.JacobianWriter) {}
