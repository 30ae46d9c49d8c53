// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amr

import (
	"github.com/aboutzhao/Genius-TCAD-Open/fvm"
	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
)

// Round drives one full AMR cycle against an error indicator and hands
// back the rebuilt CV graph: mark, enforce level-mismatch, eliminate
// islands, then discard the old graph entirely and call fvm.NewGraph on
// the (now-refined) Mesher (spec.md §4.6 "the core consumes the
// post-refinement mesh by discarding the old CV graph and DOF layout and
// rebuilding"). The Mesher itself performs the actual geometric
// refine/coarsen once flags are set; that step is external and is not
// part of this package.
func Round(m mesh.Mesher, strategy Strategy, errorOf func(mesh.Element) float64, maxMismatch int) *fvm.Graph {
	elems := m.Elements()
	for _, e := range elems {
		m.SetFlag(e, mesh.DoNothing)
	}
	strategy.Mark(m, elems, errorOf)
	EnforceLevelMismatch(m, elems, maxMismatch)
	EliminateIslands(m, elems)
	return fvm.NewGraph(m)
}
