// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amr

import "github.com/aboutzhao/Genius-TCAD-Open/mesh"

// EnforceLevelMismatch repeatedly upgrades DoNothing elements to Refine
// wherever a face neighbor is marked Refine and would otherwise end up
// more than maxMismatch levels finer (spec.md §4.6 "enforces
// level-mismatch <= k at each node and each edge"). Runs to a fixed point:
// every upgrade can itself force a further neighbor's upgrade, so the
// sweep repeats until a pass makes no change.
func EnforceLevelMismatch(m mesh.Mesher, elems []mesh.Element, maxMismatch int) {
	for {
		changed := false
		for _, e := range elems {
			if m.Flag(e) == mesh.Refine {
				continue
			}
			myLevel := resultingLevel(m, e)
			for fi := 0; fi < e.NumFaces(); fi++ {
				nb := e.NeighborAcrossFace(fi)
				if nb == nil {
					continue
				}
				nbLevel := resultingLevel(m, nb)
				if nbLevel-myLevel > maxMismatch {
					m.SetFlag(e, mesh.Refine)
					changed = true
					break
				}
			}
		}
		if !changed {
			return
		}
	}
}

// resultingLevel is the level an element will have after this AMR round:
// Level()+1 if marked Refine, Level()-1 if marked Coarsen (clamped at 0),
// Level() otherwise.
func resultingLevel(m mesh.Mesher, e mesh.Element) int {
	switch m.Flag(e) {
	case mesh.Refine:
		return e.Level() + 1
	case mesh.Coarsen, mesh.CoarsenInactive:
		if e.Level() > 0 {
			return e.Level() - 1
		}
		return 0
	default:
		return e.Level()
	}
}

// EliminateIslands clears the Refine flag from any element whose every
// face neighbor ends the round at a lower level than the element's own
// post-refinement level (a neighbor that is already that fine, or is
// itself marked Refine at the same level, keeps the mark), preventing a single
// isolated hot cell from producing an unrefined-patch island its
// neighbors cannot support (spec.md §4.6 "eliminates unrefined-patch
// islands"). Applied after EnforceLevelMismatch has reached its fixed
// point, so it only removes truly isolated marks rather than fighting the
// mismatch sweep.
func EliminateIslands(m mesh.Mesher, elems []mesh.Element) {
	for _, e := range elems {
		if m.Flag(e) != mesh.Refine {
			continue
		}
		myLevel := resultingLevel(m, e)
		isolated := true
		for fi := 0; fi < e.NumFaces(); fi++ {
			nb := e.NeighborAcrossFace(fi)
			if nb == nil {
				continue
			}
			if resultingLevel(m, nb) >= myLevel {
				isolated = false
				break
			}
		}
		if isolated {
			m.SetFlag(e, mesh.DoNothing)
		}
	}
}
