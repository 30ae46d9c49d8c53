// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package amr is the external Adaptive Mesh Refinement collaborator
// (spec.md §4.6): given a per-element error indicator, it marks elements
// Refine/Coarsen by one of six selection strategies, enforces a
// level-mismatch bound across shared faces, eliminates unrefined-patch
// islands, and hands the core a CV graph rebuilt from the flagged
// mesh.Mesher (Round returns a fresh *fvm.Graph). Nothing here touches the device physics; it only
// reads mesh.Element.Level()/Parent()/Child(i) and writes mesh.RefineFlag.
package amr

import (
	"math"
	"sort"

	"github.com/aboutzhao/Genius-TCAD-Open/mesh"
)

// Strategy selects which elements a round of AMR marks for refinement or
// coarsening, given each element's scalar error indicator (spec.md §4.6).
type Strategy interface {
	// Mark sets m.SetFlag(e, ...) for every element in elems whose error
	// warrants refinement or coarsening, leaving the rest at DoNothing.
	Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64)
}

// ErrorFraction refines the top Fraction of elements by error (spec.md
// §4.6 "error-fraction").
type ErrorFraction struct{ Fraction float64 }

func (s ErrorFraction) Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64) {
	if len(elems) == 0 {
		return
	}
	sorted := sortedByError(elems, errorOf)
	n := int(s.Fraction * float64(len(sorted)))
	for i, e := range sorted {
		if i < n {
			m.SetFlag(e, mesh.Refine)
		}
	}
}

// ErrorTolerance refines every element whose error exceeds Tolerance
// (spec.md §4.6 "error-tolerance").
type ErrorTolerance struct{ Tolerance float64 }

func (s ErrorTolerance) Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64) {
	for _, e := range elems {
		if errorOf(e) > s.Tolerance {
			m.SetFlag(e, mesh.Refine)
		}
	}
}

// ErrorThreshold refines elements with error above RefineAbove and
// coarsens elements with error below CoarsenBelow (spec.md §4.6
// "error-threshold", the two-sided variant of error-tolerance).
type ErrorThreshold struct{ RefineAbove, CoarsenBelow float64 }

func (s ErrorThreshold) Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64) {
	for _, e := range elems {
		err := errorOf(e)
		switch {
		case err > s.RefineAbove:
			m.SetFlag(e, mesh.Refine)
		case err < s.CoarsenBelow:
			m.SetFlag(e, mesh.Coarsen)
		}
	}
}

// ElementCountTarget refines the highest-error elements until the mesh
// reaches (approximately) Target total elements, assuming each refinement
// replaces one element with RefineFanout children (spec.md §4.6
// "element-count-target").
type ElementCountTarget struct {
	Target        int
	RefineFanout  int // children produced per refined element; 4 for 2D, 8 for 3D is typical
}

func (s ElementCountTarget) Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64) {
	fanout := s.RefineFanout
	if fanout <= 1 {
		fanout = 4
	}
	deficit := s.Target - len(elems)
	if deficit <= 0 {
		return
	}
	perRefine := fanout - 1
	n := deficit / perRefine
	if n == 0 {
		n = 1
	}
	sorted := sortedByError(elems, errorOf)
	for i, e := range sorted {
		if i >= n {
			break
		}
		m.SetFlag(e, mesh.Refine)
	}
}

// ElementFraction refines a fixed Fraction of elements chosen uniformly by
// index rather than an error cutoff, the load-balancing-oriented sibling
// of ErrorFraction (spec.md §4.6 "element-fraction"): every stride-th
// element by index is marked regardless of its error indicator, spreading
// the refinement budget evenly rather than concentrating it where the
// indicator happens to be largest.
type ElementFraction struct{ Fraction float64 }

func (s ElementFraction) Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64) {
	if s.Fraction <= 0 || len(elems) == 0 {
		return
	}
	stride := int(1 / s.Fraction)
	if stride < 1 {
		stride = 1
	}
	for i, e := range elems {
		if i%stride == 0 {
			m.SetFlag(e, mesh.Refine)
		}
	}
}

// MeanStddev refines elements whose error exceeds mean+k*stddev over the
// whole element list (spec.md §4.6 "mean-stddev").
type MeanStddev struct{ K float64 }

func (s MeanStddev) Mark(m mesh.Mesher, elems []mesh.Element, errorOf func(mesh.Element) float64) {
	if len(elems) == 0 {
		return
	}
	mean, sd := meanStddev(elems, errorOf)
	cut := mean + s.K*sd
	for _, e := range elems {
		if errorOf(e) > cut {
			m.SetFlag(e, mesh.Refine)
		}
	}
}

func sortedByError(elems []mesh.Element, errorOf func(mesh.Element) float64) []mesh.Element {
	sorted := make([]mesh.Element, len(elems))
	copy(sorted, elems)
	sort.Slice(sorted, func(i, j int) bool { return errorOf(sorted[i]) > errorOf(sorted[j]) })
	return sorted
}

func meanStddev(elems []mesh.Element, errorOf func(mesh.Element) float64) (mean, stddev float64) {
	n := float64(len(elems))
	for _, e := range elems {
		mean += errorOf(e)
	}
	mean /= n
	for _, e := range elems {
		d := errorOf(e) - mean
		stddev += d * d
	}
	stddev /= n
	return mean, math.Sqrt(stddev)
}
