// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package particle reads an ASCII particle-source file (one deposited
// particle per line: "x y energy" for a 2D device, "x y z energy" for 3D)
// and answers point queries of the deposited energy by scattered-data
// interpolation over the hits (Interpolator.EnergyAt). It does not write
// into the control-volume graph or any generation-rate field.
// Nearest-neighbor lookups for the scattered-data interpolator are backed
// by gonum.org/v1/gonum/spatial/kdtree.
package particle

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Hit is one deposited particle: a strike location and an energy.
type Hit struct {
	X, Y, Z float64
	Energy  float64
}

// Affine is the optional coordinate transform spec.md §3 allows a particle
// file to carry (detector-frame to device-frame), y = R*x + T applied
// componentwise before the hits are handed to the interpolator.
type Affine struct {
	Scale [3]float64
	Shift [3]float64
}

// Apply maps a raw file coordinate into device space.
func (a Affine) Apply(x, y, z float64) (float64, float64, float64) {
	return x*a.Scale[0] + a.Shift[0], y*a.Scale[1] + a.Shift[1], z*a.Scale[2] + a.Shift[2]
}

// Identity is the no-op transform.
func Identity() Affine { return Affine{Scale: [3]float64{1, 1, 1}} }

// ParseASCII reads whitespace-separated "x y energy" (dim==2) or
// "x y z energy" (dim==3) lines, skipping blank lines and lines starting
// with '#'. Each line's own column count decides its form (3 or 4
// columns), so 2D and 3D lines may be mixed in one file.
func ParseASCII(r io.Reader, xf Affine) ([]Hit, error) {
	var hits []Hit
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		vals := make([]float64, len(fields))
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, chk.Err("particle: line %d: invalid number %q: %v", lineNo, tok, err)
			}
			vals[i] = v
		}
		var h Hit
		switch len(vals) {
		case 3:
			h.X, h.Y, h.Z = xf.Apply(vals[0], vals[1], 0)
			h.Energy = vals[2]
		case 4:
			h.X, h.Y, h.Z = xf.Apply(vals[0], vals[1], vals[2])
			h.Energy = vals[3]
		default:
			return nil, chk.Err("particle: line %d: expected 3 or 4 columns, got %d", lineNo, len(vals))
		}
		hits = append(hits, h)
	}
	if err := sc.Err(); err != nil {
		return nil, chk.Err("particle: scan failed: %v", err)
	}
	return hits, nil
}

// point is a gonum kdtree.Comparable wrapping one Hit's 3D coordinate.
type point struct {
	coord [3]float64
	hit   int // index into the owning Interpolator.hits slice
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.coord[d] - q.coord[d]
}
func (p point) Dims() int { return 3 }
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx, dy, dz := p.coord[0]-q.coord[0], p.coord[1]-q.coord[1], p.coord[2]-q.coord[2]
	return dx*dx + dy*dy + dz*dz
}

type points []point

func (ps points) Len() int            { return len(ps) }
func (ps points) Index(i int) kdtree.Comparable { return ps[i] }
// Pivot sorts the sub-slice along dimension d and returns the median
// index, a straightforward (if not the cheapest possible) way to satisfy
// kdtree.Interface's partition contract: everything before the returned
// index compares <= the pivot, everything after compares >=.
func (ps points) Pivot(d kdtree.Dim) int {
	sort.Sort(byDim{ps, int(d)})
	return len(ps) / 2
}
func (ps points) Slice(start, end int) kdtree.Interface { return ps[start:end] }

type byDim struct {
	pts points
	dim int
}

func (b byDim) Len() int           { return len(b.pts) }
func (b byDim) Less(i, j int) bool { return b.pts[i].coord[b.dim] < b.pts[j].coord[b.dim] }
func (b byDim) Swap(i, j int)      { b.pts[i], b.pts[j] = b.pts[j], b.pts[i] }

// Interpolator is a 2D CSA / 3D modified-Shepard scattered-data
// interpolator over a fixed set of particle hits, queried per control
// volume (spec.md §8 scenario 5). Weighting is inverse-squared-distance
// over the K nearest hits, the modified-Shepard form; for a 2D device
// (every hit's Z == 0) this degenerates to the same K-nearest weighting a
// CSA (Clough-Tocher / Sibson-style) scheme would use on a planar cloud.
type Interpolator struct {
	hits []Hit
	tree *kdtree.Tree
	k    int
}

// NewInterpolator builds the k-nearest-neighbor index over hits. k should
// be small (4-12); larger k smooths more aggressively at the cost of
// locality.
func NewInterpolator(hits []Hit, k int) *Interpolator {
	if k <= 0 {
		k = 8
	}
	if k > len(hits) {
		k = len(hits)
	}
	ps := make(points, len(hits))
	for i, h := range hits {
		ps[i] = point{coord: [3]float64{h.X, h.Y, h.Z}, hit: i}
	}
	return &Interpolator{
		hits: hits,
		tree: kdtree.New(ps, false),
		k:    k,
	}
}

// EnergyAt interpolates the deposited energy density at (x, y, z) using
// inverse-squared-distance weighting over the k nearest hits. Returns 0 if
// the interpolator has no hits.
func (ip *Interpolator) EnergyAt(x, y, z float64) float64 {
	if len(ip.hits) == 0 {
		return 0
	}
	keeper := kdtree.NewNKeeper(ip.k)
	q := point{coord: [3]float64{x, y, z}}
	ip.tree.NearestSet(keeper, q)

	var wsum, esum float64
	for _, h := range keeper.Heap {
		p := h.Comparable.(point)
		d2 := h.Dist
		var w float64
		if d2 < 1e-30 {
			return ip.hits[p.hit].Energy
		}
		w = 1 / d2
		wsum += w
		esum += w * ip.hits[p.hit].Energy
	}
	if wsum == 0 {
		return 0
	}
	return esum / wsum
}
