// seehuhn.de/go/occlusion - screen-space occlusion culling
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package occlusion

import (
	"slices"
	"sort"
)

// regionName identifies one of the five slices of a map node.
type regionName int

const (
	regionTop regionName = iota
	regionBottom
	regionLeft
	regionRight
	regionRemainder
)

func (n regionName) String() string {
	switch n {
	case regionTop:
		return "TOP_HALF"
	case regionBottom:
		return "BOTTOM_HALF"
	case regionLeft:
		return "LEFT_HALF"
	case regionRight:
		return "RIGHT_HALF"
	default:
		return "REMAINDER"
	}
}

// CoverageRegion is one storage bucket of a [CoverageMap] node.
// Polygons are kept sorted by ascending distance.
type CoverageRegion struct {
	bounds Rectangle
	isRoot bool
	name   regionName
	cfg    *mapConfig

	polygons  []ProjectedPolygon
	distances []float64 // distances[i] == polygons[i].Distance()

	// covered is the union of the bounding boxes of all stored polygons.
	// It never shrinks until the region is cleared.
	covered Rectangle
}

func newRegion(bounds Rectangle, isRoot bool, name regionName, cfg *mapConfig) CoverageRegion {
	return CoverageRegion{
		bounds: bounds,
		isRoot: isRoot,
		name:   name,
		cfg:    cfg,
	}
}

// Bounds returns the part of the screen this region is responsible for.
func (r *CoverageRegion) Bounds() Rectangle { return r.bounds }

// CoveredBounds returns the union of the bounding boxes of all polygons
// stored since the last clear.
func (r *CoverageRegion) CoveredBounds() Rectangle { return r.covered }

// PolygonCount returns the number of stored polygons.
func (r *CoverageRegion) PolygonCount() int { return len(r.polygons) }

// Polygon returns the i-th stored polygon, in order of increasing distance.
// It returns nil if i is out of range.
func (r *CoverageRegion) Polygon(i int) ProjectedPolygon {
	if i < 0 || i >= len(r.polygons) {
		return nil
	}
	return r.polygons[i]
}

func (r *CoverageRegion) String() string { return r.name.String() }

// fits reports whether a polygon with bounding box bbox belongs here.
func (r *CoverageRegion) fits(bbox Rectangle) bool {
	return r.isRoot || r.bounds.Contains(bbox)
}

// CheckRegion tests p against the polygons stored in this region.
//
// The scan stops at the first stored polygon which occludes p. If that
// polygon is nearer than p, the result is [Occluded]. Otherwise p arrived
// out of order: it is stored (if store is set and p is large enough) and
// the result is [Stored], or [NotStored].
func (r *CoverageRegion) CheckRegion(p ProjectedPolygon, bbox Rectangle, store bool) Result {
	if !r.fits(bbox) {
		return DoesntFit
	}

	stats := r.cfg.stats
	if !r.covered.Contains(bbox) {
		stats.RegionSkip(len(r.polygons))
		return NotStored
	}

	d := p.Distance()
	for i, s := range r.polygons {
		stats.OcclusionTest()
		if !s.Occludes(p) {
			continue
		}
		if r.distances[i] < d {
			return Occluded
		}

		stats.OutOfOrder()
		if !store {
			return NotStored
		}
		if bbox.Area() <= MinimumStorableArea {
			stats.TooSmall()
			return NotStored
		}
		r.store(p)
		return Stored
	}
	return NotStored
}

// store inserts p at its sorted position, after all polygons at the same
// distance, and extends the covered bounds.
func (r *CoverageRegion) store(p ProjectedPolygon) {
	d := p.Distance()
	pos := sort.Search(len(r.distances), func(i int) bool {
		return r.distances[i] > d
	})
	r.polygons = slices.Insert(r.polygons, pos, p)
	r.distances = slices.Insert(r.distances, pos, d)
	r.covered.ExpandToInclude(p.BoundingRect())

	r.cfg.stats.Stored(len(r.polygons))
}

// clear drops all stored polygons. Owned polygons are released.
// The backing storage is kept for reuse.
func (r *CoverageRegion) clear() {
	if r.cfg.ownership == Owned {
		for _, p := range r.polygons {
			if rel, ok := p.(Releaser); ok {
				rel.Release()
			}
		}
	}
	clear(r.polygons)
	r.polygons = r.polygons[:0]
	r.distances = r.distances[:0]
	r.covered = Rectangle{}
}
