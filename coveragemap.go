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
	"context"
	"iter"
	"log/slog"
)

// Result is the outcome of a coverage check.
type Result int

const (
	// Stored means the polygon is visible and has been added to the map.
	Stored Result = iota

	// NotStored means the polygon is visible but has not been added,
	// either because storing was not requested or because it is too small.
	NotStored

	// Occluded means the polygon is hidden behind a nearer stored polygon.
	Occluded

	// DoesntFit means the polygon is outside the area handled by the
	// map, or not fully in view.
	DoesntFit
)

func (r Result) String() string {
	switch r {
	case Stored:
		return "STORED"
	case NotStored:
		return "NOT_STORED"
	case Occluded:
		return "OCCLUDED"
	case DoesntFit:
		return "DOESNT_FIT"
	default:
		return "Result(?)"
	}
}

// Ownership decides who is responsible for stored polygons.
type Ownership int

const (
	// Borrowed polygons belong to the caller. Clear drops the references.
	Borrowed Ownership = iota

	// Owned polygons belong to the map. Clear calls Release on every
	// polygon which implements [Releaser].
	Owned
)

// MinimumStorableArea is the smallest bounding box area of a polygon which
// is worth storing. It corresponds to a square of 10x10 pixels on a screen
// which is 1500 pixels wide.
const MinimumStorableArea = (typicalPixelWidth * minimumSideInPixels) *
	(typicalPixelWidth * minimumSideInPixels)

const (
	typicalScreenWidthInPixels = 1500
	minimumSideInPixels        = 10
	typicalPixelWidth          = 2.0 / typicalScreenWidthInPixels
)

// Options configure a [CoverageMap].
// The values are fixed when the root is created and are shared by all
// nodes of the tree.
type Options struct {
	// Ownership of the stored polygons. The default is [Borrowed].
	Ownership Ownership

	// Stats, if non-nil, receives statistics events.
	Stats Stats

	// Logger, if non-nil, receives debug messages when the root is cleared.
	Logger *slog.Logger
}

type mapConfig struct {
	ownership Ownership
	stats     Stats
	logger    *slog.Logger
}

// CoverageMap is a node of the occlusion quad-tree.
//
// Each node stores polygons in five regions: the four halves of the node,
// and a remainder covering the whole node. Polygons which fit into one of
// the four quadrants are passed on to a child node, which is created on
// demand.
//
// A CoverageMap is not safe for concurrent use.
type CoverageMap struct {
	bounds Rectangle
	isRoot bool
	cfg    *mapConfig

	topHalf    CoverageRegion
	bottomHalf CoverageRegion
	leftHalf   CoverageRegion
	rightHalf  CoverageRegion
	remainder  CoverageRegion

	children [numQuadrants]*CoverageMap
}

// NewCoverageMap returns an empty root node covering bounds.
// If opt is nil, polygons are [Borrowed] and no statistics are collected.
func NewCoverageMap(bounds Rectangle, opt *Options) *CoverageMap {
	cfg := &mapConfig{stats: noStats{}}
	if opt != nil {
		cfg.ownership = opt.Ownership
		if opt.Stats != nil {
			cfg.stats = opt.Stats
		}
		cfg.logger = opt.Logger
	}
	return newMap(bounds, true, cfg)
}

func newMap(bounds Rectangle, isRoot bool, cfg *mapConfig) *CoverageMap {
	m := &CoverageMap{
		bounds:     bounds,
		isRoot:     isRoot,
		cfg:        cfg,
		topHalf:    newRegion(bounds.TopHalf(), false, regionTop, cfg),
		bottomHalf: newRegion(bounds.BottomHalf(), false, regionBottom, cfg),
		leftHalf:   newRegion(bounds.LeftHalf(), false, regionLeft, cfg),
		rightHalf:  newRegion(bounds.RightHalf(), false, regionRight, cfg),
		remainder:  newRegion(bounds, isRoot, regionRemainder, cfg),
	}
	cfg.stats.MapCreated()
	return m
}

// Bounds returns the area covered by the node.
func (m *CoverageMap) Bounds() Rectangle { return m.bounds }

// IsRoot reports whether m is the root of its tree.
func (m *CoverageMap) IsRoot() bool { return m.isRoot }

// Child returns the node for quadrant i (see [Rectangle.Quadrant]),
// or nil if no polygon has been routed there yet.
func (m *CoverageMap) Child(i int) *CoverageMap {
	if i < 0 || i >= numQuadrants {
		return nil
	}
	return m.children[i]
}

// regions returns the five regions in enumeration order.
func (m *CoverageMap) regions() [5]*CoverageRegion {
	return [5]*CoverageRegion{&m.topHalf, &m.bottomHalf, &m.leftHalf, &m.rightHalf, &m.remainder}
}

// Region returns the region with the given index: 0 to 3 are the top,
// bottom, left and right halves, 4 is the remainder.
func (m *CoverageMap) Region(i int) *CoverageRegion {
	if i < 0 || i > int(regionRemainder) {
		return nil
	}
	return m.regions()[i]
}

// PolygonCount returns the number of polygons stored in this node,
// not counting child nodes.
func (m *CoverageMap) PolygonCount() int {
	n := 0
	for _, r := range m.regions() {
		n += r.PolygonCount()
	}
	return n
}

// Polygon returns the i-th polygon stored in this node. The regions are
// enumerated in the order of [CoverageMap.Region]. Polygon returns nil if
// i is out of range.
func (m *CoverageMap) Polygon(i int) ProjectedPolygon {
	if i < 0 {
		return nil
	}
	for _, r := range m.regions() {
		n := r.PolygonCount()
		if i < n {
			return r.Polygon(i)
		}
		i -= n
	}
	return nil
}

// All iterates over all polygons stored in the subtree rooted at m.
// Polygons of a node come before the polygons of its children.
func (m *CoverageMap) All() iter.Seq[ProjectedPolygon] {
	return func(yield func(ProjectedPolygon) bool) {
		m.all(yield)
	}
}

func (m *CoverageMap) all(yield func(ProjectedPolygon) bool) bool {
	for _, r := range m.regions() {
		for _, p := range r.polygons {
			if !yield(p) {
				return false
			}
		}
	}
	for _, c := range m.children {
		if c != nil && !c.all(yield) {
			return false
		}
	}
	return true
}

// NodeCount returns the number of nodes in the subtree rooted at m.
func (m *CoverageMap) NodeCount() int {
	n := 1
	for _, c := range m.children {
		if c != nil {
			n += c.NodeCount()
		}
	}
	return n
}

// CheckMap decides whether p is hidden by the polygons already in the map.
// If store is set and p is visible, p is added to the map unless its
// bounding box is smaller than [MinimumStorableArea]. With store unset,
// the map is never modified: missing child nodes are not created, so
// Stats.MapCreated only counts nodes which are kept.
func (m *CoverageMap) CheckMap(p ProjectedPolygon, store bool) Result {
	stats := m.cfg.stats
	if m.isRoot {
		stats.RootCheck()
	}

	if !p.IsFullyInView() {
		stats.NotInView()
		return DoesntFit
	}

	bbox := p.BoundingRect()
	if !m.isRoot && !m.bounds.Contains(bbox) {
		return DoesntFit
	}

	// The halves are tried in a fixed order. The first one which can hold
	// the polygon is also where it is stored if it stays at this level.
	result := NotStored
	storeIn := &m.remainder
	for _, r := range [...]*CoverageRegion{&m.topHalf, &m.bottomHalf, &m.leftHalf, &m.rightHalf} {
		if r.fits(bbox) {
			result = r.CheckRegion(p, bbox, store)
			storeIn = r
			break
		}
	}

	// Polygons spanning the whole node live in the remainder.
	if result != Stored && result != Occluded {
		result = m.remainder.CheckRegion(p, bbox, store)
	}
	if result == Stored || result == Occluded {
		return result
	}

	for i := range numQuadrants {
		childBounds := m.bounds.Quadrant(i)
		if !childBounds.Contains(bbox) {
			continue
		}
		if m.children[i] == nil {
			if !store {
				// an empty node can neither hide nor keep the polygon
				return NotStored
			}
			m.children[i] = newMap(childBounds, false, m.cfg)
		}
		return m.children[i].CheckMap(p, store)
	}

	if !store {
		return NotStored
	}
	if bbox.Area() <= MinimumStorableArea {
		stats.TooSmall()
		return NotStored
	}
	storeIn.store(p)
	return Stored
}

// Clear removes all polygons and child nodes. Owned polygons are released.
// Calling Clear on an empty map has no effect.
func (m *CoverageMap) Clear() {
	if m.isRoot && m.cfg.logger != nil {
		m.cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "clearing coverage map",
			slog.String("bounds", m.bounds.String()),
			slog.Int("nodes", m.NodeCount()),
			slog.Int("polygons", m.countAll()))
		if rep, ok := m.cfg.stats.(Reporter); ok {
			rep.Report(m.cfg.logger)
		}
	}
	m.clear()
}

func (m *CoverageMap) clear() {
	for _, r := range m.regions() {
		r.clear()
	}
	for i, c := range m.children {
		if c != nil {
			c.clear()
			m.children[i] = nil
		}
	}
}

func (m *CoverageMap) countAll() int {
	n := m.PolygonCount()
	for _, c := range m.children {
		if c != nil {
			n += c.countAll()
		}
	}
	return n
}
