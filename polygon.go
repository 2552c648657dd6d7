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
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// ProjectedPolygon is a polygon which has already been projected into
// normalized device coordinates.
type ProjectedPolygon interface {
	// BoundingRect returns the bounding box of the outline.
	BoundingRect() Rectangle

	// Distance is the distance from the viewer. Smaller values are nearer.
	Distance() float64

	// IsFullyInView reports whether the polygon lies entirely inside the
	// view frustum.
	IsFullyInView() bool

	// Occludes reports whether the outline of the receiver completely
	// covers the outline of other. Distances are not taken into account.
	Occludes(other ProjectedPolygon) bool
}

// Outliner is implemented by polygons which can expose their vertices.
type Outliner interface {
	Outline() []vec.Vec2
}

// Releaser is implemented by polygons which hold resources.
// A [CoverageMap] with [Owned] polygons calls Release when it is cleared.
type Releaser interface {
	Release()
}

// Polygon is a simple polygon in normalized device coordinates.
type Polygon struct {
	vertices []vec.Vec2
	bbox     Rectangle
	distance float64
	inView   bool
}

// NewPolygon returns a polygon with the given outline.
// The vertices are used in order; the outline is implicitly closed.
func NewPolygon(vertices []vec.Vec2, distance float64, inView bool) *Polygon {
	p := &Polygon{
		vertices: vertices,
		distance: distance,
		inView:   inView,
	}
	if len(vertices) > 0 {
		lo, hi := vertices[0], vertices[0]
		for _, v := range vertices[1:] {
			lo.X = min(lo.X, v.X)
			lo.Y = min(lo.Y, v.Y)
			hi.X = max(hi.X, v.X)
			hi.Y = max(hi.Y, v.Y)
		}
		p.bbox = Rectangle{Corner: lo, Size: hi.Sub(lo)}
	}
	return p
}

// NewBox returns an axis-aligned rectangular polygon.
func NewBox(r Rectangle, distance float64, inView bool) *Polygon {
	return NewPolygon(boxOutline(r), distance, inView)
}

// BoundingRect implements [ProjectedPolygon].
func (p *Polygon) BoundingRect() Rectangle { return p.bbox }

// Distance implements [ProjectedPolygon].
func (p *Polygon) Distance() float64 { return p.distance }

// IsFullyInView implements [ProjectedPolygon].
func (p *Polygon) IsFullyInView() bool { return p.inView }

// Outline implements [Outliner].
// The returned slice must not be modified.
func (p *Polygon) Outline() []vec.Vec2 { return p.vertices }

// Path returns the outline as a closed path.
func (p *Polygon) Path() *path.Data {
	res := &path.Data{}
	if len(p.vertices) == 0 {
		return res
	}
	res = res.MoveTo(p.vertices[0])
	for _, v := range p.vertices[1:] {
		res = res.LineTo(v)
	}
	return res.Close()
}

// Occludes implements [ProjectedPolygon].
//
// The test is exact for simple polygons: all vertices of other must lie
// inside or on the outline of p, and no edge of other may cross an edge of p.
// If other does not implement [Outliner], its bounding box is used as its
// outline. Covering the box implies covering the polygon inside it.
func (p *Polygon) Occludes(other ProjectedPolygon) bool {
	if len(p.vertices) < 3 {
		return false
	}
	bbox := other.BoundingRect()
	if !p.bbox.Contains(bbox) {
		return false
	}

	var pts []vec.Vec2
	if o, ok := other.(Outliner); ok {
		pts = o.Outline()
	} else {
		pts = boxOutline(bbox)
	}
	if len(pts) == 0 {
		return false
	}

	for _, v := range pts {
		if !p.containsPoint(v) {
			return false
		}
	}

	n := len(pts)
	m := len(p.vertices)
	for i := range n {
		a, b := pts[i], pts[(i+1)%n]
		for j := range m {
			c, d := p.vertices[j], p.vertices[(j+1)%m]
			if segmentsCross(a, b, c, d) {
				return false
			}
		}
	}
	return true
}

// boxOutline returns the corners of r in counter-clockwise order.
func boxOutline(r Rectangle) []vec.Vec2 {
	hi := r.Max()
	return []vec.Vec2{
		r.Corner,
		{X: hi.X, Y: r.Corner.Y},
		hi,
		{X: r.Corner.X, Y: hi.Y},
	}
}

// containsPoint reports whether v lies inside the outline or on its boundary.
func (p *Polygon) containsPoint(v vec.Vec2) bool {
	inside := false
	n := len(p.vertices)
	for i := range n {
		a, b := p.vertices[i], p.vertices[(i+1)%n]
		if onSegment(v, a, b) {
			return true
		}
		if (a.Y > v.Y) != (b.Y > v.Y) {
			x := a.X + (v.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if v.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// orient returns twice the signed area of the triangle abc.
func orient(a, b, c vec.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(v, a, b vec.Vec2) bool {
	if abs(orient(a, b, v)) > collinearityEpsilon {
		return false
	}
	return v.X >= min(a.X, b.X)-collinearityEpsilon && v.X <= max(a.X, b.X)+collinearityEpsilon &&
		v.Y >= min(a.Y, b.Y)-collinearityEpsilon && v.Y <= max(a.Y, b.Y)+collinearityEpsilon
}

// segmentsCross reports whether ab and cd intersect in a single point
// interior to both segments. Touching and collinear overlap do not count.
func segmentsCross(a, b, c, d vec.Vec2) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > collinearityEpsilon && d2 < -collinearityEpsilon) ||
		(d1 < -collinearityEpsilon && d2 > collinearityEpsilon)) &&
		((d3 > collinearityEpsilon && d4 < -collinearityEpsilon) ||
			(d3 < -collinearityEpsilon && d4 > collinearityEpsilon))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// collinearityEpsilon is the tolerance for orientation tests in NDC.
// It is far below the size of a pixel on any realistic screen.
const collinearityEpsilon = 1e-12
