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

// Package testcases defines occlusion scenarios shared by the tests and by
// the generator commands.
package testcases

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/occlusion"
)

// TestCase is a sequence of polygons submitted to a fresh coverage map.
type TestCase struct {
	Name   string              // lowercase a-z and _ only
	Bounds occlusion.Rectangle // root bounds (zero value means RootBounds)
	Steps  []Step

	WantPolygons int // polygons stored in the whole tree after all steps
	WantNodes    int // nodes in the tree after all steps
}

// Step is a single CheckMap call.
type Step struct {
	Polygon *occlusion.Polygon
	Store   bool
	Want    occlusion.Result
}

// RootBounds returns the root rectangle to use for tc.
func (tc TestCase) RootBounds() occlusion.Rectangle {
	if tc.Bounds.IsZero() {
		return occlusion.RootBounds
	}
	return tc.Bounds
}

// box returns a visible axis-aligned square or rectangle.
func box(x, y, w, h, dist float64) *occlusion.Polygon {
	return occlusion.NewBox(occlusion.NewRectangle(x, y, w, h), dist, true)
}

// outOfView returns a rectangle which is not fully inside the frustum.
func outOfView(x, y, w, h, dist float64) *occlusion.Polygon {
	return occlusion.NewBox(occlusion.NewRectangle(x, y, w, h), dist, false)
}

// poly returns a visible polygon with vertices given as x, y pairs.
func poly(dist float64, xy ...float64) *occlusion.Polygon {
	pts := make([]vec.Vec2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		pts = append(pts, vec.Vec2{X: xy[i], Y: xy[i+1]})
	}
	return occlusion.NewPolygon(pts, dist, true)
}

func store(p *occlusion.Polygon, want occlusion.Result) Step {
	return Step{Polygon: p, Store: true, Want: want}
}

func query(p *occlusion.Polygon, want occlusion.Result) Step {
	return Step{Polygon: p, Store: false, Want: want}
}
