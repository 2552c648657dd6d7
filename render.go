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

// Package occlusion implements a screen-space occlusion test for projected
// polygons.
//
// A [CoverageMap] is a quad-tree over normalized device coordinates. Callers
// submit polygons one at a time, normally in front-to-back order, and learn
// whether each polygon is hidden behind a nearer polygon submitted earlier.
// Visible polygons can be added to the map so that they hide later ones.
// No pixels are rasterized for this; polygons are compared pairwise.
package occlusion

//go:generate go run ./testcases/export
//go:generate go run ./testcases/genpdf

import (
	"cmp"
	"image"
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
)

// RenderMap paints all polygons stored in the tree rooted at m into img.
// Nearer polygons are drawn brighter and on top of farther ones.
// Only polygons implementing [Outliner] can be drawn.
//
// The bounds of m are stretched to fill img.
func RenderMap(m *CoverageMap, img *image.Gray) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	type item struct {
		path *path.Data
		dist float64
	}
	var items []item
	dMin, dMax := 0.0, 0.0
	for p := range m.All() {
		o, ok := p.(Outliner)
		if !ok {
			continue
		}
		d := p.Distance()
		if len(items) == 0 {
			dMin, dMax = d, d
		} else {
			dMin = min(dMin, d)
			dMax = max(dMax, d)
		}
		items = append(items, item{path: outlinePath(o), dist: d})
	}

	// draw back to front
	slices.SortStableFunc(items, func(a, b item) int {
		return cmp.Compare(b.dist, a.dist)
	})

	r := NewRasterizer(rect.Rect{URx: float64(w), URy: float64(h)})
	r.CTM = BoundsToDevice(m.Bounds(), w, h)
	for _, it := range items {
		shade := 1.0
		if dMax > dMin {
			shade = 1 - 0.75*(it.dist-dMin)/(dMax-dMin)
		}
		r.Fill(it.path, NonZero, func(y, xMin int, coverage []float32) {
			row := img.Pix[img.PixOffset(b.Min.X+xMin, b.Min.Y+y):]
			for i, c := range coverage {
				old := float64(row[i])
				v := old + float64(c)*(255*shade-old)
				row[i] = uint8(max(0, min(255, math.Round(v))))
			}
		})
	}
}

// outlinePath converts an outline to a closed path.
func outlinePath(o Outliner) *path.Data {
	if p, ok := o.(*Polygon); ok {
		return p.Path()
	}
	return NewPolygon(o.Outline(), 0, true).Path()
}
