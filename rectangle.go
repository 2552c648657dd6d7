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
	"fmt"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Rectangle is an axis-aligned box in normalized device coordinates.
// Size must be non-negative in both directions.
type Rectangle struct {
	Corner vec.Vec2 // lower-left corner
	Size   vec.Vec2 // extent in x and y
}

// RootBounds covers the whole screen in normalized device coordinates.
var RootBounds = Rectangle{
	Corner: vec.Vec2{X: -1, Y: -1},
	Size:   vec.Vec2{X: 2, Y: 2},
}

// NewRectangle returns the rectangle with the given corner and size.
func NewRectangle(x, y, w, h float64) Rectangle {
	return Rectangle{Corner: vec.Vec2{X: x, Y: y}, Size: vec.Vec2{X: w, Y: h}}
}

// FromRect converts a geom rectangle.
func FromRect(r rect.Rect) Rectangle {
	return Rectangle{
		Corner: vec.Vec2{X: r.LLx, Y: r.LLy},
		Size:   vec.Vec2{X: r.URx - r.LLx, Y: r.URy - r.LLy},
	}
}

// Rect converts r to a geom rectangle.
func (r Rectangle) Rect() rect.Rect {
	return rect.Rect{
		LLx: r.Corner.X,
		LLy: r.Corner.Y,
		URx: r.Corner.X + r.Size.X,
		URy: r.Corner.Y + r.Size.Y,
	}
}

// Max returns the corner opposite to r.Corner.
func (r Rectangle) Max() vec.Vec2 {
	return r.Corner.Add(r.Size)
}

// Area returns the area of r, in the same units as [MinimumStorableArea].
func (r Rectangle) Area() float64 {
	return r.Size.X * r.Size.Y
}

// IsZero reports whether r is the zero value.
func (r Rectangle) IsZero() bool {
	return r == Rectangle{}
}

// Contains reports whether other lies inside r.
// The boundary counts as inside.
func (r Rectangle) Contains(other Rectangle) bool {
	rMax := r.Max()
	oMax := other.Max()
	return other.Corner.X >= r.Corner.X && oMax.X <= rMax.X &&
		other.Corner.Y >= r.Corner.Y && oMax.Y <= rMax.Y
}

// TopHalf returns the upper half of r in y.
func (r Rectangle) TopHalf() Rectangle {
	h := r.Size.Y / 2
	return Rectangle{
		Corner: vec.Vec2{X: r.Corner.X, Y: r.Corner.Y + h},
		Size:   vec.Vec2{X: r.Size.X, Y: h},
	}
}

// BottomHalf returns the lower half of r in y.
func (r Rectangle) BottomHalf() Rectangle {
	return Rectangle{
		Corner: r.Corner,
		Size:   vec.Vec2{X: r.Size.X, Y: r.Size.Y / 2},
	}
}

// LeftHalf returns the lower half of r in x.
func (r Rectangle) LeftHalf() Rectangle {
	return Rectangle{
		Corner: r.Corner,
		Size:   vec.Vec2{X: r.Size.X / 2, Y: r.Size.Y},
	}
}

// RightHalf returns the upper half of r in x.
func (r Rectangle) RightHalf() Rectangle {
	w := r.Size.X / 2
	return Rectangle{
		Corner: vec.Vec2{X: r.Corner.X + w, Y: r.Corner.Y},
		Size:   vec.Vec2{X: w, Y: r.Size.Y},
	}
}

// Quadrant bits, see [Rectangle.Quadrant].
const (
	quadrantHighX = 1
	quadrantHighY = 2

	numQuadrants = 4
)

// Quadrant returns one quarter of r.
// Bit 0 of i selects the half with larger x, bit 1 the half with larger y.
// The four quadrants tile r without overlap except for shared edges.
func (r Rectangle) Quadrant(i int) Rectangle {
	q := Rectangle{Corner: r.Corner, Size: r.Size.Mul(0.5)}
	if i&quadrantHighX != 0 {
		q.Corner.X += q.Size.X
	}
	if i&quadrantHighY != 0 {
		q.Corner.Y += q.Size.Y
	}
	return q
}

// ExpandToInclude grows r to the smallest rectangle containing both r and
// other. A zero r is replaced by other.
func (r *Rectangle) ExpandToInclude(other Rectangle) {
	if r.IsZero() {
		*r = other
		return
	}
	rMax := r.Max()
	oMax := other.Max()
	lo := vec.Vec2{X: min(r.Corner.X, other.Corner.X), Y: min(r.Corner.Y, other.Corner.Y)}
	hi := vec.Vec2{X: max(rMax.X, oMax.X), Y: max(rMax.Y, oMax.Y)}
	r.Corner = lo
	r.Size = hi.Sub(lo)
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.Corner.X, r.Corner.Y, r.Size.X, r.Size.Y)
}
