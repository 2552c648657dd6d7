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

package testcases

import "seehuhn.de/go/occlusion"

const (
	stored    = occlusion.Stored
	notStored = occlusion.NotStored
	occluded  = occlusion.Occluded
	doesntFit = occlusion.DoesntFit
)

var basicCases = []TestCase{
	{
		Name: "same_outline_behind",
		Steps: []Step{
			store(box(-0.5, -0.5, 1, 1, 10), stored),
			store(box(-0.5, -0.5, 1, 1, 20), occluded),
		},
		WantPolygons: 1,
		WantNodes:    1,
	},
	{
		Name: "smaller_behind",
		Steps: []Step{
			store(box(-0.5, -0.5, 1, 1, 10), stored),
			store(box(-0.25, -0.25, 0.5, 0.5, 20), occluded),
		},
		WantPolygons: 1,
		WantNodes:    1,
	},
	{
		Name: "larger_behind",
		Steps: []Step{
			store(box(-0.25, -0.25, 0.5, 0.5, 10), stored),
			store(box(-0.5, -0.5, 1, 1, 20), stored),
		},
		WantPolygons: 2,
		WantNodes:    1,
	},
	{
		Name: "disjoint",
		Steps: []Step{
			store(box(-0.9, 0.1, 0.5, 0.5, 10), stored),
			store(box(0.1, -0.9, 0.5, 0.5, 20), stored),
		},
		WantPolygons: 2,
		WantNodes:    3,
	},
	{
		Name: "query_only",
		Steps: []Step{
			store(box(-0.5, -0.5, 1, 1, 10), stored),
			query(box(-0.5, -0.5, 1, 1, 5), notStored),
			query(box(-0.5, -0.5, 1, 1, 5), notStored),
			query(box(0.2, 0.2, 0.3, 0.3, 30), occluded),
		},
		WantPolygons: 1,
		WantNodes:    1,
	},
}

var orderCases = []TestCase{
	{
		Name: "out_of_order",
		Steps: []Step{
			store(box(-0.5, -0.5, 1, 1, 20), stored),
			store(box(-0.5, -0.5, 1, 1, 10), stored),
			store(box(-0.5, -0.5, 1, 1, 15), occluded),
		},
		WantPolygons: 2,
		WantNodes:    1,
	},
	{
		Name: "out_of_order_in_half",
		Steps: []Step{
			store(box(-0.9, 0.1, 1.8, 0.5, 20), stored),
			store(box(-0.95, -0.95, 1.9, 1.9, 5), stored),
			store(box(-0.9, 0.1, 1.8, 0.5, 10), stored),
		},
		WantPolygons: 3,
		WantNodes:    1,
	},
	{
		Name: "equal_distance",
		Steps: []Step{
			store(box(-0.5, -0.5, 1, 1, 10), stored),
			store(box(-0.5, -0.5, 1, 1, 10), stored),
		},
		WantPolygons: 2,
		WantNodes:    1,
	},
	{
		Name: "out_of_order_too_small",
		Steps: []Step{
			store(box(-0.01, -0.01, 0.02, 0.02, 20), stored),
			store(box(-0.005, -0.005, 0.01, 0.01, 10), notStored),
		},
		WantPolygons: 1,
		WantNodes:    1,
	},
}

var filterCases = []TestCase{
	{
		Name: "not_in_view",
		Steps: []Step{
			store(outOfView(-0.5, -0.5, 1, 1, 10), doesntFit),
			query(outOfView(-0.5, -0.5, 1, 1, 10), doesntFit),
		},
		WantPolygons: 0,
		WantNodes:    1,
	},
	{
		Name: "too_small",
		Steps: []Step{
			store(box(-0.005, -0.005, 0.01, 0.01, 10), notStored),
		},
		WantPolygons: 0,
		WantNodes:    1,
	},
	{
		Name: "beyond_screen_edge",
		Steps: []Step{
			store(box(0.8, -0.2, 0.5, 0.4, 10), stored),
			store(box(0.9, -0.1, 0.3, 0.2, 20), occluded),
		},
		WantPolygons: 1,
		WantNodes:    1,
	},
}

var routingCases = []TestCase{
	{
		Name: "quadrant_child",
		Steps: []Step{
			store(box(0, -1, 0.5, 0.5, 10), stored),
			store(box(0.5, -0.6, 0.4, 0.4, 20), stored),
		},
		WantPolygons: 2,
		WantNodes:    3,
	},
	{
		Name: "remainder_covers_half",
		Steps: []Step{
			store(box(-0.9, -0.9, 1.8, 1.8, 10), stored),
			store(box(0.2, 0.2, 0.3, 0.3, 20), occluded),
		},
		WantPolygons: 1,
		WantNodes:    1,
	},
	{
		Name: "occluded_in_child",
		Steps: []Step{
			store(box(0.1, 0.1, 0.8, 0.8, 10), stored),
			store(box(0.3, 0.3, 0.2, 0.2, 20), occluded),
		},
		WantPolygons: 1,
		WantNodes:    2,
	},
	{
		Name:   "custom_bounds",
		Bounds: occlusion.NewRectangle(0, 0, 4, 4),
		Steps: []Step{
			store(box(1, 1, 2, 2, 10), stored),
			store(box(2.5, 2.5, 1, 1, 20), stored),
			store(box(1.5, 1.5, 1, 1, 20), occluded),
		},
		WantPolygons: 2,
		WantNodes:    2,
	},
}

// lShape covers the square [-0.8, 0.8]² except for its upper right quarter.
var lShape = []float64{
	-0.8, -0.8,
	0.8, -0.8,
	0.8, 0,
	0, 0,
	0, 0.8,
	-0.8, 0.8,
}

var shapeCases = []TestCase{
	{
		Name: "concave_occluder",
		Steps: []Step{
			store(poly(10, lShape...), stored),
			store(box(0.2, 0.2, 0.4, 0.4, 20), stored),
			store(box(-0.6, -0.6, 0.4, 0.4, 20), occluded),
			store(poly(20, -0.5, 0.6, 0.6, -0.5, -0.5, -0.5), stored),
		},
		WantPolygons: 3,
		WantNodes:    2,
	},
	{
		Name: "triangle_behind_triangle",
		Steps: []Step{
			store(poly(10, -0.6, -0.6, 0.6, -0.6, 0, 0.6), stored),
			store(poly(20, -0.3, -0.4, 0.3, -0.4, 0, 0.2), occluded),
			store(poly(30, -0.7, -0.5, 0.7, -0.5, 0, 0.5), stored),
		},
		WantPolygons: 2,
		WantNodes:    1,
	},
}
