// Command export writes the occlusion scenarios to JSON, for use by
// external renderers which want to replay them.
// Run from the module root directory.
package main

import (
	"encoding/json"
	"maps"
	"os"
	"slices"

	"seehuhn.de/go/occlusion"
	"seehuhn.de/go/occlusion/testcases"
)

func main() {
	var out struct {
		MinimumStorableArea float64        `json:"minimum_storable_area"`
		TestCases           []jsonTestCase `json:"testcases"`
	}
	out.MinimumStorableArea = occlusion.MinimumStorableArea

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			out.TestCases = append(out.TestCases, toJSON(category, tc))
		}
	}

	if err := os.MkdirAll("testdata", 0755); err != nil {
		panic(err)
	}
	f, err := os.Create("testdata/testcases.json")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		panic(err)
	}
}

type jsonTestCase struct {
	Name         string     `json:"name"`
	Bounds       [4]float64 `json:"bounds"` // x, y, width, height
	Steps        []jsonStep `json:"steps"`
	WantPolygons int        `json:"want_polygons"`
	WantNodes    int        `json:"want_nodes"`
}

type jsonStep struct {
	Vertices [][]float64 `json:"vertices"`
	Distance float64     `json:"distance"`
	InView   bool        `json:"in_view"`
	Store    bool        `json:"store"`
	Want     string      `json:"want"`
}

func toJSON(category string, tc testcases.TestCase) jsonTestCase {
	b := tc.RootBounds()
	jtc := jsonTestCase{
		Name:         category + "_" + tc.Name,
		Bounds:       [4]float64{b.Corner.X, b.Corner.Y, b.Size.X, b.Size.Y},
		WantPolygons: tc.WantPolygons,
		WantNodes:    tc.WantNodes,
	}
	for _, step := range tc.Steps {
		js := jsonStep{
			Distance: step.Polygon.Distance(),
			InView:   step.Polygon.IsFullyInView(),
			Store:    step.Store,
			Want:     step.Want.String(),
		}
		for _, v := range step.Polygon.Outline() {
			js.Vertices = append(js.Vertices, []float64{v.X, v.Y})
		}
		jtc.Steps = append(jtc.Steps, js)
	}
	return jtc
}
