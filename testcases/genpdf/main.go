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

// Command genpdf replays the occlusion scenarios and draws the outcome.
// For every scenario it writes a PDF, showing all submitted polygons, and
// a PNG, showing the final content of the coverage map.
package main

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/occlusion"
	"seehuhn.de/go/occlusion/testcases"
)

const (
	refDir   = "testdata/reference"
	pageSize = 256 // points, and pixels of the PNG
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := os.MkdirAll(refDir, 0755); err != nil {
		panic(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name

			stats := &occlusion.Counters{}
			m := occlusion.NewCoverageMap(tc.RootBounds(), &occlusion.Options{
				Stats:  stats,
				Logger: logger.With("scenario", name),
			})
			results := make([]occlusion.Result, len(tc.Steps))
			for i, step := range tc.Steps {
				results[i] = m.CheckMap(step.Polygon, step.Store)
				if results[i] != step.Want {
					logger.Warn("unexpected result",
						"scenario", name, "step", i,
						"got", results[i], "want", step.Want)
				}
			}

			pdfPath := filepath.Join(refDir, name+".pdf")
			if err := generatePDF(tc, results, pdfPath); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}

			pngPath := filepath.Join(refDir, name+".png")
			if err := writePNG(m, pngPath); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}

			m.Clear()
		}
	}
}

// generatePDF draws every polygon of the scenario. Stored polygons are
// filled, with nearer polygons lighter. Occluded polygons are outlined with
// a dashed line, and all other polygons with a thin solid line.
func generatePDF(tc testcases.TestCase, results []occlusion.Result, pdfPath string) error {
	paper := &pdf.Rectangle{
		URx: pageSize,
		URy: pageSize,
	}

	page, err := document.CreateSinglePage(pdfPath, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	page.SetFillColor(color.DeviceGray(0))
	page.Rectangle(0, 0, pageSize, pageSize)
	page.Fill()

	// Both PDF user space and the map have y pointing up,
	// so no flip is needed here.
	b := tc.RootBounds()
	scale := pageSize / max(b.Size.X, b.Size.Y)
	page.Transform(matrix.Matrix{scale, 0, 0, scale, -scale * b.Corner.X, -scale * b.Corner.Y})

	dMin, dMax := distanceRange(tc)

	// back to front, so that nearer polygons end up on top
	order := make([]int, len(tc.Steps))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		di, dj := tc.Steps[i].Polygon.Distance(), tc.Steps[j].Polygon.Distance()
		switch {
		case di > dj:
			return -1
		case di < dj:
			return 1
		}
		return 0
	})

	page.SetLineJoin(graphics.LineJoinRound)
	page.SetLineCap(graphics.LineCapRound)
	for _, i := range order {
		p := tc.Steps[i].Polygon
		pts := p.Outline()
		if len(pts) == 0 {
			continue
		}
		page.MoveTo(pts[0].X, pts[0].Y)
		for _, v := range pts[1:] {
			page.LineTo(v.X, v.Y)
		}
		page.ClosePath()

		switch results[i] {
		case occlusion.Stored:
			gray := 1.0
			if dMax > dMin {
				gray = 1 - 0.75*(p.Distance()-dMin)/(dMax-dMin)
			}
			page.SetFillColor(color.DeviceGray(gray))
			page.Fill()
		case occlusion.Occluded:
			page.SetStrokeColor(color.DeviceGray(0.5))
			page.SetLineWidth(2 / scale)
			page.SetLineDash([]float64{6 / scale, 4 / scale}, 0)
			page.Stroke()
		default:
			page.SetStrokeColor(color.DeviceGray(1))
			page.SetLineWidth(1 / scale)
			page.SetLineDash(nil, 0)
			page.Stroke()
		}
	}

	return page.Close()
}

func distanceRange(tc testcases.TestCase) (dMin, dMax float64) {
	for i, step := range tc.Steps {
		d := step.Polygon.Distance()
		if i == 0 {
			dMin, dMax = d, d
			continue
		}
		dMin = min(dMin, d)
		dMax = max(dMax, d)
	}
	return dMin, dMax
}

func writePNG(m *occlusion.CoverageMap, pngPath string) (err error) {
	img := image.NewGray(image.Rect(0, 0, pageSize, pageSize))
	occlusion.RenderMap(m, img)

	f, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
