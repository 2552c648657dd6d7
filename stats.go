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
	"log/slog"
)

// Stats receives events from a [CoverageMap].
// The methods are called synchronously from CheckMap and must be cheap.
type Stats interface {
	// MapCreated is called once for every node, including the root.
	MapCreated()

	// RootCheck is called for every CheckMap call on a root node.
	RootCheck()

	// NotInView is called when a polygon is rejected because it is not
	// fully inside the view frustum.
	NotInView()

	// Stored is called after a polygon has been added to a region.
	// bucketLen is the new number of polygons in that region.
	Stored(bucketLen int)

	// OcclusionTest is called for every pairwise Occludes test.
	OcclusionTest()

	// RegionSkip is called when the covered-bounds check of a region
	// avoids n pairwise tests.
	RegionSkip(n int)

	// TooSmall is called when a polygon is not stored because its
	// bounding box is below [MinimumStorableArea].
	TooSmall()

	// OutOfOrder is called when a stored polygon covers a nearer one.
	OutOfOrder()
}

// Reporter is implemented by statistics sinks which can summarise their
// state in the log. A root [CoverageMap] calls Report from Clear when
// [Options.Logger] is set.
type Reporter interface {
	Report(logger *slog.Logger)
}

// Counters is an in-memory [Stats] implementation.
// The zero value is ready to use.
type Counters struct {
	MapsCreated          int
	RootChecks           int
	NotInViewRejects     int
	MaxPolygonsPerRegion int
	TotalPolygons        int
	OcclusionTests       int
	RegionSkips          int
	TooSmallSkips        int
	OutOfOrderPolygons   int
}

var _ Stats = (*Counters)(nil)

// MapCreated implements [Stats].
func (c *Counters) MapCreated() { c.MapsCreated++ }

// RootCheck implements [Stats].
func (c *Counters) RootCheck() { c.RootChecks++ }

// NotInView implements [Stats].
func (c *Counters) NotInView() { c.NotInViewRejects++ }

// OcclusionTest implements [Stats].
func (c *Counters) OcclusionTest() { c.OcclusionTests++ }

// RegionSkip implements [Stats].
func (c *Counters) RegionSkip(n int) { c.RegionSkips += n }

// TooSmall implements [Stats].
func (c *Counters) TooSmall() { c.TooSmallSkips++ }

// OutOfOrder implements [Stats].
func (c *Counters) OutOfOrder() { c.OutOfOrderPolygons++ }

// Stored implements [Stats]. It also tracks the largest region seen.
func (c *Counters) Stored(bucketLen int) {
	c.TotalPolygons++
	c.MaxPolygonsPerRegion = max(c.MaxPolygonsPerRegion, bucketLen)
}

// Reset sets all counters to zero.
func (c *Counters) Reset() {
	*c = Counters{}
}

// Report logs all counters at debug level and then resets them.
func (c *Counters) Report(logger *slog.Logger) {
	logger.LogAttrs(context.Background(), slog.LevelDebug, "coverage map statistics",
		slog.Float64("min_storable_area", MinimumStorableArea),
		slog.Int("maps_created", c.MapsCreated),
		slog.Int("root_checks", c.RootChecks),
		slog.Int("not_in_view", c.NotInViewRejects),
		slog.Int("max_polygons_per_region", c.MaxPolygonsPerRegion),
		slog.Int("total_polygons", c.TotalPolygons),
		slog.Int("occlusion_tests", c.OcclusionTests),
		slog.Int("region_skips", c.RegionSkips),
		slog.Int("too_small_skips", c.TooSmallSkips),
		slog.Int("out_of_order", c.OutOfOrderPolygons),
	)
	c.Reset()
}

// noStats discards all events.
type noStats struct{}

func (noStats) MapCreated()    {}
func (noStats) RootCheck()     {}
func (noStats) NotInView()     {}
func (noStats) Stored(int)     {}
func (noStats) OcclusionTest() {}
func (noStats) RegionSkip(int) {}
func (noStats) TooSmall()      {}
func (noStats) OutOfOrder()    {}
