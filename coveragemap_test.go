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
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func square(x, y, side, dist float64) *Polygon {
	return NewBox(NewRectangle(x, y, side, side), dist, true)
}

// snapshot records the observable state of a tree.
type snapshot struct {
	nodes    int
	polygons []ProjectedPolygon
	covered  []Rectangle
}

func takeSnapshot(m *CoverageMap) snapshot {
	s := snapshot{nodes: m.NodeCount()}
	for p := range m.All() {
		s.polygons = append(s.polygons, p)
	}
	var walk func(m *CoverageMap)
	walk = func(m *CoverageMap) {
		for i := range 5 {
			s.covered = append(s.covered, m.Region(i).CoveredBounds())
		}
		for i := range numQuadrants {
			if c := m.Child(i); c != nil {
				walk(c)
			}
		}
	}
	walk(m)
	return s
}

func (s snapshot) equal(other snapshot) bool {
	if s.nodes != other.nodes || len(s.polygons) != len(other.polygons) || len(s.covered) != len(other.covered) {
		return false
	}
	for i := range s.polygons {
		if s.polygons[i] != other.polygons[i] {
			return false
		}
	}
	for i := range s.covered {
		if s.covered[i] != other.covered[i] {
			return false
		}
	}
	return true
}

func TestBasicOcclusion(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	a := square(-0.5, -0.5, 1, 1)
	if res := m.CheckMap(a, true); res != Stored {
		t.Fatalf("A: got %s, want STORED", res)
	}

	b := square(-0.25, -0.25, 0.5, 2)
	if res := m.CheckMap(b, true); res != Occluded {
		t.Errorf("B behind A: got %s, want OCCLUDED", res)
	}

	c := square(-0.25, -0.25, 0.5, 0.5)
	if res := m.CheckMap(c, false); res != NotStored {
		t.Errorf("C in front of A: got %s, want NOT_STORED", res)
	}

	if n := m.PolygonCount(); n != 1 {
		t.Errorf("%d polygons stored, want 1", n)
	}
	if p := m.Polygon(0); p != a {
		t.Errorf("Polygon(0) = %v, want A", p)
	}
}

func TestNotInView(t *testing.T) {
	stats := &Counters{}
	m := NewCoverageMap(RootBounds, &Options{Stats: stats})
	m.CheckMap(square(-0.5, -0.5, 1, 1), true)
	before := takeSnapshot(m)

	p := NewBox(NewRectangle(-0.25, -0.25, 0.5, 0.5), 0.5, false)
	for _, store := range []bool{true, false} {
		if res := m.CheckMap(p, store); res != DoesntFit {
			t.Errorf("store=%t: got %s, want DOESNT_FIT", store, res)
		}
	}
	if !takeSnapshot(m).equal(before) {
		t.Error("map changed by a polygon which is not in view")
	}
	if stats.NotInViewRejects != 2 {
		t.Errorf("NotInViewRejects = %d, want 2", stats.NotInViewRejects)
	}
}

func TestQueryDoesNotModify(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	m.CheckMap(square(-0.5, -0.5, 1, 1), true)
	m.CheckMap(square(0.1, -0.9, 0.5, 2), true)
	before := takeSnapshot(m)

	queries := []ProjectedPolygon{
		square(-0.5, -0.5, 1, 0.5),         // out of order
		square(-0.25, -0.25, 0.5, 3),       // occluded
		square(0.6, 0.6, 0.3, 3),           // visible, would create a child
		square(-0.9, 0.1, 0.5, 3),          // visible, would create a child
		square(-0.005, -0.005, 0.01, 0.25), // too small
	}
	want := []Result{NotStored, Occluded, NotStored, NotStored, NotStored}
	for round := range 2 {
		for i, q := range queries {
			if res := m.CheckMap(q, false); res != want[i] {
				t.Errorf("round %d, query %d: got %s, want %s", round, i, res, want[i])
			}
		}
	}
	if !takeSnapshot(m).equal(before) {
		t.Error("map changed by queries")
	}
}

func TestMinimumArea(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	if res := m.CheckMap(square(-0.0065, -0.0065, 0.013, 1), true); res != NotStored {
		t.Errorf("small square: got %s, want NOT_STORED", res)
	}
	if n := m.NodeCount(); n != 1 {
		t.Errorf("%d nodes after rejecting a small polygon", n)
	}
	if res := m.CheckMap(square(-0.007, -0.007, 0.014, 1), true); res != Stored {
		t.Errorf("large enough square: got %s, want STORED", res)
	}

	// A polygon whose area is exactly the limit is not stored.
	// The box is 1 wide and MinimumStorableArea high, with y starting at 0,
	// so both sides are computed without rounding.
	m.Clear()
	h := MinimumStorableArea
	edge := NewPolygon(pts(-0.5, 0, 0.5, 0, 0.5, h, -0.5, h), 1, true)
	if a := edge.BoundingRect().Area(); a != MinimumStorableArea {
		t.Fatalf("bounding box area %g, want %g", a, MinimumStorableArea)
	}
	if res := m.CheckMap(edge, true); res != NotStored {
		t.Errorf("square at the limit: got %s, want NOT_STORED", res)
	}
}

func TestOutOfOrder(t *testing.T) {
	stats := &Counters{}
	m := NewCoverageMap(RootBounds, &Options{Stats: stats})
	far := square(-0.5, -0.5, 1, 20)
	near := square(-0.5, -0.5, 1, 10)
	if res := m.CheckMap(far, true); res != Stored {
		t.Fatalf("far: got %s", res)
	}
	if res := m.CheckMap(near, true); res != Stored {
		t.Fatalf("near: got %s, want STORED", res)
	}
	if m.Polygon(0) != near || m.Polygon(1) != far {
		t.Error("polygons not sorted by distance")
	}
	if stats.OutOfOrderPolygons != 1 {
		t.Errorf("OutOfOrderPolygons = %d, want 1", stats.OutOfOrderPolygons)
	}

	if res := m.CheckMap(square(-0.5, -0.5, 1, 15), true); res != Occluded {
		t.Errorf("middle: got %s, want OCCLUDED", res)
	}
}

// TestOutOfOrderInHalf checks that a polygon stored by a half region is not
// also checked against the remainder.
func TestOutOfOrderInHalf(t *testing.T) {
	stats := &Counters{}
	m := NewCoverageMap(RootBounds, &Options{Stats: stats})
	far := NewBox(NewRectangle(-0.9, 0.1, 1.8, 0.5), 20, true)
	if res := m.CheckMap(far, true); res != Stored {
		t.Fatalf("far: got %s", res)
	}
	// a large, nearer polygon in the remainder which also covers near
	big := square(-0.95, -0.95, 1.9, 5)
	if res := m.CheckMap(big, true); res != Stored {
		t.Fatalf("big: got %s", res)
	}
	if m.Region(0).PolygonCount() != 1 || m.Region(4).PolygonCount() != 1 {
		t.Fatalf("setup: top holds %d, remainder %d",
			m.Region(0).PolygonCount(), m.Region(4).PolygonCount())
	}

	tests := stats.OcclusionTests
	near := NewBox(NewRectangle(-0.9, 0.1, 1.8, 0.5), 10, true)
	if res := m.CheckMap(near, true); res != Stored {
		t.Errorf("near: got %s, want STORED", res)
	}
	if got := stats.OcclusionTests - tests; got != 1 {
		t.Errorf("near needed %d occlusion tests, want 1", got)
	}
	if n := m.Region(0).PolygonCount(); n != 2 {
		t.Errorf("top half holds %d polygons, want 2", n)
	}
	if n := m.Region(4).PolygonCount(); n != 1 {
		t.Errorf("remainder holds %d polygons, want 1", n)
	}
	if m.Region(0).Polygon(0) != near {
		t.Error("near polygon not first in the top half")
	}
	if m.NodeCount() != 1 {
		t.Errorf("%d nodes, want 1", m.NodeCount())
	}
}

func TestEqualDistance(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	first := square(-0.5, -0.5, 1, 10)
	second := square(-0.5, -0.5, 1, 10)
	m.CheckMap(first, true)
	if res := m.CheckMap(second, true); res != Stored {
		t.Fatalf("second: got %s, want STORED", res)
	}
	if m.Polygon(0) != first || m.Polygon(1) != second {
		t.Error("polygons at equal distance not kept in arrival order")
	}
}

func TestQuadrantRouting(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	if res := m.CheckMap(square(0, -1, 0.5, 10), true); res != Stored {
		t.Fatalf("got %s, want STORED", res)
	}

	child := m.Child(quadrantHighX)
	if child == nil {
		t.Fatal("no child for the quadrant at (0, -1)")
	}
	if want := NewRectangle(0, -1, 1, 1); child.Bounds() != want {
		t.Errorf("child bounds %s, want %s", child.Bounds(), want)
	}
	if child.IsRoot() {
		t.Error("child claims to be a root")
	}
	for i := range numQuadrants {
		if i != quadrantHighX && m.Child(i) != nil {
			t.Errorf("unexpected child %d", i)
		}
	}
	if m.PolygonCount() != 0 {
		t.Errorf("root stores %d polygons, want 0", m.PolygonCount())
	}

	// The polygon coincides with a quadrant of the child and ends up
	// one level further down.
	if n := m.NodeCount(); n != 3 {
		t.Errorf("%d nodes, want 3", n)
	}

	if res := m.CheckMap(square(0.5, -0.6, 0.4, 20), true); res != Stored {
		t.Fatalf("second polygon: got %s, want STORED", res)
	}
	if m.Child(quadrantHighX) != child {
		t.Error("child node replaced")
	}
	if child.PolygonCount() != 1 {
		t.Errorf("child stores %d polygons, want 1", child.PolygonCount())
	}
}

func TestCustomBounds(t *testing.T) {
	m := NewCoverageMap(NewRectangle(0, 0, 4, 4), nil)
	if res := m.CheckMap(square(1, 1, 2, 10), true); res != Stored {
		t.Fatalf("got %s", res)
	}
	if res := m.CheckMap(square(1.5, 1.5, 1, 20), true); res != Occluded {
		t.Errorf("got %s, want OCCLUDED", res)
	}

	// the root accepts polygons which stick out of its bounds
	if res := m.CheckMap(square(3, 3, 2, 20), true); res != Stored {
		t.Errorf("got %s, want STORED", res)
	}
}

func TestClear(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	fresh := takeSnapshot(NewCoverageMap(RootBounds, nil))

	scenario := func() []Result {
		return []Result{
			m.CheckMap(square(-0.9, 0.1, 0.5, 10), true),
			m.CheckMap(square(0.1, -0.9, 0.5, 20), true),
			m.CheckMap(square(-0.5, -0.5, 1, 30), true),
			m.CheckMap(square(-0.8, 0.2, 0.2, 40), true),
		}
	}

	first := scenario()
	if m.NodeCount() == 1 {
		t.Fatal("scenario did not create any children")
	}

	m.Clear()
	if !takeSnapshot(m).equal(fresh) {
		t.Error("cleared map differs from a fresh one")
	}
	m.Clear()
	if !takeSnapshot(m).equal(fresh) {
		t.Error("second Clear changed the map")
	}

	second := scenario()
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("step %d: %s after Clear, %s before", i, second[i], first[i])
		}
	}
}

type releasable struct {
	*Polygon
	released int
}

func (r *releasable) Release() { r.released++ }

func TestOwnership(t *testing.T) {
	for _, own := range []Ownership{Borrowed, Owned} {
		m := NewCoverageMap(RootBounds, &Options{Ownership: own})
		polys := []*releasable{
			{Polygon: square(-0.5, -0.5, 1, 1)},
			{Polygon: square(0.1, 0.1, 0.5, 2)},
		}
		for _, p := range polys {
			if res := m.CheckMap(p, true); res != Stored {
				t.Fatalf("ownership %d: got %s", own, res)
			}
		}
		m.Clear()
		m.Clear()

		want := 0
		if own == Owned {
			want = 1
		}
		for i, p := range polys {
			if p.released != want {
				t.Errorf("ownership %d, polygon %d: released %d times, want %d", own, i, p.released, want)
			}
		}
	}
}

func TestEnumeration(t *testing.T) {
	m := NewCoverageMap(RootBounds, nil)
	top := NewBox(NewRectangle(-0.5, 0.2, 1, 0.5), 1, true)
	rest := square(-0.5, -0.5, 1, 2)
	left := NewBox(NewRectangle(-0.9, -0.5, 0.8, 1), 3, true)
	for _, p := range []*Polygon{top, rest, left} {
		if res := m.CheckMap(p, true); res != Stored {
			t.Fatalf("got %s", res)
		}
	}

	if m.NodeCount() != 1 {
		t.Errorf("%d nodes, want 1", m.NodeCount())
	}
	counts := []int{1, 0, 1, 0, 1}
	for i, want := range counts {
		if got := m.Region(i).PolygonCount(); got != want {
			t.Errorf("region %s holds %d polygons, want %d", m.Region(i), got, want)
		}
	}
	if m.Region(-1) != nil || m.Region(5) != nil {
		t.Error("out of range Region is not nil")
	}

	want := []ProjectedPolygon{top, left, rest}
	for i, p := range want {
		if got := m.Polygon(i); got != p {
			t.Errorf("Polygon(%d) = %v, want %v", i, got, p)
		}
	}
	if m.Polygon(3) != nil || m.Polygon(-1) != nil {
		t.Error("out of range Polygon is not nil")
	}

	if got := m.Region(4).String(); got != "REMAINDER" {
		t.Errorf("remainder is called %q", got)
	}
	if got := m.Region(2).Bounds(); got != RootBounds.LeftHalf() {
		t.Errorf("left region has bounds %s", got)
	}
}

func TestCheckRegion(t *testing.T) {
	stats := &Counters{}
	cfg := &mapConfig{stats: stats}
	r := newRegion(NewRectangle(-1, 0, 2, 1), false, regionTop, cfg)

	outside := square(-0.5, -0.5, 1, 1)
	if res := r.CheckRegion(outside, outside.BoundingRect(), true); res != DoesntFit {
		t.Errorf("got %s, want DOESNT_FIT", res)
	}

	for _, d := range []float64{3, 1, 2, 2} {
		r.store(NewBox(NewRectangle(-0.5+0.1*d, 0.1, 0.2, 0.2), d, true))
	}
	for i, want := range []float64{1, 2, 2, 3} {
		if d := r.Polygon(i).Distance(); d != want {
			t.Errorf("polygon %d has distance %g, want %g", i, d, want)
		}
	}
	if want := NewRectangle(-0.4, 0.1, 0.4, 0.2); !nearlyEqual(r.CoveredBounds(), want) {
		t.Errorf("covered bounds %s, want %s", r.CoveredBounds(), want)
	}

	// outside the covered bounds: no pairwise tests
	p := square(0.5, 0.5, 0.2, 0.5)
	if res := r.CheckRegion(p, p.BoundingRect(), false); res != NotStored {
		t.Errorf("got %s, want NOT_STORED", res)
	}
	if stats.RegionSkips != 4 || stats.OcclusionTests != 0 {
		t.Errorf("RegionSkips = %d, OcclusionTests = %d, want 4 and 0",
			stats.RegionSkips, stats.OcclusionTests)
	}
	if stats.MaxPolygonsPerRegion != 4 {
		t.Errorf("MaxPolygonsPerRegion = %d, want 4", stats.MaxPolygonsPerRegion)
	}

	r.clear()
	if r.PolygonCount() != 0 || !r.CoveredBounds().IsZero() {
		t.Error("region not empty after clear")
	}
}

func nearlyEqual(a, b Rectangle) bool {
	const eps = 1e-12
	return abs(a.Corner.X-b.Corner.X) < eps && abs(a.Corner.Y-b.Corner.Y) < eps &&
		abs(a.Size.X-b.Size.X) < eps && abs(a.Size.Y-b.Size.Y) < eps
}

func TestCountersReport(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	stats := &Counters{}
	m := NewCoverageMap(RootBounds, &Options{Stats: stats, Logger: logger})

	m.CheckMap(square(-0.5, -0.5, 1, 10), true)
	m.CheckMap(square(-0.25, -0.25, 0.5, 20), true)
	m.CheckMap(NewBox(NewRectangle(-0.5, -0.5, 1, 1), 1, false), true)
	m.CheckMap(square(-0.005, -0.005, 0.01, 5), true)
	m.CheckMap(square(0.6, 0.6, 0.2, 30), true)

	want := Counters{
		MapsCreated:          3,
		RootChecks:           5,
		NotInViewRejects:     1,
		MaxPolygonsPerRegion: 1,
		TotalPolygons:        2,
		OcclusionTests:       2,
		RegionSkips:          1,
		TooSmallSkips:        2, // once in the region, once in the node
		OutOfOrderPolygons:   1,
	}
	if *stats != want {
		t.Errorf("counters:\n got %+v\nwant %+v", *stats, want)
	}

	m.Clear()
	out := buf.String()
	for _, s := range []string{
		`"msg":"clearing coverage map"`,
		`"nodes":3`,
		`"polygons":2`,
		`"msg":"coverage map statistics"`,
		`"total_polygons":2`,
		`"occlusion_tests":2`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("log output lacks %s:\n%s", s, out)
		}
	}
	if *stats != (Counters{}) {
		t.Errorf("counters not reset by Report: %+v", *stats)
	}
}

func TestResultString(t *testing.T) {
	names := map[Result]string{
		Stored:    "STORED",
		NotStored: "NOT_STORED",
		Occluded:  "OCCLUDED",
		DoesntFit: "DOESNT_FIT",
	}
	for r, want := range names {
		if r.String() != want {
			t.Errorf("%d.String() = %q, want %q", r, r.String(), want)
		}
	}
}
