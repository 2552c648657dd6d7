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

// Package promstats exports the statistics of an occlusion.CoverageMap as
// Prometheus metrics.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"seehuhn.de/go/occlusion"
)

// Sink implements occlusion.Stats by updating Prometheus collectors.
type Sink struct {
	mapsCreated    prometheus.Counter
	rootChecks     prometheus.Counter
	notInView      prometheus.Counter
	storedTotal    prometheus.Counter
	occlusionTests prometheus.Counter
	regionSkips    prometheus.Counter
	tooSmall       prometheus.Counter
	outOfOrder     prometheus.Counter
	maxPerRegion   prometheus.Gauge

	maxSeen int
}

var _ occlusion.Stats = (*Sink)(nil)

// New creates a Sink and registers its collectors with reg.
// All metric names are prefixed with namespace.
func New(reg prometheus.Registerer, namespace string) (*Sink, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coverage_map",
			Name:      name,
			Help:      help,
		})
	}
	s := &Sink{
		mapsCreated:    counter("maps_created_total", "The number of quad-tree nodes created."),
		rootChecks:     counter("root_checks_total", "The number of polygons checked against a root node."),
		notInView:      counter("not_in_view_total", "The number of polygons rejected because they are not fully in view."),
		storedTotal:    counter("polygons_stored_total", "The number of polygons added to a region."),
		occlusionTests: counter("occlusion_tests_total", "The number of pairwise occlusion tests."),
		regionSkips:    counter("region_skips_total", "The number of pairwise tests avoided by the covered-bounds check."),
		tooSmall:       counter("too_small_total", "The number of visible polygons too small to be stored."),
		outOfOrder:     counter("out_of_order_total", "The number of polygons submitted after a farther polygon covering them."),
		maxPerRegion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "coverage_map",
			Name:      "max_polygons_per_region",
			Help:      "The largest number of polygons seen in a single region.",
		}),
	}

	collectors := []prometheus.Collector{
		s.mapsCreated, s.rootChecks, s.notInView, s.storedTotal,
		s.occlusionTests, s.regionSkips, s.tooSmall, s.outOfOrder,
		s.maxPerRegion,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			// leave reg as it was
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return nil, err
		}
	}
	return s, nil
}

// The methods below implement occlusion.Stats.

func (s *Sink) MapCreated()      { s.mapsCreated.Inc() }
func (s *Sink) RootCheck()       { s.rootChecks.Inc() }
func (s *Sink) NotInView()       { s.notInView.Inc() }
func (s *Sink) OcclusionTest()   { s.occlusionTests.Inc() }
func (s *Sink) RegionSkip(n int) { s.regionSkips.Add(float64(n)) }
func (s *Sink) TooSmall()        { s.tooSmall.Inc() }
func (s *Sink) OutOfOrder()      { s.outOfOrder.Inc() }

func (s *Sink) Stored(bucketLen int) {
	s.storedTotal.Inc()
	if bucketLen > s.maxSeen {
		s.maxSeen = bucketLen
		s.maxPerRegion.Set(float64(bucketLen))
	}
}
