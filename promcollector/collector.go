// Package promcollector exports geodesic grid metrics to Prometheus.
package promcollector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stellarium/geodesic"
)

var _ geodesic.MetricsCollector = (*Collector)(nil)

// Collector implements geodesic.MetricsCollector with Prometheus metrics.
type Collector struct {
	builds        prometheus.Counter
	buildNodes    prometheus.Gauge
	buildDuration prometheus.Histogram

	searches       *prometheus.CounterVec
	searchZones    *prometheus.CounterVec
	searchDuration prometheus.Histogram

	lookups *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg. Metric names
// are prefixed with namespace when it is not empty. A nil reg registers with
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geodesic_builds_total",
			Help:      "Total number of grids built",
		}),
		buildNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geodesic_grid_nodes",
			Help:      "Number of subdivided triangles stored by the last grid built",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geodesic_build_duration_seconds",
			Help:      "Grid construction duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geodesic_searches_total",
			Help:      "Total number of region searches by search level",
		}, []string{"level"}),
		searchZones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geodesic_search_zones_total",
			Help:      "Total number of zones recorded by region searches",
		}, []string{"kind"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geodesic_search_duration_seconds",
			Help:      "Region search duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geodesic_lookups_total",
			Help:      "Total number of point lookups by status",
		}, []string{"status"}),
	}

	for _, col := range []prometheus.Collector{
		c.builds,
		c.buildNodes,
		c.buildDuration,
		c.searches,
		c.searchZones,
		c.searchDuration,
		c.lookups,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordBuild implements geodesic.MetricsCollector.
func (c *Collector) RecordBuild(_ int, nodes int, duration time.Duration) {
	c.builds.Inc()
	c.buildNodes.Set(float64(nodes))
	c.buildDuration.Observe(duration.Seconds())
}

// RecordSearch implements geodesic.MetricsCollector.
func (c *Collector) RecordSearch(maxSearchLevel, inside, border int, duration time.Duration) {
	c.searches.WithLabelValues(strconv.Itoa(maxSearchLevel)).Inc()
	c.searchZones.WithLabelValues("inside").Add(float64(inside))
	c.searchZones.WithLabelValues("border").Add(float64(border))
	c.searchDuration.Observe(duration.Seconds())
}

// RecordLookup implements geodesic.MetricsCollector.
func (c *Collector) RecordLookup(_ int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.lookups.WithLabelValues(status).Inc()
}
