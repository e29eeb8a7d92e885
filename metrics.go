package geodesic

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// promcollector package provides a Prometheus implementation.
//
// Implementations must be safe for concurrent use: a grid is shared by
// any number of readers.
type MetricsCollector interface {
	// RecordBuild is called once after a grid has been constructed.
	// nodes is the number of subdivided triangles stored by the grid.
	RecordBuild(maxLevel, nodes int, duration time.Duration)

	// RecordSearch is called after each region search.
	// inside and border are the number of zones recorded over all levels.
	RecordSearch(maxSearchLevel, inside, border int, duration time.Duration)

	// RecordLookup is called after each point lookup.
	// err is nil if the lookup succeeded.
	RecordLookup(level int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration)       {}
func (NoopMetricsCollector) RecordSearch(int, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordLookup(int, error)                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount       atomic.Int64
	BuildNodes       atomic.Int64
	SearchCount      atomic.Int64
	SearchInside     atomic.Int64
	SearchBorder     atomic.Int64
	SearchTotalNanos atomic.Int64
	LookupCount      atomic.Int64
	LookupErrors     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(maxLevel, nodes int, duration time.Duration) {
	b.BuildCount.Add(1)
	b.BuildNodes.Add(int64(nodes))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(maxSearchLevel, inside, border int, duration time.Duration) {
	b.SearchCount.Add(1)
	b.SearchInside.Add(int64(inside))
	b.SearchBorder.Add(int64(border))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(level int, err error) {
	b.LookupCount.Add(1)
	if err != nil {
		b.LookupErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:     b.BuildCount.Load(),
		BuildNodes:     b.BuildNodes.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchInside:   b.SearchInside.Load(),
		SearchBorder:   b.SearchBorder.Load(),
		SearchAvgNanos: b.getAvgSearchNanos(),
		LookupCount:    b.LookupCount.Load(),
		LookupErrors:   b.LookupErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount     int64
	BuildNodes     int64
	SearchCount    int64
	SearchInside   int64
	SearchBorder   int64
	SearchAvgNanos int64
	LookupCount    int64
	LookupErrors   int64
}
