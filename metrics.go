package boolgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordUpdate is called after each batch indexing operation.
	// total is the number of records attempted, failed the number that
	// failed, duration the total time taken.
	RecordUpdate(total, failed int, duration time.Duration)

	// RecordRemove is called after each single-record removal.
	RecordRemove(duration time.Duration, err error)

	// RecordClear is called after each bulk clear.
	RecordClear(duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	// hits is the total match estimate, err is nil if successful.
	RecordSearch(hits int, duration time.Duration, err error)

	// RecordMoreLikeThis is called after each similarity search.
	RecordMoreLikeThis(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordUpdate(int, int, time.Duration)    {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)       {}
func (NoopMetricsCollector) RecordClear(time.Duration, error)        {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordMoreLikeThis(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	UpdateCount        atomic.Int64
	UpdateRecords      atomic.Int64
	UpdateFailed       atomic.Int64
	RemoveCount        atomic.Int64
	RemoveErrors       atomic.Int64
	ClearCount         atomic.Int64
	ClearErrors        atomic.Int64
	SearchCount        atomic.Int64
	SearchErrors       atomic.Int64
	SearchTotalNanos   atomic.Int64
	MoreLikeThisCount  atomic.Int64
	MoreLikeThisErrors atomic.Int64
}

// RecordUpdate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpdate(total, failed int, _ time.Duration) {
	b.UpdateCount.Add(1)
	b.UpdateRecords.Add(int64(total))
	b.UpdateFailed.Add(int64(failed))
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(_ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordClear implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClear(_ time.Duration, err error) {
	b.ClearCount.Add(1)
	if err != nil {
		b.ClearErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordMoreLikeThis implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMoreLikeThis(_ time.Duration, err error) {
	b.MoreLikeThisCount.Add(1)
	if err != nil {
		b.MoreLikeThisErrors.Add(1)
	}
}
