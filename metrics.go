package lexibase

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordAcquire is called after each entry acquisition.
	// hit is true when no loader call was needed.
	RecordAcquire(hit bool, duration time.Duration, err error)

	// RecordCompile is called after each search compilation.
	RecordCompile(duration time.Duration, err error)

	// RecordEvict is called when a retained record is destroyed.
	RecordEvict()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAcquire(bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordCompile(time.Duration, error)       {}
func (NoopMetricsCollector) RecordEvict()                             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AcquireCount      atomic.Int64
	AcquireHits       atomic.Int64
	AcquireErrors     atomic.Int64
	AcquireTotalNanos atomic.Int64
	CompileCount      atomic.Int64
	CompileErrors     atomic.Int64
	CompileTotalNanos atomic.Int64
	EvictCount        atomic.Int64
}

// RecordAcquire implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAcquire(hit bool, duration time.Duration, err error) {
	b.AcquireCount.Add(1)
	b.AcquireTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.AcquireHits.Add(1)
	}
	if err != nil {
		b.AcquireErrors.Add(1)
	}
}

// RecordCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompile(duration time.Duration, err error) {
	b.CompileCount.Add(1)
	b.CompileTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CompileErrors.Add(1)
	}
}

// RecordEvict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvict() {
	b.EvictCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AcquireCount:    b.AcquireCount.Load(),
		AcquireHits:     b.AcquireHits.Load(),
		AcquireErrors:   b.AcquireErrors.Load(),
		AcquireAvgNanos: avg(b.AcquireTotalNanos.Load(), b.AcquireCount.Load()),
		CompileCount:    b.CompileCount.Load(),
		CompileErrors:   b.CompileErrors.Load(),
		CompileAvgNanos: avg(b.CompileTotalNanos.Load(), b.CompileCount.Load()),
		EvictCount:      b.EvictCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AcquireCount    int64
	AcquireHits     int64
	AcquireErrors   int64
	AcquireAvgNanos int64
	CompileCount    int64
	CompileErrors   int64
	CompileAvgNanos int64
	EvictCount      int64
}
