package lexibase

import (
	"log/slog"
	"time"

	"github.com/lexibase/lexibase/cache"
	"github.com/lexibase/lexibase/search"
)

type options struct {
	cacheSize int
	logger    *Logger
	metrics   MetricsCollector
	word      search.WordFunc
	throttle  *cache.ThrottleConfig
	now       func() time.Time
}

// Option configures constructor behavior.
type Option func(*options)

// WithCacheSize sets the initial retention bound of the entry cache. The
// bound can be changed later at runtime through SetCacheSize.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithWordFunc installs a recognizer for search tokens that do not match the
// command syntax, e.g. to map free dictionary words onto commands. The
// default rejects every word.
func WithWordFunc(fn search.WordFunc) Option {
	return func(o *options) {
		o.word = fn
	}
}

// WithLoadThrottle bounds how hard the loader hits the backing store:
// maxConcurrent caps in-flight loads, loadsPerSec (0 = unlimited) caps the
// sustained rate.
func WithLoadThrottle(maxConcurrent int64, loadsPerSec float64) Option {
	return func(o *options) {
		o.throttle = &cache.ThrottleConfig{
			MaxConcurrent: maxConcurrent,
			LoadsPerSec:   loadsPerSec,
		}
	}
}

// WithClock overrides the reference time used to resolve relative dates in
// search commands. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		cacheSize: cache.DefaultCapacity,
		logger:    NoopLogger(),
		metrics:   NoopMetricsCollector{},
		word:      search.RejectWords,
		now:       time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
