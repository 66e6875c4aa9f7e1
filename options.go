package wordvec

import (
	"log/slog"

	"github.com/hupe1980/wordvec/format"
	"github.com/hupe1980/wordvec/resource"
)

type options struct {
	format           format.Format
	fallback         format.Format
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
}

// Option configures load behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. format-specific load variants).
type Option func(*options)

// WithFormat pins the input layout, skipping detection entirely.
// Use it when the caller already knows what the stream contains, for
// example a pipeline that always emits packed binary.
//
// If an invalid format is passed, detection runs as usual.
func WithFormat(f format.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithFallbackFormat sets the layout assumed when detection is
// inconclusive. The default is format.Text: a binary stream misread as
// text fails cleanly during parsing, while the reverse can silently
// produce garbage rows.
func WithFallbackFormat(f format.Format) Option {
	return func(o *options) {
		o.fallback = f
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &wordvec.BasicMetricsCollector{}
//	st, _ := wordvec.Load("model.bin", wordvec.WithMetricsCollector(metrics))
//	// ... use st ...
//	stats := metrics.GetStats()
//	fmt.Printf("Loads: %d, Avg latency: %dns\n", stats.LoadCount, stats.LoadAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := wordvec.NewJSONLogger(slog.LevelInfo)
//	st, _ := wordvec.Load("model.bin", wordvec.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

// WithResourceController bounds the load through the given controller:
// a load slot is held while the load is in flight, input bytes pass
// through its rate limiter, and the frozen matrix bytes are charged
// against the memory budget for the duration of construction.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   2 << 30,
//	    MaxConcurrentLoads: 2,
//	})
//	st, _ := wordvec.Load("model.bin", wordvec.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fallback:         format.DefaultFallback,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
