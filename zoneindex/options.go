package zoneindex

import (
	"runtime"

	"github.com/stellarium/geodesic"
)

type options struct {
	concurrency int
	logger      *geodesic.Logger
}

// Option configures an Index.
type Option func(*options)

// WithConcurrency limits the number of searches SearchAroundMany runs at
// once. Values below one select runtime.GOMAXPROCS(0).
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *geodesic.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = geodesic.NoopLogger()
		}
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: geodesic.NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.concurrency < 1 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	return o
}
