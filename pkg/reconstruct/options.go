package reconstruct

import (
	"log/slog"

	"github.com/papercomputeco/restream/pkg/logger"
)

// Option configures a reconstruction.
type Option func(*options)

type options struct {
	repair bool
	logger *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRepair lets chunks that look like JSON objects but fail to decode go
// through JSON repair before they are reported as errors.
func WithRepair(repair bool) Option {
	return func(o *options) {
		o.repair = repair
	}
}

// WithLogger traces the pass at debug level. It never changes the result.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
