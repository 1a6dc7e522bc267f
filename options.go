package standin

import (
	"github.com/lthibault/log"

	"github.com/tarmac-project/standin/internal/config"
	"github.com/tarmac-project/standin/spy"
)

// Option configures a Mock or a Static override.
type Option func(*options)

type options struct {
	backend spy.Backend
	log     log.Logger
}

// WithBackend records spies with b instead of the process-wide default.
// If b == nil, the default backend is used.
func WithBackend(b spy.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithLogger sets the logger instance.
// If l == nil, the logger built from the environment is used.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, option := range opts {
		option(&o)
	}

	if o.backend == nil {
		o.backend = spy.Default()
	}

	if o.log == nil {
		_, o.log = config.Default()
	}

	return o
}
