package spy

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tarmac-project/standin/internal/config"
)

var (
	defaultOnce    sync.Once
	defaultBackend Backend
)

// Default returns the process-wide backend. The environment is probed on the
// first call only (STANDIN_BACKEND=gomock selects Gomock, anything else
// Testify) and the choice is kept for the life of the process. Callers that
// need a specific backend should construct one with Testify or Gomock and
// inject it instead.
func Default() Backend {
	defaultOnce.Do(func() {
		cfg, logger := config.Default()

		if cfg.GomockRunner() {
			defaultBackend = Gomock(WithLogger(logger))
		} else {
			defaultBackend = Testify(WithLogger(logger))
		}

		logger.WithField("backend", defaultBackend.Name()).Debug("default spy backend selected")
	})

	return defaultBackend
}

// Select returns a new backend by name. The empty name selects Testify.
func Select(name string, opts ...Option) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameTestify:
		return Testify(opts...), nil
	case NameGomock:
		return Gomock(opts...), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}
