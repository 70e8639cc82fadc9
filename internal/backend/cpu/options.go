package cpu

import (
	"go.uber.org/zap"

	"github.com/born-ml/keigen/internal/parallel"
)

type config struct {
	parallel parallel.Config
	logger   *zap.Logger
}

func defaultConfig() config {
	return config{parallel: parallel.DefaultConfig()}
}

// Option configures a CPU engine.
type Option func(*config)

// WithParallel sets the worker configuration used by matrix products.
func WithParallel(cfg parallel.Config) Option {
	return func(c *config) {
		c.parallel = cfg
	}
}

// WithSequential disables parallel matrix products.
func WithSequential() Option {
	return WithParallel(parallel.Sequential())
}

// WithLogger sets the engine logger. The shared native logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
