package wasm

import "go.uber.org/zap"

const (
	// DefaultInitialPages is the linear memory size at instantiation (1 MiB).
	DefaultInitialPages = 16

	// DefaultMaxPages caps linear memory growth (256 MiB).
	DefaultMaxPages = 4096

	// maxAddressablePages keeps every byte offset representable in 32 bits.
	maxAddressablePages = 65535
)

type config struct {
	initialPages uint32
	maxPages     uint32
	logger       *zap.Logger
}

func defaultConfig() config {
	return config{initialPages: DefaultInitialPages, maxPages: DefaultMaxPages}
}

// Option configures an Engine.
type Option func(*config)

// WithInitialPages sets the linear memory size, in 64 KiB pages, at instantiation.
func WithInitialPages(n uint32) Option {
	return func(c *config) {
		c.initialPages = n
	}
}

// WithMaxPages caps linear memory growth, in 64 KiB pages.
func WithMaxPages(n uint32) Option {
	return func(c *config) {
		c.maxPages = n
	}
}

// WithLogger sets the engine logger. The shared native logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func (c *config) normalize() {
	if c.maxPages == 0 || c.maxPages > maxAddressablePages {
		c.maxPages = maxAddressablePages
	}
	if c.initialPages == 0 {
		c.initialPages = 1
	}
	if c.initialPages > c.maxPages {
		c.initialPages = c.maxPages
	}
}
