// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go engine for matrix storage.
//
// # Overview
//
// Storage is kept on the Go heap behind a handle table, so it is never reachable
// from matrix values except through the engine. Matrix products are split across
// goroutines for large operands.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/keigen/backend/cpu"
//	    "github.com/born-ml/keigen/matrix"
//	)
//
//	func main() {
//	    engine := cpu.New[float32]()
//	    m, _ := matrix.Zeros[float32](2, 3, engine)
//	    defer m.Dispose()
//	}
package cpu

import (
	"go.uber.org/zap"

	internalcpu "github.com/born-ml/keigen/internal/backend/cpu"
	"github.com/born-ml/keigen/internal/parallel"
	"github.com/born-ml/keigen/matrix"
)

// Backend is the CPU engine for element type T.
type Backend[T matrix.Element] = internalcpu.Backend[T]

// Compile-time check that Backend implements matrix.Bridge.
var _ matrix.Bridge[float64] = (*Backend[float64])(nil)

// Option configures a Backend.
type Option = internalcpu.Option

// New creates a CPU engine for element type T.
//
// Example:
//
//	engine := cpu.New[int32](cpu.WithWorkers(4))
func New[T matrix.Element](opts ...Option) *Backend[T] {
	return internalcpu.New[T](opts...)
}

// WithWorkers splits matrix products across n goroutines. n <= 1 runs them on the
// calling goroutine.
func WithWorkers(n int) Option {
	if n <= 1 {
		return internalcpu.WithSequential()
	}
	cfg := parallel.DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = n
	return internalcpu.WithParallel(cfg)
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return internalcpu.WithLogger(l)
}
