//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides a float32 engine whose matrix storage lives in GPU storage
// buffers.
//
// Importing this package registers the wgpu_native library with the process-wide
// loader. Matrix construction on any engine then fails with matrix.ErrLibraryLoad
// if the library cannot be loaded.
//
// Example:
//
//	if webgpu.IsAvailable() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//	    m, err := matrix.Zeros[float32](1024, 1024, gpu)
//	}
package webgpu

import (
	"go.uber.org/zap"

	internalwebgpu "github.com/born-ml/keigen/internal/backend/webgpu"
	"github.com/born-ml/keigen/matrix"
)

// Backend is the WebGPU engine.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements matrix.Bridge.
var _ matrix.Bridge[float32] = (*Backend)(nil)

// Option configures a Backend.
type Option = internalwebgpu.Option

// PoolStats reports buffer pool activity.
type PoolStats = internalwebgpu.PoolStats

// New acquires a GPU device. Call Release when done.
//
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func New(opts ...Option) (*Backend, error) {
	return internalwebgpu.New(opts...)
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// WithMaxPoolSize sets how many idle buffers are kept per size class.
func WithMaxPoolSize(n int) Option {
	return internalwebgpu.WithMaxPoolSize(n)
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return internalwebgpu.WithLogger(l)
}
