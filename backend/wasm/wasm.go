// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package wasm provides an engine whose matrix storage lives in the linear memory of
// a WebAssembly module hosted by wazero.
//
// One Engine owns one runtime and one linear memory. Typed backends created from it
// share that memory, so matrices of different element types can coexist:
//
//	engine, err := wasm.New(ctx, wasm.WithMaxPages(1024))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close(ctx)
//
//	floats := wasm.NewBackend[float32](engine)
//	m, err := matrix.Zeros[float32](64, 64, floats)
//
// Growth past the page limit fails the allocation with an error wrapping both
// matrix.ErrEngine and ErrOutOfMemory.
package wasm

import (
	"context"

	"go.uber.org/zap"

	internalwasm "github.com/born-ml/keigen/internal/backend/wasm"
	"github.com/born-ml/keigen/matrix"
)

// Engine owns a wazero runtime and the linear memory backing every matrix allocated
// through its backends.
type Engine = internalwasm.Engine

// Backend is the typed view of an Engine for element type T.
type Backend[T matrix.Element] = internalwasm.Backend[T]

// Compile-time check that Backend implements matrix.Bridge.
var _ matrix.Bridge[int16] = (*Backend[int16])(nil)

// Option configures an Engine.
type Option = internalwasm.Option

// Defaults, in 64 KiB pages.
const (
	DefaultInitialPages = internalwasm.DefaultInitialPages
	DefaultMaxPages     = internalwasm.DefaultMaxPages
)

// ErrOutOfMemory is wrapped by allocation failures once linear memory is exhausted.
var ErrOutOfMemory = internalwasm.ErrOutOfMemory

// New starts an engine. Call Close to release the runtime.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	return internalwasm.New(ctx, opts...)
}

// NewBackend returns the backend for element type T on e.
func NewBackend[T matrix.Element](e *Engine) *Backend[T] {
	return internalwasm.NewBackend[T](e)
}

// WithInitialPages sets the linear memory size at instantiation.
func WithInitialPages(n uint32) Option {
	return internalwasm.WithInitialPages(n)
}

// WithMaxPages caps linear memory growth.
func WithMaxPages(n uint32) Option {
	return internalwasm.WithMaxPages(n)
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return internalwasm.WithLogger(l)
}
