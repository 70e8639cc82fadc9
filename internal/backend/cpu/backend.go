// Package cpu implements the reference engine: matrix storage lives on the Go heap
// behind a handle table and every operation runs the shared kernels.
package cpu

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/born-ml/keigen/internal/kernels"
	"github.com/born-ml/keigen/internal/native"
	"github.com/born-ml/keigen/internal/parallel"
)

// storage is one allocated matrix.
type storage[T native.Element] struct {
	rows, cols int
	data       []T
}

// Backend is the CPU engine for element type T. It implements native.Bridge[T].
//
// Handles are never reused within one Backend, so a stale handle is always detected
// as unknown rather than silently aliasing newer storage.
type Backend[T native.Element] struct {
	mu     sync.Mutex
	table  map[native.Handle]*storage[T]
	next   native.Handle
	stats  native.Stats
	elem   int
	par    parallel.Config
	logger *zap.Logger
}

var _ native.Bridge[float32] = (*Backend[float32])(nil)

// New creates a CPU engine for element type T.
func New[T native.Element](opts ...Option) *Backend[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = native.Logger()
	}
	return &Backend[T]{
		table:  make(map[native.Handle]*storage[T]),
		next:   1,
		elem:   native.TypeOf[T]().Size(),
		par:    cfg.parallel,
		logger: logger.Named("cpu").With(zap.Stringer("element", native.TypeOf[T]())),
	}
}

// Name returns the engine name.
func (b *Backend[T]) Name() string {
	return "cpu"
}

// Stats returns a snapshot of the storage accounting.
func (b *Backend[T]) Stats() native.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// alloc registers new zeroed storage and returns its handle.
func (b *Backend[T]) alloc(rows, cols int) (native.Handle, *storage[T]) {
	s := &storage[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}

	b.mu.Lock()
	h := b.next
	b.next++
	b.table[h] = s
	bytes := uint64(len(s.data) * b.elem)
	b.stats.Live++
	b.stats.Allocs++
	b.stats.BytesInUse += bytes
	if b.stats.BytesInUse > b.stats.PeakBytes {
		b.stats.PeakBytes = b.stats.BytesInUse
	}
	b.mu.Unlock()

	b.logger.Debug("alloc", zap.Stringer("handle", h), zap.Int("rows", rows), zap.Int("cols", cols))
	return h, s
}

func (b *Backend[T]) lookup(h native.Handle) *storage[T] {
	b.mu.Lock()
	s, ok := b.table[h]
	b.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("cpu: unknown handle %v", h))
	}
	return s
}

// Free releases the storage behind h. Freeing an unknown or already freed handle panics.
func (b *Backend[T]) Free(h native.Handle) {
	b.mu.Lock()
	s, ok := b.table[h]
	if !ok {
		b.mu.Unlock()
		panic(fmt.Sprintf("cpu: free of unknown handle %v", h))
	}
	delete(b.table, h)
	b.stats.Live--
	b.stats.Frees++
	b.stats.BytesInUse -= uint64(len(s.data) * b.elem)
	b.mu.Unlock()

	b.logger.Debug("free", zap.Stringer("handle", h))
}

// AllocateFill allocates a rows x cols matrix with every element set to fill.
func (b *Backend[T]) AllocateFill(rows, cols int, fill T) (native.Handle, error) {
	h, s := b.alloc(rows, cols)
	kernels.Fill(s.data, fill)
	return h, nil
}

// AllocateFromBuffer copies a strided view of buf into new storage.
func (b *Backend[T]) AllocateFromBuffer(rows, cols int, buf []T, outerStride, innerStride int) (native.Handle, error) {
	h, s := b.alloc(rows, cols)
	kernels.Gather(s.data, buf, rows, cols, outerStride, innerStride)
	return h, nil
}
