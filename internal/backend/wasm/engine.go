// Package wasm implements an engine whose matrix storage lives in the linear memory
// of a WebAssembly module instantiated with wazero.
//
// Handles are byte offsets into linear memory. Each block starts with a 16-byte
// header (rows, cols, element size, magic; little-endian uint32) followed by the
// row-major elements.
package wasm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/born-ml/keigen/internal/native"
)

const (
	headerSize = 16
	blockMagic = 0x4b45_4947 // "KEIG"
	freedMagic = 0
)

// ErrOutOfMemory is returned when linear memory cannot grow to fit an allocation.
var ErrOutOfMemory = errors.New("wasm: out of linear memory")

// Engine owns one wazero runtime and the linear memory backing every matrix allocated
// through its typed backends. It is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	module  api.Module
	mem     api.Memory
	heap    *heap
	stats   native.Stats
	cfg     config
	logger  *zap.Logger
}

// New instantiates the storage module in a fresh wazero runtime.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize()

	logger := cfg.logger
	if logger == nil {
		logger = native.Logger()
	}
	logger = logger.Named("wasm")

	runtimeCfg := wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.maxPages)
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := runtime.CompileModule(ctx, storeModule(cfg.initialPages))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("wasm: compile storage module: %w", err)
	}
	module, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("keigen"))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("wasm: instantiate storage module: %w", err)
	}
	mem := module.ExportedMemory("memory")
	if mem == nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("wasm: storage module exports no memory")
	}

	logger.Info("engine started",
		zap.Uint32("initial_pages", cfg.initialPages),
		zap.Uint32("max_pages", cfg.maxPages))

	return &Engine{
		runtime: runtime,
		module:  module,
		mem:     mem,
		heap:    newHeap(mem.Size()),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Close releases the runtime and with it every outstanding allocation.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.runtime == nil {
		return nil
	}
	err := e.runtime.Close(ctx)
	e.runtime, e.module, e.mem = nil, nil, nil
	return err
}

// Stats returns a snapshot of the storage accounting across all element types.
func (e *Engine) Stats() native.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Pages returns the current linear memory size in pages.
func (e *Engine) Pages() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mem == nil {
		return 0
	}
	return e.mem.Size() / pageSize
}

// header is the decoded block header.
type header struct {
	rows, cols, elemSize uint32
}

func (h header) dataBytes() uint32 {
	return h.rows * h.cols * h.elemSize
}

func (h header) blockBytes() uint32 {
	return uint32(alignUp(uint64(headerSize) + uint64(h.dataBytes())))
}

// allocate reserves a block for a rows x cols matrix and writes its header.
// e.mu must be held.
func (e *Engine) allocate(rows, cols, elemSize int) (native.Handle, error) {
	if e.mem == nil {
		return native.Null, fmt.Errorf("wasm: engine closed")
	}
	need := alignUp(headerSize + uint64(rows)*uint64(cols)*uint64(elemSize))
	if need > uint64(e.cfg.maxPages)*pageSize {
		return native.Null, fmt.Errorf("%w: %d bytes requested", ErrOutOfMemory, need)
	}
	size := uint32(need)

	off, ok := e.heap.alloc(size)
	if !ok {
		if err := e.grow(size); err != nil {
			return native.Null, err
		}
		if off, ok = e.heap.alloc(size); !ok {
			return native.Null, fmt.Errorf("%w: %d bytes requested", ErrOutOfMemory, need)
		}
	}

	e.mem.WriteUint32Le(off, uint32(rows))
	e.mem.WriteUint32Le(off+4, uint32(cols))
	e.mem.WriteUint32Le(off+8, uint32(elemSize))
	e.mem.WriteUint32Le(off+12, blockMagic)

	e.stats.Live++
	e.stats.Allocs++
	e.stats.BytesInUse += uint64(rows * cols * elemSize)
	if e.stats.BytesInUse > e.stats.PeakBytes {
		e.stats.PeakBytes = e.stats.BytesInUse
	}

	h := native.Handle(off)
	e.logger.Debug("alloc", zap.Stringer("handle", h), zap.Int("rows", rows), zap.Int("cols", cols))
	return h, nil
}

// grow extends linear memory so that a block of size bytes fits at its end.
func (e *Engine) grow(size uint32) error {
	deficit := uint64(size) - uint64(e.heap.tail())
	delta := uint32((deficit + pageSize - 1) / pageSize)
	prev, ok := e.mem.Grow(delta)
	if !ok {
		return fmt.Errorf("%w: grow by %d pages from %d (max %d)", ErrOutOfMemory, delta, e.mem.Size()/pageSize, e.cfg.maxPages)
	}
	e.heap.extend(e.mem.Size())
	e.logger.Debug("memory grown", zap.Uint32("from_pages", prev), zap.Uint32("to_pages", prev+delta))
	return nil
}

// header decodes and checks the block header at h. e.mu must be held.
func (e *Engine) header(h native.Handle, elemSize int) header {
	if e.mem == nil {
		panic("wasm: engine closed")
	}
	off := uint32(h)
	if uint64(h) != uint64(off) || off < heapBase {
		panic(fmt.Sprintf("wasm: unknown handle %v", h))
	}
	magic, ok := e.mem.ReadUint32Le(off + 12)
	if !ok || magic != blockMagic {
		panic(fmt.Sprintf("wasm: unknown handle %v", h))
	}
	rows, _ := e.mem.ReadUint32Le(off)
	cols, _ := e.mem.ReadUint32Le(off + 4)
	size, _ := e.mem.ReadUint32Le(off + 8)
	if int(size) != elemSize {
		panic(fmt.Sprintf("wasm: handle %v holds %d-byte elements, not %d", h, size, elemSize))
	}
	return header{rows: rows, cols: cols, elemSize: size}
}

// data returns a view of the elements of h. The view is invalidated by the next
// memory growth. e.mu must be held.
func (e *Engine) data(h native.Handle, hdr header) []byte {
	buf, ok := e.mem.Read(uint32(h)+headerSize, hdr.dataBytes())
	if !ok {
		panic(fmt.Sprintf("wasm: handle %v exceeds linear memory", h))
	}
	return buf
}

// free releases the block at h. e.mu must be held.
func (e *Engine) free(h native.Handle, elemSize int) {
	if e.mem == nil {
		// Storage went away with the runtime.
		e.logger.Debug("free after close", zap.Stringer("handle", h))
		return
	}
	hdr := e.header(h, elemSize)
	off := uint32(h)
	e.mem.WriteUint32Le(off+12, freedMagic)
	e.heap.release(off, hdr.blockBytes())

	e.stats.Live--
	e.stats.Frees++
	e.stats.BytesInUse -= uint64(hdr.dataBytes())
	e.logger.Debug("free", zap.Stringer("handle", h))
}
