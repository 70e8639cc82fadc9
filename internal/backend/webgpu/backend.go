//go:build windows

// Package webgpu implements a float32 engine whose matrix storage lives in GPU
// storage buffers. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO
// WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/born-ml/keigen/internal/native"
)

func init() {
	native.Register("wgpu_native", wgpu.Init)
}

// storageUsage is the usage of every matrix buffer.
const storageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// gpuMatrix is one GPU-resident matrix.
type gpuMatrix struct {
	buffer   *wgpu.Buffer
	rows     int
	cols     int
	capacity uint64 // actual buffer size, may exceed bytes()
}

func (m *gpuMatrix) len() int { return m.rows * m.cols }

func (m *gpuMatrix) bytes() uint64 { return uint64(m.len()) * 4 }

// Backend is the WebGPU engine. It implements native.Bridge[float32].
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	cacheMu   sync.RWMutex

	pool *bufferPool

	mu     sync.Mutex
	table  map[native.Handle]*gpuMatrix
	next   native.Handle
	stats  native.Stats
	logger *zap.Logger
}

var _ native.Bridge[float32] = (*Backend)(nil)

type config struct {
	maxPoolSize int
	logger      *zap.Logger
}

// Option configures a Backend.
type Option func(*config)

// WithMaxPoolSize sets how many idle buffers are kept per size class.
func WithMaxPoolSize(n int) Option {
	return func(c *config) {
		c.maxPoolSize = n
	}
}

// WithLogger sets the engine logger. The shared native logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// New acquires a GPU device.
// Returns an error if WebGPU is not available or initialization fails.
func New(opts ...Option) (backend *Backend, err error) {
	cfg := config{maxPoolSize: DefaultMaxPoolSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = native.Logger()
	}

	if err := native.Load(); err != nil {
		return nil, fmt.Errorf("webgpu: %w", err)
	}

	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("webgpu: create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}
	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	b := &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		pool:      newBufferPool(device, cfg.maxPoolSize),
		table:     make(map[native.Handle]*gpuMatrix),
		next:      1,
		logger:    logger.Named("webgpu"),
	}
	b.logger.Info("device acquired")
	return b, nil
}

// IsAvailable reports whether the native library loads and an adapter is present.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	if err := native.Load(); err != nil {
		return false
	}
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Release frees every live matrix and the device. The backend must not be used
// afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	for h, m := range b.table {
		m.buffer.Release()
		delete(b.table, h)
	}
	b.mu.Unlock()

	b.pool.clear()

	b.cacheMu.Lock()
	for name, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, name)
	}
	for name, s := range b.shaders {
		s.Release()
		delete(b.shaders, name)
	}
	b.cacheMu.Unlock()

	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

// Name returns the engine name.
func (b *Backend) Name() string {
	return "webgpu"
}

// Stats returns a snapshot of the storage accounting.
func (b *Backend) Stats() native.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// PoolStats returns buffer pool activity.
func (b *Backend) PoolStats() PoolStats {
	return b.pool.snapshot()
}

// adopt registers a buffer holding a rows x cols matrix and returns its handle.
func (b *Backend) adopt(buffer *wgpu.Buffer, capacity uint64, rows, cols int) native.Handle {
	m := &gpuMatrix{buffer: buffer, rows: rows, cols: cols, capacity: capacity}

	b.mu.Lock()
	h := b.next
	b.next++
	b.table[h] = m
	b.stats.Live++
	b.stats.Allocs++
	b.stats.BytesInUse += m.bytes()
	if b.stats.BytesInUse > b.stats.PeakBytes {
		b.stats.PeakBytes = b.stats.BytesInUse
	}
	b.mu.Unlock()

	b.logger.Debug("alloc", zap.Stringer("handle", h), zap.Int("rows", rows), zap.Int("cols", cols))
	return h
}

// alloc returns a fresh, uninitialized rows x cols matrix buffer from the pool.
func (b *Backend) alloc(rows, cols int) (*wgpu.Buffer, uint64) {
	return b.pool.acquire(uint64(rows*cols)*4, storageUsage)
}

func (b *Backend) lookup(h native.Handle) *gpuMatrix {
	b.mu.Lock()
	m, ok := b.table[h]
	b.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("webgpu: unknown handle %v", h))
	}
	return m
}

// Free returns the buffer behind h to the pool.
func (b *Backend) Free(h native.Handle) {
	b.mu.Lock()
	m, ok := b.table[h]
	if !ok {
		b.mu.Unlock()
		panic(fmt.Sprintf("webgpu: free of unknown handle %v", h))
	}
	delete(b.table, h)
	b.stats.Live--
	b.stats.Frees++
	b.stats.BytesInUse -= m.bytes()
	b.mu.Unlock()

	b.pool.release(m.buffer, m.capacity, storageUsage)
	b.logger.Debug("free", zap.Stringer("handle", h))
}
