//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass buckets buffers so that lookups only scan buffers of similar size.
type sizeClass int

const (
	smallClass  sizeClass = iota // < 4 KiB
	mediumClass                  // < 1 MiB
	largeClass
	numClasses
)

const (
	smallThreshold  = 4 * 1024
	mediumThreshold = 1024 * 1024

	// DefaultMaxPoolSize is the number of idle buffers kept per size class.
	DefaultMaxPoolSize = 64
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// PoolStats reports buffer pool activity.
type PoolStats struct {
	Created  uint64
	Released uint64
	Hits     uint64
	Misses   uint64
	Idle     int
}

// bufferPool recycles freed matrix buffers. A buffer is reused for any request it
// is large enough for and whose usage flags it covers.
type bufferPool struct {
	device  *wgpu.Device
	maxIdle int

	mu      sync.Mutex
	classes [numClasses][]pooledBuffer
	stats   PoolStats
}

func newBufferPool(device *wgpu.Device, maxIdle int) *bufferPool {
	return &bufferPool{device: device, maxIdle: maxIdle}
}

func classOf(size uint64) sizeClass {
	switch {
	case size < smallThreshold:
		return smallClass
	case size < mediumThreshold:
		return mediumClass
	default:
		return largeClass
	}
}

// acquire returns a buffer of at least size bytes with the given usage, and the
// buffer's actual size.
func (p *bufferPool) acquire(size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := classOf(size)
	idle := p.classes[c]
	for i, pb := range idle {
		if pb.size >= size && pb.usage&usage == usage {
			p.classes[c] = append(idle[:i], idle[i+1:]...)
			p.stats.Hits++
			p.stats.Idle--
			return pb.buffer, pb.size
		}
	}

	p.stats.Misses++
	p.stats.Created++
	buffer := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
	return buffer, size
}

// release parks buffer for reuse, or destroys it when its class is full.
func (p *bufferPool) release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Released++
	c := classOf(size)
	if len(p.classes[c]) >= p.maxIdle {
		buffer.Release()
		return
	}
	p.classes[c] = append(p.classes[c], pooledBuffer{buffer: buffer, size: size, usage: usage})
	p.stats.Idle++
}

// clear destroys every idle buffer.
func (p *bufferPool) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for c := range p.classes {
		for _, pb := range p.classes[c] {
			pb.buffer.Release()
		}
		p.classes[c] = nil
	}
	p.stats.Idle = 0
}

func (p *bufferPool) snapshot() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}
