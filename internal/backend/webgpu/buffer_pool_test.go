//go:build windows

package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOf(t *testing.T) {
	assert.Equal(t, smallClass, classOf(16))
	assert.Equal(t, mediumClass, classOf(smallThreshold))
	assert.Equal(t, largeClass, classOf(mediumThreshold))
}

func TestBufferPool_Reuse(t *testing.T) {
	b := newTestBackend(t)
	pool := newBufferPool(b.device, 2)
	t.Cleanup(pool.clear)

	buf, capacity := pool.acquire(1024, storageUsage)
	assert.Equal(t, uint64(1024), capacity)
	pool.release(buf, capacity, storageUsage)

	// A smaller request in the same class is served from the idle buffer.
	again, capacity := pool.acquire(512, storageUsage)
	assert.Same(t, buf, again)
	assert.Equal(t, uint64(1024), capacity)
	pool.release(again, capacity, storageUsage)

	stats := pool.snapshot()
	assert.Equal(t, uint64(1), stats.Created)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Idle)
}

func TestBufferPool_MaxIdle(t *testing.T) {
	b := newTestBackend(t)
	pool := newBufferPool(b.device, 1)
	t.Cleanup(pool.clear)

	first, c1 := pool.acquire(256, storageUsage)
	second, c2 := pool.acquire(256, storageUsage)
	pool.release(first, c1, storageUsage)
	pool.release(second, c2, storageUsage)

	stats := pool.snapshot()
	assert.Equal(t, uint64(2), stats.Released)
	assert.Equal(t, 1, stats.Idle)
}

func TestBackend_FreeRecyclesBuffers(t *testing.T) {
	b := newTestBackend(t)

	h, err := b.AllocateFill(8, 8, 1)
	if err != nil {
		t.Fatal(err)
	}
	b.Free(h)
	h, err = b.AllocateFill(8, 8, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Free(h)

	assert.Equal(t, uint64(1), b.PoolStats().Hits)
	assert.Equal(t, float32(2), b.Get(h, 7, 7))
}
