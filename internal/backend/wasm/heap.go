package wasm

import "sort"

const (
	// heapBase is the first usable offset. Offsets below it are never handed out, so
	// no handle can equal native.Null.
	heapBase = 8

	// align is the block alignment; it covers every element size.
	align = 8
)

func alignUp(n uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// span is a free range [off, off+size) of linear memory.
type span struct {
	off, size uint32
}

// heap is a first-fit allocator over linear memory. Free spans are kept sorted by
// offset and adjacent spans are merged on release.
type heap struct {
	free []span
	end  uint32 // bytes of linear memory currently managed
}

func newHeap(memBytes uint32) *heap {
	h := &heap{end: heapBase}
	h.extend(memBytes)
	return h
}

// alloc returns the offset of a block of size bytes, or false if no free span fits.
func (h *heap) alloc(size uint32) (uint32, bool) {
	for i, s := range h.free {
		if s.size < size {
			continue
		}
		if s.size == size {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = span{off: s.off + size, size: s.size - size}
		}
		return s.off, true
	}
	return 0, false
}

// release returns [off, off+size) to the free list.
func (h *heap) release(off, size uint32) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].off > off })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = span{off: off, size: size}

	// Merge with the successor, then the predecessor.
	if i+1 < len(h.free) && h.free[i].off+h.free[i].size == h.free[i+1].off {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].off+h.free[i-1].size == h.free[i].off {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

// extend hands the memory between the old end and memBytes to the allocator.
func (h *heap) extend(memBytes uint32) {
	if memBytes <= h.end {
		return
	}
	off := h.end
	h.end = memBytes
	h.release(off, memBytes-off)
}

// tail returns the size of the free span touching the end of memory, if any.
func (h *heap) tail() uint32 {
	if n := len(h.free); n > 0 {
		last := h.free[n-1]
		if last.off+last.size == h.end {
			return last.size
		}
	}
	return 0
}

// freeBytes returns the total free space.
func (h *heap) freeBytes() uint64 {
	var n uint64
	for _, s := range h.free {
		n += uint64(s.size)
	}
	return n
}
