//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// pipeline returns the cached compute pipeline for a shader, compiling it on first use.
func (b *Backend) pipeline(name, code string) *wgpu.ComputePipeline {
	b.cacheMu.RLock()
	if p, ok := b.pipelines[name]; ok {
		b.cacheMu.RUnlock()
		return p
	}
	b.cacheMu.RUnlock()

	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()
	if p, ok := b.pipelines[name]; ok {
		return p
	}
	shader := b.device.CreateShaderModuleWGSL(code)
	b.shaders[name] = shader
	// Auto layout (nil layout).
	p := b.device.CreateComputePipelineSimple(nil, shader, "main")
	b.pipelines[name] = p
	return p
}

func float32Bytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

// createBuffer creates a buffer of the given usage holding data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mappedPtr), size), data)
	buffer.Unmap()
	return buffer
}

// createUniformBuffer creates a 16-byte aligned uniform buffer.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	aligned := make([]byte, (len(data)+15)&^15)
	copy(aligned, data)
	return b.createBuffer(aligned, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
}

// params packs uint32 and float32 fields into a uniform buffer.
func (b *Backend) params(fields ...any) *wgpu.Buffer {
	raw := make([]byte, 4*len(fields))
	for i, f := range fields {
		switch v := f.(type) {
		case uint32:
			binary.LittleEndian.PutUint32(raw[4*i:], v)
		case float32:
			binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
		default:
			panic(fmt.Sprintf("webgpu: unsupported uniform field %T", f))
		}
	}
	return b.createUniformBuffer(raw)
}

// upload copies data into dst at byte offset.
func (b *Backend) upload(dst *wgpu.Buffer, offset uint64, data []float32) {
	if len(data) == 0 {
		return
	}
	raw := float32Bytes(data)
	staging := b.createBuffer(raw, wgpu.BufferUsageCopySrc)
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, dst, offset, uint64(len(raw)))
	b.queue.Submit(encoder.Finish(nil))
}

// copyBuffer copies size bytes from src to dst on the device.
func (b *Backend) copyBuffer(src, dst *wgpu.Buffer, size uint64) {
	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, dst, 0, size)
	b.queue.Submit(encoder.Finish(nil))
}

// download reads len(dst) floats starting at byte offset of src.
// Storage buffers cannot be mapped directly, so the data goes through a staging buffer.
func (b *Backend) download(src *wgpu.Buffer, offset uint64, dst []float32) {
	if len(dst) == 0 {
		return
	}
	size := uint64(len(dst)) * 4
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, offset, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		panic(fmt.Sprintf("webgpu: map staging buffer: %v", err))
	}
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(float32Bytes(dst), unsafe.Slice((*byte)(mappedPtr), size))
	staging.Unmap()
}

// binding is one storage buffer bound to a kernel.
type binding struct {
	buffer *wgpu.Buffer
	size   uint64
}

// dispatch runs a kernel with storage bindings 0..n-1 followed by the uniform params.
func (b *Backend) dispatch(name, code string, bindings []binding, params *wgpu.Buffer, x, y uint32) {
	defer params.Release()

	p := b.pipeline(name, code)
	entries := make([]wgpu.BindGroupEntry, 0, len(bindings)+1)
	for i, bd := range bindings {
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), bd.buffer, 0, bd.size))
	}
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(bindings)), params, 0, 16))

	bindGroup := b.device.CreateBindGroupSimple(p.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))
}

func linearGroups(n int) uint32 {
	return uint32((n + workgroupSize - 1) / workgroupSize)
}

func tileGroups(n int) uint32 {
	return uint32((n + 15) / 16)
}

// elementwise runs a binary kernel over x and y into out.
func (b *Backend) elementwise(name, code string, x, y *gpuMatrix, out *wgpu.Buffer) {
	size := x.bytes()
	b.dispatch(name, code,
		[]binding{{x.buffer, size}, {y.buffer, size}, {out, size}},
		b.params(uint32(x.len())),
		linearGroups(x.len()), 1)
}

// scalar runs a scalar kernel over x into out.
func (b *Backend) scalar(name, code string, x *gpuMatrix, s float32, out *wgpu.Buffer) {
	size := x.bytes()
	b.dispatch(name, code,
		[]binding{{x.buffer, size}, {out, size}},
		b.params(uint32(x.len()), s),
		linearGroups(x.len()), 1)
}

// matmul computes x @ y into out.
func (b *Backend) matmul(x, y *gpuMatrix, out *wgpu.Buffer) {
	m, k, n := x.rows, x.cols, y.cols
	b.dispatch("matmul", matmulShader,
		[]binding{{x.buffer, x.bytes()}, {y.buffer, y.bytes()}, {out, uint64(m*n) * 4}},
		b.params(uint32(m), uint32(k), uint32(n)),
		tileGroups(n), tileGroups(m))
}

// transpose writes the transpose of x into out.
func (b *Backend) transpose(x *gpuMatrix, out *wgpu.Buffer) {
	b.dispatch("transpose", transposeShader,
		[]binding{{x.buffer, x.bytes()}, {out, x.bytes()}},
		b.params(uint32(x.rows), uint32(x.cols)),
		tileGroups(x.cols), tileGroups(x.rows))
}
