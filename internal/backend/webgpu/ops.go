//go:build windows

package webgpu

import (
	"github.com/born-ml/keigen/internal/kernels"
	"github.com/born-ml/keigen/internal/native"
)

// AllocateFill allocates a rows x cols matrix with every element set to fill.
func (b *Backend) AllocateFill(rows, cols int, fill float32) (native.Handle, error) {
	host := make([]float32, rows*cols)
	kernels.Fill(host, fill)
	buffer, capacity := b.alloc(rows, cols)
	b.upload(buffer, 0, host)
	return b.adopt(buffer, capacity, rows, cols), nil
}

// AllocateFromBuffer uploads a strided view of buf.
func (b *Backend) AllocateFromBuffer(rows, cols int, buf []float32, outerStride, innerStride int) (native.Handle, error) {
	host := make([]float32, rows*cols)
	kernels.Gather(host, buf, rows, cols, outerStride, innerStride)
	buffer, capacity := b.alloc(rows, cols)
	b.upload(buffer, 0, host)
	return b.adopt(buffer, capacity, rows, cols), nil
}

// Add returns a new matrix holding a + b.
func (b *Backend) Add(x, y native.Handle) (native.Handle, error) {
	mx, my := b.lookup(x), b.lookup(y)
	out, capacity := b.alloc(mx.rows, mx.cols)
	b.elementwise("add", addShader, mx, my, out)
	return b.adopt(out, capacity, mx.rows, mx.cols), nil
}

// inPlace computes into a pooled scratch buffer and copies the result over x.
// A buffer cannot be bound for reading and writing in the same dispatch.
func (b *Backend) inPlace(x *gpuMatrix, run func(out *gpuMatrix)) {
	scratch, capacity := b.alloc(x.rows, x.cols)
	run(&gpuMatrix{buffer: scratch, rows: x.rows, cols: x.cols, capacity: capacity})
	b.copyBuffer(scratch, x.buffer, x.bytes())
	b.pool.release(scratch, capacity, storageUsage)
}

// AddInPlace stores a + b into a.
func (b *Backend) AddInPlace(x, y native.Handle) {
	mx, my := b.lookup(x), b.lookup(y)
	b.inPlace(mx, func(out *gpuMatrix) {
		b.elementwise("add", addShader, mx, my, out.buffer)
	})
}

// Sub returns a new matrix holding a - b.
func (b *Backend) Sub(x, y native.Handle) (native.Handle, error) {
	mx, my := b.lookup(x), b.lookup(y)
	out, capacity := b.alloc(mx.rows, mx.cols)
	b.elementwise("sub", subShader, mx, my, out)
	return b.adopt(out, capacity, mx.rows, mx.cols), nil
}

// SubInPlace stores a - b into a.
func (b *Backend) SubInPlace(x, y native.Handle) {
	mx, my := b.lookup(x), b.lookup(y)
	b.inPlace(mx, func(out *gpuMatrix) {
		b.elementwise("sub", subShader, mx, my, out.buffer)
	})
}

// Mul returns a new rows(a) x cols(b) matrix holding a * b.
func (b *Backend) Mul(x, y native.Handle) (native.Handle, error) {
	mx, my := b.lookup(x), b.lookup(y)
	out, capacity := b.alloc(mx.rows, my.cols)
	b.matmul(mx, my, out)
	return b.adopt(out, capacity, mx.rows, my.cols), nil
}

// MulInPlaceSquare stores a * b into a. a may equal b.
func (b *Backend) MulInPlaceSquare(x, y native.Handle) {
	mx, my := b.lookup(x), b.lookup(y)
	b.inPlace(mx, func(out *gpuMatrix) {
		b.matmul(mx, my, out.buffer)
	})
}

// MulInto stores a * b into dst.
func (b *Backend) MulInto(x, y, dst native.Handle) {
	mx, my, md := b.lookup(x), b.lookup(y), b.lookup(dst)
	b.matmul(mx, my, md.buffer)
}

// MulScalar returns a new matrix holding h * s.
func (b *Backend) MulScalar(x native.Handle, s float32) (native.Handle, error) {
	mx := b.lookup(x)
	out, capacity := b.alloc(mx.rows, mx.cols)
	b.scalar("scalar_mul", scalarMulShader, mx, s, out)
	return b.adopt(out, capacity, mx.rows, mx.cols), nil
}

// MulScalarInPlace multiplies every element of h by s.
func (b *Backend) MulScalarInPlace(x native.Handle, s float32) {
	mx := b.lookup(x)
	b.inPlace(mx, func(out *gpuMatrix) {
		b.scalar("scalar_mul", scalarMulShader, mx, s, out.buffer)
	})
}

// DivScalar returns a new matrix holding h / s.
func (b *Backend) DivScalar(x native.Handle, s float32) (native.Handle, error) {
	mx := b.lookup(x)
	out, capacity := b.alloc(mx.rows, mx.cols)
	b.scalar("scalar_div", scalarDivShader, mx, s, out)
	return b.adopt(out, capacity, mx.rows, mx.cols), nil
}

// DivScalarInPlace divides every element of h by s.
func (b *Backend) DivScalarInPlace(x native.Handle, s float32) {
	mx := b.lookup(x)
	b.inPlace(mx, func(out *gpuMatrix) {
		b.scalar("scalar_div", scalarDivShader, mx, s, out.buffer)
	})
}

// Transpose returns a new cols x rows matrix.
func (b *Backend) Transpose(x native.Handle) (native.Handle, error) {
	mx := b.lookup(x)
	out, capacity := b.alloc(mx.cols, mx.rows)
	b.transpose(mx, out)
	return b.adopt(out, capacity, mx.cols, mx.rows), nil
}

// Get returns element (row, col).
func (b *Backend) Get(x native.Handle, row, col int) float32 {
	mx := b.lookup(x)
	var v [1]float32
	b.download(mx.buffer, uint64(row*mx.cols+col)*4, v[:])
	return v[0]
}

// Set stores v at (row, col).
func (b *Backend) Set(x native.Handle, row, col int, v float32) {
	mx := b.lookup(x)
	b.upload(mx.buffer, uint64(row*mx.cols+col)*4, []float32{v})
}

// ReadAll copies the len(dst) leading row-major elements into dst.
func (b *Backend) ReadAll(x native.Handle, dst []float32) {
	b.download(b.lookup(x).buffer, 0, dst)
}

// WriteAll overwrites the len(src) leading row-major elements.
func (b *Backend) WriteAll(x native.Handle, src []float32) {
	b.upload(b.lookup(x).buffer, 0, src)
}
