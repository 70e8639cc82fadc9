package wasm

import (
	"unsafe"

	"github.com/born-ml/keigen/internal/kernels"
	"github.com/born-ml/keigen/internal/native"
	"github.com/born-ml/keigen/internal/parallel"
)

// Backend is the typed view of an Engine for element type T. It implements
// native.Bridge[T]. Any number of backends, of any element types, may share one Engine.
type Backend[T native.Element] struct {
	engine *Engine
	elem   int
}

var _ native.Bridge[float64] = (*Backend[float64])(nil)

// NewBackend returns the backend for element type T on e.
func NewBackend[T native.Element](e *Engine) *Backend[T] {
	return &Backend[T]{engine: e, elem: native.TypeOf[T]().Size()}
}

// Engine returns the engine that owns the storage.
func (b *Backend[T]) Engine() *Engine {
	return b.engine
}

// Owner reports the shared engine, so every view of one Engine interoperates.
func (b *Backend[T]) Owner() any {
	return b.engine
}

// Name returns the engine name.
func (b *Backend[T]) Name() string {
	return "wasm"
}

// Stats returns the engine-wide storage accounting.
func (b *Backend[T]) Stats() native.Stats {
	return b.engine.Stats()
}

// matrix is a decoded block: its shape and a view of its elements.
type matrix[T native.Element] struct {
	rows, cols int
	data       []T
}

// view decodes h. The element view must not be held across an allocation.
func (b *Backend[T]) view(h native.Handle) matrix[T] {
	hdr := b.engine.header(h, b.elem)
	m := matrix[T]{rows: int(hdr.rows), cols: int(hdr.cols)}
	if n := m.rows * m.cols; n > 0 {
		raw := b.engine.data(h, hdr)
		m.data = unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n)
	}
	return m
}

// unary allocates a rows x cols result and runs fn on the operand and result views.
func (b *Backend[T]) unary(x native.Handle, shape func(rows, cols int) (int, int), fn func(out, src matrix[T])) (native.Handle, error) {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	src := b.view(x)
	rows, cols := shape(src.rows, src.cols)
	h, err := e.allocate(rows, cols, b.elem)
	if err != nil {
		return native.Null, err
	}
	fn(b.view(h), b.view(x))
	return h, nil
}

// binary allocates a result of the shape chosen by shape and runs fn on the views.
func (b *Backend[T]) binary(x, y native.Handle, shape func(a, c matrix[T]) (int, int), fn func(out, a, c matrix[T])) (native.Handle, error) {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, cols := shape(b.view(x), b.view(y))
	h, err := e.allocate(rows, cols, b.elem)
	if err != nil {
		return native.Null, err
	}
	fn(b.view(h), b.view(x), b.view(y))
	return h, nil
}

func sameShape[T native.Element](a, _ matrix[T]) (int, int) { return a.rows, a.cols }
func productShape[T native.Element](a, c matrix[T]) (int, int) { return a.rows, c.cols }
func keepShape(rows, cols int) (int, int)                      { return rows, cols }
func swapShape(rows, cols int) (int, int)                      { return cols, rows }

// AllocateFill allocates a rows x cols matrix with every element set to fill.
func (b *Backend[T]) AllocateFill(rows, cols int, fill T) (native.Handle, error) {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	h, err := e.allocate(rows, cols, b.elem)
	if err != nil {
		return native.Null, err
	}
	kernels.Fill(b.view(h).data, fill)
	return h, nil
}

// AllocateFromBuffer copies a strided view of buf into linear memory.
func (b *Backend[T]) AllocateFromBuffer(rows, cols int, buf []T, outerStride, innerStride int) (native.Handle, error) {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	h, err := e.allocate(rows, cols, b.elem)
	if err != nil {
		return native.Null, err
	}
	kernels.Gather(b.view(h).data, buf, rows, cols, outerStride, innerStride)
	return h, nil
}

// Free releases the block behind h.
func (b *Backend[T]) Free(h native.Handle) {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	e.free(h, b.elem)
}

// locked runs fn with the engine lock held.
func (b *Backend[T]) locked(fn func()) {
	b.engine.mu.Lock()
	defer b.engine.mu.Unlock()
	fn()
}

// Add returns a new matrix holding a + b.
func (b *Backend[T]) Add(x, y native.Handle) (native.Handle, error) {
	return b.binary(x, y, sameShape[T], func(out, a, c matrix[T]) {
		kernels.Add(out.data, a.data, c.data)
	})
}

// AddInPlace stores a + b into a.
func (b *Backend[T]) AddInPlace(x, y native.Handle) {
	b.locked(func() {
		a, c := b.view(x), b.view(y)
		kernels.Add(a.data, a.data, c.data)
	})
}

// Sub returns a new matrix holding a - b.
func (b *Backend[T]) Sub(x, y native.Handle) (native.Handle, error) {
	return b.binary(x, y, sameShape[T], func(out, a, c matrix[T]) {
		kernels.Sub(out.data, a.data, c.data)
	})
}

// SubInPlace stores a - b into a.
func (b *Backend[T]) SubInPlace(x, y native.Handle) {
	b.locked(func() {
		a, c := b.view(x), b.view(y)
		kernels.Sub(a.data, a.data, c.data)
	})
}

// Mul returns a new rows(a) x cols(b) matrix holding a * b.
func (b *Backend[T]) Mul(x, y native.Handle) (native.Handle, error) {
	return b.binary(x, y, productShape[T], func(out, a, c matrix[T]) {
		kernels.MatMul(out.data, a.data, c.data, a.rows, a.cols, c.cols, parallel.Sequential())
	})
}

// MulInPlaceSquare stores a * b into a. a may equal b.
func (b *Backend[T]) MulInPlaceSquare(x, y native.Handle) {
	b.locked(func() {
		a, c := b.view(x), b.view(y)
		scratch := make([]T, len(a.data))
		kernels.MatMulInPlace(a.data, c.data, scratch, a.rows, a.cols, parallel.Sequential())
	})
}

// MulInto stores a * b into dst.
func (b *Backend[T]) MulInto(x, y, dst native.Handle) {
	b.locked(func() {
		a, c, d := b.view(x), b.view(y), b.view(dst)
		kernels.MatMul(d.data, a.data, c.data, a.rows, a.cols, c.cols, parallel.Sequential())
	})
}

// MulScalar returns a new matrix holding h * s.
func (b *Backend[T]) MulScalar(x native.Handle, s T) (native.Handle, error) {
	return b.unary(x, keepShape, func(out, src matrix[T]) {
		kernels.Scale(out.data, src.data, s)
	})
}

// MulScalarInPlace multiplies every element of h by s.
func (b *Backend[T]) MulScalarInPlace(x native.Handle, s T) {
	b.locked(func() {
		a := b.view(x)
		kernels.Scale(a.data, a.data, s)
	})
}

// DivScalar returns a new matrix holding h / s.
func (b *Backend[T]) DivScalar(x native.Handle, s T) (native.Handle, error) {
	return b.unary(x, keepShape, func(out, src matrix[T]) {
		kernels.Div(out.data, src.data, s)
	})
}

// DivScalarInPlace divides every element of h by s.
func (b *Backend[T]) DivScalarInPlace(x native.Handle, s T) {
	b.locked(func() {
		a := b.view(x)
		kernels.Div(a.data, a.data, s)
	})
}

// Transpose returns a new cols x rows matrix.
func (b *Backend[T]) Transpose(x native.Handle) (native.Handle, error) {
	return b.unary(x, swapShape, func(out, src matrix[T]) {
		kernels.Transpose(out.data, src.data, src.rows, src.cols)
	})
}

// Get returns element (row, col).
func (b *Backend[T]) Get(x native.Handle, row, col int) T {
	var v T
	b.locked(func() {
		a := b.view(x)
		v = a.data[row*a.cols+col]
	})
	return v
}

// Set stores v at (row, col).
func (b *Backend[T]) Set(x native.Handle, row, col int, v T) {
	b.locked(func() {
		a := b.view(x)
		a.data[row*a.cols+col] = v
	})
}

// ReadAll copies the len(dst) leading row-major elements into dst.
func (b *Backend[T]) ReadAll(x native.Handle, dst []T) {
	b.locked(func() {
		copy(dst, b.view(x).data)
	})
}

// WriteAll overwrites the len(src) leading row-major elements.
func (b *Backend[T]) WriteAll(x native.Handle, src []T) {
	b.locked(func() {
		copy(b.view(x).data, src)
	})
}
