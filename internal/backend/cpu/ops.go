package cpu

import (
	"github.com/born-ml/keigen/internal/kernels"
	"github.com/born-ml/keigen/internal/native"
)

// Add returns a new matrix holding a + b.
func (b *Backend[T]) Add(x, y native.Handle) (native.Handle, error) {
	sx, sy := b.lookup(x), b.lookup(y)
	h, out := b.alloc(sx.rows, sx.cols)
	kernels.Add(out.data, sx.data, sy.data)
	return h, nil
}

// AddInPlace stores a + b into a.
func (b *Backend[T]) AddInPlace(x, y native.Handle) {
	sx, sy := b.lookup(x), b.lookup(y)
	kernels.Add(sx.data, sx.data, sy.data)
}

// Sub returns a new matrix holding a - b.
func (b *Backend[T]) Sub(x, y native.Handle) (native.Handle, error) {
	sx, sy := b.lookup(x), b.lookup(y)
	h, out := b.alloc(sx.rows, sx.cols)
	kernels.Sub(out.data, sx.data, sy.data)
	return h, nil
}

// SubInPlace stores a - b into a.
func (b *Backend[T]) SubInPlace(x, y native.Handle) {
	sx, sy := b.lookup(x), b.lookup(y)
	kernels.Sub(sx.data, sx.data, sy.data)
}

// MulScalar returns a new matrix holding h * s.
func (b *Backend[T]) MulScalar(x native.Handle, s T) (native.Handle, error) {
	sx := b.lookup(x)
	h, out := b.alloc(sx.rows, sx.cols)
	kernels.Scale(out.data, sx.data, s)
	return h, nil
}

// MulScalarInPlace multiplies every element of h by s.
func (b *Backend[T]) MulScalarInPlace(x native.Handle, s T) {
	sx := b.lookup(x)
	kernels.Scale(sx.data, sx.data, s)
}

// DivScalar returns a new matrix holding h / s.
func (b *Backend[T]) DivScalar(x native.Handle, s T) (native.Handle, error) {
	sx := b.lookup(x)
	h, out := b.alloc(sx.rows, sx.cols)
	kernels.Div(out.data, sx.data, s)
	return h, nil
}

// DivScalarInPlace divides every element of h by s.
func (b *Backend[T]) DivScalarInPlace(x native.Handle, s T) {
	sx := b.lookup(x)
	kernels.Div(sx.data, sx.data, s)
}

// Transpose returns a new cols x rows matrix.
func (b *Backend[T]) Transpose(x native.Handle) (native.Handle, error) {
	sx := b.lookup(x)
	h, out := b.alloc(sx.cols, sx.rows)
	kernels.Transpose(out.data, sx.data, sx.rows, sx.cols)
	return h, nil
}

// Get returns element (row, col).
func (b *Backend[T]) Get(x native.Handle, row, col int) T {
	sx := b.lookup(x)
	return sx.data[row*sx.cols+col]
}

// Set stores v at (row, col).
func (b *Backend[T]) Set(x native.Handle, row, col int, v T) {
	sx := b.lookup(x)
	sx.data[row*sx.cols+col] = v
}

// ReadAll copies the len(dst) leading row-major elements into dst.
func (b *Backend[T]) ReadAll(x native.Handle, dst []T) {
	copy(dst, b.lookup(x).data)
}

// WriteAll overwrites the len(src) leading row-major elements.
func (b *Backend[T]) WriteAll(x native.Handle, src []T) {
	copy(b.lookup(x).data, src)
}
