package cpu

import (
	"github.com/born-ml/keigen/internal/kernels"
	"github.com/born-ml/keigen/internal/native"
)

// Mul returns a new rows(a) x cols(b) matrix holding a * b.
func (b *Backend[T]) Mul(x, y native.Handle) (native.Handle, error) {
	sx, sy := b.lookup(x), b.lookup(y)
	h, out := b.alloc(sx.rows, sy.cols)
	kernels.MatMul(out.data, sx.data, sy.data, sx.rows, sx.cols, sy.cols, b.par)
	return h, nil
}

// MulInPlaceSquare stores a * b into a. Both operands share one shape; a may equal b.
func (b *Backend[T]) MulInPlaceSquare(x, y native.Handle) {
	sx, sy := b.lookup(x), b.lookup(y)
	scratch := make([]T, len(sx.data))
	kernels.MatMulInPlace(sx.data, sy.data, scratch, sx.rows, sx.cols, b.par)
}

// MulInto stores a * b into dst, which must alias neither operand.
func (b *Backend[T]) MulInto(x, y, dst native.Handle) {
	sx, sy, sd := b.lookup(x), b.lookup(y), b.lookup(dst)
	kernels.MatMul(sd.data, sx.data, sy.data, sx.rows, sx.cols, sy.cols, b.par)
}
