// Package kernels holds the row-major numeric kernels shared by the reference engines.
//
// Kernels trust their arguments: lengths, shapes and aliasing are the caller's
// responsibility. Every kernel is written once, generically over native.Element.
package kernels

import (
	"github.com/born-ml/keigen/internal/native"
	"github.com/born-ml/keigen/internal/parallel"
)

// parallelOps is the multiply-add count below which MatMul stays on the calling goroutine.
const parallelOps = 64 * 64 * 64

// Fill sets every element of dst to v.
func Fill[T native.Element](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}

// Gather copies a rows x cols view of src into dense row-major dst.
// Element (r, c) is read from src[r*inner + c*outer].
func Gather[T native.Element](dst, src []T, rows, cols, outer, inner int) {
	if outer == 1 && inner == cols {
		copy(dst[:rows*cols], src)
		return
	}
	for r := 0; r < rows; r++ {
		row := dst[r*cols : (r+1)*cols]
		base := r * inner
		for c := range row {
			row[c] = src[base+c*outer]
		}
	}
}

// Add computes dst = a + b. dst may alias a or b.
func Add[T native.Element](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Sub computes dst = a - b. dst may alias a or b.
func Sub[T native.Element](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// Scale computes dst = src * s. dst may alias src.
func Scale[T native.Element](dst, src []T, s T) {
	for i := range dst {
		dst[i] = src[i] * s
	}
}

// Div computes dst = src / s. dst may alias src. For integer T, s must be non-zero.
func Div[T native.Element](dst, src []T, s T) {
	for i := range dst {
		dst[i] = src[i] / s
	}
}

// MatMul computes c = a @ b with a (m, k), b (k, n) and c (m, n).
// c must not alias a or b. Rows of c are split across goroutines per cfg.
func MatMul[T native.Element](c, a, b []T, m, k, n int, cfg parallel.Config) {
	rowCfg := cfg
	if m*k*n < parallelOps {
		rowCfg.Enabled = false
	} else {
		rowCfg.MinChunkSize = 1
	}

	parallel.Ranges(m, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out := c[i*n : (i+1)*n]
			for j := range out {
				out[j] = 0
			}
			ai := a[i*k : (i+1)*k]
			for kIdx, av := range ai {
				bk := b[kIdx*n : (kIdx+1)*n]
				for j, bv := range bk {
					out[j] += av * bv
				}
			}
		}
	}, rowCfg)
}

// MatMulInPlace computes a = a @ b for square-compatible operands of shape (m, k) and
// (k, k). b may alias a. scratch must hold m*k elements.
func MatMulInPlace[T native.Element](a, b, scratch []T, m, k int, cfg parallel.Config) {
	MatMul(scratch, a, b, m, k, k, cfg)
	copy(a, scratch)
}

// Transpose writes the (cols, rows) transpose of the (rows, cols) src into dst.
// dst must not alias src.
func Transpose[T native.Element](dst, src []T, rows, cols int) {
	for r := 0; r < rows; r++ {
		row := src[r*cols : (r+1)*cols]
		for c, v := range row {
			dst[c*rows+r] = v
		}
	}
}
