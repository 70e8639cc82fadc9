package matrix

import (
	"fmt"

	"github.com/born-ml/keigen/internal/native"
)

// Validation runs before any bridge call. A failed check leaves every operand as it was.

func invalidState(op string) error {
	return fmt.Errorf("%s: %w", op, ErrInvalidState)
}

func checkShape(op string, rows, cols int) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%s: %w: [%d, %d]", op, ErrInvalidShape, rows, cols)
	}
	return nil
}

// checkBuffer validates a strided read of a rows x cols view from a buffer of n
// elements, where element (r, c) lives at r*inner + c*outer. The buffer must
// hold rows*cols elements and rows*outer + inner elements, and the last element
// read must be in range.
func checkBuffer(op string, n, rows, cols, outer, inner int) error {
	if outer < 1 || inner < 1 {
		return fmt.Errorf("%s: %w: outer %d, inner %d", op, ErrInvalidStride, outer, inner)
	}
	if need := rows * cols; n < need {
		return &BufferError{Op: op, Len: n, Required: need}
	}
	if need := rows*outer + inner; n < need {
		return &BufferError{Op: op, Len: n, Required: need}
	}
	if last := (rows-1)*inner + (cols-1)*outer; n <= last {
		return &BufferError{Op: op, Len: n, Required: last + 1}
	}
	return nil
}

func checkSameShape(op string, a, b Shape) error {
	if a != b {
		return &ShapeError{Op: op, Left: a, Right: b, Err: ErrDimensionMismatch}
	}
	return nil
}

func checkMultiply(op string, a, b Shape) error {
	if a.Cols != b.Rows {
		return &ShapeError{Op: op, Left: a, Right: b, Err: ErrIncompatibleMultiplication}
	}
	return nil
}

func checkIndex(op string, row, col int, s Shape) error {
	if row < 0 || row >= s.Rows || col < 0 || col >= s.Cols {
		return &IndexError{Op: op, Row: row, Col: col, Shape: s}
	}
	return nil
}

func checkTransfer(op string, n int, s Shape) error {
	if limit := s.Rows * s.Cols; n > limit {
		return &BufferError{Op: op, Len: n, Required: limit, Max: true}
	}
	return nil
}

func checkDivisor[T native.Element](op string, s T) error {
	if s == 0 && !native.TypeOf[T]().IsFloat() {
		return fmt.Errorf("%s: %w", op, ErrDivisionByZero)
	}
	return nil
}
