package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by matrix operations. Detail errors below unwrap to them,
// so callers match with errors.Is.
var (
	// ErrInvalidState indicates use of a disposed matrix.
	ErrInvalidState = errors.New("matrix: invalid state")

	// ErrDimensionMismatch indicates elementwise operands of different shapes.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrIncompatibleMultiplication indicates cols(left) != rows(right).
	ErrIncompatibleMultiplication = errors.New("matrix: incompatible multiplication")

	// ErrIndexOutOfBounds indicates a row or column outside the matrix.
	ErrIndexOutOfBounds = errors.New("matrix: index out of bounds")

	// ErrBufferTooSmall indicates a buffer that cannot hold the addressed elements.
	ErrBufferTooSmall = errors.New("matrix: buffer too small")

	// ErrInvalidShape indicates rows or cols below 1.
	ErrInvalidShape = errors.New("matrix: invalid shape")

	// ErrInvalidStride indicates a stride below 1.
	ErrInvalidStride = errors.New("matrix: invalid stride")

	// ErrAliasedOperand indicates a destination sharing storage with an operand.
	ErrAliasedOperand = errors.New("matrix: destination aliases an operand")

	// ErrDivisionByZero indicates integer division by zero.
	ErrDivisionByZero = errors.New("matrix: division by zero")

	// ErrEngineMismatch indicates operands owned by different engine instances.
	ErrEngineMismatch = errors.New("matrix: operands belong to different engines")

	// ErrEngine wraps allocation failures reported by an engine.
	ErrEngine = errors.New("matrix: engine failure")

	// ErrLibraryLoad indicates the native libraries could not be loaded.
	ErrLibraryLoad = errors.New("matrix: native library load failed")
)

// Shape is a (rows, cols) pair.
type Shape struct {
	Rows, Cols int
}

// String formats the shape as [rows, cols].
func (s Shape) String() string {
	return fmt.Sprintf("[%d, %d]", s.Rows, s.Cols)
}

// ShapeError reports the operand shapes of a failed binary operation.
// Err is ErrDimensionMismatch or ErrIncompatibleMultiplication.
type ShapeError struct {
	Op    string
	Left  Shape
	Right Shape
	Err   error
}

func (e *ShapeError) Error() string {
	if errors.Is(e.Err, ErrIncompatibleMultiplication) {
		return fmt.Sprintf("%s: %v: cols must equal rows (this: %v, other: %v)", e.Op, e.Err, e.Left, e.Right)
	}
	return fmt.Sprintf("%s: %v: dimensions must equal (this: %v, other: %v)", e.Op, e.Err, e.Left, e.Right)
}

func (e *ShapeError) Unwrap() error { return e.Err }

// IndexError reports an out-of-bounds element access.
type IndexError struct {
	Op       string
	Row, Col int
	Shape    Shape
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %v: (%d, %d) outside %v", e.Op, ErrIndexOutOfBounds, e.Row, e.Col, e.Shape)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfBounds }

// BufferError reports a buffer whose length does not fit the request.
// For construction Required is the minimum length; for bulk transfer (Max set) it is
// the element count of the matrix, which the buffer must not exceed.
type BufferError struct {
	Op       string
	Len      int
	Required int
	Max      bool
}

func (e *BufferError) Error() string {
	if e.Max {
		return fmt.Sprintf("%s: %v: len %d exceeds %d elements", e.Op, ErrBufferTooSmall, e.Len, e.Required)
	}
	return fmt.Sprintf("%s: %v: len %d, need %d", e.Op, ErrBufferTooSmall, e.Len, e.Required)
}

func (e *BufferError) Unwrap() error { return ErrBufferTooSmall }
