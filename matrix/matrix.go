// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package matrix

import (
	"go.uber.org/zap"

	"github.com/born-ml/keigen/internal/matrix"
	"github.com/born-ml/keigen/internal/native"
)

// Type aliases for public API

// Element is a constraint for matrix element types.
type Element = native.Element

// ElementType represents the runtime element type of a matrix.
type ElementType = native.ElementType

// Element type constants.
const (
	Byte   ElementType = native.Byte
	Short  ElementType = native.Short
	Int    ElementType = native.Int
	Long   ElementType = native.Long
	Float  ElementType = native.Float
	Double ElementType = native.Double
	Char   ElementType = native.Char
)

// Handle is the opaque engine reference to a matrix's storage.
type Handle = native.Handle

// Null is the handle of a disposed matrix.
const Null = native.Null

// Bridge is the operation surface an engine exposes for one element type.
// Implementations live under backend/.
type Bridge[T Element] = native.Bridge[T]

// Stats is a snapshot of an engine's storage accounting.
type Stats = native.Stats

// Owner is implemented by bridges that are views over a shared engine; operands
// whose bridges report the same owner may be combined.
type Owner = native.Owner

// Matrix is a rows x cols matrix whose storage is owned by an engine of type B.
//
// Example:
//
//	engine := cpu.New[float32]()
//	m, err := matrix.New(2, 3, float32(1), engine)
//	if err != nil {
//	    return err
//	}
//	defer m.Dispose()
type Matrix[T Element, B Bridge[T]] = matrix.Matrix[T, B]

// Shape is a (rows, cols) pair.
type Shape = matrix.Shape

// ShapeError reports operands whose shapes do not fit an operation.
type ShapeError = matrix.ShapeError

// IndexError reports an element coordinate outside a matrix.
type IndexError = matrix.IndexError

// BufferError reports a host buffer that does not fit a matrix.
type BufferError = matrix.BufferError

// Scope disposes tracked matrices in reverse order when closed.
type Scope = matrix.Scope

// Disposer is anything a Scope can release.
type Disposer = matrix.Disposer

// Errors.
var (
	ErrInvalidState               = matrix.ErrInvalidState
	ErrDimensionMismatch          = matrix.ErrDimensionMismatch
	ErrIncompatibleMultiplication = matrix.ErrIncompatibleMultiplication
	ErrIndexOutOfBounds           = matrix.ErrIndexOutOfBounds
	ErrBufferTooSmall             = matrix.ErrBufferTooSmall
	ErrInvalidShape               = matrix.ErrInvalidShape
	ErrInvalidStride              = matrix.ErrInvalidStride
	ErrAliasedOperand             = matrix.ErrAliasedOperand
	ErrDivisionByZero             = matrix.ErrDivisionByZero
	ErrEngineMismatch             = matrix.ErrEngineMismatch
	ErrEngine                     = matrix.ErrEngine
	ErrLibraryLoad                = matrix.ErrLibraryLoad
)

// Creation functions

// New creates a rows x cols matrix with every element set to fill.
//
// Example:
//
//	m, err := matrix.New(3, 3, 1.0, cpu.New[float64]())
func New[T Element, B Bridge[T]](rows, cols int, fill T, b B) (*Matrix[T, B], error) {
	return matrix.New[T, B](rows, cols, fill, b)
}

// Zeros creates a rows x cols matrix of zeros.
func Zeros[T Element, B Bridge[T]](rows, cols int, b B) (*Matrix[T, B], error) {
	return matrix.Zeros[T, B](rows, cols, b)
}

// FromData creates a matrix from row-major data. data must hold at least
// rows*cols and rows+cols elements, so a row or column vector needs one spare
// trailing element. Longer buffers are fine.
//
// Example:
//
//	m, err := matrix.FromData(2, 2, []int32{1, 2, 3, 4}, cpu.New[int32]())
func FromData[T Element, B Bridge[T]](rows, cols int, data []T, b B) (*Matrix[T, B], error) {
	return matrix.FromData[T, B](rows, cols, data, b)
}

// FromStrided creates a matrix reading element (r, c) from
// data[r*innerStride + c*outerStride]. len(data) must be at least
// rows*cols and rows*outerStride + innerStride, and must cover the last
// element read; otherwise a *BufferError reports the missing length.
//
// Example (column-major source):
//
//	m, err := matrix.FromStrided(2, 3, data, 2, 1, engine)
func FromStrided[T Element, B Bridge[T]](rows, cols int, data []T, outerStride, innerStride int, b B) (*Matrix[T, B], error) {
	return matrix.FromStrided[T, B](rows, cols, data, outerStride, innerStride, b)
}

// Memory management

// NewScope returns an empty scope.
func NewScope() *Scope {
	return matrix.NewScope()
}

// Scoped runs fn with a fresh scope and closes it on every exit path, including panics.
func Scoped(fn func(*Scope) error) error {
	return matrix.Scoped(fn)
}

// Track adds m to s when err is nil and passes both through.
func Track[T Element, B Bridge[T]](s *Scope, m *Matrix[T, B], err error) (*Matrix[T, B], error) {
	return matrix.Track(s, m, err)
}

// SetLogger sets the logger shared by matrices and engines. A nil logger disables
// logging.
func SetLogger(l *zap.Logger) {
	native.SetLogger(l)
}
