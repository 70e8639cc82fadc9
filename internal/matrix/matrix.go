// Package matrix implements the engine-backed matrix value: handle ownership, the
// validator that gates every engine call, and the in-place versus allocate dispatch.
package matrix

import (
	"fmt"
	"reflect"

	"github.com/born-ml/keigen/internal/native"
)

// Matrix is a rows x cols matrix of T whose storage is owned by an engine B.
//
// A Matrix exclusively owns its handle until Dispose or until an operation replaces
// the handle, in which case the old storage is freed exactly once. A disposed matrix
// holds native.Null and every operation except Dispose fails with ErrInvalidState.
//
// A Matrix is not safe for concurrent use. Different matrices may be used from
// different goroutines when their engine allows it.
//
// Type Parameters:
//   - T: element type (must satisfy native.Element)
//   - B: engine (must implement native.Bridge[T]); engines are compared by identity,
//     so B should be a pointer type or implement native.Owner
//
// Example:
//
//	b := cpu.New[float32]()
//	m, err := matrix.New(2, 2, float32(1), b)
//	if err != nil {
//		return err
//	}
//	defer m.Dispose()
type Matrix[T native.Element, B native.Bridge[T]] struct {
	rows, cols int
	handle     native.Handle
	bridge     B
}

// New allocates a rows x cols matrix with every element set to fill.
func New[T native.Element, B native.Bridge[T]](rows, cols int, fill T, b B) (*Matrix[T, B], error) {
	const op = "New"
	if err := load(op); err != nil {
		return nil, err
	}
	if err := checkShape(op, rows, cols); err != nil {
		return nil, err
	}
	h, err := b.AllocateFill(rows, cols, fill)
	if err != nil {
		return nil, engineError(op, b.Name(), err)
	}
	return wrap[T](rows, cols, h, b), nil
}

// Zeros allocates a rows x cols matrix of zeros.
func Zeros[T native.Element, B native.Bridge[T]](rows, cols int, b B) (*Matrix[T, B], error) {
	var zero T
	return New(rows, cols, zero, b)
}

// FromData copies a row-major rows x cols matrix out of data.
func FromData[T native.Element, B native.Bridge[T]](rows, cols int, data []T, b B) (*Matrix[T, B], error) {
	return fromBuffer("FromData", rows, cols, data, 1, cols, b)
}

// FromStrided copies a rows x cols matrix out of data, reading element (r, c) at
// data[r*innerStride + c*outerStride]. outerStride 1 and innerStride cols describe a
// plain row-major buffer; outerStride rows and innerStride 1 a column-major one.
// The buffer is checked by checkBuffer, which also requires
// rows*outerStride + innerStride elements.
func FromStrided[T native.Element, B native.Bridge[T]](rows, cols int, data []T, outerStride, innerStride int, b B) (*Matrix[T, B], error) {
	return fromBuffer("FromStrided", rows, cols, data, outerStride, innerStride, b)
}

func fromBuffer[T native.Element, B native.Bridge[T]](op string, rows, cols int, data []T, outer, inner int, b B) (*Matrix[T, B], error) {
	if err := load(op); err != nil {
		return nil, err
	}
	if err := checkShape(op, rows, cols); err != nil {
		return nil, err
	}
	if err := checkBuffer(op, len(data), rows, cols, outer, inner); err != nil {
		return nil, err
	}
	h, err := b.AllocateFromBuffer(rows, cols, data, outer, inner)
	if err != nil {
		return nil, engineError(op, b.Name(), err)
	}
	return wrap[T](rows, cols, h, b), nil
}

// wrap adopts a handle freshly produced by b.
func wrap[T native.Element, B native.Bridge[T]](rows, cols int, h native.Handle, b B) *Matrix[T, B] {
	return &Matrix[T, B]{rows: rows, cols: cols, handle: h, bridge: b}
}

func load(op string) error {
	if err := native.Load(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrLibraryLoad, err)
	}
	return nil
}

func engineError(op, engine string, err error) error {
	return fmt.Errorf("%s: %w: %s: %w", op, ErrEngine, engine, err)
}

// Rows returns the row count.
func (m *Matrix[T, B]) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix[T, B]) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix[T, B]) Shape() Shape { return Shape{Rows: m.rows, Cols: m.cols} }

// Handle returns the engine handle, or native.Null once disposed.
// The handle stays owned by m.
func (m *Matrix[T, B]) Handle() native.Handle { return m.handle }

// Bridge returns the engine that owns the storage.
func (m *Matrix[T, B]) Bridge() B { return m.bridge }

// ElementType returns the runtime element type.
func (m *Matrix[T, B]) ElementType() native.ElementType { return native.TypeOf[T]() }

// Disposed reports whether m no longer holds storage.
func (m *Matrix[T, B]) Disposed() bool { return m == nil || m.handle.IsNull() }

// String implements fmt.Stringer.
func (m *Matrix[T, B]) String() string {
	if m.Disposed() {
		return fmt.Sprintf("Matrix[%s](disposed)", native.TypeOf[T]())
	}
	return fmt.Sprintf("Matrix[%s]%v@%s", native.TypeOf[T](), m.Shape(), m.bridge.Name())
}

// Equal reports whether m and o hold the same elements. Matrices of different shapes
// are not equal.
func (m *Matrix[T, B]) Equal(o *Matrix[T, B]) (bool, error) {
	if err := m.checkOperands("Equal", o); err != nil {
		return false, err
	}
	if m.Shape() != o.Shape() {
		return false, nil
	}
	if m.handle == o.handle {
		return true, nil
	}
	n := m.rows * m.cols
	a, b := make([]T, n), make([]T, n)
	m.bridge.ReadAll(m.handle, a)
	o.bridge.ReadAll(o.handle, b)
	for i := range a {
		if a[i] != b[i] {
			return false, nil
		}
	}
	return true, nil
}

// Dispose frees the storage and moves m to the disposed state. It is safe to call
// more than once, and on a nil matrix.
func (m *Matrix[T, B]) Dispose() {
	if m.Disposed() {
		return
	}
	h := m.handle
	m.handle = native.Null
	m.bridge.Free(h)
}

// sameEngine reports whether two bridges address the same handle space. Bridges
// implementing native.Owner are matched by owner. Otherwise they are compared by
// value; bridges that cannot be compared are assumed to match.
func sameEngine(a, b any) bool {
	ao, aok := a.(native.Owner)
	bo, bok := b.(native.Owner)
	if aok || bok {
		return aok && bok && ao.Owner() == bo.Owner()
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() {
		return true
	}
	return va.Equal(vb)
}

// checkOperands verifies that m and every other operand are live and share m's engine.
func (m *Matrix[T, B]) checkOperands(op string, others ...*Matrix[T, B]) error {
	if m.Disposed() {
		return invalidState(op)
	}
	for _, o := range others {
		if o.Disposed() {
			return invalidState(op)
		}
		if !sameEngine(any(m.bridge), any(o.bridge)) {
			return fmt.Errorf("%s: %w", op, ErrEngineMismatch)
		}
	}
	return nil
}
