package matrix

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/born-ml/keigen/internal/native"
)

// result adopts a handle returned by an allocating bridge call.
func (m *Matrix[T, B]) result(op string, rows, cols int, h native.Handle, err error) (*Matrix[T, B], error) {
	if err != nil {
		return nil, engineError(op, m.bridge.Name(), err)
	}
	return wrap[T](rows, cols, h, m.bridge), nil
}

// swap installs h as m's storage with the given shape, then frees the previous handle.
// m never holds a freed handle, and the old handle is freed exactly once.
func (m *Matrix[T, B]) swap(op string, h native.Handle, rows, cols int) {
	old := m.handle
	m.handle, m.rows, m.cols = h, rows, cols
	m.bridge.Free(old)
	native.Logger().Debug("matrix handle swapped",
		zap.String("op", op),
		zap.Stringer("old", old),
		zap.Stringer("new", h),
		zap.Stringer("shape", m.Shape()))
}

// Plus returns m + o in a new matrix.
func (m *Matrix[T, B]) Plus(o *Matrix[T, B]) (*Matrix[T, B], error) {
	const op = "Plus"
	if err := m.checkOperands(op, o); err != nil {
		return nil, err
	}
	if err := checkSameShape(op, m.Shape(), o.Shape()); err != nil {
		return nil, err
	}
	h, err := m.bridge.Add(m.handle, o.handle)
	return m.result(op, m.rows, m.cols, h, err)
}

// PlusAssign stores m + o into m. m keeps its handle; o is untouched.
func (m *Matrix[T, B]) PlusAssign(o *Matrix[T, B]) error {
	const op = "PlusAssign"
	if err := m.checkOperands(op, o); err != nil {
		return err
	}
	if err := checkSameShape(op, m.Shape(), o.Shape()); err != nil {
		return err
	}
	m.bridge.AddInPlace(m.handle, o.handle)
	return nil
}

// Minus returns m - o in a new matrix.
func (m *Matrix[T, B]) Minus(o *Matrix[T, B]) (*Matrix[T, B], error) {
	const op = "Minus"
	if err := m.checkOperands(op, o); err != nil {
		return nil, err
	}
	if err := checkSameShape(op, m.Shape(), o.Shape()); err != nil {
		return nil, err
	}
	h, err := m.bridge.Sub(m.handle, o.handle)
	return m.result(op, m.rows, m.cols, h, err)
}

// MinusAssign stores m - o into m.
func (m *Matrix[T, B]) MinusAssign(o *Matrix[T, B]) error {
	const op = "MinusAssign"
	if err := m.checkOperands(op, o); err != nil {
		return err
	}
	if err := checkSameShape(op, m.Shape(), o.Shape()); err != nil {
		return err
	}
	m.bridge.SubInPlace(m.handle, o.handle)
	return nil
}

// Times returns the matrix product m * o as a new rows(m) x cols(o) matrix.
func (m *Matrix[T, B]) Times(o *Matrix[T, B]) (*Matrix[T, B], error) {
	const op = "Times"
	if err := m.checkOperands(op, o); err != nil {
		return nil, err
	}
	if err := checkMultiply(op, m.Shape(), o.Shape()); err != nil {
		return nil, err
	}
	h, err := m.bridge.Mul(m.handle, o.handle)
	return m.result(op, m.rows, o.cols, h, err)
}

// TimesAssign stores m * o into m.
//
// When m and o have the same shape (and so are square) the product is computed into
// m's existing storage and the handle is kept. Otherwise a new rows(m) x cols(o)
// matrix is allocated, adopted by m, and the old handle is freed. Callers must not
// rely on Handle being stable across this call.
func (m *Matrix[T, B]) TimesAssign(o *Matrix[T, B]) error {
	const op = "TimesAssign"
	if err := m.checkOperands(op, o); err != nil {
		return err
	}
	if err := checkMultiply(op, m.Shape(), o.Shape()); err != nil {
		return err
	}
	if m.rows == o.rows && m.cols == o.cols {
		m.bridge.MulInPlaceSquare(m.handle, o.handle)
		return nil
	}
	h, err := m.bridge.Mul(m.handle, o.handle)
	if err != nil {
		return engineError(op, m.bridge.Name(), err)
	}
	m.swap(op, h, m.rows, o.cols)
	return nil
}

// MultiplyIntoDst writes m * b into dst's existing storage without allocating.
// dst must be rows(m) x cols(b) and must not share storage with m or b.
func (m *Matrix[T, B]) MultiplyIntoDst(b, dst *Matrix[T, B]) error {
	const op = "MultiplyIntoDst"
	if err := m.checkOperands(op, b, dst); err != nil {
		return err
	}
	if err := checkMultiply(op, m.Shape(), b.Shape()); err != nil {
		return err
	}
	if err := checkSameShape(op, Shape{Rows: m.rows, Cols: b.cols}, dst.Shape()); err != nil {
		return err
	}
	if dst.handle == m.handle || dst.handle == b.handle {
		return fmt.Errorf("%s: %w", op, ErrAliasedOperand)
	}
	m.bridge.MulInto(m.handle, b.handle, dst.handle)
	return nil
}

// TimesScalar returns m * s in a new matrix.
func (m *Matrix[T, B]) TimesScalar(s T) (*Matrix[T, B], error) {
	const op = "TimesScalar"
	if err := m.checkOperands(op); err != nil {
		return nil, err
	}
	h, err := m.bridge.MulScalar(m.handle, s)
	return m.result(op, m.rows, m.cols, h, err)
}

// TimesScalarAssign multiplies every element of m by s.
func (m *Matrix[T, B]) TimesScalarAssign(s T) error {
	const op = "TimesScalarAssign"
	if err := m.checkOperands(op); err != nil {
		return err
	}
	m.bridge.MulScalarInPlace(m.handle, s)
	return nil
}

// DivScalar returns m / s in a new matrix. Integer division truncates toward zero;
// integer division by zero fails with ErrDivisionByZero.
func (m *Matrix[T, B]) DivScalar(s T) (*Matrix[T, B], error) {
	const op = "DivScalar"
	if err := m.checkOperands(op); err != nil {
		return nil, err
	}
	if err := checkDivisor(op, s); err != nil {
		return nil, err
	}
	h, err := m.bridge.DivScalar(m.handle, s)
	return m.result(op, m.rows, m.cols, h, err)
}

// DivScalarAssign divides every element of m by s.
func (m *Matrix[T, B]) DivScalarAssign(s T) error {
	const op = "DivScalarAssign"
	if err := m.checkOperands(op); err != nil {
		return err
	}
	if err := checkDivisor(op, s); err != nil {
		return err
	}
	m.bridge.DivScalarInPlace(m.handle, s)
	return nil
}

// Transpose returns a new cols x rows matrix.
func (m *Matrix[T, B]) Transpose() (*Matrix[T, B], error) {
	const op = "Transpose"
	if err := m.checkOperands(op); err != nil {
		return nil, err
	}
	h, err := m.bridge.Transpose(m.handle)
	return m.result(op, m.cols, m.rows, h, err)
}

// TransposeInPlace replaces m with its transpose.
//
// Engines cannot transpose within the same storage, so m always adopts a newly
// allocated handle and the old one is freed. Only m itself is preserved.
func (m *Matrix[T, B]) TransposeInPlace() error {
	const op = "TransposeInPlace"
	if err := m.checkOperands(op); err != nil {
		return err
	}
	h, err := m.bridge.Transpose(m.handle)
	if err != nil {
		return engineError(op, m.bridge.Name(), err)
	}
	m.swap(op, h, m.cols, m.rows)
	return nil
}

// Get returns element (row, col).
func (m *Matrix[T, B]) Get(row, col int) (T, error) {
	const op = "Get"
	var zero T
	if err := m.checkOperands(op); err != nil {
		return zero, err
	}
	if err := checkIndex(op, row, col, m.Shape()); err != nil {
		return zero, err
	}
	return m.bridge.Get(m.handle, row, col), nil
}

// Set stores v at (row, col).
func (m *Matrix[T, B]) Set(row, col int, v T) error {
	const op = "Set"
	if err := m.checkOperands(op); err != nil {
		return err
	}
	if err := checkIndex(op, row, col, m.Shape()); err != nil {
		return err
	}
	m.bridge.Set(m.handle, row, col, v)
	return nil
}

// GetArray copies the leading len(dst) elements of m, in row-major order, into dst and
// returns it. A nil dst receives a fresh slice holding every element.
func (m *Matrix[T, B]) GetArray(dst []T) ([]T, error) {
	const op = "GetArray"
	if err := m.checkOperands(op); err != nil {
		return nil, err
	}
	if dst == nil {
		dst = make([]T, m.rows*m.cols)
	}
	if err := checkTransfer(op, len(dst), m.Shape()); err != nil {
		return nil, err
	}
	m.bridge.ReadAll(m.handle, dst)
	return dst, nil
}

// SetArray overwrites the leading len(src) elements of m, in row-major order.
func (m *Matrix[T, B]) SetArray(src []T) error {
	const op = "SetArray"
	if err := m.checkOperands(op); err != nil {
		return err
	}
	if err := checkTransfer(op, len(src), m.Shape()); err != nil {
		return err
	}
	m.bridge.WriteAll(m.handle, src)
	return nil
}
