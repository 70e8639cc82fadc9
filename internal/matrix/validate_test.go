package matrix

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/keigen/internal/backend/cpu"
	"github.com/born-ml/keigen/internal/backend/wasm"
)

func TestPlus_DimensionMismatch(t *testing.T) {
	b := cpu.New[float64]()
	s := NewScope()
	defer s.Close()

	a, err := New(3, 2, 1.0, b)
	require.NoError(t, err)
	s.Add(a)
	c, err := New(4, 5, 2.0, b)
	require.NoError(t, err)
	s.Add(c)
	before := b.Stats()

	_, err = a.Plus(c)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	var se *ShapeError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "Plus", se.Op)
	assert.Equal(t, Shape{Rows: 3, Cols: 2}, se.Left)
	assert.Equal(t, Shape{Rows: 4, Cols: 5}, se.Right)
	assert.Contains(t, err.Error(), "dimensions must equal (this: [3, 2], other: [4, 5])")

	h := a.Handle()
	assert.ErrorIs(t, a.PlusAssign(c), ErrDimensionMismatch)
	assert.ErrorIs(t, a.MinusAssign(c), ErrDimensionMismatch)
	_, err = a.Minus(c)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	assert.Equal(t, h, a.Handle())
	got, err := a.GetArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, got)
	assert.Equal(t, before, b.Stats(), "validation precedes every engine call")
}

func TestTimes_IncompatibleMultiplication(t *testing.T) {
	b := cpu.New[int32]()
	s := NewScope()
	defer s.Close()

	a, err := New(2, 3, int32(1), b)
	require.NoError(t, err)
	s.Add(a)
	c, err := New(2, 3, int32(1), b)
	require.NoError(t, err)
	s.Add(c)
	before := b.Stats()

	_, err = a.Times(c)
	require.ErrorIs(t, err, ErrIncompatibleMultiplication)
	assert.Contains(t, err.Error(), "cols must equal rows")

	h := a.Handle()
	assert.ErrorIs(t, a.TimesAssign(c), ErrIncompatibleMultiplication)
	assert.Equal(t, h, a.Handle())
	assert.Equal(t, Shape{Rows: 2, Cols: 3}, a.Shape())
	assert.Equal(t, before, b.Stats())
}

func TestMultiplyIntoDst_Validation(t *testing.T) {
	b := cpu.New[float32]()
	s := NewScope()
	defer s.Close()

	a, err := New(2, 2, float32(1), b)
	require.NoError(t, err)
	s.Add(a)
	c, err := New(2, 2, float32(2), b)
	require.NoError(t, err)
	s.Add(c)
	wrong, err := New(2, 3, float32(0), b)
	require.NoError(t, err)
	s.Add(wrong)
	narrow, err := New(3, 2, float32(0), b)
	require.NoError(t, err)
	s.Add(narrow)

	assert.ErrorIs(t, a.MultiplyIntoDst(narrow, wrong), ErrIncompatibleMultiplication)
	assert.ErrorIs(t, a.MultiplyIntoDst(c, wrong), ErrDimensionMismatch)
	assert.ErrorIs(t, a.MultiplyIntoDst(c, a), ErrAliasedOperand)
	assert.ErrorIs(t, a.MultiplyIntoDst(c, c), ErrAliasedOperand)

	got, err := c.GetArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2, 2, 2}, got)
}

func TestIndexOutOfBounds(t *testing.T) {
	b := cpu.New[int16]()
	m, err := New(2, 3, int16(0), b)
	require.NoError(t, err)
	defer m.Dispose()

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 3}, {5, 5}} {
		_, err := m.Get(idx[0], idx[1])
		require.ErrorIs(t, err, ErrIndexOutOfBounds, "get %v", idx)

		var ie *IndexError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, idx[0], ie.Row)
		assert.Equal(t, idx[1], ie.Col)
		assert.Equal(t, Shape{Rows: 2, Cols: 3}, ie.Shape)

		assert.ErrorIs(t, m.Set(idx[0], idx[1], 1), ErrIndexOutOfBounds, "set %v", idx)
	}
}

func TestConstruction_Validation(t *testing.T) {
	b := cpu.New[float64]()

	tests := []struct {
		name         string
		rows, cols   int
		data         []float64
		outer, inner int
		want         error
		required     int
	}{
		{"ZeroRows", 0, 2, make([]float64, 4), 1, 2, ErrInvalidShape, 0},
		{"NegativeCols", 2, -1, make([]float64, 4), 1, 2, ErrInvalidShape, 0},
		{"ShortData", 2, 2, make([]float64, 3), 1, 2, ErrBufferTooSmall, 4},
		{"PaddedRowsOverflow", 2, 2, make([]float64, 4), 1, 4, ErrBufferTooSmall, 6},
		{"ColumnStrideBound", 2, 3, make([]float64, 6), 3, 1, ErrBufferTooSmall, 7},
		{"RowVectorStrideBound", 1, 4, make([]float64, 4), 1, 4, ErrBufferTooSmall, 5},
		{"SquareStrideBound", 2, 2, make([]float64, 5), 2, 2, ErrBufferTooSmall, 6},
		{"LastElementOutOfRange", 1, 3, make([]float64, 5), 3, 1, ErrBufferTooSmall, 7},
		{"ZeroOuter", 2, 2, make([]float64, 4), 0, 2, ErrInvalidStride, 0},
		{"ZeroInner", 2, 2, make([]float64, 4), 1, 0, ErrInvalidStride, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromStrided(tt.rows, tt.cols, tt.data, tt.outer, tt.inner, b)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, m)

			if tt.required > 0 {
				var be *BufferError
				require.True(t, errors.As(err, &be))
				assert.Equal(t, len(tt.data), be.Len)
				assert.Equal(t, tt.required, be.Required)
			}
		})
	}

	_, err := New(0, 0, 1.0, b)
	assert.ErrorIs(t, err, ErrInvalidShape)
	_, err = FromData(2, 2, []float64{1}, b)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	// Row-major vectors need one element past rows*cols.
	_, err = FromData(1, 3, []float64{7, 8, 9}, b)
	var be *BufferError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 4, be.Required)
	_, err = FromData(3, 1, []float64{7, 8, 9}, b)
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 4, be.Required)
	assert.Zero(t, b.Stats().Allocs, "nothing reached the engine")
}

func TestFromStrided_Layouts(t *testing.T) {
	b := cpu.New[int32]()
	s := NewScope()
	defer s.Close()

	padded, err := FromStrided(2, 2, []int32{0, 1, 2, 3, 4, 5}, 1, 4, b)
	require.NoError(t, err)
	s.Add(padded)
	got, _ := padded.GetArray(nil)
	assert.Equal(t, []int32{0, 1, 4, 5}, got)

	colMajor, err := FromStrided(2, 3, []int32{0, 1, 2, 3, 4, 5}, 2, 1, b)
	require.NoError(t, err)
	s.Add(colMajor)
	got, _ = colMajor.GetArray(nil)
	assert.Equal(t, []int32{0, 2, 4, 1, 3, 5}, got)

	defaults, err := FromStrided(1, 3, []int32{7, 8, 9, 0}, 1, 3, b)
	require.NoError(t, err)
	s.Add(defaults)
	got, _ = defaults.GetArray(nil)
	assert.Equal(t, []int32{7, 8, 9}, got)
}

func TestArrayTransfer_Validation(t *testing.T) {
	b := cpu.New[uint16]()
	m, err := New(2, 2, uint16(1), b)
	require.NoError(t, err)
	defer m.Dispose()

	_, err = m.GetArray(make([]uint16, 5))
	require.ErrorIs(t, err, ErrBufferTooSmall)
	var be *BufferError
	require.True(t, errors.As(err, &be))
	assert.True(t, be.Max)
	assert.Equal(t, 5, be.Len)
	assert.Equal(t, 4, be.Required)

	assert.ErrorIs(t, m.SetArray(make([]uint16, 5)), ErrBufferTooSmall)
	got, err := m.GetArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 1, 1, 1}, got)
}

func TestDivScalar_ByZero(t *testing.T) {
	ints := cpu.New[int64]()
	m, err := New(1, 2, int64(4), ints)
	require.NoError(t, err)
	defer m.Dispose()

	_, err = m.DivScalar(0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.ErrorIs(t, m.DivScalarAssign(0), ErrDivisionByZero)
	assert.Equal(t, 1, ints.Stats().Live)

	floats := cpu.New[float64]()
	f, err := New(1, 2, 4.0, floats)
	require.NoError(t, err)
	defer f.Dispose()

	require.NoError(t, f.DivScalarAssign(0))
	v, err := f.Get(0, 1)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))
}

func TestEngineMismatch(t *testing.T) {
	a, err := New(2, 2, float32(1), cpu.New[float32]())
	require.NoError(t, err)
	defer a.Dispose()
	c, err := New(2, 2, float32(1), cpu.New[float32]())
	require.NoError(t, err)
	defer c.Dispose()

	_, err = a.Plus(c)
	assert.ErrorIs(t, err, ErrEngineMismatch)
	_, err = a.Equal(c)
	assert.ErrorIs(t, err, ErrEngineMismatch)
}

// tagged is a value-type bridge that cannot be compared with ==.
type tagged struct {
	*cpu.Backend[float64]
	tags []string
}

func TestSameEngine(t *testing.T) {
	ctx := context.Background()
	e, err := wasm.New(ctx, wasm.WithInitialPages(1))
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()
	other, err := wasm.New(ctx, wasm.WithInitialPages(1))
	require.NoError(t, err)
	defer func() { _ = other.Close(ctx) }()

	shared := cpu.New[float64]()

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"SamePointer", shared, shared, true},
		{"DistinctPointers", cpu.New[float64](), cpu.New[float64](), false},
		{"ViewsOfOneEngine", wasm.NewBackend[float64](e), wasm.NewBackend[float64](e), true},
		{"ViewsOfTwoEngines", wasm.NewBackend[float64](e), wasm.NewBackend[float64](other), false},
		{"OwnerAgainstPlain", wasm.NewBackend[float64](e), shared, false},
		{"Uncomparable", tagged{shared, []string{"a"}}, tagged{shared, nil}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, sameEngine(tt.a, tt.b))
			})
		})
	}
}

func TestSameEngine_Operations(t *testing.T) {
	ctx := context.Background()
	e, err := wasm.New(ctx, wasm.WithInitialPages(1))
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()

	a, err := New(2, 2, 1.0, wasm.NewBackend[float64](e))
	require.NoError(t, err)
	defer a.Dispose()
	c, err := New(2, 2, 2.0, wasm.NewBackend[float64](e))
	require.NoError(t, err)
	defer c.Dispose()

	sum, err := a.Plus(c)
	require.NoError(t, err)
	defer sum.Dispose()
	got, err := sum.GetArray(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 3, 3}, got)

	shared := cpu.New[float64]()
	x, err := New(2, 2, 1.0, tagged{shared, []string{"x"}})
	require.NoError(t, err)
	defer x.Dispose()
	y, err := New(2, 2, 1.0, tagged{shared, []string{"y"}})
	require.NoError(t, err)
	defer y.Dispose()

	assert.NotPanics(t, func() {
		eq, err := x.Equal(y)
		require.NoError(t, err)
		assert.True(t, eq)
	})
}

func TestDispose_AfterEngineClose(t *testing.T) {
	ctx := context.Background()
	e, err := wasm.New(ctx, wasm.WithInitialPages(1))
	require.NoError(t, err)

	m, err := New(2, 2, 1.0, wasm.NewBackend[float64](e))
	require.NoError(t, err)
	require.NoError(t, e.Close(ctx))

	assert.NotPanics(t, m.Dispose)
	assert.True(t, m.Disposed())
	assert.NotPanics(t, m.Dispose, "idempotent")
}

func TestEngineFailure(t *testing.T) {
	ctx := context.Background()
	e, err := wasm.New(ctx, wasm.WithInitialPages(1), wasm.WithMaxPages(1))
	require.NoError(t, err)
	defer func() { _ = e.Close(ctx) }()
	b := wasm.NewBackend[float64](e)

	_, err = New(256, 256, 0.0, b)
	require.ErrorIs(t, err, ErrEngine)
	assert.ErrorIs(t, err, wasm.ErrOutOfMemory)
	assert.Contains(t, err.Error(), "wasm")

	small, err := New(64, 64, 1.0, b) // 32 KiB fits in one page
	require.NoError(t, err)
	defer small.Dispose()

	h := small.Handle()
	_, err = small.TimesScalar(2)
	require.ErrorIs(t, err, ErrEngine)

	other, err := FromData(64, 64, make([]float64, 64*64), b)
	require.ErrorIs(t, err, ErrEngine)
	assert.Nil(t, other)

	assert.ErrorIs(t, small.TransposeInPlace(), ErrEngine)
	assert.Equal(t, h, small.Handle(), "failed swap keeps the old handle")
	assert.Equal(t, Shape{Rows: 64, Cols: 64}, small.Shape())
}
