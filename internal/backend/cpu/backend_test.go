package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/keigen/internal/native"
)

func readAll[T native.Element](b *Backend[T], h native.Handle, n int) []T {
	out := make([]T, n)
	b.ReadAll(h, out)
	return out
}

func TestBackend_New(t *testing.T) {
	b := New[float32]()
	require.NotNil(t, b)
	assert.Equal(t, "cpu", b.Name())
	assert.Equal(t, native.Stats{}, b.Stats())
}

func TestBackend_AllocateFill(t *testing.T) {
	b := New[int32]()
	h, err := b.AllocateFill(2, 3, 7)
	require.NoError(t, err)
	assert.False(t, h.IsNull())
	assert.Equal(t, []int32{7, 7, 7, 7, 7, 7}, readAll(b, h, 6))

	st := b.Stats()
	assert.Equal(t, 1, st.Live)
	assert.Equal(t, uint64(24), st.BytesInUse)
}

func TestBackend_AllocateFromBuffer(t *testing.T) {
	b := New[float64]()
	buf := []float64{0, 1, 2, 3, 4, 5}

	rowMajor, err := b.AllocateFromBuffer(2, 3, buf, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Get(rowMajor, 0, 1))
	assert.Equal(t, 3.0, b.Get(rowMajor, 1, 0))

	colMajor, err := b.AllocateFromBuffer(2, 3, buf, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 1, 3, 5}, readAll(b, colMajor, 6))
}

func TestBackend_Elementwise(t *testing.T) {
	b := New[int16]()
	x, _ := b.AllocateFill(2, 2, 5)
	y, _ := b.AllocateFill(2, 2, 2)

	sum, err := b.Add(x, y)
	require.NoError(t, err)
	assert.Equal(t, []int16{7, 7, 7, 7}, readAll(b, sum, 4))

	diff, err := b.Sub(x, y)
	require.NoError(t, err)
	assert.Equal(t, []int16{3, 3, 3, 3}, readAll(b, diff, 4))

	b.AddInPlace(x, y)
	assert.Equal(t, []int16{7, 7, 7, 7}, readAll(b, x, 4))
	b.SubInPlace(x, x)
	assert.Equal(t, []int16{0, 0, 0, 0}, readAll(b, x, 4))
	assert.Equal(t, []int16{2, 2, 2, 2}, readAll(b, y, 4), "right operand untouched")
}

func TestBackend_Scalar(t *testing.T) {
	b := New[float32]()
	x, _ := b.AllocateFill(1, 3, 3)

	m, err := b.MulScalar(x, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{6, 6, 6}, readAll(b, m, 3))

	d, err := b.DivScalar(x, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 1.5, 1.5}, readAll(b, d, 3))

	b.MulScalarInPlace(x, 4)
	b.DivScalarInPlace(x, 3)
	assert.Equal(t, []float32{4, 4, 4}, readAll(b, x, 3))
}

func TestBackend_Mul(t *testing.T) {
	b := New[float32]()
	x, _ := b.AllocateFill(2, 4, 1)
	y, _ := b.AllocateFill(4, 3, 2)

	p, err := b.Mul(x, y)
	require.NoError(t, err)
	got := readAll(b, p, 6)
	for _, v := range got {
		assert.Equal(t, float32(8), v)
	}
	assert.Equal(t, float32(8), b.Get(p, 1, 2))
}

func TestBackend_MulInPlaceSquare_SelfAlias(t *testing.T) {
	b := New[int64]()
	x, _ := b.AllocateFromBuffer(2, 2, []int64{0, 1, 2, 3}, 1, 2)

	b.MulInPlaceSquare(x, x)
	assert.Equal(t, []int64{2, 3, 6, 11}, readAll(b, x, 4))
	assert.Equal(t, 1, b.Stats().Live)
}

func TestBackend_MulInto(t *testing.T) {
	b := New[float64]()
	x, _ := b.AllocateFill(2, 4, 1)
	y, _ := b.AllocateFill(4, 2, 2)
	dst, _ := b.AllocateFill(2, 2, -1)

	b.MulInto(x, y, dst)
	assert.Equal(t, []float64{8, 8, 8, 8}, readAll(b, dst, 4))
}

func TestBackend_Transpose(t *testing.T) {
	b := New[uint16]()
	x, _ := b.AllocateFromBuffer(2, 3, []uint16{0, 1, 2, 3, 4, 5}, 1, 3)

	tr, err := b.Transpose(x)
	require.NoError(t, err)
	assert.NotEqual(t, x, tr)
	assert.Equal(t, []uint16{0, 3, 1, 4, 2, 5}, readAll(b, tr, 6))
	assert.Equal(t, uint16(5), b.Get(tr, 2, 1))
}

func TestBackend_GetSetPartial(t *testing.T) {
	b := New[int8]()
	x, _ := b.AllocateFill(2, 2, 0)

	b.Set(x, 1, 0, 9)
	assert.Equal(t, int8(9), b.Get(x, 1, 0))

	b.WriteAll(x, []int8{1, 2})
	assert.Equal(t, []int8{1, 2, 9, 0}, readAll(b, x, 4))
	assert.Equal(t, []int8{1, 2, 9}, readAll(b, x, 3))
}

func TestBackend_Free(t *testing.T) {
	b := New[float32]()
	x, _ := b.AllocateFill(4, 4, 1)
	y, _ := b.AllocateFill(2, 2, 1)
	assert.Equal(t, uint64(80), b.Stats().PeakBytes)

	b.Free(x)
	st := b.Stats()
	assert.Equal(t, 1, st.Live)
	assert.Equal(t, uint64(2), st.Allocs)
	assert.Equal(t, uint64(1), st.Frees)
	assert.Equal(t, uint64(16), st.BytesInUse)
	assert.Equal(t, uint64(80), st.PeakBytes)

	assert.Panics(t, func() { b.Free(x) }, "double free")
	assert.Panics(t, func() { b.Get(x, 0, 0) }, "use after free")
	assert.Panics(t, func() { b.Free(native.Null) })

	z, _ := b.AllocateFill(4, 4, 1)
	assert.NotEqual(t, x, z, "handles are not reused")
	b.Free(y)
	b.Free(z)
	assert.Equal(t, 0, b.Stats().Live)
}

func TestBackend_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	b := New[float32](WithLogger(zap.New(core)), WithSequential())

	h, _ := b.AllocateFill(1, 1, 0)
	b.Free(h)

	assert.Equal(t, 1, logs.FilterMessage("alloc").Len())
	assert.Equal(t, 1, logs.FilterMessage("free").Len())
	assert.Equal(t, "float", logs.All()[0].ContextMap()["element"])
}

func BenchmarkBackend_Mul(b *testing.B) {
	be := New[float32]()
	x, _ := be.AllocateFill(128, 128, 1)
	y, _ := be.AllocateFill(128, 128, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, _ := be.Mul(x, y)
		be.Free(h)
	}
}
