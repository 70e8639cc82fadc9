package matrix

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/keigen/internal/backend/cpu"
	"github.com/born-ml/keigen/internal/native"
)

func TestSwap_Logged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	native.SetLogger(zap.New(core))
	t.Cleanup(func() { native.SetLogger(nil) })

	b := cpu.New[float32]()
	a, err := New(2, 4, float32(1), b)
	require.NoError(t, err)
	defer a.Dispose()
	c, err := New(4, 3, float32(1), b)
	require.NoError(t, err)
	defer c.Dispose()

	old := a.Handle()
	require.NoError(t, a.TimesAssign(c))
	require.NoError(t, a.TransposeInPlace())

	swaps := logs.FilterMessage("matrix handle swapped").All()
	require.Len(t, swaps, 2)
	assert.Equal(t, "TimesAssign", swaps[0].ContextMap()["op"])
	assert.Equal(t, old.String(), swaps[0].ContextMap()["old"])
	assert.Equal(t, "[2, 3]", swaps[0].ContextMap()["shape"])
	assert.Equal(t, "TransposeInPlace", swaps[1].ContextMap()["op"])
	assert.Equal(t, "[3, 2]", swaps[1].ContextMap()["shape"])
}

func TestTimesAssign_Chain(t *testing.T) {
	b := cpu.New[int64]()
	a, err := FromData(1, 2, []int64{1, 2, 0}, b)
	require.NoError(t, err)
	defer a.Dispose()
	c, err := FromData(2, 3, []int64{1, 0, 1, 0, 1, 1}, b)
	require.NoError(t, err)
	defer c.Dispose()
	d, err := FromData(3, 1, []int64{1, 1, 1, 0}, b)
	require.NoError(t, err)
	defer d.Dispose()

	require.NoError(t, a.TimesAssign(c)) // 1x3: [1 2 3]
	require.NoError(t, a.TimesAssign(d)) // 1x1: [6]
	assert.Equal(t, Shape{Rows: 1, Cols: 1}, a.Shape())

	v, err := a.Get(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	st := b.Stats()
	assert.Equal(t, 3, st.Live)
	assert.Equal(t, uint64(5), st.Allocs)
	assert.Equal(t, uint64(2), st.Frees)
}

func TestMatrices_IndependentGoroutines(t *testing.T) {
	b := cpu.New[float64]()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := Scoped(func(s *Scope) error {
				a, err := New(8, 8, float64(g), b)
				if _, err := Track(s, a, err); err != nil {
					return err
				}
				for i := 0; i < 10; i++ {
					if err := a.PlusAssign(a); err != nil {
						return err
					}
					if err := a.TransposeInPlace(); err != nil {
						return err
					}
				}
				v, err := a.Get(7, 7)
				if err != nil {
					return err
				}
				assert.Equal(t, float64(g)*1024, v)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st := b.Stats()
	assert.Zero(t, st.Live)
	assert.Equal(t, st.Allocs, st.Frees)
}
