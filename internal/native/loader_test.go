package native

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// resetLoader restores the loader to its pristine process state.
func resetLoader(t *testing.T) {
	t.Helper()
	reset := func() {
		hooksMu.Lock()
		hooks = nil
		hooksMu.Unlock()
		loadOnce = sync.Once{}
		loaded.Store(false)
		loadErr = nil
	}
	reset()
	t.Cleanup(reset)
}

func TestLoad_RunsHooksOnce(t *testing.T) {
	resetLoader(t)

	var calls atomic.Int32
	Register("engine", func() error {
		calls.Add(1)
		return nil
	})
	require.False(t, Loaded())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Load())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, Loaded())
	require.NoError(t, Load())
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoad_Failure(t *testing.T) {
	resetLoader(t)

	boom := errors.New("missing symbol")
	var second bool
	Register("broken", func() error { return boom })
	Register("after", func() error {
		second = true
		return nil
	})

	err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "native: load broken")
	assert.False(t, second)

	// The failure is sticky.
	assert.ErrorIs(t, Load(), boom)
}

func TestRegister_AfterLoadPanics(t *testing.T) {
	resetLoader(t)

	require.NoError(t, Load())
	assert.Panics(t, func() {
		Register("late", func() error { return nil })
	})
}

func TestLoad_LogsLibraries(t *testing.T) {
	resetLoader(t)

	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Register("engine", func() error { return nil })
	require.NoError(t, Load())

	entries := logs.FilterMessage("native library loaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].ContextMap()["library"])
}

func TestSetLogger_NilRestoresNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, Logger())
}
