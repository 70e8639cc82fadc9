package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type loadHook struct {
	name string
	fn   func() error
}

var (
	hooksMu sync.Mutex
	hooks   []loadHook

	loadOnce sync.Once
	loaded   atomic.Bool
	loadErr  error
)

// Register queues a native library loader to run on the first call to Load.
// It is meant to be called from package init functions. Registering after Load
// has run panics.
func Register(name string, fn func() error) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if loaded.Load() {
		panic(fmt.Sprintf("native: Register(%q) called after Load", name))
	}
	hooks = append(hooks, loadHook{name: name, fn: fn})
}

// Load runs every registered loader exactly once per process, regardless of how many
// goroutines call it concurrently. Subsequent calls return the first result.
func Load() error {
	loadOnce.Do(func() {
		hooksMu.Lock()
		pending := append([]loadHook(nil), hooks...)
		loaded.Store(true)
		hooksMu.Unlock()

		for _, h := range pending {
			if err := h.fn(); err != nil {
				loadErr = fmt.Errorf("native: load %s: %w", h.name, err)
				Logger().Error("native library load failed", zap.String("library", h.name), zap.Error(err))
				return
			}
			Logger().Info("native library loaded", zap.String("library", h.name))
		}
	})
	return loadErr
}

// Loaded reports whether Load has run.
func Loaded() bool {
	return loaded.Load()
}
