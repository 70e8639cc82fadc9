package matrix

import (
	"sync"

	"github.com/born-ml/keigen/internal/native"
)

// Disposer is anything that releases engine storage.
type Disposer interface {
	Dispose()
}

// Scope disposes every tracked value when closed, in reverse order of tracking.
//
// Example:
//
//	err := matrix.Scoped(func(s *matrix.Scope) error {
//		a, err := matrix.New(2, 2, float32(1), b)
//		if err != nil {
//			return err
//		}
//		s.Add(a)
//		sum, err := a.Plus(a)
//		if _, err := matrix.Track(s, sum, err); err != nil {
//			return err
//		}
//		...
//	})
type Scope struct {
	mu     sync.Mutex
	items  []Disposer
	closed bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add tracks d. Adding to a closed scope disposes d immediately.
func (s *Scope) Add(d Disposer) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		d.Dispose()
		return
	}
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Detach stops tracking d so it outlives the scope. It reports whether d was tracked.
func (s *Scope) Detach(d Disposer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i] == d {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Close disposes tracked values, last tracked first. Close is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.closed = true
	s.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		items[i].Dispose()
	}
}

// Scoped runs fn with a fresh scope and closes it on every exit path, including panics.
func Scoped(fn func(*Scope) error) error {
	s := NewScope()
	defer s.Close()
	return fn(s)
}

// Track adds m to s when err is nil and passes both through.
func Track[T native.Element, B native.Bridge[T]](s *Scope, m *Matrix[T, B], err error) (*Matrix[T, B], error) {
	if err == nil && m != nil {
		s.Add(m)
	}
	return m, err
}
