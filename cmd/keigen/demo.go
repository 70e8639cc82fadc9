package main

import (
	"context"
	"fmt"

	"github.com/born-ml/keigen/backend/cpu"
	"github.com/born-ml/keigen/backend/wasm"
	"github.com/born-ml/keigen/matrix"
)

type (
	bridge = matrix.Bridge[float64]
	mat    = matrix.Matrix[float64, bridge]
)

type statsReporter interface {
	Stats() matrix.Stats
}

// openEngine returns the named float64 engine and a function releasing it.
func openEngine(ctx context.Context, name string) (bridge, func() error, error) {
	switch name {
	case "cpu":
		return cpu.New[float64](), func() error { return nil }, nil
	case "wasm":
		e, err := wasm.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("start wasm engine: %w", err)
		}
		return wasm.NewBackend[float64](e), func() error { return e.Close(ctx) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine %q (want cpu or wasm)", name)
	}
}

func runDemo(engineName string, r *renderer) (err error) {
	ctx := context.Background()

	b, closeEngine, err := openEngine(ctx, engineName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeEngine(); err == nil {
			err = cerr
		}
	}()

	err = matrix.Scoped(func(s *matrix.Scope) error {
		return demoSteps(s, b, r)
	})
	if err != nil {
		return err
	}

	if sr, ok := b.(statsReporter); ok {
		st := sr.Stats()
		r.stats(b.Name(), st.Live, st.Allocs, st.Frees, st.PeakBytes)
	}
	return nil
}

func show(r *renderer, title string, m *mat) error {
	values, err := m.GetArray(nil)
	if err != nil {
		return err
	}
	r.step(title, m.Rows(), m.Cols(), values)
	return nil
}

func demoSteps(s *matrix.Scope, b bridge, r *renderer) error {
	m, err := matrix.New(3, 3, 2.0, b)
	if err != nil {
		return err
	}
	s.Add(m)
	if err := show(r, "fill", m); err != nil {
		return err
	}

	// Indices are zero-based, so (3, 3) is outside a 3x3 matrix.
	if _, err := m.Get(3, 3); err != nil {
		r.failure("get(3, 3)", err)
	}
	v, err := m.Get(2, 2)
	if err != nil {
		return err
	}
	r.value("get(2, 2)", v)

	a, err := matrix.FromData(2, 3, []float64{1, 2, 3, 4, 5, 6}, b)
	if err != nil {
		return err
	}
	s.Add(a)
	if err := show(r, "a", a); err != nil {
		return err
	}

	// Column-major source, padded to rows*outer + inner.
	c, err := matrix.FromStrided(3, 2, []float64{7, 9, 11, 8, 10, 12, 0, 0, 0, 0}, 3, 1, b)
	if err != nil {
		return err
	}
	s.Add(c)
	if err := show(r, "c", c); err != nil {
		return err
	}

	p, err := a.Times(c)
	if _, err := matrix.Track(s, p, err); err != nil {
		return err
	}
	if err := show(r, "a * c", p); err != nil {
		return err
	}

	if err := a.TimesAssign(c); err != nil {
		return err
	}
	if err := show(r, "a *= c", a); err != nil {
		return err
	}

	if err := a.PlusAssign(p); err != nil {
		return err
	}
	if err := a.DivScalarAssign(2); err != nil {
		return err
	}
	if err := show(r, "(a + a * c) / 2", a); err != nil {
		return err
	}

	if err := c.TransposeInPlace(); err != nil {
		return err
	}
	if err := show(r, "transpose(c)", c); err != nil {
		return err
	}

	if _, err := a.Plus(c); err != nil {
		r.failure("a + transpose(c)", err)
	}
	return nil
}
