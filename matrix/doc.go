// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides dense two-dimensional matrices whose element storage lives
// inside an external linear-algebra engine.
//
// # Overview
//
// A Matrix only holds its shape and an opaque handle. Every operation checks shapes,
// indices and liveness in Go and then crosses into the engine, which performs the
// arithmetic on storage the Go heap never sees. Engines are provided by:
//   - backend/cpu: Go-heap storage behind a handle table
//   - backend/wasm: WebAssembly linear memory hosted by wazero
//   - backend/webgpu: GPU storage buffers (float32, Windows)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/keigen/backend/cpu"
//	    "github.com/born-ml/keigen/matrix"
//	)
//
//	func main() {
//	    engine := cpu.New[float64]()
//
//	    a, _ := matrix.FromData(2, 2, []float64{1, 2, 3, 4}, engine)
//	    defer a.Dispose()
//	    b, _ := matrix.New(2, 2, 1.0, engine)
//	    defer b.Dispose()
//
//	    c, err := a.Times(b)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer c.Dispose()
//	}
//
// # Supported Element Types
//
//   - int8, int16, int32, int64
//   - float32, float64
//   - uint16 (UTF-16 code units)
//
// Integer arithmetic wraps on overflow. Division truncates toward zero.
//
// # Memory Management
//
// Engine storage is not garbage collected. Every matrix must be released with
// Dispose, which is idempotent. A Scope collects matrices and disposes of them in
// reverse order when closed:
//
//	err := matrix.Scoped(func(s *matrix.Scope) error {
//	    a, err := matrix.Zeros[float32](3, 3, engine)
//	    if err != nil {
//	        return err
//	    }
//	    s.Add(a)
//
//	    sum, err := a.Plus(a)
//	    if _, err := matrix.Track(s, sum, err); err != nil {
//	        return err
//	    }
//	    return nil
//	})
//
// # Errors
//
// Every failure is reported as an error that matches one of the Err sentinels with
// errors.Is. Shape failures carry a *ShapeError, index failures an *IndexError and
// buffer failures a *BufferError, all reachable through errors.As.
package matrix
