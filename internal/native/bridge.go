package native

// Bridge is the operation surface of an external linear-algebra engine for one
// element type.
//
// Storage is row-major. No method validates shapes, bounds or handle liveness: callers
// must guarantee every precondition before crossing the bridge. Calling a method with
// incompatible handles is undefined behavior.
//
// Methods that allocate return an error only when the engine itself cannot satisfy the
// allocation. All other methods are infallible from the caller's view.
//
// Implementations:
//   - backend/cpu: Go heap storage behind a handle table
//   - backend/wasm: WebAssembly linear memory via wazero
//   - backend/webgpu: GPU storage buffers (float32, windows)
type Bridge[T Element] interface {
	// Construction.
	AllocateFill(rows, cols int, fill T) (Handle, error)
	// AllocateFromBuffer copies element (r, c) from buf[r*innerStride + c*outerStride].
	AllocateFromBuffer(rows, cols int, buf []T, outerStride, innerStride int) (Handle, error)

	// Elementwise arithmetic. The InPlace forms mutate a and leave b untouched.
	Add(a, b Handle) (Handle, error)
	AddInPlace(a, b Handle)
	Sub(a, b Handle) (Handle, error)
	SubInPlace(a, b Handle)

	// Products.
	Mul(a, b Handle) (Handle, error) // rows(a) x cols(b)
	MulInPlaceSquare(a, b Handle)    // shapes equal on both axes; a may equal b
	MulInto(a, b, dst Handle)        // dst is rows(a) x cols(b) and aliases neither operand

	// Scalar arithmetic.
	MulScalar(h Handle, s T) (Handle, error)
	MulScalarInPlace(h Handle, s T)
	DivScalar(h Handle, s T) (Handle, error)
	DivScalarInPlace(h Handle, s T)

	// Transpose always allocates.
	Transpose(h Handle) (Handle, error)

	// Element access.
	Get(h Handle, row, col int) T
	Set(h Handle, row, col int, v T)
	ReadAll(h Handle, dst []T)  // copies len(dst) leading row-major elements
	WriteAll(h Handle, src []T) // overwrites len(src) leading row-major elements

	// Free releases storage. Freeing Null or an unknown handle is a programming error.
	Free(h Handle)

	// Name identifies the engine in diagnostics.
	Name() string
}

// Stats is a snapshot of an engine's storage accounting.
type Stats struct {
	Live       int    // handles currently allocated
	Allocs     uint64 // total allocations
	Frees      uint64 // total frees
	BytesInUse uint64 // element bytes held by live handles
	PeakBytes  uint64 // high-water mark of BytesInUse
}

// Owner is implemented by bridges that are views over a shared engine. Bridges
// reporting the same Owner share one handle space.
type Owner interface {
	Owner() any
}

// StatsReporter is implemented by engines that track storage accounting.
type StatsReporter interface {
	Stats() Stats
}
