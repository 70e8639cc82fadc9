package native

import "fmt"

// Handle is an opaque reference to engine-owned storage.
// Its value is meaningful only to the engine that produced it.
type Handle uintptr

// Null is the distinguished handle that refers to no storage.
const Null Handle = 0

// IsNull reports whether h is the null sentinel.
func (h Handle) IsNull() bool {
	return h == Null
}

// String formats the handle as a hexadecimal token.
func (h Handle) String() string {
	if h == Null {
		return "null"
	}
	return fmt.Sprintf("0x%x", uintptr(h))
}
