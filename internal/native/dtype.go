// Package native defines the boundary between matrix values and the engines that own
// their storage: opaque handles, the typed bridge surface, the process-wide library
// loader and the shared logger.
package native

// Element is a constraint for supported matrix element types.
//
// Mapping from the engine's primitive types:
//   - byte   -> int8
//   - short  -> int16
//   - int    -> int32
//   - long   -> int64
//   - float  -> float32
//   - double -> float64
//   - char   -> uint16
type Element interface {
	int8 | int16 | int32 | int64 | float32 | float64 | uint16
}

// ElementType represents runtime type information for matrix elements.
type ElementType int

// Supported element types.
const (
	Byte ElementType = iota
	Short
	Int
	Long
	Float
	Double
	Char
)

// Size returns the byte size of the element type.
func (et ElementType) Size() int {
	switch et {
	case Byte:
		return 1
	case Short, Char:
		return 2
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		panic("unknown element type")
	}
}

// String returns a human-readable name for the element type.
func (et ElementType) String() string {
	switch et {
	case Byte:
		return "byte"
	case Short:
		return "short"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Char:
		return "char"
	default:
		return "unknown"
	}
}

// IsFloat reports whether division by zero is defined for the element type.
func (et ElementType) IsFloat() bool {
	return et == Float || et == Double
}

// TypeOf returns the ElementType for T.
func TypeOf[T Element]() ElementType {
	var dummy T
	switch any(dummy).(type) {
	case int8:
		return Byte
	case int16:
		return Short
	case int32:
		return Int
	case int64:
		return Long
	case float32:
		return Float
	case float64:
		return Double
	case uint16:
		return Char
	default:
		panic("unsupported element type")
	}
}
