package dataset

import (
	"fmt"
	"math"
)

// DType is the element type of a dataset.
type DType int

// Supported element types.
const (
	Invalid DType = iota
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float32
	Float64
)

// String returns the NumPy-style name of the type.
func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Int8:
		return "int8"
	case Uint16:
		return "uint16"
	case Int16:
		return "int16"
	case Uint32:
		return "uint32"
	case Int32:
		return "int32"
	case Uint64:
		return "uint64"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "invalid"
	}
}

// Size returns the element size in bytes.
func (d DType) Size() int {
	switch d {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64:
		return 8
	default:
		return 0
	}
}

// ParseDType parses a NumPy-style type name such as "uint8" or "float32".
func ParseDType(name string) (DType, error) {
	for d := Uint8; d <= Float64; d++ {
		if d.String() == name {
			return d, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnsupportedDType, name)
}

// cast narrows v to the value range of d, truncating toward zero for integer
// types. Values outside the integer range saturate at the bounds, and NaN maps
// to zero.
func (d DType) cast(v float64) float64 {
	if d == Float64 {
		return v
	}
	if d == Float32 {
		return float64(float32(v))
	}
	if math.IsNaN(v) {
		return 0
	}
	lo, hi := d.bounds()
	return math.Trunc(min(max(v, lo), hi))
}

func (d DType) bounds() (float64, float64) {
	switch d {
	case Uint8:
		return 0, math.MaxUint8
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Uint16:
		return 0, math.MaxUint16
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Uint32:
		return 0, math.MaxUint32
	case Int32:
		return math.MinInt32, math.MaxInt32
	case Uint64:
		return 0, math.MaxUint64
	case Int64:
		return math.MinInt64, math.MaxInt64
	default:
		return math.Inf(-1), math.Inf(1)
	}
}
