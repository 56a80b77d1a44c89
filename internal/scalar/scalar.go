// Package scalar defines the value and index types matrices are instantiated
// over, and the few arithmetic helpers kernels need to stay generic.
package scalar

import "unsafe"

// Value is a constraint for matrix entry types.
// It uses Go generics so value types are fixed at compile time.
type Value interface {
	float32 | float64 | complex64 | complex128
}

// Index is a constraint for row pointer and column index types.
type Index interface {
	int32 | int64
}

// Zero returns the additive identity of V.
func Zero[V Value]() V {
	var zero V
	return zero
}

// One returns the multiplicative identity of V.
func One[V Value]() V {
	return V(1)
}

// IsZero reports whether v equals the additive identity.
func IsZero[V Value](v V) bool {
	return v == Zero[V]()
}

// Conj returns the complex conjugate of v. Real values are returned unchanged.
func Conj[V Value](v V) V {
	switch x := any(v).(type) {
	case complex64:
		return any(complex(real(x), -imag(x))).(V)
	case complex128:
		return any(complex(real(x), -imag(x))).(V)
	default:
		return v
	}
}

// IsComplex reports whether V is a complex type.
func IsComplex[V Value]() bool {
	switch any(Zero[V]()).(type) {
	case complex64, complex128:
		return true
	default:
		return false
	}
}

// SizeOf returns the byte size of one element of T.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// TypeName returns a human-readable name for T, used in operation names and
// error messages.
func TypeName[T any]() string {
	switch any(*new(T)).(type) {
	case float32:
		return "float32"
	case float64:
		return "float64"
	case complex64:
		return "complex64"
	case complex128:
		return "complex128"
	case int32:
		return "int32"
	case int64:
		return "int64"
	default:
		return "unknown"
	}
}

// Element is any type an array of matrix storage may hold.
type Element interface {
	Value | Index
}
