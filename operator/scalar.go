package operator

import "math/cmplx"

// Scalar is the state element type of a KPM computation: real for
// time-reversal-symmetric Hamiltonians, complex when a gauge field or
// complex hoppings are present.
type Scalar interface {
	float64 | complex128
}

// IsComplex reports whether T is the complex state type.
func IsComplex[T Scalar]() bool {
	var zero T
	_, ok := any(zero).(complex128)
	return ok
}

// FromComplex converts a complex amplitude to T, taking the real part
// for the real state type. Model validation guarantees that amplitudes
// feeding a real computation carry no imaginary part.
func FromComplex[T Scalar](c complex128) T {
	var zero T
	if _, ok := any(zero).(float64); ok {
		return any(real(c)).(T)
	}
	return any(c).(T)
}

// FromFloat converts a real coefficient to T. Spelled out because Go
// permits no non-constant float64→complex128 conversion inside a type
// parameter's type set.
func FromFloat[T Scalar](f float64) T {
	var zero T
	if _, ok := any(zero).(float64); ok {
		return any(f).(T)
	}
	return any(complex(f, 0)).(T)
}

// Conj returns the complex conjugate of v; the identity for float64.
func Conj[T Scalar](v T) T {
	if c, ok := any(v).(complex128); ok {
		return any(cmplx.Conj(c)).(T)
	}
	return v
}

// Peierls returns the unit-modulus phase factor e^{iφ}; identically 1
// for the real state type (a magnetic field requires complex state).
func Peierls[T Scalar](phase float64) T {
	var zero T
	if _, ok := any(zero).(float64); ok {
		return any(1.0).(T)
	}
	return any(cmplx.Exp(complex(0, phase))).(T)
}

// AbsSq returns |v|².
func AbsSq[T Scalar](v T) float64 {
	switch x := any(v).(type) {
	case float64:
		return x * x
	default:
		c := x.(complex128)
		return real(c)*real(c) + imag(c)*imag(c)
	}
}
