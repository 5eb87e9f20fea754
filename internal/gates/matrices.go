// Package gates holds host-side definitions of the standard gate matrices
// and a per-device cache of their uploaded copies.
package gates

import (
	"math"
	"math/cmplx"
)

var invSqrt2 = complex(1/math.Sqrt2, 0)

// Identity returns the 2x2 identity matrix.
func Identity() []complex128 { return []complex128{1, 0, 0, 1} }

// PauliX returns the Pauli-X matrix.
func PauliX() []complex128 { return []complex128{0, 1, 1, 0} }

// PauliY returns the Pauli-Y matrix.
func PauliY() []complex128 { return []complex128{0, -1i, 1i, 0} }

// PauliZ returns the Pauli-Z matrix.
func PauliZ() []complex128 { return []complex128{1, 0, 0, -1} }

// Hadamard returns the Hadamard matrix.
func Hadamard() []complex128 {
	return []complex128{invSqrt2, invSqrt2, invSqrt2, -invSqrt2}
}

// SGate returns the phase gate S.
func SGate() []complex128 { return []complex128{1, 0, 0, 1i} }

// TGate returns the T gate.
func TGate() []complex128 {
	return []complex128{1, 0, 0, cmplx.Exp(complex(0, math.Pi/4))}
}

// SWAP returns the two-qubit SWAP matrix.
func SWAP() []complex128 {
	return []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
}

// P11 returns the |1><1| projector, the generator of phase-shift gates.
func P11() []complex128 { return []complex128{0, 0, 0, 1} }

// RX returns the single-qubit rotation exp(-i*theta/2 * X).
func RX(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return []complex128{c, js, js, c}
}

// RY returns the single-qubit rotation exp(-i*theta/2 * Y).
func RY(theta float64) []complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return []complex128{c, -s, s, c}
}

// RZ returns the single-qubit rotation exp(-i*theta/2 * Z).
func RZ(theta float64) []complex128 {
	e := cmplx.Exp(complex(0, theta/2))
	return []complex128{cmplx.Conj(e), 0, 0, e}
}

// PhaseShift returns diag(1, exp(i*theta)).
func PhaseShift(theta float64) []complex128 {
	return []complex128{1, 0, 0, cmplx.Exp(complex(0, theta))}
}
