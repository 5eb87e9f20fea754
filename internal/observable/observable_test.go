package observable

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/23skdu/longbow-adjoint/internal/statevec"
)

func arbitraryState(t *testing.T, numQubits int) statevec.Vector {
	t.Helper()
	n := 1 << numQubits
	data := make([]complex128, n)
	var norm float64
	for i := 0; i < n; i++ {
		data[i] = complex(float64(i+1), float64(n-i))
		norm += real(data[i] * cmplx.Conj(data[i]))
	}
	s := complex(1/math.Sqrt(norm), 0)
	for i := range data {
		data[i] *= s
	}
	v, err := statevec.NewEmulated(1).NewVector(data, statevec.DevTag{})
	require.NoError(t, err)
	return v
}

func TestNamedObservable(t *testing.T) {
	obs := NewNamed("PauliZ", []int{1})
	require.Equal(t, []int{1}, obs.Wires())
	require.Equal(t, "PauliZ[1]", obs.Name())

	v := arbitraryState(t, 2)
	before := v.Data()
	require.NoError(t, obs.ApplyInPlace(v))
	after := v.Data()
	for i := range after {
		want := before[i]
		if i&2 != 0 {
			want = -want
		}
		require.Equal(t, want, after[i])
	}
}

func TestNamedEquality(t *testing.T) {
	a := NewNamed("PauliX", []int{0})
	b := NewNamed("PauliX", []int{0})
	c := NewNamed("PauliX", []int{1})
	d := NewNamed("PauliY", []int{0})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(d))
	herm, err := NewHermitian([]complex128{1, 0, 0, -1}, []int{0})
	require.NoError(t, err)
	require.False(t, a.Equal(herm))
}

func TestHermitianValidation(t *testing.T) {
	_, err := NewHermitian([]complex128{1, 0, 0}, []int{0})
	require.Error(t, err)

	_, err = NewHermitian([]complex128{1, 1i, 1i, 2}, []int{0})
	require.ErrorIs(t, err, ErrNotHermitian)

	obs, err := NewHermitian([]complex128{1, 1i, -1i, 2}, []int{0})
	require.NoError(t, err)
	require.Equal(t, []int{0}, obs.Wires())
	require.Equal(t, "Hermitian", obs.Name())
}

func TestHermitianMatchesNamed(t *testing.T) {
	z, err := NewHermitian([]complex128{1, 0, 0, -1}, []int{1})
	require.NoError(t, err)

	byMatrix := arbitraryState(t, 2)
	byName := arbitraryState(t, 2)
	require.NoError(t, z.ApplyInPlace(byMatrix))
	require.NoError(t, NewNamed("PauliZ", []int{1}).ApplyInPlace(byName))
	require.Equal(t, byName.Data(), byMatrix.Data())
}

func TestTensorProdDisjointWires(t *testing.T) {
	_, err := NewTensorProd(NewNamed("PauliZ", []int{0}), NewNamed("PauliX", []int{0}))
	require.ErrorIs(t, err, ErrWireOverlap)

	_, err = NewTensorProd(
		NewNamed("PauliZ", []int{2}),
		NewNamed("PauliX", []int{0}),
		NewNamed("PauliZ", []int{2, 3}),
	)
	require.ErrorIs(t, err, ErrWireOverlap)

	tp, err := NewTensorProd(NewNamed("PauliZ", []int{2}), NewNamed("PauliX", []int{0}))
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, tp.Wires())
	require.Equal(t, "PauliZ[2] @ PauliX[0]", tp.Name())
}

func TestHamiltonianLengthMismatch(t *testing.T) {
	_, err := NewHamiltonian([]float64{1, 2}, []Observable{NewNamed("PauliZ", []int{0})})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestHamiltonianLinearity(t *testing.T) {
	c1, c2 := 0.3, -1.7
	o1 := NewNamed("PauliZ", []int{0})
	o2 := NewNamed("PauliX", []int{1})
	h, err := NewHamiltonian([]float64{c1, c2}, []Observable{o1, o2})
	require.NoError(t, err)

	input := arbitraryState(t, 2)

	term1, err := input.Clone()
	require.NoError(t, err)
	require.NoError(t, o1.ApplyInPlace(term1))
	term2, err := input.Clone()
	require.NoError(t, err)
	require.NoError(t, o2.ApplyInPlace(term2))

	require.NoError(t, h.ApplyInPlace(input))
	got := input.Data()
	d1, d2 := term1.Data(), term2.Data()
	for i := range got {
		want := complex(c1, 0)*d1[i] + complex(c2, 0)*d2[i]
		require.InDelta(t, real(want), real(got[i]), 1e-12)
		require.InDelta(t, imag(want), imag(got[i]), 1e-12)
	}
}

func TestHamiltonianWiresAndName(t *testing.T) {
	h, err := NewHamiltonian([]float64{0.5, 0.5}, []Observable{
		NewNamed("PauliZ", []int{3}),
		NewNamed("PauliX", []int{1}),
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, h.Wires())
	require.Contains(t, h.Name(), "Hamiltonian")
	require.Contains(t, h.Name(), "PauliZ[3]")
}

func TestCompositeEquality(t *testing.T) {
	mk := func() Observable {
		tp, err := NewTensorProd(NewNamed("PauliZ", []int{0}), NewNamed("PauliZ", []int{1}))
		require.NoError(t, err)
		h, err := NewHamiltonian([]float64{1.5}, []Observable{tp})
		require.NoError(t, err)
		return h
	}
	require.True(t, mk().Equal(mk()))

	other, err := NewHamiltonian([]float64{1.6}, []Observable{NewNamed("PauliZ", []int{0})})
	require.NoError(t, err)
	require.False(t, mk().Equal(other))
}
