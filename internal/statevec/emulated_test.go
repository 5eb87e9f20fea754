package statevec

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestVector(t *testing.T, numQubits int) Vector {
	t.Helper()
	b := NewEmulated(1)
	data := make([]complex128, 1<<numQubits)
	data[0] = 1
	v, err := b.NewVector(data, DevTag{})
	require.NoError(t, err)
	return v
}

// arbitraryState returns a fixed normalized state with all amplitudes
// distinct, so kernel index bugs cannot cancel out.
func arbitraryState(t *testing.T, numQubits int) Vector {
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
	b := NewEmulated(1)
	v, err := b.NewVector(data, DevTag{})
	require.NoError(t, err)
	return v
}

func requireStatesEqual(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		require.InDelta(t, real(want[i]), real(got[i]), tol, "amplitude %d (real)", i)
		require.InDelta(t, imag(want[i]), imag(got[i]), tol, "amplitude %d (imag)", i)
	}
}

func TestHadamardOnZero(t *testing.T) {
	v := newTestVector(t, 1)
	require.NoError(t, v.ApplyOperation("Hadamard", []int{0}, false, nil))

	h := complex(1/math.Sqrt2, 0)
	requireStatesEqual(t, []complex128{h, h}, v.Data(), 1e-12)
}

func TestRXAnalytic(t *testing.T) {
	theta := math.Pi / 3
	v := newTestVector(t, 1)
	require.NoError(t, v.ApplyOperation("RX", []int{0}, false, []float64{theta}))

	want := []complex128{
		complex(math.Cos(theta/2), 0),
		complex(0, -math.Sin(theta/2)),
	}
	requireStatesEqual(t, want, v.Data(), 1e-12)
}

func TestCNOTEntangles(t *testing.T) {
	v := newTestVector(t, 2)
	require.NoError(t, v.ApplyOperation("Hadamard", []int{0}, false, nil))
	require.NoError(t, v.ApplyOperation("CNOT", []int{0, 1}, false, nil))

	h := complex(1/math.Sqrt2, 0)
	requireStatesEqual(t, []complex128{h, 0, 0, h}, v.Data(), 1e-12)
}

func TestAdjointUndoesEveryGate(t *testing.T) {
	cases := []struct {
		name   string
		wires  []int
		params []float64
	}{
		{"Identity", []int{0}, nil},
		{"PauliX", []int{0}, nil},
		{"PauliY", []int{1}, nil},
		{"PauliZ", []int{2}, nil},
		{"Hadamard", []int{1}, nil},
		{"S", []int{0}, nil},
		{"T", []int{2}, nil},
		{"CNOT", []int{0, 1}, nil},
		{"CZ", []int{1, 2}, nil},
		{"SWAP", []int{0, 2}, nil},
		{"Toffoli", []int{0, 1, 2}, nil},
		{"CSWAP", []int{1, 0, 2}, nil},
		{"RX", []int{0}, []float64{0.7}},
		{"RY", []int{1}, []float64{-1.2}},
		{"RZ", []int{2}, []float64{2.1}},
		{"PhaseShift", []int{0}, []float64{0.4}},
		{"ControlledPhaseShift", []int{0, 2}, []float64{1.1}},
		{"CRX", []int{1, 0}, []float64{0.9}},
		{"CRY", []int{2, 1}, []float64{-0.5}},
		{"CRZ", []int{0, 2}, []float64{1.7}},
		{"IsingXX", []int{0, 1}, []float64{0.6}},
		{"IsingYY", []int{1, 2}, []float64{-0.8}},
		{"IsingZZ", []int{0, 2}, []float64{1.3}},
		{"MultiRZ", []int{0, 1, 2}, []float64{0.35}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := arbitraryState(t, 3)
			before := v.Data()
			require.NoError(t, v.ApplyOperation(tc.name, tc.wires, false, tc.params))
			require.NoError(t, v.ApplyOperation(tc.name, tc.wires, true, tc.params))
			requireStatesEqual(t, before, v.Data(), 1e-12)
		})
	}
}

func TestApplyMatrixMatchesNamedGates(t *testing.T) {
	h := complex(1/math.Sqrt2, 0)
	hadamard := []complex128{h, h, h, -h}
	swap := []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}

	byName := arbitraryState(t, 2)
	byMatrix := arbitraryState(t, 2)

	require.NoError(t, byName.ApplyOperation("Hadamard", []int{1}, false, nil))
	require.NoError(t, byMatrix.ApplyMatrix(hadamard, []int{1}, false))
	requireStatesEqual(t, byName.Data(), byMatrix.Data(), 1e-12)

	require.NoError(t, byName.ApplyOperation("SWAP", []int{0, 1}, false, nil))
	require.NoError(t, byMatrix.ApplyMatrix(swap, []int{0, 1}, false))
	requireStatesEqual(t, byName.Data(), byMatrix.Data(), 1e-12)
}

func TestInnerProduct(t *testing.T) {
	b := NewEmulated(1)
	v1, err := b.NewVector([]complex128{complex(0, 1), 0}, DevTag{})
	require.NoError(t, err)
	v2, err := b.NewVector([]complex128{1, 0}, DevTag{})
	require.NoError(t, err)

	ip, err := v1.InnerProduct(v2)
	require.NoError(t, err)
	// <i*|0> conjugates the left argument.
	require.InDelta(t, 0, real(ip), 1e-12)
	require.InDelta(t, -1, imag(ip), 1e-12)
}

func TestCrossDeviceOperandsRejected(t *testing.T) {
	b := NewEmulated(2)
	v1, err := b.NewVector([]complex128{1, 0}, DevTag{DeviceID: 0})
	require.NoError(t, err)
	v2, err := b.NewVector([]complex128{1, 0}, DevTag{DeviceID: 1})
	require.NoError(t, err)

	_, err = v1.InnerProduct(v2)
	require.ErrorIs(t, err, ErrDeviceMismatch)
	require.ErrorIs(t, v1.CopyFrom(v2), ErrDeviceMismatch)
	require.ErrorIs(t, v1.Axpy(1, v2), ErrDeviceMismatch)
}

func TestUnknownGateRejected(t *testing.T) {
	v := newTestVector(t, 1)
	err := v.ApplyOperation("NotAGate", []int{0}, false, nil)
	require.ErrorIs(t, err, ErrUnsupportedGate)
}

func TestBackendValidation(t *testing.T) {
	b := NewEmulated(1)

	_, err := b.NewVector([]complex128{1, 0, 0}, DevTag{})
	require.ErrorIs(t, err, ErrBadLength)

	_, err = b.NewVector([]complex128{1, 0}, DevTag{DeviceID: 3})
	require.Error(t, err)
}

func TestAxpyAccumulates(t *testing.T) {
	b := NewEmulated(1)
	acc, err := b.NewZeroVector(1, DevTag{})
	require.NoError(t, err)
	x, err := b.NewVector([]complex128{1, complex(0, 2)}, DevTag{})
	require.NoError(t, err)

	require.NoError(t, acc.Axpy(complex(0.5, 0), x))
	require.NoError(t, acc.Axpy(complex(0.5, 0), x))
	requireStatesEqual(t, []complex128{1, complex(0, 2)}, acc.Data(), 1e-12)
}
