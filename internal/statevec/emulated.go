package statevec

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
)

// ensure interface compliance
var _ Backend = (*Emulated)(nil)
var _ Vector = (*emuVector)(nil)

// Emulated is a host-memory backend that models a fixed number of device
// slots. Cross-device operations fail exactly as they would on separate
// GPUs, so the pool and batching layers can be exercised without hardware.
type Emulated struct {
	devices int
}

// NewEmulated creates a backend exposing the given number of device slots.
func NewEmulated(devices int) *Emulated {
	if devices < 1 {
		devices = 1
	}
	return &Emulated{devices: devices}
}

func (b *Emulated) Name() string { return "emulated" }

func (b *Emulated) TotalDevices() int { return b.devices }

func (b *Emulated) NewVector(data []complex128, tag DevTag) (Vector, error) {
	if err := checkTag(b, tag); err != nil {
		return nil, err
	}
	n := len(data)
	if n == 0 || n&(n-1) != 0 {
		return nil, ErrBadLength
	}
	amps := make([]complex128, n)
	copy(amps, data)
	return &emuVector{amps: amps, numQubits: bits.TrailingZeros(uint(n)), tag: tag}, nil
}

func (b *Emulated) NewZeroVector(numQubits int, tag DevTag) (Vector, error) {
	if err := checkTag(b, tag); err != nil {
		return nil, err
	}
	if numQubits < 1 {
		return nil, fmt.Errorf("statevec: need at least one qubit, got %d", numQubits)
	}
	return &emuVector{amps: make([]complex128, 1<<numQubits), numQubits: numQubits, tag: tag}, nil
}

type emuVector struct {
	amps      []complex128
	numQubits int
	tag       DevTag
}

func (v *emuVector) NumQubits() int { return v.numQubits }

func (v *emuVector) Length() int { return len(v.amps) }

func (v *emuVector) Tag() DevTag { return v.tag }

func (v *emuVector) Data() []complex128 {
	out := make([]complex128, len(v.amps))
	copy(out, v.amps)
	return out
}

func (v *emuVector) CopyFrom(src Vector) error {
	s, err := v.sameDevice(src)
	if err != nil {
		return err
	}
	if len(s.amps) != len(v.amps) {
		return fmt.Errorf("statevec: length mismatch %d != %d", len(s.amps), len(v.amps))
	}
	copy(v.amps, s.amps)
	return nil
}

func (v *emuVector) Clone() (Vector, error) {
	amps := make([]complex128, len(v.amps))
	copy(amps, v.amps)
	return &emuVector{amps: amps, numQubits: v.numQubits, tag: v.tag}, nil
}

func (v *emuVector) Zero() {
	for i := range v.amps {
		v.amps[i] = 0
	}
}

func (v *emuVector) InnerProduct(other Vector) (complex128, error) {
	o, err := v.sameDevice(other)
	if err != nil {
		return 0, err
	}
	if len(o.amps) != len(v.amps) {
		return 0, fmt.Errorf("statevec: length mismatch %d != %d", len(o.amps), len(v.amps))
	}
	var acc complex128
	for i, a := range v.amps {
		acc += cmplx.Conj(a) * o.amps[i]
	}
	return acc, nil
}

func (v *emuVector) Axpy(c complex128, x Vector) error {
	o, err := v.sameDevice(x)
	if err != nil {
		return err
	}
	if len(o.amps) != len(v.amps) {
		return fmt.Errorf("statevec: length mismatch %d != %d", len(o.amps), len(v.amps))
	}
	for i := range v.amps {
		v.amps[i] += c * o.amps[i]
	}
	return nil
}

func (v *emuVector) sameDevice(other Vector) (*emuVector, error) {
	o, ok := other.(*emuVector)
	if !ok {
		return nil, fmt.Errorf("statevec: foreign vector type %T", other)
	}
	if o.tag.DeviceID != v.tag.DeviceID {
		return nil, fmt.Errorf("%w: device %d vs %d", ErrDeviceMismatch, v.tag.DeviceID, o.tag.DeviceID)
	}
	return o, nil
}

func (v *emuVector) ApplyOperation(name string, wires []int, adjoint bool, params []float64) error {
	theta := 0.0
	if len(params) > 0 {
		theta = params[0]
	}
	if adjoint {
		theta = -theta
	}

	switch name {
	case "Identity":
		return nil
	case "PauliX":
		v.apply2x2(0, 1, 1, 0, wires[0], 0)
	case "PauliY":
		v.apply2x2(0, -1i, 1i, 0, wires[0], 0)
	case "PauliZ":
		v.apply2x2(1, 0, 0, -1, wires[0], 0)
	case "Hadamard":
		h := complex(1/math.Sqrt2, 0)
		v.apply2x2(h, h, h, -h, wires[0], 0)
	case "S":
		v.applyPhase(phaseFactor(math.Pi/2, adjoint), wires[0], 0)
	case "T":
		v.applyPhase(phaseFactor(math.Pi/4, adjoint), wires[0], 0)
	case "CNOT":
		v.apply2x2(0, 1, 1, 0, wires[1], v.mask(wires[:1]))
	case "CZ":
		v.apply2x2(1, 0, 0, -1, wires[1], v.mask(wires[:1]))
	case "Toffoli":
		v.apply2x2(0, 1, 1, 0, wires[2], v.mask(wires[:2]))
	case "SWAP":
		v.applySwap(wires[0], wires[1], 0)
	case "CSWAP":
		v.applySwap(wires[1], wires[2], v.mask(wires[:1]))
	case "RX":
		c, s := rot(theta)
		v.apply2x2(c, -1i*s, -1i*s, c, wires[0], 0)
	case "RY":
		c, s := rot(theta)
		v.apply2x2(c, -s, s, c, wires[0], 0)
	case "RZ":
		e := cmplx.Exp(complex(0, theta/2))
		v.apply2x2(cmplx.Conj(e), 0, 0, e, wires[0], 0)
	case "PhaseShift":
		v.applyPhase(cmplx.Exp(complex(0, theta)), wires[0], 0)
	case "ControlledPhaseShift":
		v.applyPhase(cmplx.Exp(complex(0, theta)), wires[1], v.mask(wires[:1]))
	case "CRX":
		c, s := rot(theta)
		v.apply2x2(c, -1i*s, -1i*s, c, wires[1], v.mask(wires[:1]))
	case "CRY":
		c, s := rot(theta)
		v.apply2x2(c, -s, s, c, wires[1], v.mask(wires[:1]))
	case "CRZ":
		e := cmplx.Exp(complex(0, theta/2))
		v.apply2x2(cmplx.Conj(e), 0, 0, e, wires[1], v.mask(wires[:1]))
	case "IsingXX":
		v.applyIsingXX(theta, wires[0], wires[1])
	case "IsingYY":
		v.applyIsingYY(theta, wires[0], wires[1])
	case "IsingZZ", "MultiRZ":
		v.applyMultiRZ(theta, wires)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedGate, name)
	}
	return nil
}

func rot(theta float64) (complex128, complex128) {
	return complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
}

func phaseFactor(phi float64, adjoint bool) complex128 {
	if adjoint {
		phi = -phi
	}
	return cmplx.Exp(complex(0, phi))
}

func (v *emuVector) mask(wires []int) int {
	m := 0
	for _, w := range wires {
		m |= 1 << w
	}
	return m
}

// apply2x2 applies a single-qubit unitary to target, restricted to basis
// states where every bit in controlMask is set.
func (v *emuVector) apply2x2(m00, m01, m10, m11 complex128, target, controlMask int) {
	tbit := 1 << target
	n := len(v.amps)
	for i := 0; i < n; i++ {
		if i&tbit != 0 || i&controlMask != controlMask {
			continue
		}
		j := i | tbit
		a0, a1 := v.amps[i], v.amps[j]
		v.amps[i] = m00*a0 + m01*a1
		v.amps[j] = m10*a0 + m11*a1
	}
}

// applyPhase multiplies amplitudes with the target bit set by factor.
func (v *emuVector) applyPhase(factor complex128, target, controlMask int) {
	tbit := 1 << target
	for i := range v.amps {
		if i&tbit != 0 && i&controlMask == controlMask {
			v.amps[i] *= factor
		}
	}
}

func (v *emuVector) applySwap(w1, w2, controlMask int) {
	b1, b2 := 1<<w1, 1<<w2
	for i := range v.amps {
		if i&b1 != 0 && i&b2 == 0 && i&controlMask == controlMask {
			j := (i &^ b1) | b2
			v.amps[i], v.amps[j] = v.amps[j], v.amps[i]
		}
	}
}

func (v *emuVector) applyIsingXX(theta float64, w0, w1 int) {
	pair := (1 << w0) | (1 << w1)
	b0 := 1 << w0
	c, s := rot(theta)
	js := -1i * s
	for i := range v.amps {
		if i&b0 != 0 {
			continue
		}
		j := i ^ pair
		a0, a1 := v.amps[i], v.amps[j]
		v.amps[i] = c*a0 + js*a1
		v.amps[j] = js*a0 + c*a1
	}
}

func (v *emuVector) applyIsingYY(theta float64, w0, w1 int) {
	pair := (1 << w0) | (1 << w1)
	b0, b1 := 1<<w0, 1<<w1
	c, s := rot(theta)
	for i := range v.amps {
		if i&b0 != 0 {
			continue
		}
		j := i ^ pair
		// Even-parity sector picks up +i*sin, odd-parity -i*sin.
		is := 1i * s
		if i&b1 != 0 {
			is = -is
		}
		a0, a1 := v.amps[i], v.amps[j]
		v.amps[i] = c*a0 + is*a1
		v.amps[j] = is*a0 + c*a1
	}
}

func (v *emuVector) applyMultiRZ(theta float64, wires []int) {
	m := v.mask(wires)
	even := cmplx.Exp(complex(0, -theta/2))
	odd := cmplx.Conj(even)
	for i := range v.amps {
		if bits.OnesCount(uint(i&m))%2 == 0 {
			v.amps[i] *= even
		} else {
			v.amps[i] *= odd
		}
	}
}

func (v *emuVector) ApplyMatrix(matrix []complex128, wires []int, adjoint bool) error {
	k := len(wires)
	dim := 1 << k
	if len(matrix) != dim*dim {
		return fmt.Errorf("statevec: matrix size %d does not cover %d wires", len(matrix), k)
	}
	n := len(v.amps)
	next := make([]complex128, n)
	for i := 0; i < n; i++ {
		s := v.subIndex(i, wires)
		var acc complex128
		for t := 0; t < dim; t++ {
			var m complex128
			if adjoint {
				m = cmplx.Conj(matrix[t*dim+s])
			} else {
				m = matrix[s*dim+t]
			}
			acc += m * v.amps[v.withSubIndex(i, wires, t)]
		}
		next[i] = acc
	}
	v.amps = next
	return nil
}

// subIndex extracts the sub-basis index of i over wires, wires[0] most
// significant.
func (v *emuVector) subIndex(i int, wires []int) int {
	s := 0
	for _, w := range wires {
		s <<= 1
		if i&(1<<w) != 0 {
			s |= 1
		}
	}
	return s
}

func (v *emuVector) withSubIndex(i int, wires []int, s int) int {
	k := len(wires)
	for j, w := range wires {
		bit := 1 << w
		if s&(1<<(k-1-j)) != 0 {
			i |= bit
		} else {
			i &^= bit
		}
	}
	return i
}
