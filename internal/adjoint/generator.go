package adjoint

import (
	"fmt"

	"github.com/23skdu/longbow-adjoint/internal/gates"
	"github.com/23skdu/longbow-adjoint/internal/statevec"
)

// GateKind enumerates the parametric gates with a known generator. The
// closed set makes "unknown gate" a construction-time validation failure
// rather than a per-operation lookup risk.
type GateKind int

const (
	KindUnknown GateKind = iota
	KindRX
	KindRY
	KindRZ
	KindPhaseShift
	KindControlledPhaseShift
	KindCRX
	KindCRY
	KindCRZ
	KindIsingXX
	KindIsingYY
	KindIsingZZ
	KindMultiRZ
)

// ParseGateKind resolves a gate name to its generator kind.
func ParseGateKind(name string) (GateKind, bool) {
	switch name {
	case "RX":
		return KindRX, true
	case "RY":
		return KindRY, true
	case "RZ":
		return KindRZ, true
	case "PhaseShift":
		return KindPhaseShift, true
	case "ControlledPhaseShift":
		return KindControlledPhaseShift, true
	case "CRX":
		return KindCRX, true
	case "CRY":
		return KindCRY, true
	case "CRZ":
		return KindCRZ, true
	case "IsingXX":
		return KindIsingXX, true
	case "IsingYY":
		return KindIsingYY, true
	case "IsingZZ":
		return KindIsingZZ, true
	case "MultiRZ":
		return KindMultiRZ, true
	default:
		return KindUnknown, false
	}
}

// Scaling returns the generator coefficient k such that
// dU/dtheta = i*k*G*U(theta).
func (k GateKind) Scaling() float64 {
	switch k {
	case KindPhaseShift, KindControlledPhaseShift:
		return 1
	default:
		return -0.5
	}
}

var p11Key = gates.Key{Name: "P_11"}

// applyGenerator applies the generator of kind to sv in place and returns
// the scaling coefficient. The P_11 projector comes from the device gate
// cache so repeated phase-shift derivatives reuse one upload.
func applyGenerator(sv statevec.Vector, kind GateKind, wires []int, adjoint bool, cache *gates.Cache) (float64, error) {
	last := wires[len(wires)-1]

	var err error
	switch kind {
	case KindRX:
		err = sv.ApplyOperation("PauliX", wires, adjoint, nil)
	case KindRY:
		err = sv.ApplyOperation("PauliY", wires, adjoint, nil)
	case KindRZ:
		err = sv.ApplyOperation("PauliZ", wires, adjoint, nil)
	case KindPhaseShift, KindControlledPhaseShift:
		var buf *gates.DeviceBuffer
		buf, err = cache.Get(p11Key)
		if err == nil {
			err = sv.ApplyMatrix(buf.Data(), []int{last}, adjoint)
		}
	case KindCRX:
		err = sv.ApplyOperation("PauliX", []int{last}, adjoint, nil)
	case KindCRY:
		err = sv.ApplyOperation("PauliY", []int{last}, adjoint, nil)
	case KindCRZ:
		err = sv.ApplyOperation("PauliZ", []int{last}, adjoint, nil)
	case KindIsingXX:
		err = applyEachWire(sv, "PauliX", wires, adjoint)
	case KindIsingYY:
		err = applyEachWire(sv, "PauliY", wires, adjoint)
	case KindIsingZZ, KindMultiRZ:
		err = applyEachWire(sv, "PauliZ", wires, adjoint)
	default:
		return 0, fmt.Errorf("%w: kind %d", ErrUnsupportedGate, kind)
	}
	if err != nil {
		return 0, err
	}
	return kind.Scaling(), nil
}

func applyEachWire(sv statevec.Vector, name string, wires []int, adjoint bool) error {
	for _, w := range wires {
		if err := sv.ApplyOperation(name, []int{w}, adjoint, nil); err != nil {
			return err
		}
	}
	return nil
}
