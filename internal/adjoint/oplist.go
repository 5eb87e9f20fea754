package adjoint

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyParams marks an operation with more than one parameter,
	// which adjoint differentiation cannot handle.
	ErrTooManyParams = errors.New("adjoint: operation is not supported using the adjoint differentiation method")
	// ErrUnsupportedGate marks a parametric operation with no known
	// generator and no matrix fallback.
	ErrUnsupportedGate = errors.New("adjoint: no generator known for operation")
	// ErrLengthMismatch marks operation-list columns of unequal length.
	ErrLengthMismatch = errors.New("adjoint: operation list columns must have equal length")
)

// OpList is an ordered, immutable record of the circuit to differentiate.
// It is owned by the caller and borrowed by the engine for the duration of
// one evaluation.
type OpList struct {
	names       []string
	params      [][]float64
	wires       [][]int
	inverses    []bool
	matrices    [][]complex128
	kinds       []GateKind
	numParamOps int
}

// NewOpList builds an operation list from parallel columns. Parametric
// operation names are resolved against the generator table here, so an
// unsupported trainable gate fails at construction instead of mid-sweep.
// matrices may be nil when no operation needs a dense fallback.
func NewOpList(names []string, params [][]float64, wires [][]int, inverses []bool, matrices [][]complex128) (*OpList, error) {
	n := len(names)
	if len(params) != n || len(wires) != n || len(inverses) != n {
		return nil, fmt.Errorf("%w: %d names, %d params, %d wires, %d inverses",
			ErrLengthMismatch, n, len(params), len(wires), len(inverses))
	}
	if matrices == nil {
		matrices = make([][]complex128, n)
	}
	if len(matrices) != n {
		return nil, fmt.Errorf("%w: %d names, %d matrices", ErrLengthMismatch, n, len(matrices))
	}

	kinds := make([]GateKind, n)
	numParamOps := 0
	for i := 0; i < n; i++ {
		switch len(params[i]) {
		case 0:
		case 1:
			numParamOps++
			kind, ok := ParseGateKind(names[i])
			if !ok && len(matrices[i]) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrUnsupportedGate, names[i])
			}
			kinds[i] = kind
		default:
			return nil, fmt.Errorf("%w: %q has %d parameters", ErrTooManyParams, names[i], len(params[i]))
		}
	}

	return &OpList{
		names:       names,
		params:      params,
		wires:       wires,
		inverses:    inverses,
		matrices:    matrices,
		kinds:       kinds,
		numParamOps: numParamOps,
	}, nil
}

// Len returns the number of operations.
func (o *OpList) Len() int { return len(o.names) }

// Name returns the operation name at index i.
func (o *OpList) Name(i int) string { return o.names[i] }

// Params returns the parameter vector at index i.
func (o *OpList) Params(i int) []float64 { return o.params[i] }

// Wires returns the wire indices at index i.
func (o *OpList) Wires(i int) []int { return o.wires[i] }

// Inverse reports whether operation i was recorded inverted.
func (o *OpList) Inverse(i int) bool { return o.inverses[i] }

// Matrix returns the dense fallback matrix at index i, nil if none.
func (o *OpList) Matrix(i int) []complex128 { return o.matrices[i] }

// HasParams reports whether operation i is parametric.
func (o *OpList) HasParams(i int) bool { return len(o.params[i]) > 0 }

// Kind returns the resolved generator kind for operation i, KindUnknown for
// non-parametric or matrix-backed operations.
func (o *OpList) Kind(i int) GateKind { return o.kinds[i] }

// NumParamOps returns the number of parametric operations in the list.
func (o *OpList) NumParamOps() int { return o.numParamOps }

func isStatePrep(name string) bool {
	return name == "QubitStateVector" || name == "BasisState"
}
