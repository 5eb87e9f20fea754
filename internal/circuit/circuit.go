// Package circuit defines the CBOR circuit-description format consumed by
// the demo driver and turns a loaded description into an operation list.
package circuit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/23skdu/longbow-adjoint/internal/adjoint"
)

// ErrInvalid marks a structurally invalid circuit description.
var ErrInvalid = errors.New("circuit: invalid description")

// Op is one recorded operation. Matrix carries an optional dense unitary as
// interleaved real/imaginary pairs, row-major.
type Op struct {
	Name    string    `cbor:"name"`
	Wires   []int     `cbor:"wires"`
	Params  []float64 `cbor:"params,omitempty"`
	Inverse bool      `cbor:"inverse,omitempty"`
	Matrix  []float64 `cbor:"matrix,omitempty"`
}

// File is a complete circuit description.
type File struct {
	Qubits    int   `cbor:"qubits"`
	Ops       []Op  `cbor:"ops"`
	Trainable []int `cbor:"trainable,omitempty"`
}

// Load decodes and validates a circuit description.
func Load(r io.Reader) (*File, error) {
	var f File
	if err := cbor.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("circuit: decode: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile decodes a circuit description from disk.
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(fh)
}

func (f *File) validate() error {
	if f.Qubits < 1 {
		return fmt.Errorf("%w: qubits must be positive, got %d", ErrInvalid, f.Qubits)
	}
	for i, op := range f.Ops {
		if op.Name == "" {
			return fmt.Errorf("%w: operation %d has no name", ErrInvalid, i)
		}
		if len(op.Wires) == 0 {
			return fmt.Errorf("%w: operation %d (%s) has no wires", ErrInvalid, i, op.Name)
		}
		for _, w := range op.Wires {
			if w < 0 || w >= f.Qubits {
				return fmt.Errorf("%w: operation %d (%s) wire %d out of range [0,%d)",
					ErrInvalid, i, op.Name, w, f.Qubits)
			}
		}
		if len(op.Matrix)%2 != 0 {
			return fmt.Errorf("%w: operation %d (%s) matrix must be re/im pairs", ErrInvalid, i, op.Name)
		}
	}
	for _, tp := range f.Trainable {
		if tp < 0 {
			return fmt.Errorf("%w: negative trainable position %d", ErrInvalid, tp)
		}
	}
	return nil
}

// OpList converts the description into an engine operation list.
func (f *File) OpList() (*adjoint.OpList, error) {
	n := len(f.Ops)
	names := make([]string, n)
	params := make([][]float64, n)
	wires := make([][]int, n)
	inverses := make([]bool, n)
	matrices := make([][]complex128, n)
	for i, op := range f.Ops {
		names[i] = op.Name
		params[i] = op.Params
		wires[i] = op.Wires
		inverses[i] = op.Inverse
		if len(op.Matrix) > 0 {
			m := make([]complex128, len(op.Matrix)/2)
			for j := range m {
				m[j] = complex(op.Matrix[2*j], op.Matrix[2*j+1])
			}
			matrices[i] = m
		}
	}
	return adjoint.NewOpList(names, params, wires, inverses, matrices)
}
