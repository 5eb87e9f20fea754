// Package observable models what gets measured: named single-gate
// observables, dense Hermitian matrices, tensor products over disjoint
// wires, and weighted sums (Hamiltonians). Observables are immutable after
// construction and safe to share across state-vector copies.
package observable

import (
	"errors"
	"fmt"
	"math/cmplx"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/23skdu/longbow-adjoint/internal/statevec"
)

var (
	// ErrWireOverlap is returned when tensor-product components share a wire.
	ErrWireOverlap = errors.New("observable: tensor-product wires must be disjoint")
	// ErrNotHermitian is returned for a matrix that is not self-adjoint.
	ErrNotHermitian = errors.New("observable: matrix is not Hermitian")
	// ErrLengthMismatch is returned when coefficient and term counts differ.
	ErrLengthMismatch = errors.New("observable: coefficients and terms must have equal length")
)

// ensure interface compliance
var (
	_ Observable = (*Named)(nil)
	_ Observable = (*Hermitian)(nil)
	_ Observable = (*TensorProd)(nil)
	_ Observable = (*Hamiltonian)(nil)
)

// Observable is a measurable quantity applied in place to state vectors.
type Observable interface {
	// ApplyInPlace mutates sv to O|sv>.
	ApplyInPlace(sv statevec.Vector) error

	// Wires returns the sorted, deduplicated wire indices the observable
	// touches.
	Wires() []int

	// Name returns a canonical, order-preserving description.
	Name() string

	// Equal reports structural equality with another observable of the
	// same concrete variant.
	Equal(other Observable) bool
}

// Named is an observable identified by a gate name, e.g. PauliZ or Hadamard.
type Named struct {
	name   string
	wires  []int
	params []float64
}

// NewNamed constructs a named observable.
func NewNamed(name string, wires []int, params ...float64) *Named {
	return &Named{name: name, wires: append([]int(nil), wires...), params: append([]float64(nil), params...)}
}

func (o *Named) ApplyInPlace(sv statevec.Vector) error {
	return sv.ApplyOperation(o.name, o.wires, false, o.params)
}

func (o *Named) Wires() []int { return sortedUnique(o.wires) }

func (o *Named) Name() string { return fmt.Sprintf("%s%v", o.name, o.wires) }

func (o *Named) Equal(other Observable) bool {
	b, ok := other.(*Named)
	if !ok {
		return false
	}
	return o.name == b.name && intsEqual(o.wires, b.wires) && floatsEqual(o.params, b.params)
}

// Hermitian is a dense self-adjoint matrix observable over k wires.
type Hermitian struct {
	matrix *mat.CDense
	wires  []int
}

// NewHermitian constructs a Hermitian observable from a row-major matrix.
// The matrix must be 2^k x 2^k for k wires and self-adjoint.
func NewHermitian(matrix []complex128, wires []int) (*Hermitian, error) {
	dim := 1 << len(wires)
	if len(matrix) != dim*dim {
		return nil, fmt.Errorf("observable: matrix size %d does not cover %d wires", len(matrix), len(wires))
	}
	m := mat.NewCDense(dim, dim, append([]complex128(nil), matrix...))
	const tol = 1e-12
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if cmplx.Abs(m.At(i, j)-cmplx.Conj(m.At(j, i))) > tol {
				return nil, ErrNotHermitian
			}
		}
	}
	return &Hermitian{matrix: m, wires: append([]int(nil), wires...)}, nil
}

func (o *Hermitian) ApplyInPlace(sv statevec.Vector) error {
	return sv.ApplyMatrix(o.matrix.RawCMatrix().Data, o.wires, false)
}

func (o *Hermitian) Wires() []int { return sortedUnique(o.wires) }

func (o *Hermitian) Name() string { return "Hermitian" }

// Matrix returns the row-major matrix values.
func (o *Hermitian) Matrix() []complex128 {
	raw := o.matrix.RawCMatrix().Data
	return append([]complex128(nil), raw...)
}

func (o *Hermitian) Equal(other Observable) bool {
	b, ok := other.(*Hermitian)
	if !ok {
		return false
	}
	if !intsEqual(o.wires, b.wires) {
		return false
	}
	ra, rb := o.matrix.RawCMatrix().Data, b.matrix.RawCMatrix().Data
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if ra[i] != rb[i] {
			return false
		}
	}
	return true
}

// TensorProd is a product of observables acting on pairwise disjoint wires.
type TensorProd struct {
	factors  []Observable
	allWires []int
}

// NewTensorProd constructs a tensor product. Construction fails when any two
// factors share a wire.
func NewTensorProd(factors ...Observable) (*TensorProd, error) {
	seen := make(map[int]struct{})
	for _, f := range factors {
		for _, w := range f.Wires() {
			if _, dup := seen[w]; dup {
				return nil, fmt.Errorf("%w: wire %d", ErrWireOverlap, w)
			}
			seen[w] = struct{}{}
		}
	}
	all := make([]int, 0, len(seen))
	for w := range seen {
		all = append(all, w)
	}
	sort.Ints(all)
	return &TensorProd{factors: append([]Observable(nil), factors...), allWires: all}, nil
}

func (o *TensorProd) ApplyInPlace(sv statevec.Vector) error {
	for _, f := range o.factors {
		if err := f.ApplyInPlace(sv); err != nil {
			return err
		}
	}
	return nil
}

func (o *TensorProd) Wires() []int { return append([]int(nil), o.allWires...) }

func (o *TensorProd) Name() string {
	names := make([]string, len(o.factors))
	for i, f := range o.factors {
		names[i] = f.Name()
	}
	return strings.Join(names, " @ ")
}

func (o *TensorProd) Equal(other Observable) bool {
	b, ok := other.(*TensorProd)
	if !ok || len(o.factors) != len(b.factors) {
		return false
	}
	for i := range o.factors {
		if !o.factors[i].Equal(b.factors[i]) {
			return false
		}
	}
	return true
}

// Hamiltonian is a real-weighted sum of observables.
type Hamiltonian struct {
	coeffs []float64
	terms  []Observable
}

// NewHamiltonian constructs a weighted sum. Coefficient and term counts must
// match.
func NewHamiltonian(coeffs []float64, terms []Observable) (*Hamiltonian, error) {
	if len(coeffs) != len(terms) {
		return nil, fmt.Errorf("%w: %d coefficients, %d terms", ErrLengthMismatch, len(coeffs), len(terms))
	}
	return &Hamiltonian{coeffs: append([]float64(nil), coeffs...), terms: append([]Observable(nil), terms...)}, nil
}

// ApplyInPlace replaces sv with sum_i c_i * O_i|sv>. Each term acts on a
// fresh copy of the input so earlier terms never contaminate later ones.
func (o *Hamiltonian) ApplyInPlace(sv statevec.Vector) error {
	acc, err := sv.Clone()
	if err != nil {
		return err
	}
	acc.Zero()
	for i, term := range o.terms {
		tmp, err := sv.Clone()
		if err != nil {
			return err
		}
		if err := term.ApplyInPlace(tmp); err != nil {
			return err
		}
		if err := acc.Axpy(complex(o.coeffs[i], 0), tmp); err != nil {
			return err
		}
	}
	return sv.CopyFrom(acc)
}

func (o *Hamiltonian) Wires() []int {
	var all []int
	for _, term := range o.terms {
		all = append(all, term.Wires()...)
	}
	return sortedUnique(all)
}

func (o *Hamiltonian) Name() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hamiltonian: { 'coeffs' : %v, 'observables' : [", o.coeffs))
	for i, term := range o.terms {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(term.Name())
	}
	sb.WriteString("]}")
	return sb.String()
}

func (o *Hamiltonian) Equal(other Observable) bool {
	b, ok := other.(*Hamiltonian)
	if !ok || len(o.terms) != len(b.terms) || !floatsEqual(o.coeffs, b.coeffs) {
		return false
	}
	for i := range o.terms {
		if !o.terms[i].Equal(b.terms[i]) {
			return false
		}
	}
	return true
}

func sortedUnique(wires []int) []int {
	out := append([]int(nil), wires...)
	sort.Ints(out)
	j := 0
	for i, w := range out {
		if i == 0 || w != out[j-1] {
			out[j] = w
			j++
		}
	}
	return out[:j]
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
