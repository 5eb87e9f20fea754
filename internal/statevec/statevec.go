// Package statevec provides device-resident complex state vectors with
// in-place gate application, the compute substrate for adjoint
// differentiation. The emulated backend models per-device memory on the
// host so the higher layers exercise the same device-affinity rules as a
// real accelerator deployment.
package statevec

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceMismatch is returned when two vectors that must interact
	// live on different devices.
	ErrDeviceMismatch = errors.New("statevec: operands reside on different devices")
	// ErrUnsupportedGate is returned for operation names the kernel set
	// does not implement.
	ErrUnsupportedGate = errors.New("statevec: unsupported gate")
	// ErrBadLength is returned when host data length is not a power of two.
	ErrBadLength = errors.New("statevec: state length must be a power of two")
)

// DevTag identifies where a vector's device-resident data lives.
type DevTag struct {
	DeviceID int
	StreamID int
}

// Vector is a device-resident state vector supporting in-place updates.
// All mutating calls are kernel launches on the vector's device/stream.
type Vector interface {
	// NumQubits returns the qubit count.
	NumQubits() int

	// Length returns the amplitude count (2^NumQubits).
	Length() int

	// Tag returns the device/stream tag the data lives on.
	Tag() DevTag

	// Data reads the amplitudes back to the host. The returned slice is a
	// copy and safe to retain.
	Data() []complex128

	// CopyFrom overwrites this vector with the contents of src.
	// Both vectors must live on the same device.
	CopyFrom(src Vector) error

	// Clone allocates a new vector on the same device with identical
	// contents.
	Clone() (Vector, error)

	// Zero clears all amplitudes.
	Zero()

	// ApplyOperation applies the named gate in place. adjoint requests the
	// inverse of the gate. params carries the rotation angle for
	// parametric gates and is ignored otherwise.
	ApplyOperation(name string, wires []int, adjoint bool, params []float64) error

	// ApplyMatrix applies a dense 2^k x 2^k row-major unitary to the given
	// k wires, wires[0] most significant.
	ApplyMatrix(matrix []complex128, wires []int, adjoint bool) error

	// InnerProduct computes <this|other> with this vector conjugated.
	// Both vectors must live on the same device.
	InnerProduct(other Vector) (complex128, error)

	// Axpy accumulates c*x into this vector. Both vectors must live on the
	// same device.
	Axpy(c complex128, x Vector) error
}

// Backend allocates vectors on a device.
type Backend interface {
	Name() string

	// TotalDevices reports how many device slots the backend exposes.
	TotalDevices() int

	// NewVector uploads host amplitudes to the tagged device.
	NewVector(data []complex128, tag DevTag) (Vector, error)

	// NewZeroVector allocates an all-zero vector for the given qubit count.
	NewZeroVector(numQubits int, tag DevTag) (Vector, error)
}

func checkTag(b Backend, tag DevTag) error {
	if tag.DeviceID < 0 || tag.DeviceID >= b.TotalDevices() {
		return fmt.Errorf("statevec: device %d out of range [0,%d)", tag.DeviceID, b.TotalDevices())
	}
	return nil
}
