// Package device tracks which device slots are free and hands them out to
// workers with per-slot mutual exclusion. The pool is the only resource
// shared across batch workers; everything else they touch is private.
package device

import (
	"fmt"
)

// Pool manages exclusive access to a fixed set of device slots. Acquire
// blocks until a slot is free; no two holders ever see the same id
// concurrently.
type Pool struct {
	total int
	free  chan int
}

// NewPool creates a pool over device ids [0, total).
func NewPool(total int) (*Pool, error) {
	if total < 1 {
		return nil, fmt.Errorf("device: pool needs at least one device, got %d", total)
	}
	free := make(chan int, total)
	for id := 0; id < total; id++ {
		free <- id
	}
	return &Pool{total: total, free: free}, nil
}

// AcquireDevice blocks until a device slot is free and returns its id.
func (p *Pool) AcquireDevice() int {
	id := <-p.free
	poolAcquires.Inc()
	devicesInUse.Inc()
	return id
}

// ReleaseDevice returns a slot to the pool. Releasing an id the pool never
// issued is a programming error and is rejected.
func (p *Pool) ReleaseDevice(id int) error {
	if id < 0 || id >= p.total {
		return fmt.Errorf("device: release of unknown device %d", id)
	}
	select {
	case p.free <- id:
		devicesInUse.Dec()
		return nil
	default:
		return fmt.Errorf("device: double release of device %d", id)
	}
}

// TotalDevices returns the number of device slots the pool manages.
func (p *Pool) TotalDevices() int { return p.total }
