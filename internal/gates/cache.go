package gates

import (
	"errors"
	"fmt"
	"sync"

	"github.com/23skdu/longbow-adjoint/internal/statevec"
)

// ErrCacheMiss is returned by Get for a key that was never inserted.
var ErrCacheMiss = errors.New("gates: gate not present in cache")

// Key identifies a cached gate: the gate name and its parameter value,
// 0.0 for non-parametric gates.
type Key struct {
	Name  string
	Param float64
}

// DeviceBuffer is a gate matrix resident on one device. Once uploaded it is
// never mutated, only replaced wholesale by a fresh insert under the same
// key.
type DeviceBuffer struct {
	data []complex128
	tag  statevec.DevTag
}

// Data returns the device-resident matrix values.
func (b *DeviceBuffer) Data() []complex128 { return b.data }

// Tag returns the device/stream the buffer lives on.
func (b *DeviceBuffer) Tag() statevec.DevTag { return b.tag }

const bytesPerEntry = 16 // complex128

// Cache keeps device-resident copies of gate matrices so repeated use of the
// same fixed unitary across many state copies does not re-trigger a
// host-to-device transfer. Entries are never evicted; the vocabulary of a
// circuit is finite.
type Cache struct {
	mu         sync.RWMutex
	tag        statevec.DevTag
	device     map[Key]*DeviceBuffer
	host       map[Key][]complex128
	allocBytes int64
}

// NewCache creates a cache bound to one device/stream. When populate is set
// the standard one- and two-qubit gate set is uploaded immediately.
func NewCache(populate bool, tag statevec.DevTag) *Cache {
	c := &Cache{
		tag:    tag,
		device: make(map[Key]*DeviceBuffer),
		host:   make(map[Key][]complex128),
	}
	if populate {
		c.populateDefaults()
	}
	return c
}

// populateDefaults uploads the fixed gate set. CNOT and Toffoli are stored
// as their single-qubit target blocks and CZ as its Z block, matching how
// the controlled kernels consume them. CSWAP shares SWAP's values.
func (c *Cache) populateDefaults() {
	c.Insert(Key{Name: "Identity"}, Identity())
	c.Insert(Key{Name: "PauliX"}, PauliX())
	c.Insert(Key{Name: "PauliY"}, PauliY())
	c.Insert(Key{Name: "PauliZ"}, PauliZ())
	c.Insert(Key{Name: "Hadamard"}, Hadamard())
	c.Insert(Key{Name: "S"}, SGate())
	c.Insert(Key{Name: "T"}, TGate())
	c.Insert(Key{Name: "SWAP"}, SWAP())
	c.Insert(Key{Name: "CNOT"}, PauliX())
	c.Insert(Key{Name: "Toffoli"}, PauliX())
	c.Insert(Key{Name: "CZ"}, PauliZ())
	c.Insert(Key{Name: "CSWAP"}, SWAP())
}

// Exists reports whether a gate is resident under the given key.
func (c *Cache) Exists(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, hostOK := c.host[key]
	_, devOK := c.device[key]
	return hostOK && devOK
}

// Get returns the device buffer for a key. Callers must ensure the key was
// populated; a miss is an error, not a lazy upload.
func (c *Cache) Get(key Key) (*DeviceBuffer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	buf, ok := c.device[key]
	if !ok {
		cacheMisses.Inc()
		return nil, fmt.Errorf("%w: %s(%g)", ErrCacheMiss, key.Name, key.Param)
	}
	cacheHits.Inc()
	return buf, nil
}

// GetHost returns the host-side matrix that produced the device buffer.
func (c *Cache) GetHost(key Key) ([]complex128, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.host[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s(%g)", ErrCacheMiss, key.Name, key.Param)
	}
	out := make([]complex128, len(m))
	copy(out, m)
	return out, nil
}

// Insert uploads a host matrix under the given key, replacing any previous
// entry wholesale and recording the cumulative bytes transferred.
func (c *Cache) Insert(key Key, hostMatrix []complex128) {
	h := make([]complex128, len(hostMatrix))
	copy(h, hostMatrix)
	d := make([]complex128, len(hostMatrix))
	copy(d, hostMatrix)

	c.mu.Lock()
	_, replacing := c.device[key]
	c.host[key] = h
	c.device[key] = &DeviceBuffer{data: d, tag: c.tag}
	c.allocBytes += int64(len(hostMatrix) * bytesPerEntry)
	alloc := c.allocBytes
	c.mu.Unlock()

	if !replacing {
		cacheEntries.Inc()
	}
	cacheAllocBytes.Set(float64(alloc))
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.device)
}

// AllocBytes returns the cumulative bytes uploaded to the device.
func (c *Cache) AllocBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allocBytes
}

// Tag returns the device/stream the cache is bound to.
func (c *Cache) Tag() statevec.DevTag { return c.tag }
