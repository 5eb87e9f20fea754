package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolAcquiresDistinctDevices(t *testing.T) {
	p, err := NewPool(4)
	require.NoError(t, err)
	require.Equal(t, 4, p.TotalDevices())

	seen := make(map[int]bool)
	for i := 0; i < 4; i++ {
		id := p.AcquireDevice()
		require.False(t, seen[id], "device %d issued twice", id)
		seen[id] = true
	}
	for id := range seen {
		require.NoError(t, p.ReleaseDevice(id))
	}
}

func TestPoolBlocksWhenExhausted(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)

	id := p.AcquireDevice()

	acquired := make(chan int)
	go func() {
		acquired <- p.AcquireDevice()
	}()

	select {
	case got := <-acquired:
		t.Fatalf("acquired device %d while pool was exhausted", got)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, p.ReleaseDevice(id))

	select {
	case got := <-acquired:
		require.Equal(t, id, got)
		require.NoError(t, p.ReleaseDevice(got))
	case <-time.After(time.Second):
		t.Fatal("acquire did not unblock after release")
	}
}

func TestPoolRejectsBadRelease(t *testing.T) {
	p, err := NewPool(2)
	require.NoError(t, err)

	require.Error(t, p.ReleaseDevice(-1))
	require.Error(t, p.ReleaseDevice(2))
	// All slots are free already; another release cannot be valid.
	require.Error(t, p.ReleaseDevice(0))
}

func TestPoolRequiresDevices(t *testing.T) {
	_, err := NewPool(0)
	require.Error(t, err)
}
