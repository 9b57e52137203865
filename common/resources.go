package common

import (
	"sync"
)

// ResourceKind labels a tracked render resource.
type ResourceKind string

const (
	ResourceGeometry ResourceKind = "geometry"
	ResourceTexture  ResourceKind = "texture"
)

// ResourceTracker counts render-side allocations (geometry buffers, textures) that
// have been created and not yet disposed. Loaders register every allocation with a
// tracker so leaks across model swaps and cancelled loads are observable.
type ResourceTracker struct {
	mu   *sync.Mutex
	next uint64
	live map[uint64]ResourceKind
}

// NewResourceTracker creates an empty tracker.
//
// Returns:
//   - *ResourceTracker: the tracker
func NewResourceTracker() *ResourceTracker {
	return &ResourceTracker{
		mu:   &sync.Mutex{},
		live: make(map[uint64]ResourceKind),
	}
}

// Acquire records a new live resource and returns its handle.
// A nil tracker returns 0 and records nothing.
//
// Parameters:
//   - kind: the resource kind
//
// Returns:
//   - uint64: the handle to pass to Release
func (t *ResourceTracker) Acquire(kind ResourceKind) uint64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.live[t.next] = kind
	return t.next
}

// Release forgets the resource with the given handle. Releasing twice is a no-op.
//
// Parameters:
//   - handle: the value returned by Acquire
func (t *ResourceTracker) Release(handle uint64) {
	if t == nil || handle == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, handle)
}

// Live returns the number of resources acquired and not released.
func (t *ResourceTracker) Live() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// LiveOf returns the number of live resources of one kind.
func (t *ResourceTracker) LiveOf(kind ResourceKind) int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, k := range t.live {
		if k == kind {
			n++
		}
	}
	return n
}
