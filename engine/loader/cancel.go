package loader

import (
	"sync"
	"sync/atomic"
)

// CancelToken signals that the result of an in-flight load should be discarded.
// A nil *CancelToken is never cancelled.
type CancelToken struct {
	mu        sync.Mutex
	cancelled atomic.Bool
	once      sync.Once
	done      chan struct{}
}

// NewCancelToken creates a live token.
//
// Returns:
//   - *CancelToken: the token
func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel invalidates the token. Safe to call more than once and from any goroutine.
// It waits for a progress callback already under way, so no progress is reported
// after Cancel returns. Calling it from inside that callback deadlocks; a callback
// that wants to stop its own load cancels from another goroutine or cancels the
// load's context.
func (t *CancelToken) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		t.cancelled.Store(true)
		close(t.done)
	})
	t.mu.Lock()
	t.mu.Unlock()
}

// deliver runs fn unless the token is cancelled, holding off Cancel until fn returns.
func (t *CancelToken) deliver(fn func()) {
	if t == nil {
		fn()
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled.Load() {
		return
	}
	fn()
}

// Cancelled reports whether Cancel has been called.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Done returns a channel closed on Cancel. A nil token returns a nil channel, which
// blocks forever in a select.
func (t *CancelToken) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}
