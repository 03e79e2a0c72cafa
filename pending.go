package gacha

import (
	"context"
	"sync"
)

// PendingRequest is an in-flight GET shared between its owner and any callers
// that arrived while it was on the wire. Waiters receive the owner's buffered
// outcome, never a second network call.
type PendingRequest struct {
	mu    sync.Mutex
	entry *CacheEntry
	err   error
	done  chan struct{}
}

// PendingTracker maps cache keys to in-flight requests. Keys are identical to
// cache keys; at most one network operation per key is ever in flight.
type PendingTracker struct {
	mu       sync.Mutex
	inflight map[string]*PendingRequest
}

// NewPendingTracker returns an empty in-flight tracker.
func NewPendingTracker() *PendingTracker {
	return &PendingTracker{
		inflight: make(map[string]*PendingRequest),
	}
}

// GetOrCreate returns the pending request for key. The second return is true
// when the caller created it and therefore owns the network operation.
// Check-then-register happens under one lock so concurrent callers racing in
// always join rather than duplicate.
func (t *PendingTracker) GetOrCreate(key string) (*PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pending, exists := t.inflight[key]; exists {
		return pending, false
	}

	pending := &PendingRequest{
		done: make(chan struct{}),
	}
	t.inflight[key] = pending
	return pending, true
}

// Complete settles the pending request for key and releases every waiter.
// The key is removed the instant the operation settles, success or failure,
// so a failed request never blocks future attempts.
func (t *PendingTracker) Complete(key string, entry *CacheEntry, err error) {
	t.mu.Lock()
	pending, exists := t.inflight[key]
	if exists {
		delete(t.inflight, key)
	}
	t.mu.Unlock()

	if !exists {
		return
	}

	pending.mu.Lock()
	pending.entry = entry
	pending.err = err
	pending.mu.Unlock()
	close(pending.done)
}

// Forget drops the key without settling waiters. Used only on paths where no
// request was dispatched for the entry.
func (t *PendingTracker) Forget(key string) {
	t.mu.Lock()
	delete(t.inflight, key)
	t.mu.Unlock()
}

// Len reports the number of in-flight keys.
func (t *PendingTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// Wait blocks until the owning request settles or ctx is cancelled. Joined
// callers cannot cancel the owner's operation; cancelling only abandons the
// join.
func (p *PendingRequest) Wait(ctx context.Context) (*CacheEntry, error) {
	select {
	case <-p.done:
		p.mu.Lock()
		entry := p.entry
		err := p.err
		p.mu.Unlock()
		return entry, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
