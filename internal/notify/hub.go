// Package notify fans catalog-change tokens out to storefront sessions.
// Tokens carry no payload: a subscriber reacts by re-fetching the active
// item list, so a dropped or coalesced token still converges to the latest
// state after the final change.
package notify

import "sync"

type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan struct{})}
}

// Subscribe registers an observer and returns its token channel plus a
// cancel handle. The channel is closed when cancel is called (or the hub
// shuts down); cancel is safe to call more than once.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan struct{}, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers a change token to every subscriber without blocking.
// A subscriber with a token already queued keeps just the one; re-fetching
// once covers any number of intermediate states.
func (h *Hub) Publish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close releases every subscriber. Further Subscribe calls get an already
// closed channel; further Publish calls are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
