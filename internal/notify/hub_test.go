package notify

import (
	"testing"
	"time"
)

func recvToken(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change token")
	}
}

func TestSubscribeReceivesPublish(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish()
	recvToken(t, ch)
}

// A slow subscriber coalesces tokens instead of blocking the publisher.
func TestPublishCoalescesAndNeverBlocks(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Publish()
	}

	// Exactly one token is queued; draining it leaves the channel empty.
	recvToken(t, ch)
	select {
	case <-ch:
		t.Error("expected coalesced delivery, got a second token")
	default:
	}

	// The subscriber still sees the next change after draining.
	h.Publish()
	recvToken(t, ch)
}

func TestCancelClosesChannelAndIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()

	cancel()
	cancel() // safe to call twice

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}

	// A cancelled subscriber no longer receives tokens.
	h.Publish()
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe()
	defer cancel1()
	ch2, cancel2 := h.Subscribe()
	defer cancel2()

	h.Publish()
	recvToken(t, ch1)
	recvToken(t, ch2)
}

func TestCloseReleasesSubscribers(t *testing.T) {
	h := NewHub()
	ch, _ := h.Subscribe()

	h.Close()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after hub shutdown")
	}

	// Subscribing after shutdown yields an already closed channel.
	late, cancel := h.Subscribe()
	defer cancel()
	if _, ok := <-late; ok {
		t.Error("post-shutdown subscription should be closed")
	}

	h.Publish() // no-op, must not panic
}
