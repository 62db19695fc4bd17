package realtime

import (
	"encoding/json"
	"testing"
)

// fakeSession records enqueued frames; full simulates a saturated buffer.
type fakeSession struct {
	frames [][]byte
	full   bool
	closed bool
}

func (f *fakeSession) enqueue(message []byte) bool {
	if f.full {
		return false
	}
	f.frames = append(f.frames, message)
	return true
}

func (f *fakeSession) close() {
	f.closed = true
}

func TestHubOnlineStatus(t *testing.T) {
	hub := NewHub()
	if hub.IsOnline(1) {
		t.Error("empty hub should report user offline")
	}

	a, b := &fakeSession{}, &fakeSession{}
	hub.Register(1, a)
	hub.Register(1, b)
	if !hub.IsOnline(1) {
		t.Error("registered user should be online")
	}

	hub.Unregister(1, a)
	if !hub.IsOnline(1) {
		t.Error("user with a remaining connection should stay online")
	}
	hub.Unregister(1, b)
	if hub.IsOnline(1) {
		t.Error("user should be offline after last connection leaves")
	}
}

func TestHubSendToUserDeliversEnvelope(t *testing.T) {
	hub := NewHub()
	a, b := &fakeSession{}, &fakeSession{}
	other := &fakeSession{}
	hub.Register(1, a)
	hub.Register(1, b)
	hub.Register(2, other)

	if err := hub.SendToUser(1, "unreadCount", map[string]int{"count": 3}); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}

	for _, s := range []*fakeSession{a, b} {
		if len(s.frames) != 1 {
			t.Fatalf("expected 1 frame per connection, got %d", len(s.frames))
		}
		var envelope Envelope
		if err := json.Unmarshal(s.frames[0], &envelope); err != nil {
			t.Fatalf("frame is not valid JSON: %v", err)
		}
		if envelope.Event != "unreadCount" {
			t.Errorf("expected event unreadCount, got %q", envelope.Event)
		}
	}
	if len(other.frames) != 0 {
		t.Error("events must not leak into other users' rooms")
	}
}

func TestHubSendToOfflineUserIsNoop(t *testing.T) {
	hub := NewHub()
	if err := hub.SendToUser(42, "notification", "hello"); err != nil {
		t.Fatalf("sending to an offline user should not error: %v", err)
	}
}

func TestHubDropsSlowConnection(t *testing.T) {
	hub := NewHub()
	slow := &fakeSession{full: true}
	fast := &fakeSession{}
	hub.Register(1, slow)
	hub.Register(1, fast)

	if err := hub.SendToUser(1, "notification", "hello"); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}

	if !slow.closed {
		t.Error("slow connection should be closed")
	}
	if len(fast.frames) != 1 {
		t.Errorf("fast connection should still get the frame, got %d", len(fast.frames))
	}
	if !hub.IsOnline(1) {
		t.Error("user should stay online via the fast connection")
	}

	hub.Unregister(1, fast)
	if hub.IsOnline(1) {
		t.Error("slow connection should already be unregistered")
	}
}
