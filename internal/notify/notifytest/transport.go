package notifytest

import (
	"context"
	"sync"

	"github.com/mehedi90s/socialite/backend/internal/models"
)

// Event is one recorded SendToUser call.
type Event struct {
	UserID  uint
	Name    string
	Payload interface{}
}

// Transport records every event handed to it. Online controls IsOnline
// answers; Err, when set, is returned from every SendToUser call.
type Transport struct {
	mu     sync.Mutex
	events []Event

	Online map[uint]bool
	Err    error
}

// NewTransport creates a Transport with no users online.
func NewTransport() *Transport {
	return &Transport{Online: make(map[uint]bool)}
}

func (t *Transport) SendToUser(userID uint, event string, payload interface{}) error {
	t.mu.Lock()
	t.events = append(t.events, Event{UserID: userID, Name: event, Payload: payload})
	t.mu.Unlock()
	return t.Err
}

func (t *Transport) IsOnline(userID uint) bool {
	return t.Online[userID]
}

// Events returns a copy of the recorded events in send order.
func (t *Transport) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Event{}, t.events...)
}

// EventsFor returns recorded events with the given name, in send order.
func (t *Transport) EventsFor(name string) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var matched []Event
	for _, e := range t.events {
		if e.Name == name {
			matched = append(matched, e)
		}
	}
	return matched
}

// PushRecorder records offline push attempts.
type PushRecorder struct {
	mu     sync.Mutex
	pushed []uint
}

func (p *PushRecorder) Push(_ context.Context, userID uint, _ *models.Notification) error {
	p.mu.Lock()
	p.pushed = append(p.pushed, userID)
	p.mu.Unlock()
	return nil
}

// Pushed returns the recipient IDs of recorded pushes.
func (p *PushRecorder) Pushed() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint{}, p.pushed...)
}
