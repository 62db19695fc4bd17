package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Envelope is the wire frame for every server→client event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// session is a single live connection able to accept outbound frames.
// enqueue reports false when the session's buffer is full.
type session interface {
	enqueue(message []byte) bool
	close()
}

// Hub is the in-process connection registry: per-recipient rooms over
// websocket connections. It is injected wherever online-status or delivery is
// needed so a multi-process-aware registry can replace it without touching
// call sites.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[session]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[session]struct{})}
}

// Register adds a connection to the user's room.
func (h *Hub) Register(userID uint, s session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[userID]
	if !ok {
		room = make(map[session]struct{})
		h.rooms[userID] = room
	}
	room[s] = struct{}{}
}

// Unregister removes a connection, dropping the room when it empties.
func (h *Hub) Unregister(userID uint, s session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[userID]
	if !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, userID)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID]) > 0
}

// SendToUser delivers one event to every connection in the user's room.
// Fire-and-forget: an offline user is not an error, and a connection whose
// send buffer is full is dropped rather than blocked on.
func (h *Hub) SendToUser(userID uint, event string, payload interface{}) error {
	message, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	h.mu.RLock()
	sessions := make([]session, 0, len(h.rooms[userID]))
	for s := range h.rooms[userID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		if !s.enqueue(message) {
			log.Printf("dropping slow connection for user %d", userID)
			h.Unregister(userID, s)
			s.close()
		}
	}
	return nil
}
