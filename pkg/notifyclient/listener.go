package notifyclient

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Handlers receives dispatched push events. Nil fields are skipped.
type Handlers struct {
	OnNotification func(Notification)
	OnRemoved      func(notificationType string, senderID uint)
	OnUnreadCount  func(count int64)
}

// CacheHandlers wires the standard handlers for a Cache: pushes merge in,
// removals purge by (type, sender), counts are adopted as-is.
func CacheHandlers(cache *Cache) Handlers {
	return Handlers{
		OnNotification: cache.ApplyPush,
		OnRemoved:      cache.ApplyRemoval,
		OnUnreadCount:  cache.SetUnreadCount,
	}
}

// Listener consumes the per-recipient websocket stream and dispatches events
// to its Handlers. Close detaches the handlers and drops the connection; a
// consumer going away must call it so no callback fires after teardown.
type Listener struct {
	conn *websocket.Conn

	mu       sync.Mutex
	handlers Handlers
	closed   bool
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type removalEvent struct {
	Type     string `json:"type"`
	SenderID uint   `json:"sender_id"`
}

type unreadCountEvent struct {
	Count int64 `json:"count"`
}

// Listen dials the websocket endpoint (e.g. "ws://api:8080/api/v1/ws") with
// the bearer token and starts dispatching.
func Listen(ctx context.Context, wsURL, token string, handlers Handlers) (*Listener, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, err
	}

	l := &Listener{conn: conn, handlers: handlers}
	go l.readLoop()
	return l, nil
}

// Close deregisters the handlers and closes the connection. Safe to call
// more than once.
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.handlers = Handlers{}
	l.mu.Unlock()
	return l.conn.Close()
}

func (l *Listener) readLoop() {
	for {
		_, message, err := l.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame envelope
		if err := json.Unmarshal(message, &frame); err != nil {
			log.Printf("dropping malformed frame: %v", err)
			continue
		}
		l.dispatch(frame)
	}
}

func (l *Listener) dispatch(frame envelope) {
	l.mu.Lock()
	handlers := l.handlers
	l.mu.Unlock()

	switch frame.Event {
	case "notification":
		if handlers.OnNotification == nil {
			return
		}
		var n Notification
		if err := json.Unmarshal(frame.Data, &n); err != nil {
			log.Printf("dropping malformed notification event: %v", err)
			return
		}
		handlers.OnNotification(n)
	case "notificationRemoved":
		if handlers.OnRemoved == nil {
			return
		}
		var ev removalEvent
		if err := json.Unmarshal(frame.Data, &ev); err != nil {
			log.Printf("dropping malformed removal event: %v", err)
			return
		}
		handlers.OnRemoved(ev.Type, ev.SenderID)
	case "unreadCount":
		if handlers.OnUnreadCount == nil {
			return
		}
		var ev unreadCountEvent
		if err := json.Unmarshal(frame.Data, &ev); err != nil {
			log.Printf("dropping malformed unread count event: %v", err)
			return
		}
		handlers.OnUnreadCount(ev.Count)
	}
}
