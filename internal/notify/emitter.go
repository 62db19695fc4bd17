package notify

import (
	"context"
	"log"
	"time"

	"github.com/mehedi90s/socialite/backend/internal/models"
	"github.com/mehedi90s/socialite/backend/internal/repositories"
)

// Wire events pushed over the recipient's realtime channel.
const (
	EventNotification        = "notification"
	EventNotificationRemoved = "notificationRemoved"
	EventUnreadCount         = "unreadCount"
)

// Transport delivers events to a recipient's channel. A disconnected
// recipient is an expected case, not an error.
type Transport interface {
	SendToUser(userID uint, event string, payload interface{}) error
	IsOnline(userID uint) bool
}

// PushSender is the offline push leg (FCM). Optional.
type PushSender interface {
	Push(ctx context.Context, userID uint, notification *models.Notification) error
}

// NotificationPayload is the wire shape of a pushed notification.
type NotificationPayload struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Message   string             `json:"message"`
	Sender    models.UserCompact `json:"sender"`
	Subject   *models.Subject    `json:"subject,omitempty"`
	IsRead    bool               `json:"is_read"`
	CreatedAt time.Time          `json:"created_at"`
}

// RemovalPayload correlates a removal with cached entries by (type, sender).
type RemovalPayload struct {
	Type     string `json:"type"`
	SenderID uint   `json:"sender_id"`
}

// UnreadCountPayload carries the recomputed unread count.
type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

// Emitter bridges store mutations and realtime delivery. It runs
// synchronously after each write, fire-and-forget: delivery failures are
// logged and swallowed because the stored record remains the source of truth
// and surfaces on the next fetch.
type Emitter struct {
	transport Transport
	store     repositories.NotificationRepository
	users     repositories.UserRepository
	push      PushSender
}

// NewEmitter creates a new Emitter. push may be nil to disable the offline
// push leg.
func NewEmitter(transport Transport, store repositories.NotificationRepository, users repositories.UserRepository, push PushSender) *Emitter {
	return &Emitter{
		transport: transport,
		store:     store,
		users:     users,
		push:      push,
	}
}

// NotificationCreated pushes a stored notification to the recipient, then a
// separate unreadCount event reflecting the state after the write. When the
// recipient has no live connection, the payload is additionally handed to the
// push sender.
func (e *Emitter) NotificationCreated(ctx context.Context, notification *models.Notification) {
	payload := NotificationPayload{
		ID:        notification.ID.Hex(),
		Type:      notification.Type,
		Message:   notification.Message,
		Sender:    e.senderCompact(notification.SenderID),
		IsRead:    false,
		CreatedAt: notification.CreatedAt,
	}
	if notification.Subject.Kind != "" && notification.Subject.Kind != models.SubjectNone {
		subject := notification.Subject
		payload.Subject = &subject
	}

	if err := e.transport.SendToUser(notification.RecipientID, EventNotification, payload); err != nil {
		log.Printf("notification delivery to user %d failed: %v", notification.RecipientID, err)
	}
	e.emitUnreadCount(ctx, notification.RecipientID)

	if e.push != nil && !e.transport.IsOnline(notification.RecipientID) {
		if err := e.push.Push(ctx, notification.RecipientID, notification); err != nil {
			log.Printf("push delivery to user %d failed: %v", notification.RecipientID, err)
		}
	}
}

// NotificationRemoved tells the recipient's clients to drop every cached
// entry matching (type, sender), then refreshes the unread count.
func (e *Emitter) NotificationRemoved(ctx context.Context, recipientID, senderID uint, notificationType string) {
	payload := RemovalPayload{Type: notificationType, SenderID: senderID}
	if err := e.transport.SendToUser(recipientID, EventNotificationRemoved, payload); err != nil {
		log.Printf("removal delivery to user %d failed: %v", recipientID, err)
	}
	e.emitUnreadCount(ctx, recipientID)
}

// UnreadCountChanged re-emits the current unread count, used after bulk
// mark-read operations.
func (e *Emitter) UnreadCountChanged(ctx context.Context, recipientID uint) {
	e.emitUnreadCount(ctx, recipientID)
}

func (e *Emitter) emitUnreadCount(ctx context.Context, recipientID uint) {
	count, err := e.store.UnreadCount(ctx, recipientID)
	if err != nil {
		log.Printf("failed to recompute unread count for user %d: %v", recipientID, err)
		return
	}
	if err := e.transport.SendToUser(recipientID, EventUnreadCount, UnreadCountPayload{Count: count}); err != nil {
		log.Printf("unread count delivery to user %d failed: %v", recipientID, err)
	}
}

func (e *Emitter) senderCompact(senderID uint) models.UserCompact {
	sender, err := e.users.GetUserByID(senderID)
	if err != nil {
		return models.UserCompact{ID: senderID}
	}
	return sender.ToCompact()
}
