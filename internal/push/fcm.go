package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/mehedi90s/socialite/backend/internal/models"
)

// FCMSender delivers notifications through Firebase Cloud Messaging when the
// recipient has no live websocket connection. Recipients subscribe to their
// per-user topic on the device; no token bookkeeping happens server-side.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender creates a new FCMSender
func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

// Push sends one notification to the recipient's topic. The collapse key is
// (type, sender) so FCM itself folds repeated pushes from the same sender.
func (s *FCMSender) Push(ctx context.Context, userID uint, notification *models.Notification) error {
	collapseKey := fmt.Sprintf("%s:%d", notification.Type, notification.SenderID)
	message := &messaging.Message{
		Topic: fmt.Sprintf("user-%d", userID),
		Notification: &messaging.Notification{
			Title: "Socialite",
			Body:  notification.Message,
		},
		Data: map[string]string{
			"notification_id": notification.ID.Hex(),
			"type":            notification.Type,
			"sender_id":       fmt.Sprintf("%d", notification.SenderID),
		},
		Android: &messaging.AndroidConfig{CollapseKey: collapseKey},
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Topic": collapseKey},
		},
	}
	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("fcm send failed: %w", err)
	}
	return nil
}
