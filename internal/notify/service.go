package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/mehedi90s/socialite/backend/internal/models"
	"github.com/mehedi90s/socialite/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateInput is the validated input for creating a notification.
type CreateInput struct {
	RecipientID uint           `validate:"required"`
	SenderID    uint           `validate:"required"`
	Type        string         `validate:"required,oneof=like comment follow follow_request follow_accept mention"`
	Message     string         `validate:"required"`
	Subject     models.Subject `validate:"omitempty"`
}

// Service owns the notification lifecycle: creation with follow-request
// supersession, read/cleanup mutations, and handing stored records to the
// emitter for delivery.
type Service struct {
	store    repositories.NotificationRepository
	emitter  *Emitter
	validate *validator.Validate
}

// NewService creates a new notification Service
func NewService(store repositories.NotificationRepository, emitter *Emitter) *Service {
	return &Service{
		store:    store,
		emitter:  emitter,
		validate: validator.New(),
	}
}

// Create validates the input, applies follow-request supersession, persists
// the record, and emits it to the recipient's channel. Store failures
// propagate; delivery failures never do.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if input.Subject.Kind == "" {
		input.Subject = models.NoSubject()
	}

	if input.Type == models.NotificationFollowRequest {
		// The incoming record will be the newest for the pair, so every
		// existing follow_request from this sender is superseded.
		if err := s.cleanupFollowRequests(ctx, input.RecipientID, input.SenderID, 0); err != nil {
			return nil, err
		}
	}

	notification := &models.Notification{
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		Type:        input.Type,
		Message:     input.Message,
		Subject:     input.Subject,
		IsRead:      false,
	}
	if err := s.store.Insert(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.emitter.NotificationCreated(ctx, notification)
	return notification, nil
}

// CleanupDuplicateFollowRequests deletes all but the newest follow_request
// record for the (recipient, sender) pair.
func (s *Service) CleanupDuplicateFollowRequests(ctx context.Context, recipientID, senderID uint) error {
	return s.cleanupFollowRequests(ctx, recipientID, senderID, 1)
}

// cleanupFollowRequests deletes all follow_request records for the pair past
// the first keep entries, newest first.
func (s *Service) cleanupFollowRequests(ctx context.Context, recipientID, senderID uint, keep int) error {
	existing, err := s.store.FindFollowRequests(ctx, recipientID, senderID)
	if err != nil {
		return fmt.Errorf("failed to find duplicate follow requests: %w", err)
	}
	if len(existing) <= keep {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(existing)-keep)
	for _, n := range existing[keep:] {
		ids = append(ids, n.ID)
	}
	if err := s.store.DeleteByIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete superseded follow requests: %w", err)
	}
	return nil
}

// MarkRead marks one notification as read. Idempotent: marking an already
// read record succeeds. Returns the recipient's updated unread count.
func (s *Service) MarkRead(ctx context.Context, id string, recipientID uint) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid notification ID", ErrValidation)
	}
	if err := s.store.MarkRead(ctx, objID, recipientID); err != nil {
		return 0, err
	}
	// Other connected sessions recompute from this event instead of
	// decrementing locally.
	s.emitter.UnreadCountChanged(ctx, recipientID)
	return s.store.UnreadCount(ctx, recipientID)
}

// MarkAllRead marks every notification for the recipient as read and returns
// the number of records updated.
func (s *Service) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	count, err := s.store.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.emitter.UnreadCountChanged(ctx, recipientID)
	return count, nil
}

// Delete hard-deletes one notification owned by the recipient.
func (s *Service) Delete(ctx context.Context, id string, recipientID uint) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid notification ID", ErrValidation)
	}
	return s.store.Delete(ctx, objID, recipientID)
}

// UnreadCount returns the recipient's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.store.UnreadCount(ctx, recipientID)
}

// List returns a page of notifications newest first, with the unread count
// and whether more pages follow.
func (s *Service) List(ctx context.Context, recipientID uint, page, limit int64) ([]models.Notification, int64, bool, error) {
	notifications, total, err := s.store.ListByRecipient(ctx, recipientID, page, limit)
	if err != nil {
		return nil, 0, false, err
	}
	unread, err := s.store.UnreadCount(ctx, recipientID)
	if err != nil {
		return nil, 0, false, err
	}
	hasMore := page*limit < total
	return notifications, unread, hasMore, nil
}

// Remove deletes every notification of the given type from the sender to the
// recipient and, when anything was deleted, emits the removal signal so
// connected clients drop their matching cache entries. Covers the accept,
// reject and unfollow/withdraw cases uniformly.
func (s *Service) Remove(ctx context.Context, recipientID, senderID uint, notificationType string) error {
	deleted, err := s.store.DeleteByTypeAndSender(ctx, recipientID, senderID, notificationType)
	if err != nil {
		return fmt.Errorf("failed to remove notifications: %w", err)
	}
	if deleted > 0 {
		s.emitter.NotificationRemoved(ctx, recipientID, senderID, notificationType)
	}
	return nil
}

// NotifyFollow is a best-effort helper for the follow action: failures are
// logged, never surfaced, so the follow itself is unaffected.
func (s *Service) NotifyFollow(ctx context.Context, sender *models.User, recipientID uint) {
	s.bestEffortCreate(ctx, CreateInput{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        models.NotificationFollow,
		Message:     sender.DisplayName + " started following you",
	})
}

// NotifyFollowRequest is the best-effort helper for follow requests to
// private accounts. Supersession of earlier requests happens inside Create.
func (s *Service) NotifyFollowRequest(ctx context.Context, sender *models.User, recipientID uint) {
	s.bestEffortCreate(ctx, CreateInput{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        models.NotificationFollowRequest,
		Message:     sender.DisplayName + " requested to follow you",
	})
}

// NotifyFollowAccept is the best-effort helper for the accept flow.
func (s *Service) NotifyFollowAccept(ctx context.Context, sender *models.User, recipientID uint) {
	s.bestEffortCreate(ctx, CreateInput{
		RecipientID: recipientID,
		SenderID:    sender.ID,
		Type:        models.NotificationFollowAccept,
		Message:     sender.DisplayName + " accepted your follow request",
	})
}

func (s *Service) bestEffortCreate(ctx context.Context, input CreateInput) {
	if _, err := s.Create(ctx, input); err != nil {
		log.Printf("best-effort notification create failed (type=%s recipient=%d): %v", input.Type, input.RecipientID, err)
	}
}
