// Package notifytest provides in-memory fakes for the notification storage
// and transport interfaces, used by handler and service tests.
package notifytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mehedi90s/socialite/backend/internal/models"
	"github.com/mehedi90s/socialite/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is an in-memory NotificationRepository. Inserted records get strictly
// increasing timestamps so "newest" is deterministic in tests.
type Store struct {
	mu    sync.Mutex
	items []models.Notification
	seq   int
}

var _ repositories.NotificationRepository = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Insert(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	if notification.CreatedAt.IsZero() {
		s.seq++
		notification.CreatedAt = time.Unix(0, 0).Add(time.Duration(s.seq) * time.Second)
	}
	s.items = append(s.items, *notification)
	return nil
}

func (s *Store) ListByRecipient(_ context.Context, recipientID uint, page, limit int64) ([]models.Notification, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Notification
	for _, n := range s.items {
		if n.RecipientID == recipientID {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return append([]models.Notification{}, matched[start:end]...), total, nil
}

func (s *Store) UnreadCount(_ context.Context, recipientID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkRead(_ context.Context, id primitive.ObjectID, recipientID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == id && n.RecipientID == recipientID {
			s.items[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (s *Store) MarkAllRead(_ context.Context, recipientID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for i, n := range s.items {
		if n.RecipientID == recipientID && !n.IsRead {
			s.items[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *Store) Delete(_ context.Context, id primitive.ObjectID, recipientID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == id && n.RecipientID == recipientID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (s *Store) FindFollowRequests(_ context.Context, recipientID, senderID uint) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Notification
	for _, n := range s.items {
		if n.RecipientID == recipientID && n.SenderID == senderID && n.Type == models.NotificationFollowRequest {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return matched, nil
}

func (s *Store) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.items[:0]
	for _, n := range s.items {
		if _, ok := drop[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	s.items = kept
	return nil
}

func (s *Store) DeleteByTypeAndSender(_ context.Context, recipientID, senderID uint, notificationType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	kept := s.items[:0]
	for _, n := range s.items {
		if n.RecipientID == recipientID && n.SenderID == senderID && n.Type == notificationType {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.items = kept
	return deleted, nil
}

// All returns a copy of every stored record, in insertion order.
func (s *Store) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification{}, s.items...)
}
