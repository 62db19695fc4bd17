package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mehedi90s/socialite/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotificationNotFound is returned when a mutation targets a notification
// that does not exist or is not owned by the given recipient.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the storage primitives for notifications.
// Supersession and emission policy live in the notify service; this layer
// only persists and queries records.
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, page, limit int64) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, recipientID uint) error
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID, recipientID uint) error
	FindFollowRequests(ctx context.Context, recipientID, senderID uint) ([]models.Notification, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error
	DeleteByTypeAndSender(ctx context.Context, recipientID, senderID uint, notificationType string) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
	retention  time.Duration
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository.
// retention is the TTL window after which records expire.
func NewMongoNotificationRepository(db *mongo.Database, retention time.Duration) *MongoNotificationRepository {
	return &MongoNotificationRepository{
		collection: db.Collection("notifications"),
		retention:  retention,
	}
}

// EnsureIndexes creates the query indexes and the TTL expiry index.
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "sender_id", Value: 1}, {Key: "type", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(r.retention.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// Insert stores a new notification in MongoDB
func (r *MongoNotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// ListByRecipient returns a page of notifications newest first, plus the total count
func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications for a recipient
func (r *MongoNotificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

// MarkRead flips is_read for one notification. Marking an already-read record
// again is a no-op, not an error.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, recipientID uint) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips is_read on every unread notification for the recipient
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete hard-deletes one notification owned by the recipient
func (r *MongoNotificationRepository) Delete(ctx context.Context, id primitive.ObjectID, recipientID uint) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// FindFollowRequests returns all follow_request records for the pair, newest first
func (r *MongoNotificationRepository) FindFollowRequests(ctx context.Context, recipientID, senderID uint) ([]models.Notification, error) {
	filter := bson.M{
		"recipient_id": recipientID,
		"sender_id":    senderID,
		"type":         models.NotificationFollowRequest,
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// DeleteByIDs hard-deletes the given records
func (r *MongoNotificationRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

// DeleteByTypeAndSender removes every notification of the given type from the
// sender to the recipient. Used by the accept/reject/unfollow removal flows.
func (r *MongoNotificationRepository) DeleteByTypeAndSender(ctx context.Context, recipientID, senderID uint, notificationType string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{
		"recipient_id": recipientID,
		"sender_id":    senderID,
		"type":         notificationType,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
