package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. A new follow_request from the same sender supersedes
// any earlier unread one for the same recipient instead of stacking.
const (
	NotificationLike          = "like"
	NotificationComment       = "comment"
	NotificationFollow        = "follow"
	NotificationFollowRequest = "follow_request"
	NotificationFollowAccept  = "follow_accept"
	NotificationMention       = "mention"
)

// Subject kinds for the object that triggered a notification.
const (
	SubjectPost    = "post"
	SubjectComment = "comment"
	SubjectNone    = "none"
)

// Subject is a tagged reference to the triggering object. At most one
// reference per notification; Kind tells consumers how to resolve Ref.
type Subject struct {
	Kind string `bson:"kind" json:"kind" validate:"omitempty,oneof=post comment none"`
	Ref  string `bson:"ref,omitempty" json:"ref,omitempty"`
}

// PostSubject builds a Subject pointing at a post.
func PostSubject(postID string) Subject {
	return Subject{Kind: SubjectPost, Ref: postID}
}

// CommentSubject builds a Subject pointing at a comment.
func CommentSubject(commentID string) Subject {
	return Subject{Kind: SubjectComment, Ref: commentID}
}

// NoSubject builds the empty Subject variant.
func NoSubject() Subject {
	return Subject{Kind: SubjectNone}
}

// Notification represents a user notification (MongoDB). Records expire via a
// TTL index on created_at after the configured retention window.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID uint               `bson:"recipient_id" json:"recipient_id"`
	SenderID    uint               `bson:"sender_id" json:"sender_id"`
	Type        string             `bson:"type" json:"type"`
	Message     string             `bson:"message" json:"message"`
	Subject     Subject            `bson:"subject" json:"subject"`
	IsRead      bool               `bson:"is_read" json:"is_read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// IsValidNotificationType reports whether t is one of the known types.
func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow,
		NotificationFollowRequest, NotificationFollowAccept, NotificationMention:
		return true
	}
	return false
}

// CreateNotificationRequest defines the payload accepted by the internal
// notification-send endpoint used by the like/comment/mention action services.
type CreateNotificationRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	SenderID    uint   `json:"sender_id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=like comment follow follow_request follow_accept mention"`
	Message     string `json:"message" validate:"required,min=1,max=500"`
	SubjectKind string `json:"subject_kind,omitempty" validate:"omitempty,oneof=post comment none"`
	SubjectRef  string `json:"subject_ref,omitempty"`
}
