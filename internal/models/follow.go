package models

import "time"

// Follow represents an Instagram-style follow relationship
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// Follow request statuses.
const (
	FollowRequestPending  = "pending"
	FollowRequestAccepted = "accepted"
	FollowRequestRejected = "rejected"
)

// FollowRequest represents a pending request to follow a private account.
// At most one pending request per (requester, target) pair.
type FollowRequest struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequesterID uint      `json:"requester_id" gorm:"index;uniqueIndex:idx_requester_target"`
	TargetID    uint      `json:"target_id" gorm:"index;uniqueIndex:idx_requester_target"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateFollowRequest defines the request body for accepting/rejecting a follow request
type UpdateFollowRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
