// Package notifyclient is the consumer-side companion of the notification
// service: an in-memory reconciliation cache fed by the REST fetch and the
// websocket push stream, plus the presentation policy deciding how each live
// event is surfaced. It depends only on the wire contract, not on server
// internals.
package notifyclient

import "time"

// Notification types mirrored from the wire contract.
const (
	TypeLike          = "like"
	TypeComment       = "comment"
	TypeFollow        = "follow"
	TypeFollowRequest = "follow_request"
	TypeFollowAccept  = "follow_accept"
	TypeMention       = "mention"
)

// Sender identifies the user whose action triggered a notification.
type Sender struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Subject references the triggering object (post or comment).
type Subject struct {
	Kind string `json:"kind"`
	Ref  string `json:"ref,omitempty"`
}

// Notification is the client-side record: the wire fields plus a humanized
// timestamp and transient flags that drive interim UI state until the next
// full refetch.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Sender    Sender    `json:"sender"`
	Subject   *Subject  `json:"subject,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// Client-only state, never sent to the server.
	Timestamp      string `json:"-"`
	IsFollowedBack bool   `json:"-"`
	IsAccepted     bool   `json:"-"`
	IsRejected     bool   `json:"-"`
}
