package models

import (
	"github.com/golang-jwt/jwt/v4"
)

// User is the relational profile record. Authentication and token issuance
// live outside this service; the JWT middleware only extracts the user ID.
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"uniqueIndex;size:30"`
	DisplayName string `json:"display_name" gorm:"size:50"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	AvatarURL   string `json:"avatar_url"`
	IsPrivate   bool   `json:"is_private" gorm:"default:false"` // private accounts receive follow requests instead of followers
}

// UserCompact is the sender shape embedded in notification payloads.
type UserCompact struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// ToCompact returns the compact representation used on the wire.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
