// internal/channels/models.go
package channels

import (
	"time"
)

// Channel is a stream of stories owned by a single user.
// Every user gets a primary channel at registration and may own up to
// MaxChannelsPerUser in total.
type Channel struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	Name            string    `json:"name" db:"name"`
	Description     *string   `json:"description,omitempty" db:"description"`
	IsPrimary       bool      `json:"is_primary" db:"is_primary"`
	IsPrivate       bool      `json:"is_private" db:"is_private"`
	SubscriberCount int       `json:"subscriber_count" db:"subscriber_count"`
	StoryCount      int       `json:"story_count" db:"story_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	Owner *OwnerInfo `json:"user,omitempty"`
}

// OwnerInfo is the channel owner's public profile slice
type OwnerInfo struct {
	ID       int64   `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	Name     string  `json:"name" db:"name"`
	Avatar   *string `json:"avatar" db:"avatar"`
	Verified bool    `json:"verified" db:"verified"`
}

type CreateChannelRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPrivate   bool   `json:"is_private"`
}

// UpdateChannelRequest carries a partial patch; nil fields are left untouched
type UpdateChannelRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
}
