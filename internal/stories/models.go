// internal/stories/models.go
package stories

import (
	"time"
)

// MaxContentLength bounds story and comment text.
const MaxContentLength = 500

// MaxMediaItems bounds attachments per story.
const MaxMediaItems = 4

// Story is a post or a comment. A non-nil ParentID makes it a comment.
type Story struct {
	ID            int64   `json:"id" db:"id"`
	UserID        int64   `json:"user_id" db:"user_id"`
	ChannelID     int64   `json:"channel_id" db:"channel_id"`
	ParentID      *int64  `json:"parent_id,omitempty" db:"parent_id"`
	Content       string  `json:"content" db:"content"`
	LikesCount    int     `json:"likes" db:"likes_count"`
	CommentsCount int     `json:"comments" db:"comments_count"`
	LikedBy       []int64 `json:"liked_by"`
	Media         []Media `json:"media"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// Timestamp is the humanized age of the story ("now", "5m", "3h").
	Timestamp string `json:"timestamp" db:"-"`

	Author *AuthorInfo `json:"author,omitempty"`
}

// Media is a single attachment, ordered by Position within its story.
type Media struct {
	ID        string  `json:"id" db:"id"`
	StoryID   int64   `json:"-" db:"story_id"`
	Type      string  `json:"type" db:"type"`
	URL       string  `json:"url" db:"url"`
	Thumbnail *string `json:"thumbnail,omitempty" db:"thumbnail"`
	Position  int     `json:"-" db:"position"`
}

// AuthorInfo is the denormalized author card attached to feed reads.
type AuthorInfo struct {
	ID       int64   `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	Name     string  `json:"name" db:"name"`
	Avatar   *string `json:"avatar" db:"avatar"`
	Verified bool    `json:"verified" db:"verified"`
}

type MediaInput struct {
	Type      string  `json:"type" validate:"required,oneof=image video"`
	URL       string  `json:"url" validate:"required,max=500"`
	Thumbnail *string `json:"thumbnail,omitempty" validate:"omitempty,max=500"`
}

type CreateStoryRequest struct {
	ChannelID int64        `json:"channel_id" validate:"required,gt=0"`
	ParentID  *int64       `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	Content   string       `json:"content" validate:"required"`
	Media     []MediaInput `json:"media,omitempty" validate:"omitempty,max=4,dive"`
}

type UpdateStoryRequest struct {
	Content string `json:"content" validate:"required"`
}

// ToggleLikeResult carries the post-toggle state and a fresh snapshot.
type ToggleLikeResult struct {
	Liked bool   `json:"liked"`
	Story *Story `json:"story"`
}

// ThreadNode is one story plus its direct replies, recursively.
type ThreadNode struct {
	Story   *Story        `json:"story"`
	Replies []*ThreadNode `json:"replies"`
}
