// internal/subscriptions/models.go
package subscriptions

import (
	"time"

	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
)

// Subscription statuses. Rejection and removal delete the row, so there is
// no persisted "denied" state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

type Subscription struct {
	ID             int64      `json:"id" db:"id"`
	SubscriberID   int64      `json:"subscriber_id" db:"subscriber_id"`
	ChannelID      int64      `json:"channel_id" db:"channel_id"`
	Status         string     `json:"status" db:"status"`
	RequestMessage *string    `json:"request_message,omitempty" db:"request_message"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty" db:"approved_at"`

	// Subscriber is attached on channel-side listings, Channel (with its
	// owner card) on the subscriber's own listing.
	Subscriber *SubscriberInfo   `json:"subscriber,omitempty"`
	Channel    *channels.Channel `json:"channel,omitempty"`
}

// SubscriberInfo is the denormalized user card shown in subscriber lists.
type SubscriberInfo struct {
	ID       int64   `json:"id" db:"id"`
	Username string  `json:"username" db:"username"`
	Name     string  `json:"name" db:"name"`
	Avatar   *string `json:"avatar" db:"avatar"`
	Verified bool    `json:"verified" db:"verified"`
}

type SubscribeRequest struct {
	RequestMessage *string `json:"request_message,omitempty" validate:"omitempty,max=200"`
}

// SubscribeResult reports the post-subscribe status so clients can show
// "subscribed" vs "request sent".
type SubscribeResult struct {
	Subscription *Subscription `json:"subscription"`
	Message      string        `json:"-"`
}
