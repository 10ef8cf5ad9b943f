// internal/users/models.go
package users

import (
	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
)

// Profile is a user plus aggregate social counts.
type Profile struct {
	*auth.User

	// SubscriberCount sums approved subscribers across owned channels.
	SubscriberCount int `json:"subscriber_count"`
	// SubscriptionCount is how many channels this user follows.
	SubscriptionCount int `json:"subscription_count"`
	ChannelCount      int `json:"channel_count"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio      *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
	Website  *string `json:"website,omitempty" validate:"omitempty,max=100"`
	ThemeID  *string `json:"theme_id,omitempty" validate:"omitempty,max=50"`
}
