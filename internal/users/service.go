// internal/users/service.go
// Public profiles and self-service profile updates.

package users

import (
	"context"
	"strings"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
	"github.com/kinfolk-app/kinfolk-backend/internal/subscriptions"
)

// UserStore is the slice of the auth repository profile management needs.
// Satisfied by auth.Repository.
type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*auth.User, error)
	UpdateUser(ctx context.Context, user *auth.User) error
}

// ChannelStore provides the owned channels whose subscriber counts roll up
// into the profile. Satisfied by channels.Repository.
type ChannelStore interface {
	ListChannels(ctx context.Context, userID *int64) ([]*channels.Channel, error)
}

// SubscriptionStore provides the user's outbound subscriptions.
// Satisfied by subscriptions.Repository.
type SubscriptionStore interface {
	ListUserSubscriptions(ctx context.Context, subscriberID int64) ([]*subscriptions.Subscription, error)
}

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID, callerID int64, req *UpdateProfileRequest) (*Profile, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (*auth.User, error)
}

type service struct {
	users    UserStore
	channels ChannelStore
	subs     SubscriptionStore
}

func NewService(users UserStore, channelStore ChannelStore, subStore SubscriptionStore) Service {
	return &service{
		users:    users,
		channels: channelStore,
		subs:     subStore,
	}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned, err := s.channels.ListChannels(ctx, &userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list channels", err)
	}
	subscribers := 0
	for _, channel := range owned {
		subscribers += channel.SubscriberCount
	}

	// Approved rows only; pending requests are not subscriptions yet
	following, err := s.subs.ListUserSubscriptions(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to list subscriptions", err)
	}

	return &Profile{
		User:              user,
		SubscriberCount:   subscribers,
		SubscriptionCount: len(following),
		ChannelCount:      len(owned),
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID, callerID int64, req *UpdateProfileRequest) (*Profile, error) {
	if userID != callerID {
		return nil, apperrors.Forbidden("You can only update your own profile")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		user.Name = name
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Location != nil {
		user.Location = req.Location
	}
	if req.Website != nil {
		user.Website = req.Website
	}
	if req.ThemeID != nil {
		user.ThemeID = req.ThemeID
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, userID)
}

func (s *service) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) (*auth.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Avatar = &avatarURL
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
