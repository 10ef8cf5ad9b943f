package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/subscriptions"
)

type fixture struct {
	service  Service
	users    *auth.MemoryRepository
	channels *channels.MemoryRepository
	subs     *subscriptions.MemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userRepo := auth.NewMemoryRepository()
	channelRepo := channels.NewMemoryRepository()
	subRepo := subscriptions.NewMemoryRepository()
	return &fixture{
		service:  NewService(userRepo, channelRepo, subRepo),
		users:    userRepo,
		channels: channelRepo,
		subs:     subRepo,
	}
}

func (f *fixture) user(t *testing.T, username string) *auth.User {
	t.Helper()
	user := &auth.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     strings.ToUpper(username[:1]) + username[1:],
	}
	require.NoError(t, f.users.CreateUser(context.Background(), user))
	return user
}

func TestGetProfileAggregatesCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")

	a := &channels.Channel{UserID: owner.ID, Name: "A", SubscriberCount: 2}
	b := &channels.Channel{UserID: owner.ID, Name: "B", SubscriberCount: 3}
	require.NoError(t, f.channels.CreateChannel(ctx, a))
	require.NoError(t, f.channels.CreateChannel(ctx, b))

	require.NoError(t, f.subs.Create(ctx, &subscriptions.Subscription{
		SubscriberID: owner.ID, ChannelID: 100, Status: subscriptions.StatusApproved,
	}))
	require.NoError(t, f.subs.Create(ctx, &subscriptions.Subscription{
		SubscriberID: owner.ID, ChannelID: 101, Status: subscriptions.StatusPending,
	}))

	profile, err := f.service.GetProfile(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, profile.SubscriberCount)
	assert.Equal(t, 1, profile.SubscriptionCount)
	assert.Equal(t, 2, profile.ChannelCount)

	_, err = f.service.GetProfile(ctx, 999)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "ada")

	bio := "writes code"
	theme := "midnight"
	_, err := f.service.UpdateProfile(ctx, user.ID, user.ID+1, &UpdateProfileRequest{Bio: &bio})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	tooLong := strings.Repeat("x", 201)
	_, err = f.service.UpdateProfile(ctx, user.ID, user.ID, &UpdateProfileRequest{Bio: &tooLong})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	profile, err := f.service.UpdateProfile(ctx, user.ID, user.ID, &UpdateProfileRequest{
		Bio:     &bio,
		ThemeID: &theme,
	})
	require.NoError(t, err)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, "writes code", *profile.Bio)
	require.NotNil(t, profile.ThemeID)
	assert.Equal(t, "midnight", *profile.ThemeID)

	// Untouched fields survive a partial update
	assert.Equal(t, "Ada", profile.Name)
}

func TestUpdateAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "ada")

	updated, err := f.service.UpdateAvatar(ctx, user.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	require.NotNil(t, updated.Avatar)
	assert.Equal(t, "https://cdn.example.com/a.png", *updated.Avatar)

	fetched, err := f.users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Avatar)
	assert.Equal(t, "https://cdn.example.com/a.png", *fetched.Avatar)
}
