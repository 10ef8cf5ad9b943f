package channels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

func newTestService(t *testing.T) (Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func TestCreateChannelLimit(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < MaxChannelsPerUser; i++ {
		_, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "Channel"})
		require.NoError(t, err)
	}

	_, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "One too many"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	// Other users are unaffected by someone else's quota
	_, err = service.CreateChannel(ctx, 2, &CreateChannelRequest{Name: "Fresh start"})
	assert.NoError(t, err)
}

func TestChannelNameMustNotBeBlank(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	channel, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "  Kept  "})
	require.NoError(t, err)
	assert.Equal(t, "Kept", channel.Name)

	blank := " \t "
	_, err = service.UpdateChannel(ctx, channel.ID, 1, &UpdateChannelRequest{Name: &blank})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	unchanged, err := service.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", unchanged.Name)
}

func TestFirstChannelIsPrimary(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	first, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "First"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)

	second, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "Second"})
	require.NoError(t, err)
	assert.False(t, second.IsPrimary)
}

func TestDeleteChannel(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	primary, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "Primary"})
	require.NoError(t, err)
	extra, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "Extra"})
	require.NoError(t, err)

	err = service.DeleteChannel(ctx, primary.ID, 1)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	err = service.DeleteChannel(ctx, extra.ID, 99)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	require.NoError(t, service.DeleteChannel(ctx, extra.ID, 1))

	_, err = service.GetChannel(ctx, extra.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestUpdateChannelOwnership(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	channel, err := service.CreateChannel(ctx, 1, &CreateChannelRequest{Name: "Mine", IsPrivate: false})
	require.NoError(t, err)

	name := "Renamed"
	private := true
	_, err = service.UpdateChannel(ctx, channel.ID, 2, &UpdateChannelRequest{Name: &name})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	updated, err := service.UpdateChannel(ctx, channel.ID, 1, &UpdateChannelRequest{Name: &name, IsPrivate: &private})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.IsPrivate)
}

func TestCreatePrimaryChannel(t *testing.T) {
	service, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.CreatePrimaryChannel(ctx, 7, "Grace Hopper"))

	userID := int64(7)
	list, err := repo.ListChannels(ctx, &userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsPrimary)
	assert.Equal(t, "Grace Hopper", list[0].Name)
	require.NotNil(t, list[0].Description)
	assert.Equal(t, "Grace Hopper's primary channel", *list[0].Description)
}
