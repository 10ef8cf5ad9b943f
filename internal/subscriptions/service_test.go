package subscriptions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type fixture struct {
	service     Service
	repo        *MemoryRepository
	channelRepo *channels.MemoryRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewMemoryRepository()
	channelRepo := channels.NewMemoryRepository()
	return &fixture{
		service:     NewService(repo, channelRepo, nil),
		repo:        repo,
		channelRepo: channelRepo,
	}
}

func (f *fixture) channel(t *testing.T, ownerID int64, private bool) *channels.Channel {
	t.Helper()
	channel := &channels.Channel{UserID: ownerID, Name: "Channel", IsPrivate: private}
	require.NoError(t, f.channelRepo.CreateChannel(context.Background(), channel))
	return channel
}

// checkCounter asserts the denormalized subscriber counter matches the
// number of approved rows.
func (f *fixture) checkCounter(t *testing.T, channelID int64) {
	t.Helper()
	ctx := context.Background()
	channel, err := f.channelRepo.GetChannel(ctx, channelID)
	require.NoError(t, err)
	approved, err := f.repo.CountApproved(ctx, channelID)
	require.NoError(t, err)
	assert.Equal(t, approved, channel.SubscriberCount)
}

func TestSubscribePublicChannel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, false)

	result, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Subscription.Status)
	assert.NotNil(t, result.Subscription.ApprovedAt)
	f.checkCounter(t, channel.ID)

	updated, err := f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.SubscriberCount)
}

func TestSubscribePrivateChannelStaysPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, true)

	message := "let me in"
	result, err := f.service.Subscribe(ctx, 2, channel.ID, &SubscribeRequest{RequestMessage: &message})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Subscription.Status)
	assert.Nil(t, result.Subscription.ApprovedAt)

	updated, err := f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SubscriberCount)
	f.checkCounter(t, channel.ID)
}

func TestSubscribeGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := f.channel(t, 1, false)
	private := f.channel(t, 1, true)

	_, err := f.service.Subscribe(ctx, 1, public.ID, nil)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = f.service.Subscribe(ctx, 2, 999, nil)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = f.service.Subscribe(ctx, 2, public.ID, nil)
	require.NoError(t, err)
	_, err = f.service.Subscribe(ctx, 2, public.ID, nil)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	_, err = f.service.Subscribe(ctx, 2, private.ID, nil)
	require.NoError(t, err)
	_, err = f.service.Subscribe(ctx, 2, private.ID, nil)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestApproveLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, true)

	result, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)
	subID := result.Subscription.ID

	// Only the owner approves
	_, err = f.service.Approve(ctx, subID, 2)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	f.checkCounter(t, channel.ID)

	approved, err := f.service.Approve(ctx, subID, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
	f.checkCounter(t, channel.ID)

	// Approving twice is surfaced, not swallowed
	_, err = f.service.Approve(ctx, subID, 1)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	f.checkCounter(t, channel.ID)
}

func TestRejectLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, true)

	result, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)
	subID := result.Subscription.ID

	err = f.service.Reject(ctx, subID, 2)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	require.NoError(t, f.service.Reject(ctx, subID, 1))
	f.checkCounter(t, channel.ID)

	// The row is gone, allowing a fresh request
	_, err = f.repo.GetByID(ctx, subID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	_, err = f.service.Subscribe(ctx, 2, channel.ID, nil)
	assert.NoError(t, err)
}

func TestRejectApprovedSubscriptionFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, false)

	result, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)

	err = f.service.Reject(ctx, result.Subscription.ID, 1)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	f.checkCounter(t, channel.ID)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := f.channel(t, 1, false)
	private := f.channel(t, 1, true)

	_, err := f.service.Subscribe(ctx, 2, public.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.service.Unsubscribe(ctx, 2, public.ID))
	f.checkCounter(t, public.ID)

	updated, err := f.channelRepo.GetChannel(ctx, public.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SubscriberCount)

	// Withdrawing a pending request never touches the counter
	_, err = f.service.Subscribe(ctx, 2, private.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.service.Unsubscribe(ctx, 2, private.ID))
	f.checkCounter(t, private.ID)

	err = f.service.Unsubscribe(ctx, 2, public.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestPrivateChannelFullScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, true)

	result, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Subscription.Status)

	updated, err := f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SubscriberCount)

	approved, err := f.service.Approve(ctx, result.Subscription.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)

	updated, err = f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.SubscriberCount)

	require.NoError(t, f.service.RemoveSubscriber(ctx, channel.ID, 2, 1))

	updated, err = f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SubscriberCount)
	_, err = f.repo.GetByPair(ctx, 2, channel.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestRemoveSubscriberOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, false)

	_, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)

	err = f.service.RemoveSubscriber(ctx, channel.ID, 2, 3)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	f.checkCounter(t, channel.ID)
}

func TestListSubscribersOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, true)

	_, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)
	_, err = f.service.Subscribe(ctx, 3, channel.ID, nil)
	require.NoError(t, err)

	_, err = f.service.ListChannelSubscribers(ctx, channel.ID, 2)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	list, err := f.service.ListChannelSubscribers(ctx, channel.ID, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListSubscribersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channel(t, 1, false)

	_, err := f.service.Subscribe(ctx, 2, channel.ID, nil)
	require.NoError(t, err)
	_, err = f.service.Subscribe(ctx, 3, channel.ID, nil)
	require.NoError(t, err)

	list, err := f.service.ListChannelSubscribers(ctx, channel.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].SubscriberID)
	assert.Equal(t, int64(2), list[1].SubscriberID)
}

func TestListUserSubscriptionsApprovedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := f.channel(t, 1, false)
	private := f.channel(t, 3, true)

	_, err := f.service.Subscribe(ctx, 2, public.ID, nil)
	require.NoError(t, err)
	pending, err := f.service.Subscribe(ctx, 2, private.ID, nil)
	require.NoError(t, err)
	require.Equal(t, StatusPending, pending.Subscription.Status)

	list, err := f.service.ListUserSubscriptions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusApproved, list[0].Status)
	require.NotNil(t, list[0].Channel)
	assert.Equal(t, public.ID, list[0].Channel.ID)

	// The approved request shows up once the owner lets it through
	_, err = f.service.Approve(ctx, pending.Subscription.ID, 3)
	require.NoError(t, err)

	list, err = f.service.ListUserSubscriptions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, private.ID, list[0].Channel.ID)
	assert.Equal(t, public.ID, list[1].Channel.ID)
}
