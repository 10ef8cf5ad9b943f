package stories

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

func (f *fixture) channelFor(t *testing.T, userID int64) *channels.Channel {
	t.Helper()
	channel := &channels.Channel{UserID: userID, Name: "Channel", IsPrimary: true}
	require.NoError(t, f.channelRepo.CreateChannel(context.Background(), channel))
	return channel
}

func TestCreateStoryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	_, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   "   ",
	})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	long := make([]rune, MaxContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   string(long),
	})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: 999,
		Content:   "hello",
	})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	// Only the channel owner may post into it
	_, err = f.service.CreateStory(ctx, 2, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   "hello",
	})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestCreateStoryTrimsAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	result, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   "  padded  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "padded", result.Story.Content)
	assert.Equal(t, "Story created", result.Message)
	assert.Equal(t, 0, result.Story.LikesCount)
	assert.NotEmpty(t, result.Story.Timestamp)

	updated, err := f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StoryCount)
}

func TestCommentRequiresExistingParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	missing := int64(404)
	_, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		ParentID:  &missing,
		Content:   "orphan",
	})
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	// No row was created
	list, err := f.repo.ListStories(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoryCommentLikeScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelA := f.channelFor(t, 1)
	channelB := f.channelFor(t, 2)

	story, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channelA.ID,
		Content:   "Hello world",
	})
	require.NoError(t, err)

	comment, err := f.service.CreateStory(ctx, 2, &CreateStoryRequest{
		ChannelID: channelB.ID,
		ParentID:  &story.Story.ID,
		Content:   "Nice!",
	})
	require.NoError(t, err)
	assert.Equal(t, "Comment created", comment.Message)
	require.NotNil(t, comment.Story.ParentID)
	assert.Equal(t, story.Story.ID, *comment.Story.ParentID)

	result, err := f.service.ToggleLike(ctx, story.Story.ID, 3)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.Story.LikesCount)
	assert.Equal(t, 1, result.Story.CommentsCount)
	assert.Equal(t, []int64{3}, result.Story.LikedBy)
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	story, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   "toggle me",
	})
	require.NoError(t, err)

	first, err := f.service.ToggleLike(ctx, story.Story.ID, 2)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.Story.LikesCount)

	second, err := f.service.ToggleLike(ctx, story.Story.ID, 2)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 0, second.Story.LikesCount)
	assert.Empty(t, second.Story.LikedBy)
}

func TestUpdateStoryAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	story, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   "original",
	})
	require.NoError(t, err)

	_, err = f.service.UpdateStory(ctx, story.Story.ID, 2, &UpdateStoryRequest{Content: "hijacked"})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	fetched, err := f.service.GetStory(ctx, story.Story.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", fetched.Content)

	_, err = f.service.UpdateStory(ctx, story.Story.ID, 1, &UpdateStoryRequest{Content: "  "})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	updated, err := f.service.UpdateStory(ctx, story.Story.ID, 1, &UpdateStoryRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
}

func TestDeleteStoryKeepsReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	story, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		Content:   "parent",
	})
	require.NoError(t, err)

	reply, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID,
		ParentID:  &story.Story.ID,
		Content:   "child",
	})
	require.NoError(t, err)

	err = f.service.DeleteStory(ctx, story.Story.ID, 2)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	require.NoError(t, f.service.DeleteStory(ctx, story.Story.ID, 1))

	_, err = f.service.GetStory(ctx, story.Story.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	// The reply survives as an orphan
	orphan, err := f.service.GetStory(ctx, reply.Story.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan.ParentID)
	assert.Equal(t, story.Story.ID, *orphan.ParentID)

	// Both creates counted, one delete subtracted
	updated, err := f.channelRepo.GetChannel(ctx, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StoryCount)
}

func TestGetThread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	root, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID, Content: "root",
	})
	require.NoError(t, err)

	replyA, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID, ParentID: &root.Story.ID, Content: "first reply",
	})
	require.NoError(t, err)

	_, err = f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID, ParentID: &root.Story.ID, Content: "second reply",
	})
	require.NoError(t, err)

	nested, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID, ParentID: &replyA.Story.ID, Content: "nested",
	})
	require.NoError(t, err)

	thread, err := f.service.GetThread(ctx, root.Story.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", thread.Story.Content)
	require.Len(t, thread.Replies, 2)
	// Replies come back oldest-first
	assert.Equal(t, "first reply", thread.Replies[0].Story.Content)
	assert.Equal(t, "second reply", thread.Replies[1].Story.Content)
	require.Len(t, thread.Replies[0].Replies, 1)
	assert.Equal(t, nested.Story.ID, thread.Replies[0].Replies[0].Story.ID)
}

func TestFeedOrderingAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	for _, content := range []string{"one", "two", "three"} {
		_, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
			ChannelID: channel.ID, Content: content,
		})
		require.NoError(t, err)
	}

	feed, err := f.service.ListFeed(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "three", feed[0].Content)
	assert.Equal(t, "two", feed[1].Content)

	rest, err := f.service.ListFeed(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "one", rest[0].Content)
}

func TestCommentsCountTracksChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channel := f.channelFor(t, 1)

	root, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID, Content: "root",
	})
	require.NoError(t, err)

	reply, err := f.service.CreateStory(ctx, 1, &CreateStoryRequest{
		ChannelID: channel.ID, ParentID: &root.Story.ID, Content: "reply",
	})
	require.NoError(t, err)

	fetched, err := f.service.GetStory(ctx, root.Story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.CommentsCount)

	require.NoError(t, f.service.DeleteStory(ctx, reply.Story.ID, 1))

	fetched, err = f.service.GetStory(ctx, root.Story.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fetched.CommentsCount)
}
