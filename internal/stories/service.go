// internal/stories/service.go
// Business rules for the story thread model: posting, commenting, likes
// and the reply tree.

package stories

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ChannelStore is the slice of the channels repository the thread model
// needs. Satisfied by channels.Repository.
type ChannelStore interface {
	GetChannel(ctx context.Context, channelID int64) (*channels.Channel, error)
	AddStoryCount(ctx context.Context, channelID int64, delta int) error
}

// CreateResult distinguishes story from comment creation in the
// confirmation message.
type CreateResult struct {
	Story   *Story
	Message string
}

type Service interface {
	CreateStory(ctx context.Context, userID int64, req *CreateStoryRequest) (*CreateResult, error)
	GetStory(ctx context.Context, storyID int64) (*Story, error)
	ListFeed(ctx context.Context, page, limit int) ([]*Story, error)
	ListChannelStories(ctx context.Context, channelID int64, page, limit int) ([]*Story, error)
	UpdateStory(ctx context.Context, storyID, userID int64, req *UpdateStoryRequest) (*Story, error)
	DeleteStory(ctx context.Context, storyID, userID int64) error
	ToggleLike(ctx context.Context, storyID, userID int64) (*ToggleLikeResult, error)
	GetThread(ctx context.Context, storyID int64) (*ThreadNode, error)
}

// ActivityPublisher receives engagement events for the live feed.
// Implementations must not block.
type ActivityPublisher interface {
	PublishActivity(action string, storyID, userID int64)
}

type service struct {
	repo      Repository
	channels  ChannelStore
	publisher ActivityPublisher // optional
}

func NewService(repo Repository, channelStore ChannelStore, publisher ActivityPublisher) Service {
	return &service{
		repo:      repo,
		channels:  channelStore,
		publisher: publisher,
	}
}

func (s *service) CreateStory(ctx context.Context, userID int64, req *CreateStoryRequest) (*CreateResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Validation("Content cannot be empty")
	}
	if len([]rune(content)) > MaxContentLength {
		return nil, apperrors.Validation("Content cannot exceed 500 characters")
	}
	if len(req.Media) > MaxMediaItems {
		return nil, apperrors.Validation("A story can have at most 4 media attachments")
	}

	channel, err := s.channels.GetChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel.UserID != userID {
		return nil, apperrors.Forbidden("You can only post to your own channels")
	}

	// The parent must exist when the comment is created. It is not
	// re-checked later, so deleting a parent orphans its replies.
	if req.ParentID != nil {
		exists, err := s.repo.StoryExists(ctx, *req.ParentID)
		if err != nil {
			return nil, apperrors.Internal("failed to check parent story", err)
		}
		if !exists {
			return nil, apperrors.NotFound("Parent story not found")
		}
	}

	story := &Story{
		UserID:    userID,
		ChannelID: req.ChannelID,
		ParentID:  req.ParentID,
		Content:   content,
		Media:     buildMedia(req.Media),
		LikedBy:   []int64{},
	}

	if err := s.repo.CreateStory(ctx, story); err != nil {
		return nil, apperrors.Internal("failed to create story", err)
	}

	// Comments count toward the channel's story total as well.
	if err := s.channels.AddStoryCount(ctx, req.ChannelID, 1); err != nil {
		log.Printf("failed to bump story count for channel %d: %v", req.ChannelID, err)
	}

	message := "Story created"
	kind := "story"
	if story.ParentID != nil {
		message = "Comment created"
		kind = "comment"
	}
	recordStoryCreated(kind)

	story.Timestamp = utils.FormatTimestamp(story.CreatedAt)
	return &CreateResult{Story: story, Message: message}, nil
}

func (s *service) GetStory(ctx context.Context, storyID int64) (*Story, error) {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	story.Timestamp = utils.FormatTimestamp(story.CreatedAt)
	return story, nil
}

func (s *service) ListFeed(ctx context.Context, page, limit int) ([]*Story, error) {
	limit, offset := pageWindow(page, limit)
	list, err := s.repo.ListStories(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	stampAll(list)
	return list, nil
}

func (s *service) ListChannelStories(ctx context.Context, channelID int64, page, limit int) ([]*Story, error) {
	if _, err := s.channels.GetChannel(ctx, channelID); err != nil {
		return nil, err
	}

	limit, offset := pageWindow(page, limit)
	list, err := s.repo.ListChannelStories(ctx, channelID, limit, offset)
	if err != nil {
		return nil, err
	}
	stampAll(list)
	return list, nil
}

func (s *service) UpdateStory(ctx context.Context, storyID, userID int64, req *UpdateStoryRequest) (*Story, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Validation("Content cannot be empty")
	}
	if len([]rune(content)) > MaxContentLength {
		return nil, apperrors.Validation("Content cannot exceed 500 characters")
	}

	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story.UserID != userID {
		return nil, apperrors.Forbidden("You can only edit your own stories")
	}

	if err := s.repo.UpdateContent(ctx, storyID, content); err != nil {
		return nil, err
	}

	story.Content = content
	story.Timestamp = utils.FormatTimestamp(story.CreatedAt)
	return story, nil
}

// DeleteStory removes a story. Replies are kept as orphans, so only the
// deleted row itself comes off the channel counter.
func (s *service) DeleteStory(ctx context.Context, storyID, userID int64) error {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return apperrors.Forbidden("You can only delete your own stories")
	}

	if err := s.repo.DeleteStory(ctx, storyID); err != nil {
		return err
	}

	if err := s.channels.AddStoryCount(ctx, story.ChannelID, -1); err != nil {
		log.Printf("failed to drop story count for channel %d: %v", story.ChannelID, err)
	}

	recordStoryDeleted()
	return nil
}

// ToggleLike flips the caller's like on a story and reports the post-toggle
// state along with a fresh snapshot.
func (s *service) ToggleLike(ctx context.Context, storyID, userID int64) (*ToggleLikeResult, error) {
	if _, err := s.repo.GetStory(ctx, storyID); err != nil {
		return nil, err
	}

	liked, err := s.repo.HasLiked(ctx, userID, storyID)
	if err != nil {
		return nil, apperrors.Internal("failed to check like state", err)
	}

	if liked {
		if _, err := s.repo.RemoveLike(ctx, userID, storyID); err != nil {
			return nil, apperrors.Internal("failed to remove like", err)
		}
	} else {
		if _, err := s.repo.AddLike(ctx, userID, storyID); err != nil {
			return nil, apperrors.Internal("failed to add like", err)
		}
	}

	nowLiked := !liked
	recordLikeToggled(nowLiked)

	if s.publisher != nil {
		action := "like"
		if !nowLiked {
			action = "unlike"
		}
		s.publisher.PublishActivity(action, storyID, userID)
	}

	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	story.Timestamp = utils.FormatTimestamp(story.CreatedAt)

	return &ToggleLikeResult{Liked: nowLiked, Story: story}, nil
}

// GetThread returns the story with its replies resolved recursively.
// Replies read oldest-first at every level.
func (s *service) GetThread(ctx context.Context, storyID int64) (*ThreadNode, error) {
	story, err := s.repo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	story.Timestamp = utils.FormatTimestamp(story.CreatedAt)
	return s.buildThread(ctx, story)
}

func (s *service) buildThread(ctx context.Context, story *Story) (*ThreadNode, error) {
	node := &ThreadNode{Story: story, Replies: []*ThreadNode{}}

	replies, err := s.repo.ListReplies(ctx, story.ID)
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		reply.Timestamp = utils.FormatTimestamp(reply.CreatedAt)
		child, err := s.buildThread(ctx, reply)
		if err != nil {
			return nil, err
		}
		node.Replies = append(node.Replies, child)
	}
	return node, nil
}

func buildMedia(inputs []MediaInput) []Media {
	media := make([]Media, 0, len(inputs))
	for i, input := range inputs {
		media = append(media, Media{
			ID:        uuid.New().String(),
			Type:      input.Type,
			URL:       input.URL,
			Thumbnail: input.Thumbnail,
			Position:  i,
		})
	}
	return media
}

func pageWindow(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return limit, (page - 1) * limit
}

func stampAll(list []*Story) {
	for _, story := range list {
		story.Timestamp = utils.FormatTimestamp(story.CreatedAt)
	}
}
