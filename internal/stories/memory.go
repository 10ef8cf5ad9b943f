// internal/stories/memory.go
// In-memory Repository used by tests and mock mode.

package stories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type likeKey struct {
	userID  int64
	storyID int64
}

type MemoryRepository struct {
	mu      sync.RWMutex
	stories map[int64]*Story
	likes   map[likeKey]struct{}
	nextID  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		stories: make(map[int64]*Story),
		likes:   make(map[likeKey]struct{}),
		nextID:  1,
	}
}

func (r *MemoryRepository) CreateStory(ctx context.Context, story *Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	story.ID = r.nextID
	r.nextID++
	story.CreatedAt = time.Now()
	for i := range story.Media {
		story.Media[i].StoryID = story.ID
		story.Media[i].Position = i
	}

	stored := *story
	stored.Media = append([]Media(nil), story.Media...)
	r.stories[story.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetStory(ctx context.Context, storyID int64) (*Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	story, ok := r.stories[storyID]
	if !ok {
		return nil, apperrors.NotFound("Story not found")
	}
	return r.snapshot(story), nil
}

func (r *MemoryRepository) ListStories(ctx context.Context, limit, offset int) ([]*Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *Story) bool { return s.ParentID == nil }, true, limit, offset), nil
}

func (r *MemoryRepository) ListChannelStories(ctx context.Context, channelID int64, limit, offset int) ([]*Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *Story) bool {
		return s.ParentID == nil && s.ChannelID == channelID
	}, true, limit, offset), nil
}

func (r *MemoryRepository) ListReplies(ctx context.Context, parentID int64) ([]*Story, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(s *Story) bool {
		return s.ParentID != nil && *s.ParentID == parentID
	}, false, 0, 0), nil
}

func (r *MemoryRepository) StoryExists(ctx context.Context, storyID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.stories[storyID]
	return ok, nil
}

func (r *MemoryRepository) UpdateContent(ctx context.Context, storyID int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	story, ok := r.stories[storyID]
	if !ok {
		return apperrors.NotFound("Story not found")
	}
	story.Content = content
	return nil
}

func (r *MemoryRepository) DeleteStory(ctx context.Context, storyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stories[storyID]; !ok {
		return apperrors.NotFound("Story not found")
	}
	delete(r.stories, storyID)
	for key := range r.likes {
		if key.storyID == storyID {
			delete(r.likes, key)
		}
	}
	return nil
}

func (r *MemoryRepository) AddLike(ctx context.Context, userID, storyID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{userID: userID, storyID: storyID}
	if _, exists := r.likes[key]; exists {
		return false, nil
	}
	story, ok := r.stories[storyID]
	if !ok {
		return false, apperrors.NotFound("Story not found")
	}
	r.likes[key] = struct{}{}
	story.LikesCount++
	return true, nil
}

func (r *MemoryRepository) RemoveLike(ctx context.Context, userID, storyID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{userID: userID, storyID: storyID}
	if _, exists := r.likes[key]; !exists {
		return false, nil
	}
	delete(r.likes, key)
	if story, ok := r.stories[storyID]; ok && story.LikesCount > 0 {
		story.LikesCount--
	}
	return true, nil
}

func (r *MemoryRepository) HasLiked(ctx context.Context, userID, storyID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.likes[likeKey{userID: userID, storyID: storyID}]
	return exists, nil
}

// snapshot copies a story and derives comments_count and liked_by.
// Callers must hold at least a read lock.
func (r *MemoryRepository) snapshot(story *Story) *Story {
	copy := *story
	copy.Media = append([]Media(nil), story.Media...)

	copy.LikedBy = []int64{}
	for key := range r.likes {
		if key.storyID == story.ID {
			copy.LikedBy = append(copy.LikedBy, key.userID)
		}
	}
	sort.Slice(copy.LikedBy, func(i, j int) bool { return copy.LikedBy[i] < copy.LikedBy[j] })

	copy.CommentsCount = 0
	for _, other := range r.stories {
		if other.ParentID != nil && *other.ParentID == story.ID {
			copy.CommentsCount++
		}
	}
	return &copy
}

func (r *MemoryRepository) collect(match func(*Story) bool, newestFirst bool, limit, offset int) []*Story {
	list := []*Story{}
	for _, story := range r.stories {
		if match(story) {
			list = append(list, r.snapshot(story))
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if newestFirst {
			return list[i].ID > list[j].ID
		}
		return list[i].ID < list[j].ID
	})

	if offset > 0 {
		if offset >= len(list) {
			return []*Story{}
		}
		list = list[offset:]
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
