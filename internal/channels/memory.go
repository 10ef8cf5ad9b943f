// internal/channels/memory.go
// In-memory Repository used by tests and mock mode.

package channels

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	channels map[int64]*Channel
	nextID   int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		channels: make(map[int64]*Channel),
		nextID:   1,
	}
}

func (r *MemoryRepository) CreateChannel(ctx context.Context, channel *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel.ID = r.nextID
	r.nextID++
	channel.CreatedAt = time.Now()

	stored := *channel
	stored.Owner = nil
	r.channels[channel.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetChannel(ctx context.Context, channelID int64) (*Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return nil, apperrors.NotFound("Channel not found")
	}
	copy := *channel
	return &copy, nil
}

func (r *MemoryRepository) ListChannels(ctx context.Context, userID *int64) ([]*Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Channel
	for _, channel := range r.channels {
		if userID != nil && channel.UserID != *userID {
			continue
		}
		copy := *channel
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) CountUserChannels(ctx context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, channel := range r.channels {
		if channel.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) UpdateChannel(ctx context.Context, channel *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.channels[channel.ID]
	if !ok {
		return apperrors.NotFound("Channel not found")
	}
	stored.Name = channel.Name
	stored.Description = channel.Description
	stored.IsPrivate = channel.IsPrivate
	return nil
}

func (r *MemoryRepository) DeleteChannel(ctx context.Context, channelID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.channels, channelID)
	return nil
}

func (r *MemoryRepository) AddStoryCount(ctx context.Context, channelID int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return apperrors.NotFound("Channel not found")
	}
	channel.StoryCount += delta
	if channel.StoryCount < 0 {
		channel.StoryCount = 0
	}
	return nil
}

func (r *MemoryRepository) AddSubscriberCount(ctx context.Context, channelID int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.channels[channelID]
	if !ok {
		return apperrors.NotFound("Channel not found")
	}
	channel.SubscriberCount += delta
	if channel.SubscriberCount < 0 {
		channel.SubscriberCount = 0
	}
	return nil
}
