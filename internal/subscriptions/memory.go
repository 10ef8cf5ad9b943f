// internal/subscriptions/memory.go
// In-memory Repository used by tests and mock mode.

package subscriptions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	subs   map[int64]*Subscription
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subs:   make(map[int64]*Subscription),
		nextID: 1,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.subs {
		if existing.SubscriberID == sub.SubscriberID && existing.ChannelID == sub.ChannelID {
			return apperrors.Conflict("Subscription already exists")
		}
	}

	sub.ID = r.nextID
	r.nextID++
	sub.CreatedAt = time.Now()

	stored := *sub
	r.subs[sub.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, subscriptionID int64) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[subscriptionID]
	if !ok {
		return nil, apperrors.NotFound("Subscription not found")
	}
	copy := *sub
	return &copy, nil
}

func (r *MemoryRepository) GetByPair(ctx context.Context, subscriberID, channelID int64) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sub := range r.subs {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			copy := *sub
			return &copy, nil
		}
	}
	return nil, apperrors.NotFound("Subscription not found")
}

func (r *MemoryRepository) ListChannelSubscribers(ctx context.Context, channelID int64) ([]*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(sub *Subscription) bool { return sub.ChannelID == channelID }), nil
}

func (r *MemoryRepository) ListUserSubscriptions(ctx context.Context, subscriberID int64) ([]*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(sub *Subscription) bool {
		return sub.SubscriberID == subscriberID && sub.Status == StatusApproved
	}), nil
}

func (r *MemoryRepository) CountApproved(ctx context.Context, channelID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, sub := range r.subs {
		if sub.ChannelID == channelID && sub.Status == StatusApproved {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) Approve(ctx context.Context, subscriptionID int64, approvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[subscriptionID]
	if !ok {
		return apperrors.NotFound("Subscription not found")
	}
	sub.Status = StatusApproved
	sub.ApprovedAt = &approvedAt
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, subscriptionID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[subscriptionID]; !ok {
		return apperrors.NotFound("Subscription not found")
	}
	delete(r.subs, subscriptionID)
	return nil
}

func (r *MemoryRepository) collect(match func(*Subscription) bool) []*Subscription {
	list := []*Subscription{}
	for _, sub := range r.subs {
		if match(sub) {
			copy := *sub
			list = append(list, &copy)
		}
	}
	// Newest first
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list
}
