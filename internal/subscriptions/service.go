// internal/subscriptions/service.go
// The subscription state machine. Rows exist in two states, pending and
// approved; rejection, unsubscribe and removal all delete the row. The
// channel's subscriber counter tracks approved rows only.

package subscriptions

import (
	"context"
	"log"
	"time"

	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

// ChannelStore is the slice of the channels repository the state machine
// needs. Satisfied by channels.Repository.
type ChannelStore interface {
	GetChannel(ctx context.Context, channelID int64) (*channels.Channel, error)
	AddSubscriberCount(ctx context.Context, channelID int64, delta int) error
}

// Notifier delivers best-effort notifications about subscription activity.
// Failures are logged, never surfaced to the caller.
type Notifier interface {
	SubscriptionRequested(ctx context.Context, ownerID, subscriberID, channelID int64, message *string)
	SubscriptionApproved(ctx context.Context, subscriberID, channelID int64)
}

type Service interface {
	Subscribe(ctx context.Context, subscriberID, channelID int64, req *SubscribeRequest) (*SubscribeResult, error)
	Unsubscribe(ctx context.Context, subscriberID, channelID int64) error
	Approve(ctx context.Context, subscriptionID, callerID int64) (*Subscription, error)
	Reject(ctx context.Context, subscriptionID, callerID int64) error
	RemoveSubscriber(ctx context.Context, channelID, subscriberID, callerID int64) error
	ListChannelSubscribers(ctx context.Context, channelID, callerID int64) ([]*Subscription, error)
	ListUserSubscriptions(ctx context.Context, userID int64) ([]*Subscription, error)
}

type service struct {
	repo     Repository
	channels ChannelStore
	notifier Notifier // optional
}

func NewService(repo Repository, channelStore ChannelStore, notifier Notifier) Service {
	return &service{
		repo:     repo,
		channels: channelStore,
		notifier: notifier,
	}
}

func (s *service) Subscribe(ctx context.Context, subscriberID, channelID int64, req *SubscribeRequest) (*SubscribeResult, error) {
	if req != nil {
		if err := utils.ValidateStruct(req); err != nil {
			return nil, err
		}
	}

	channel, err := s.channels.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.UserID == subscriberID {
		return nil, apperrors.Validation("You cannot subscribe to your own channel")
	}

	if existing, err := s.repo.GetByPair(ctx, subscriberID, channelID); err == nil {
		if existing.Status == StatusPending {
			return nil, apperrors.Conflict("Subscription request already pending")
		}
		return nil, apperrors.Conflict("Already subscribed to this channel")
	} else if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		return nil, apperrors.Internal("failed to check subscription", err)
	}

	sub := &Subscription{
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		Status:       StatusPending,
	}
	if req != nil {
		sub.RequestMessage = req.RequestMessage
	}

	if !channel.IsPrivate {
		now := time.Now()
		sub.Status = StatusApproved
		sub.ApprovedAt = &now
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	result := &SubscribeResult{Subscription: sub}
	if sub.Status == StatusApproved {
		if err := s.channels.AddSubscriberCount(ctx, channelID, 1); err != nil {
			log.Printf("failed to bump subscriber count for channel %d: %v", channelID, err)
		}
		recordTransition("subscribed")
		result.Message = "Subscribed to channel"
	} else {
		recordTransition("requested")
		result.Message = "Subscription request sent"
		if s.notifier != nil {
			s.notifier.SubscriptionRequested(ctx, channel.UserID, subscriberID, channelID, sub.RequestMessage)
		}
	}

	return result, nil
}

func (s *service) Unsubscribe(ctx context.Context, subscriberID, channelID int64) error {
	sub, err := s.repo.GetByPair(ctx, subscriberID, channelID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}

	// Pending requests were never counted
	if sub.Status == StatusApproved {
		if err := s.channels.AddSubscriberCount(ctx, channelID, -1); err != nil {
			log.Printf("failed to drop subscriber count for channel %d: %v", channelID, err)
		}
	}
	recordTransition("unsubscribed")
	return nil
}

func (s *service) Approve(ctx context.Context, subscriptionID, callerID int64) (*Subscription, error) {
	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	channel, err := s.channels.GetChannel(ctx, sub.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel.UserID != callerID {
		return nil, apperrors.Forbidden("Only the channel owner can approve subscriptions")
	}
	if sub.Status == StatusApproved {
		return nil, apperrors.Conflict("Subscription already approved")
	}

	now := time.Now()
	if err := s.repo.Approve(ctx, subscriptionID, now); err != nil {
		return nil, err
	}
	if err := s.channels.AddSubscriberCount(ctx, sub.ChannelID, 1); err != nil {
		log.Printf("failed to bump subscriber count for channel %d: %v", sub.ChannelID, err)
	}

	recordTransition("approved")
	if s.notifier != nil {
		s.notifier.SubscriptionApproved(ctx, sub.SubscriberID, sub.ChannelID)
	}

	sub.Status = StatusApproved
	sub.ApprovedAt = &now
	return sub, nil
}

func (s *service) Reject(ctx context.Context, subscriptionID, callerID int64) error {
	sub, err := s.repo.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}

	channel, err := s.channels.GetChannel(ctx, sub.ChannelID)
	if err != nil {
		return err
	}
	if channel.UserID != callerID {
		return apperrors.Forbidden("Only the channel owner can reject subscriptions")
	}
	if sub.Status == StatusApproved {
		return apperrors.Conflict("Cannot reject an approved subscription")
	}

	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}
	recordTransition("rejected")
	return nil
}

func (s *service) RemoveSubscriber(ctx context.Context, channelID, subscriberID, callerID int64) error {
	channel, err := s.channels.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.UserID != callerID {
		return apperrors.Forbidden("Only the channel owner can remove subscribers")
	}

	sub, err := s.repo.GetByPair(ctx, subscriberID, channelID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return err
	}
	if sub.Status == StatusApproved {
		if err := s.channels.AddSubscriberCount(ctx, channelID, -1); err != nil {
			log.Printf("failed to drop subscriber count for channel %d: %v", channelID, err)
		}
	}
	recordTransition("removed")
	return nil
}

func (s *service) ListChannelSubscribers(ctx context.Context, channelID, callerID int64) ([]*Subscription, error) {
	channel, err := s.channels.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.UserID != callerID {
		return nil, apperrors.Forbidden("Only the channel owner can view subscribers")
	}

	return s.repo.ListChannelSubscribers(ctx, channelID)
}

func (s *service) ListUserSubscriptions(ctx context.Context, userID int64) ([]*Subscription, error) {
	subs, err := s.repo.ListUserSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		channel, err := s.channels.GetChannel(ctx, sub.ChannelID)
		if err != nil {
			log.Printf("failed to load channel %d for subscription %d: %v", sub.ChannelID, sub.ID, err)
			continue
		}
		sub.Channel = channel
	}
	return subs, nil
}
