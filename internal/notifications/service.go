// internal/notifications/service.go
// Best-effort email notifications for subscription activity. Delivery
// failures are logged and never propagate to the request that caused them.

package notifications

import (
	"context"
	"fmt"
	"log"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
)

// UserStore resolves recipients. Satisfied by auth.Repository.
type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*auth.User, error)
}

// ChannelStore resolves channel names for message bodies.
// Satisfied by channels.Repository.
type ChannelStore interface {
	GetChannel(ctx context.Context, channelID int64) (*channels.Channel, error)
}

type Service struct {
	provider EmailProvider
	users    UserStore
	channels ChannelStore
}

func NewService(provider EmailProvider, users UserStore, channelStore ChannelStore) *Service {
	return &Service{
		provider: provider,
		users:    users,
		channels: channelStore,
	}
}

// SubscriptionRequested emails the channel owner about a pending request.
func (s *Service) SubscriptionRequested(ctx context.Context, ownerID, subscriberID, channelID int64, message *string) {
	owner, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		log.Printf("notification skipped, owner %d: %v", ownerID, err)
		return
	}
	subscriber, err := s.users.GetUserByID(ctx, subscriberID)
	if err != nil {
		log.Printf("notification skipped, subscriber %d: %v", subscriberID, err)
		return
	}
	channel, err := s.channels.GetChannel(ctx, channelID)
	if err != nil {
		log.Printf("notification skipped, channel %d: %v", channelID, err)
		return
	}

	body := fmt.Sprintf("%s (@%s) wants to subscribe to your channel %q.",
		subscriber.Name, subscriber.Username, channel.Name)
	if message != nil && *message != "" {
		body += fmt.Sprintf("\n\nTheir message: %s", *message)
	}

	s.send(ctx, &Email{
		To:      owner.Email,
		Subject: "New subscription request",
		Body:    body,
	})
}

// SubscriptionApproved emails the subscriber that their request went through.
func (s *Service) SubscriptionApproved(ctx context.Context, subscriberID, channelID int64) {
	subscriber, err := s.users.GetUserByID(ctx, subscriberID)
	if err != nil {
		log.Printf("notification skipped, subscriber %d: %v", subscriberID, err)
		return
	}
	channel, err := s.channels.GetChannel(ctx, channelID)
	if err != nil {
		log.Printf("notification skipped, channel %d: %v", channelID, err)
		return
	}

	s.send(ctx, &Email{
		To:      subscriber.Email,
		Subject: "Subscription approved",
		Body:    fmt.Sprintf("Your subscription to %q was approved. New stories will show up in your feed.", channel.Name),
	})
}

func (s *Service) send(ctx context.Context, email *Email) {
	if err := s.provider.SendEmail(ctx, email); err != nil {
		log.Printf("failed to send notification to %s: %v", email.To, err)
	}
}
