// internal/channels/service.go
package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

// MaxChannelsPerUser caps ownership at the primary channel plus two extras.
const MaxChannelsPerUser = 3

type Service interface {
	ListChannels(ctx context.Context, userID *int64) ([]*Channel, error)
	GetChannel(ctx context.Context, channelID int64) (*Channel, error)
	CreateChannel(ctx context.Context, userID int64, req *CreateChannelRequest) (*Channel, error)
	UpdateChannel(ctx context.Context, channelID, userID int64, req *UpdateChannelRequest) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID, userID int64) error

	// CreatePrimaryChannel provisions the registration-time channel.
	CreatePrimaryChannel(ctx context.Context, userID int64, displayName string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListChannels(ctx context.Context, userID *int64) ([]*Channel, error) {
	return s.repo.ListChannels(ctx, userID)
}

func (s *service) GetChannel(ctx context.Context, channelID int64) (*Channel, error) {
	return s.repo.GetChannel(ctx, channelID)
}

func (s *service) CreateChannel(ctx context.Context, userID int64, req *CreateChannelRequest) (*Channel, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	count, err := s.repo.CountUserChannels(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("failed to count channels", err)
	}
	if count >= MaxChannelsPerUser {
		return nil, apperrors.Validation(fmt.Sprintf("You can own at most %d channels", MaxChannelsPerUser))
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("Channel name cannot be empty")
	}

	channel := &Channel{
		UserID:    userID,
		Name:      name,
		IsPrivate: req.IsPrivate,
		IsPrimary: count == 0,
	}
	if req.Description != "" {
		description := req.Description
		channel.Description = &description
	}

	if err := s.repo.CreateChannel(ctx, channel); err != nil {
		return nil, apperrors.Internal("failed to create channel", err)
	}
	return channel, nil
}

func (s *service) CreatePrimaryChannel(ctx context.Context, userID int64, displayName string) error {
	description := fmt.Sprintf("%s's primary channel", displayName)
	channel := &Channel{
		UserID:      userID,
		Name:        displayName,
		Description: &description,
		IsPrimary:   true,
		IsPrivate:   false,
	}

	if err := s.repo.CreateChannel(ctx, channel); err != nil {
		return apperrors.Internal("failed to create primary channel", err)
	}
	return nil
}

func (s *service) UpdateChannel(ctx context.Context, channelID, userID int64, req *UpdateChannelRequest) (*Channel, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.UserID != userID {
		return nil, apperrors.Forbidden("You can only update your own channels")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("Channel name cannot be empty")
		}
		channel.Name = name
	}
	if req.Description != nil {
		channel.Description = req.Description
	}
	if req.IsPrivate != nil {
		channel.IsPrivate = *req.IsPrivate
	}

	if err := s.repo.UpdateChannel(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

func (s *service) DeleteChannel(ctx context.Context, channelID, userID int64) error {
	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if channel.UserID != userID {
		return apperrors.Forbidden("You can only delete your own channels")
	}
	if channel.IsPrimary {
		return apperrors.Forbidden("Cannot delete primary channel")
	}

	return s.repo.DeleteChannel(ctx, channelID)
}
