// internal/auth/service.go
// Business logic for registration, login and token management.

package auth

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/utils"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ChannelProvisioner creates the primary channel every account gets at
// registration. Satisfied by channels.Service.
type ChannelProvisioner interface {
	CreatePrimaryChannel(ctx context.Context, userID int64, displayName string) error
}

type Service interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

// Config holds service configuration
type Config struct {
	JWTSecret   string
	TokenExpiry time.Duration
	BCryptCost  int
}

type service struct {
	repo        Repository
	channelProv ChannelProvisioner
	redis       *redis.Client // optional, enables the logout denylist
	config      *Config
}

func NewService(repo Repository, channelProv ChannelProvisioner, redisClient *redis.Client, config *Config) Service {
	return &service{
		repo:        repo,
		channelProv: channelProv,
		redis:       redisClient,
		config:      config,
	}
}

func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	if !usernamePattern.MatchString(username) {
		return nil, apperrors.Validation("Username may contain only letters, numbers and underscores")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if taken, err := s.repo.IsEmailTaken(ctx, email); err != nil {
		return nil, apperrors.Internal("failed to check email", err)
	} else if taken {
		return nil, apperrors.Conflict("Email already registered")
	}

	if taken, err := s.repo.IsUsernameTaken(ctx, username); err != nil {
		return nil, apperrors.Internal("failed to check username", err)
	} else if taken {
		return nil, apperrors.Conflict("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Name:         strings.TrimSpace(req.Name),
		JoinedDate:   time.Now().Format("January 2006"),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	// Every account starts with a primary channel named after the user.
	if err := s.channelProv.CreatePrimaryChannel(ctx, user.ID, user.Name); err != nil {
		return nil, apperrors.Internal("failed to create primary channel", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same error for unknown email and bad password
		return nil, apperrors.Unauthenticated("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthenticated("Invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Logout denylists the token until its natural expiry. Without Redis the
// token simply remains valid until it expires.
func (s *service) Logout(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}

	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return apperrors.Unauthenticated("Invalid or expired token")
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, denylistKey(token), "1", ttl).Err(); err != nil {
		log.Printf("failed to denylist token: %v", err)
	}
	return nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token, s.config.JWTSecret)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}

	if s.redis != nil {
		if exists, err := s.redis.Exists(ctx, denylistKey(token)).Result(); err == nil && exists > 0 {
			return nil, apperrors.Unauthenticated("Token has been revoked")
		}
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *service) issueToken(user *User) (string, error) {
	now := time.Now()
	token, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.config.TokenExpiry).Unix(),
		Issuer:    "kinfolk",
	}, s.config.JWTSecret)
	if err != nil {
		return "", apperrors.Internal("failed to issue token", err)
	}
	return token, nil
}

func denylistKey(token string) string {
	return fmt.Sprintf("auth:denylist:%s", token)
}
