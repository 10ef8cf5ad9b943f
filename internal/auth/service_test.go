package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinfolk-app/kinfolk-backend/internal/auth"
	"github.com/kinfolk-app/kinfolk-backend/internal/channels"
	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

func newTestService(t *testing.T) (auth.Service, *channels.MemoryRepository) {
	t.Helper()
	channelRepo := channels.NewMemoryRepository()
	channelService := channels.NewService(channelRepo)
	service := auth.NewService(auth.NewMemoryRepository(), channelService, nil, &auth.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		BCryptCost:  4,
	})
	return service, channelRepo
}

func validRegistration() *auth.RegisterRequest {
	return &auth.RegisterRequest{
		Username: "ada_l",
		Email:    "ada@example.com",
		Password: "hunter22",
		Name:     "Ada Lovelace",
	}
}

func TestRegisterCreatesUserAndPrimaryChannel(t *testing.T) {
	service, channelRepo := newTestService(t)
	ctx := context.Background()

	resp, err := service.Register(ctx, validRegistration())
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada_l", resp.User.Username)
	assert.NotEqual(t, "hunter22", resp.User.PasswordHash, "password must be hashed")

	list, err := channelRepo.ListChannels(ctx, &resp.User.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsPrimary)
	assert.Equal(t, "Ada Lovelace", list[0].Name)
	require.NotNil(t, list[0].Description)
	assert.Equal(t, "Ada Lovelace's primary channel", *list[0].Description)
}

func TestRegisterRejectsBadUsername(t *testing.T) {
	service, _ := newTestService(t)

	for _, username := range []string{"ab", "has space", "dots.here", "emо́ji"} {
		req := validRegistration()
		req.Username = username
		_, err := service.Register(context.Background(), req)
		assert.Error(t, err, "username %q should be rejected", username)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	}
}

func TestRegisterDuplicateEmailAndUsername(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, validRegistration())
	require.NoError(t, err)

	dupEmail := validRegistration()
	dupEmail.Username = "other_name"
	_, err = service.Register(ctx, dupEmail)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	dupUsername := validRegistration()
	dupUsername.Email = "other@example.com"
	_, err = service.Register(ctx, dupUsername)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestLogin(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, validRegistration())
	require.NoError(t, err)

	resp, err := service.Login(ctx, &auth.LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = service.Login(ctx, &auth.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))

	_, err = service.Login(ctx, &auth.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
}

func TestValidateToken(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	resp, err := service.Register(ctx, validRegistration())
	require.NoError(t, err)

	claims, err := service.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ada_l", claims.Username)

	_, err = service.ValidateToken(ctx, resp.Token+"tampered")
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
}
