// internal/auth/memory.go
// In-memory Repository used by tests and mock mode.

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*User
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[int64]*User),
		nextID: 1,
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	copy := *user
	return &copy, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copy := *user
			return &copy, nil
		}
	}
	return nil, apperrors.NotFound("User not found")
}

func (r *MemoryRepository) UpdateUser(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return apperrors.NotFound("User not found")
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *MemoryRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}
