// internal/auth/models.go
package auth

import (
	"time"
)

// User is the account record. PasswordHash never leaves the package.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Avatar       *string   `json:"avatar" db:"avatar"`
	Verified     bool      `json:"verified" db:"verified"`
	Bio          *string   `json:"bio,omitempty" db:"bio"`
	Location     *string   `json:"location,omitempty" db:"location"`
	Website      *string   `json:"website,omitempty" db:"website"`
	ThemeID      *string   `json:"theme_id,omitempty" db:"theme_id"`
	JoinedDate   string    `json:"joined_date" db:"joined_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	Name     string `json:"name" validate:"required,min=1,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned from both register and login
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
