// internal/auth/repository.go
// Repository pattern isolates database queries from business logic.

package auth

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, username, email, password_hash, name, avatar, verified,
	bio, location, website, theme_id, joined_date, created_at`

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, name, joined_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, verified, created_at`

	return r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Name, user.JoinedDate,
	).Scan(&user.ID, &user.Verified, &user.CreatedAt)
}

func (r *postgresRepository) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresRepository) UpdateUser(ctx context.Context, user *User) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, avatar = $2, bio = $3, location = $4, website = $5, theme_id = $6
		WHERE id = $7`,
		user.Name, user.Avatar, user.Bio, user.Location, user.Website, user.ThemeID, user.ID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("User not found")
	}
	return nil
}

func (r *postgresRepository) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	return exists, err
}

func (r *postgresRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	return exists, err
}
