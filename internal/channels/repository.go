// internal/channels/repository.go
package channels

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

// Repository defines all database operations for channels.
// The counter mutations are atomic single-statement updates so concurrent
// requests never lose increments.
type Repository interface {
	CreateChannel(ctx context.Context, channel *Channel) error
	GetChannel(ctx context.Context, channelID int64) (*Channel, error)
	ListChannels(ctx context.Context, userID *int64) ([]*Channel, error)
	CountUserChannels(ctx context.Context, userID int64) (int, error)
	UpdateChannel(ctx context.Context, channel *Channel) error
	DeleteChannel(ctx context.Context, channelID int64) error

	// Denormalized counters, floored at zero
	AddStoryCount(ctx context.Context, channelID int64, delta int) error
	AddSubscriberCount(ctx context.Context, channelID int64, delta int) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateChannel(ctx context.Context, channel *Channel) error {
	query := `
		INSERT INTO channels (user_id, name, description, is_primary, is_private)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, subscriber_count, story_count, created_at`

	return r.db.QueryRowContext(ctx, query,
		channel.UserID, channel.Name, channel.Description, channel.IsPrimary, channel.IsPrivate,
	).Scan(&channel.ID, &channel.SubscriberCount, &channel.StoryCount, &channel.CreatedAt)
}

const channelColumns = `
	c.id, c.user_id, c.name, c.description, c.is_primary, c.is_private,
	c.subscriber_count, c.story_count, c.created_at,
	u.id AS "owner.id", u.username AS "owner.username", u.name AS "owner.name",
	u.avatar AS "owner.avatar", u.verified AS "owner.verified"`

type channelRow struct {
	Channel
	OwnerRow OwnerInfo `db:"owner"`
}

func (r *postgresRepository) GetChannel(ctx context.Context, channelID int64) (*Channel, error) {
	var row channelRow
	query := `
		SELECT ` + channelColumns + `
		FROM channels c
		JOIN users u ON c.user_id = u.id
		WHERE c.id = $1`

	err := r.db.GetContext(ctx, &row, query, channelID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Channel not found")
	}
	if err != nil {
		return nil, err
	}

	channel := row.Channel
	owner := row.OwnerRow
	channel.Owner = &owner
	return &channel, nil
}

func (r *postgresRepository) ListChannels(ctx context.Context, userID *int64) ([]*Channel, error) {
	query := `
		SELECT ` + channelColumns + `
		FROM channels c
		JOIN users u ON c.user_id = u.id`
	args := []interface{}{}

	if userID != nil {
		query += ` WHERE c.user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY c.created_at DESC`

	var rows []channelRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	channels := make([]*Channel, 0, len(rows))
	for i := range rows {
		channel := rows[i].Channel
		owner := rows[i].OwnerRow
		channel.Owner = &owner
		channels = append(channels, &channel)
	}
	return channels, nil
}

func (r *postgresRepository) CountUserChannels(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM channels WHERE user_id = $1`, userID)
	return count, err
}

func (r *postgresRepository) UpdateChannel(ctx context.Context, channel *Channel) error {
	query := `
		UPDATE channels
		SET name = $1, description = $2, is_private = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		channel.Name, channel.Description, channel.IsPrivate, channel.ID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("Channel not found")
	}
	return nil
}

// DeleteChannel removes the channel with everything hanging off it.
// Stories in the channel go away with their likes and media; replies to those
// stories that live in other channels are left in place as orphans.
func (r *postgresRepository) DeleteChannel(ctx context.Context, channelID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM likes WHERE story_id IN (SELECT id FROM stories WHERE channel_id = $1)`,
		`DELETE FROM story_media WHERE story_id IN (SELECT id FROM stories WHERE channel_id = $1)`,
		`DELETE FROM stories WHERE channel_id = $1`,
		`DELETE FROM subscriptions WHERE channel_id = $1`,
		`DELETE FROM channels WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, channelID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) AddStoryCount(ctx context.Context, channelID int64, delta int) error {
	query := `UPDATE channels SET story_count = GREATEST(0, story_count + $1) WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, delta, channelID)
	return err
}

func (r *postgresRepository) AddSubscriberCount(ctx context.Context, channelID int64, delta int) error {
	query := `UPDATE channels SET subscriber_count = GREATEST(0, subscriber_count + $1) WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, delta, channelID)
	return err
}
