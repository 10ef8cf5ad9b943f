// internal/subscriptions/repository.go
// Data access for channel subscriptions.

package subscriptions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, subscriptionID int64) (*Subscription, error)
	GetByPair(ctx context.Context, subscriberID, channelID int64) (*Subscription, error)
	ListChannelSubscribers(ctx context.Context, channelID int64) ([]*Subscription, error)
	ListUserSubscriptions(ctx context.Context, subscriberID int64) ([]*Subscription, error)
	CountApproved(ctx context.Context, channelID int64) (int, error)
	Approve(ctx context.Context, subscriptionID int64, approvedAt time.Time) error
	Delete(ctx context.Context, subscriptionID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const subscriptionColumns = `
	sub.id, sub.subscriber_id, sub.channel_id, sub.status,
	sub.request_message, sub.created_at, sub.approved_at,
	u.id AS "subscriber.id", u.username AS "subscriber.username",
	u.name AS "subscriber.name", u.avatar AS "subscriber.avatar",
	u.verified AS "subscriber.verified"`

type subscriptionRow struct {
	Subscription
	SubscriberRow SubscriberInfo `db:"subscriber"`
}

func (row *subscriptionRow) toSubscription() *Subscription {
	sub := row.Subscription
	subscriber := row.SubscriberRow
	sub.Subscriber = &subscriber
	return &sub
}

func (r *postgresRepository) Create(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (subscriber_id, channel_id, status, request_message, approved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING
		RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, query,
		sub.SubscriberID, sub.ChannelID, sub.Status, sub.RequestMessage, sub.ApprovedAt,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		// The conflict target swallowed the insert
		return apperrors.Conflict("Subscription already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, subscriptionID int64) (*Subscription, error) {
	var row subscriptionRow
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions sub
		JOIN users u ON u.id = sub.subscriber_id
		WHERE sub.id = $1`, subscriptionColumns)
	if err := r.db.GetContext(ctx, &row, query, subscriptionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Subscription not found")
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return row.toSubscription(), nil
}

func (r *postgresRepository) GetByPair(ctx context.Context, subscriberID, channelID int64) (*Subscription, error) {
	var row subscriptionRow
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions sub
		JOIN users u ON u.id = sub.subscriber_id
		WHERE sub.subscriber_id = $1 AND sub.channel_id = $2`, subscriptionColumns)
	if err := r.db.GetContext(ctx, &row, query, subscriberID, channelID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Subscription not found")
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return row.toSubscription(), nil
}

func (r *postgresRepository) ListChannelSubscribers(ctx context.Context, channelID int64) ([]*Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions sub
		JOIN users u ON u.id = sub.subscriber_id
		WHERE sub.channel_id = $1
		ORDER BY sub.created_at DESC`, subscriptionColumns)
	return r.list(ctx, query, channelID)
}

// ListUserSubscriptions returns the caller's approved subscriptions only;
// pending requests stay invisible until the owner decides. The channel card
// is attached by the service.
func (r *postgresRepository) ListUserSubscriptions(ctx context.Context, subscriberID int64) ([]*Subscription, error) {
	var subs []*Subscription
	query := `
		SELECT id, subscriber_id, channel_id, status, request_message, created_at, approved_at
		FROM subscriptions
		WHERE subscriber_id = $1 AND status = $2
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &subs, query, subscriberID, StatusApproved); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*Subscription, error) {
	var rows []subscriptionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	list := make([]*Subscription, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toSubscription())
	}
	return list, nil
}

func (r *postgresRepository) CountApproved(ctx context.Context, channelID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1 AND status = $2`,
		channelID, StatusApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Approve(ctx context.Context, subscriptionID int64, approvedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1, approved_at = $2 WHERE id = $3`,
		StatusApproved, approvedAt, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to approve subscription: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("Subscription not found")
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, subscriptionID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("Subscription not found")
	}
	return nil
}
