// internal/stories/repository.go
// Data access for stories, media and likes.

package stories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kinfolk-app/kinfolk-backend/internal/common/apperrors"
)

type Repository interface {
	CreateStory(ctx context.Context, story *Story) error
	GetStory(ctx context.Context, storyID int64) (*Story, error)
	ListStories(ctx context.Context, limit, offset int) ([]*Story, error)
	ListChannelStories(ctx context.Context, channelID int64, limit, offset int) ([]*Story, error)
	ListReplies(ctx context.Context, parentID int64) ([]*Story, error)
	StoryExists(ctx context.Context, storyID int64) (bool, error)
	UpdateContent(ctx context.Context, storyID int64, content string) error
	DeleteStory(ctx context.Context, storyID int64) error

	// AddLike inserts a like row unless one already exists. It reports
	// whether a row was actually inserted, bumping likes_count if so.
	AddLike(ctx context.Context, userID, storyID int64) (bool, error)
	RemoveLike(ctx context.Context, userID, storyID int64) (bool, error)
	HasLiked(ctx context.Context, userID, storyID int64) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const storyColumns = `
	s.id, s.user_id, s.channel_id, s.parent_id, s.content,
	s.likes_count, s.created_at,
	(SELECT COUNT(*) FROM stories c WHERE c.parent_id = s.id) AS comments_count,
	u.id AS "author.id", u.username AS "author.username", u.name AS "author.name",
	u.avatar AS "author.avatar", u.verified AS "author.verified"`

type storyRow struct {
	Story
	AuthorRow AuthorInfo `db:"author"`
}

func (row *storyRow) toStory() *Story {
	story := row.Story
	author := row.AuthorRow
	story.Author = &author
	return &story
}

func (r *postgresRepository) CreateStory(ctx context.Context, story *Story) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO stories (user_id, channel_id, parent_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, query,
		story.UserID, story.ChannelID, story.ParentID, story.Content,
	).Scan(&story.ID, &story.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}

	for i := range story.Media {
		story.Media[i].StoryID = story.ID
		story.Media[i].Position = i
		_, err = tx.ExecContext(ctx, `
			INSERT INTO story_media (id, story_id, type, url, thumbnail, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			story.Media[i].ID, story.ID, story.Media[i].Type,
			story.Media[i].URL, story.Media[i].Thumbnail, i)
		if err != nil {
			return fmt.Errorf("failed to insert story media: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) GetStory(ctx context.Context, storyID int64) (*Story, error) {
	var row storyRow
	query := fmt.Sprintf(`
		SELECT %s FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`, storyColumns)
	if err := r.db.GetContext(ctx, &row, query, storyID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Story not found")
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	story := row.toStory()
	if err := r.attachDetails(ctx, []*Story{story}); err != nil {
		return nil, err
	}
	return story, nil
}

func (r *postgresRepository) ListStories(ctx context.Context, limit, offset int) ([]*Story, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.parent_id IS NULL
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1 OFFSET $2`, storyColumns)
	return r.listStories(ctx, query, limit, offset)
}

func (r *postgresRepository) ListChannelStories(ctx context.Context, channelID int64, limit, offset int) ([]*Story, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.channel_id = $1 AND s.parent_id IS NULL
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3`, storyColumns)
	return r.listStories(ctx, query, channelID, limit, offset)
}

// Replies read oldest-first, unlike the newest-first top-level feed.
func (r *postgresRepository) ListReplies(ctx context.Context, parentID int64) ([]*Story, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.parent_id = $1
		ORDER BY s.created_at ASC, s.id ASC`, storyColumns)
	return r.listStories(ctx, query, parentID)
}

func (r *postgresRepository) listStories(ctx context.Context, query string, args ...interface{}) ([]*Story, error) {
	var rows []storyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	list := make([]*Story, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toStory())
	}
	if err := r.attachDetails(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachDetails loads media and liked-by sets for a batch of stories.
func (r *postgresRepository) attachDetails(ctx context.Context, list []*Story) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(list))
	byID := make(map[int64]*Story, len(list))
	for _, story := range list {
		story.Media = []Media{}
		story.LikedBy = []int64{}
		ids = append(ids, story.ID)
		byID[story.ID] = story
	}

	mediaQuery, args, err := sqlx.In(`
		SELECT id, story_id, type, url, thumbnail, position
		FROM story_media WHERE story_id IN (?)
		ORDER BY story_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to build media query: %w", err)
	}
	var media []Media
	if err := r.db.SelectContext(ctx, &media, r.db.Rebind(mediaQuery), args...); err != nil {
		return fmt.Errorf("failed to load story media: %w", err)
	}
	for _, m := range media {
		story := byID[m.StoryID]
		story.Media = append(story.Media, m)
	}

	likesQuery, args, err := sqlx.In(`
		SELECT user_id, story_id FROM likes WHERE story_id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build likes query: %w", err)
	}
	var likes []struct {
		UserID  int64 `db:"user_id"`
		StoryID int64 `db:"story_id"`
	}
	if err := r.db.SelectContext(ctx, &likes, r.db.Rebind(likesQuery), args...); err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}
	for _, like := range likes {
		story := byID[like.StoryID]
		story.LikedBy = append(story.LikedBy, like.UserID)
	}

	return nil
}

func (r *postgresRepository) StoryExists(ctx context.Context, storyID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM stories WHERE id = $1)`, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to check story: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) UpdateContent(ctx context.Context, storyID int64, content string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stories SET content = $1 WHERE id = $2`, content, storyID)
	if err != nil {
		return fmt.Errorf("failed to update story: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("Story not found")
	}
	return nil
}

// DeleteStory removes the story, its media and likes. Replies are kept and
// become orphans.
func (r *postgresRepository) DeleteStory(ctx context.Context, storyID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE story_id = $1`, storyID); err != nil {
		return fmt.Errorf("failed to delete likes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM story_media WHERE story_id = $1`, storyID); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, storyID)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return apperrors.NotFound("Story not found")
	}

	return tx.Commit()
}

func (r *postgresRepository) AddLike(ctx context.Context, userID, storyID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO likes (user_id, story_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, story_id) DO NOTHING`, userID, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE stories SET likes_count = likes_count + 1 WHERE id = $1`, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to bump likes count: %w", err)
	}
	return true, nil
}

func (r *postgresRepository) RemoveLike(ctx context.Context, userID, storyID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND story_id = $2`, userID, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE stories SET likes_count = GREATEST(0, likes_count - 1) WHERE id = $1`, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to drop likes count: %w", err)
	}
	return true, nil
}

func (r *postgresRepository) HasLiked(ctx context.Context, userID, storyID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND story_id = $2)`, userID, storyID)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}
