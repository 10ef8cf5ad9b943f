// internal/activity/source.go

package activity

import (
	"context"
	"log"
	"math/rand"

	"github.com/kinfolk-app/kinfolk-backend/internal/stories"
)

// feedSource draws candidate stories from the top of the feed.
type feedSource struct {
	repo stories.Repository
}

func NewFeedSource(repo stories.Repository) StorySource {
	return &feedSource{repo: repo}
}

func (f *feedSource) RandomStoryID(ctx context.Context) (int64, bool) {
	list, err := f.repo.ListStories(ctx, 50, 0)
	if err != nil {
		log.Printf("simulator could not load stories: %v", err)
		return 0, false
	}
	if len(list) == 0 {
		return 0, false
	}
	return list[rand.Intn(len(list))].ID, true
}
