package stories

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinfolk_stories_created_total",
			Help: "Total number of stories and comments created",
		},
		[]string{"kind"},
	)

	storiesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinfolk_stories_deleted_total",
			Help: "Total number of stories deleted",
		},
	)

	likesToggledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinfolk_likes_toggled_total",
			Help: "Total number of like toggles",
		},
		[]string{"state"},
	)
)

func recordStoryCreated(kind string) {
	storiesCreatedTotal.WithLabelValues(kind).Inc()
}

func recordStoryDeleted() {
	storiesDeletedTotal.Inc()
}

func recordLikeToggled(liked bool) {
	state := "unliked"
	if liked {
		state = "liked"
	}
	likesToggledTotal.WithLabelValues(state).Inc()
}
