// internal/activity/simulator.go
// Simulator fabricates engagement events on a jittered interval so the live
// feed stays busy in demo environments. Events are decoration only; nothing
// is persisted.

package activity

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
)

var simulatedActions = []string{"like", "unlike", "comment"}

// Publisher receives simulated events. Satisfied by *Hub.
type Publisher interface {
	PublishActivity(action string, storyID, userID int64)
}

// StorySource supplies candidate stories to fabricate activity on.
type StorySource interface {
	RandomStoryID(ctx context.Context) (int64, bool)
}

type Simulator struct {
	publisher   Publisher
	source      StorySource
	minInterval time.Duration
	maxInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	rng *rand.Rand
}

func NewSimulator(publisher Publisher, source StorySource, minInterval, maxInterval time.Duration) *Simulator {
	if minInterval <= 0 {
		minInterval = 3 * time.Second
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}

	return &Simulator{
		publisher:   publisher,
		source:      source,
		minInterval: minInterval,
		maxInterval: maxInterval,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the simulator loop. Calling Start on a running simulator
// is a no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(ctx, done)
	log.Printf("activity simulator started (interval %s-%s)", s.minInterval, s.maxInterval)
}

// Stop cancels the loop and waits for it to exit.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.emit(ctx)
			timer.Reset(s.nextDelay())
		}
	}
}

func (s *Simulator) emit(ctx context.Context) {
	storyID, ok := s.source.RandomStoryID(ctx)
	if !ok {
		return
	}

	s.mu.Lock()
	action := simulatedActions[s.rng.Intn(len(simulatedActions))]
	userID := s.rng.Int63n(1000) + 1
	s.mu.Unlock()

	s.publisher.PublishActivity(action, storyID, userID)
}

// nextDelay picks a jittered delay in [minInterval, maxInterval].
func (s *Simulator) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	spread := s.maxInterval - s.minInterval
	if spread <= 0 {
		return s.minInterval
	}
	return s.minInterval + time.Duration(s.rng.Int63n(int64(spread)))
}
