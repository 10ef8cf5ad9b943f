package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturingPublisher) PublishActivity(action string, storyID, userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Action: action, StoryID: storyID, UserID: userID})
}

func (p *capturingPublisher) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

type staticSource struct {
	ids []int64
}

func (s *staticSource) RandomStoryID(ctx context.Context) (int64, bool) {
	if len(s.ids) == 0 {
		return 0, false
	}
	return s.ids[0], true
}

func TestSimulatorEmitsEvents(t *testing.T) {
	publisher := &capturingPublisher{}
	sim := NewSimulator(publisher, &staticSource{ids: []int64{42}}, 5*time.Millisecond, 10*time.Millisecond)

	sim.Start(context.Background())
	defer sim.Stop()

	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	for _, event := range publisher.snapshot() {
		assert.Equal(t, int64(42), event.StoryID)
		assert.Contains(t, simulatedActions, event.Action)
		assert.Positive(t, event.UserID)
	}
}

func TestSimulatorStopHalts(t *testing.T) {
	publisher := &capturingPublisher{}
	sim := NewSimulator(publisher, &staticSource{ids: []int64{1}}, 5*time.Millisecond, 10*time.Millisecond)

	sim.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	sim.Stop()
	count := len(publisher.snapshot())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, len(publisher.snapshot()))
}

func TestSimulatorStartIsIdempotent(t *testing.T) {
	publisher := &capturingPublisher{}
	sim := NewSimulator(publisher, &staticSource{ids: []int64{1}}, time.Hour, time.Hour)

	sim.Start(context.Background())
	sim.Start(context.Background())
	sim.Stop()

	// A second Stop on an idle simulator is safe too
	sim.Stop()
}

func TestSimulatorStopRightAfterStart(t *testing.T) {
	publisher := &capturingPublisher{}
	sim := NewSimulator(publisher, &staticSource{ids: []int64{1}}, time.Hour, time.Hour)

	// Stop must wait for the loop to exit even when it races Start,
	// and the simulator must be restartable afterwards.
	for i := 0; i < 10; i++ {
		sim.Start(context.Background())
		sim.Stop()
	}
}

func TestSimulatorSkipsEmptyFeed(t *testing.T) {
	publisher := &capturingPublisher{}
	sim := NewSimulator(publisher, &staticSource{}, 5*time.Millisecond, 10*time.Millisecond)

	sim.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	sim.Stop()

	assert.Empty(t, publisher.snapshot())
}
