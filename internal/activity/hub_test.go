package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientDetachAfterShutdown(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil)
	hub.register <- client

	hub.Shutdown()

	// With the hub loop gone nobody drains unregister; detach must still
	// return instead of blocking forever.
	done := make(chan struct{})
	go func() {
		client.detach()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("detach blocked after hub shutdown")
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	// No Run loop; fill the broadcast buffer and keep publishing.
	for i := 0; i < 300; i++ {
		hub.PublishActivity("like", int64(i), 1)
	}
	require.True(t, len(hub.broadcast) <= cap(hub.broadcast))
}
