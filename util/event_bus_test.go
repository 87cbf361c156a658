// util/event_bus_test.go
package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	eb := NewEventBus()
	got := make(chan Event, 1)
	eb.Subscribe("evt", func(ctx context.Context, event Event) error {
		got <- event
		return nil
	})

	eb.Publish(context.Background(), "evt", "payload")

	select {
	case event := <-got:
		assert.Equal(t, "evt", event.Type)
		assert.Equal(t, "payload", event.Payload)
	case <-time.After(time.Second):
		t.Fatal("handler never received the event")
	}
}

func TestPublishDetachesCallerCancellation(t *testing.T) {
	eb := NewEventBus()
	result := make(chan error, 1)
	eb.Subscribe("evt", func(ctx context.Context, event Event) error {
		// Simulate a slow outbound send after the publishing request has
		// already completed.
		select {
		case <-ctx.Done():
			result <- ctx.Err()
		case <-time.After(50 * time.Millisecond):
			result <- nil
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	eb.Publish(ctx, "evt", nil)
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err, "handler context must survive the publisher's cancellation")
	case <-time.After(time.Second):
		t.Fatal("handler never finished")
	}
}
