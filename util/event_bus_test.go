package util

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/logging"
)

func TestMain(m *testing.M) {
	logging.Log = zap.NewNop()
	os.Exit(m.Run())
}

func TestEventBusDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var mu sync.Mutex
	var received []string
	done := make(chan struct{})

	bus.Subscribe(EventRoleAssigned, func(_ context.Context, event Event) error {
		mu.Lock()
		received = append(received, event.Payload.(string))
		mu.Unlock()
		close(done)
		return nil
	})

	bus.Publish(context.Background(), EventRoleAssigned, "u-9")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"u-9"}, received)
}

func TestEventBusIgnoresUnsubscribedTypes(t *testing.T) {
	bus := NewEventBus()

	invoked := make(chan struct{}, 1)
	bus.Subscribe(EventGrantChanged, func(context.Context, Event) error {
		invoked <- struct{}{}
		return nil
	})

	bus.Publish(context.Background(), EventParamChanged, nil)

	select {
	case <-invoked:
		t.Fatal("handler invoked for an event type it never subscribed to")
	case <-time.After(50 * time.Millisecond):
	}
}
