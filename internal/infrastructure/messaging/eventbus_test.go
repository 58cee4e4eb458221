package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learnhub-backend/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false, EnableMetrics: true})
}

func TestEventBus_PublishToTypedSubscriber(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var received []shared.EventType
	err := bus.Subscribe(shared.EventLessonCompleted, func(e shared.Event) error {
		received = append(received, e.EventType())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(shared.NewLessonCompletedEvent("l1", "ls1", "Hello", "c1", "beginner", 50)))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("l1", 1, 2)))

	// Only the subscribed type is delivered.
	assert.Equal(t, []shared.EventType{shared.EventLessonCompleted}, received)
}

func TestEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var count int
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewLessonAccessedEvent("l1", "ls1", "c1")))
	require.NoError(t, bus.Publish(shared.NewPointsAwardedEvent("l1", 50, 50, 1, "lesson_completion")))

	assert.Equal(t, 2, count)
}

func TestEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		return errors.New("handler exploded")
	}))

	assert.NoError(t, bus.Publish(shared.NewLevelUpEvent("l1", 1, 2)))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.HandlerFailures)
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 4})

	var (
		mu       sync.Mutex
		received int
	)
	done := make(chan struct{})
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		mu.Lock()
		received++
		if received == 3 {
			close(done)
		}
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(shared.NewLevelUpEvent("l1", i, i+1)))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not run")
	}
	require.NoError(t, bus.Close())
}

func TestEventBus_CloseWaitsAndRejects(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewLevelUpEvent("l1", 1, 2)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error { return nil }), ErrEventBusClosed)

	// Closing twice is fine.
	assert.NoError(t, bus.Close())
}

func TestEventBus_NilArguments(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.ErrorIs(t, bus.Subscribe(shared.EventLevelUp, nil), ErrNilHandler)
	assert.ErrorIs(t, bus.SubscribeAll(nil), ErrNilHandler)
	assert.ErrorIs(t, bus.Publish(nil), ErrNilEvent)
}

func TestEventBusMetrics_Snapshot(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return nil }))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("l1", 1, 2)))
	require.NoError(t, bus.Publish(shared.NewLevelUpEvent("l2", 2, 3)))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalHandlerExecs)
	assert.Equal(t, int64(0), snap.HandlerFailures)
	assert.InDelta(t, 1.0, snap.HandlerSuccessRate, 0.001)
}
