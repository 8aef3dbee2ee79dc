package task

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/phrazzld/pokepc/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitterFunc func(Task) error

func (f submitterFunc) Submit(t Task) error { return f(t) }

func TestEventHandler_SubmitsTaskPerEvent(t *testing.T) {
	var submitted Task
	var delivered *events.ActivityEvent
	target := events.HandlerFunc(func(_ context.Context, e *events.ActivityEvent) error {
		delivered = e
		return nil
	})
	h := NewEventHandler(submitterFunc(func(task Task) error {
		submitted = task
		return nil
	}), target, setupTestLogger())

	event, err := events.NewActivityEvent(events.MessageCreated, "user-1", events.MessagePayload{Content: "hi"})
	require.NoError(t, err)

	require.NoError(t, h.HandleEvent(context.Background(), event))
	require.NotNil(t, submitted)
	assert.Equal(t, event.ID, submitted.ID())
	assert.Equal(t, "user-1", submitted.Key())
	assert.Equal(t, "message_created", submitted.Type())
	assert.Nil(t, delivered, "delivery happens on a worker")

	require.NoError(t, submitted.Execute(context.Background()))
	assert.Same(t, event, delivered)
}

func TestEventHandler_SubmitFailure(t *testing.T) {
	h := NewEventHandler(submitterFunc(func(Task) error { return ErrQueueFull }),
		events.HandlerFunc(func(context.Context, *events.ActivityEvent) error { return nil }),
		setupTestLogger())

	event, err := events.NewActivityEvent(events.MemberJoined, "user-1", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, h.HandleEvent(context.Background(), event), ErrQueueFull)
}

func TestEventHandler_WithPool(t *testing.T) {
	pool := NewKeyedPool(KeyedPoolConfig{WorkerCount: 2, QueueSize: 10}, setupTestLogger())
	pool.Start()

	var mu sync.Mutex
	var order []string
	target := events.HandlerFunc(func(_ context.Context, e *events.ActivityEvent) error {
		var p events.MessagePayload
		if err := e.UnmarshalPayload(&p); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		order = append(order, p.Content)
		return nil
	})
	emitter := events.NewInMemoryEventEmitter(setupTestLogger())
	emitter.RegisterHandler(NewEventHandler(pool, target, setupTestLogger()))

	for _, content := range []string{"one", "two", "three"} {
		event, err := events.NewActivityEvent(events.MessageCreated, "user-1", events.MessagePayload{Content: content})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
	}

	stopPool(t, pool)
	assert.Equal(t, []string{"one", "two", "three"}, order)
}

func TestNewEventHandler_Panics(t *testing.T) {
	target := events.HandlerFunc(func(context.Context, *events.ActivityEvent) error { return errors.New("x") })
	assert.Panics(t, func() { NewEventHandler(nil, target, nil) })
	assert.Panics(t, func() { NewEventHandler(submitterFunc(func(Task) error { return nil }), nil, nil) })
}
