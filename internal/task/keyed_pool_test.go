package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stopPool(t *testing.T, p *KeyedPool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}

func TestNewKeyedPool(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 3, QueueSize: 5}, setupTestLogger())
	assert.Equal(t, 3, p.WorkerCount())
	assert.NotNil(t, p.errorHandler)

	for _, count := range []int{0, -5} {
		p = NewKeyedPool(KeyedPoolConfig{WorkerCount: count}, setupTestLogger())
		assert.Equal(t, 1, p.WorkerCount())
	}

	def := DefaultKeyedPoolConfig()
	assert.Equal(t, 4, def.WorkerCount)
	assert.Positive(t, def.QueueSize)
}

func TestKeyedPool_RouteIsStable(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 8, QueueSize: 1}, setupTestLogger())

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("user-%d", i)
		idx := p.route(key)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 8)
		assert.Equal(t, idx, p.route(key))
	}
}

func TestKeyedPool_PreservesOrderPerKey(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 4, QueueSize: 100}, setupTestLogger())

	var mu sync.Mutex
	seen := map[string][]int{}
	keys := []string{"alice", "bob", "carol"}

	for i := 0; i < 30; i++ {
		key := keys[i%len(keys)]
		n := i
		require.NoError(t, p.Submit(newMockTask(key, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			seen[key] = append(seen[key], n)
			return nil
		})))
	}

	p.Start()
	stopPool(t, p)

	for _, key := range keys {
		got := seen[key]
		require.Len(t, got, 10)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1], got[i], "tasks for %s ran out of order", key)
		}
	}
}

func TestKeyedPool_ErrorHandler(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 1, QueueSize: 10}, setupTestLogger())

	var mu sync.Mutex
	var failures []error
	p.SetErrorHandler(func(_ Task, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	})

	require.NoError(t, p.Submit(newMockTask("a", func(context.Context) error {
		return errors.New("boom")
	})))
	require.NoError(t, p.Submit(newMockTask("a", func(context.Context) error {
		panic("kaboom")
	})))
	ran := false
	require.NoError(t, p.Submit(newMockTask("a", func(context.Context) error {
		ran = true
		return nil
	})))

	p.Start()
	stopPool(t, p)

	require.Len(t, failures, 2)
	assert.EqualError(t, failures[0], "boom")
	assert.Contains(t, failures[1].Error(), "kaboom")
	assert.True(t, ran, "a panicking task must not kill its worker")
}

func TestKeyedPool_QueueFull(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())

	require.NoError(t, p.Submit(newMockTask("a", nil)))
	err := p.Submit(newMockTask("a", nil))
	assert.ErrorIs(t, err, ErrQueueFull)

	p.Start()
	stopPool(t, p)
}

func TestKeyedPool_SubmitAfterStop(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 2, QueueSize: 1}, setupTestLogger())
	p.Start()
	stopPool(t, p)

	assert.ErrorIs(t, p.Submit(newMockTask("a", nil)), ErrQueueClosed)
}

func TestKeyedPool_TaskTimeout(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 1, QueueSize: 1, TaskTimeout: 10 * time.Millisecond},
		setupTestLogger())

	var got error
	p.SetErrorHandler(func(_ Task, err error) { got = err })
	require.NoError(t, p.Submit(newMockTask("a", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	p.Start()
	stopPool(t, p)
	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestKeyedPool_StopTimeoutCancelsRunningTasks(t *testing.T) {
	p := NewKeyedPool(KeyedPoolConfig{WorkerCount: 1, QueueSize: 1}, setupTestLogger())

	started := make(chan struct{})
	finished := make(chan error, 1)
	require.NoError(t, p.Submit(newMockTask("a", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished <- ctx.Err()
		return ctx.Err()
	})))
	p.Start()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Stop(ctx), context.DeadlineExceeded)

	select {
	case err := <-finished:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("running task was not cancelled")
	}
}
