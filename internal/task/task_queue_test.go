package task

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id     uuid.UUID
	key    string
	execFn func(ctx context.Context) error
}

func (m *mockTask) ID() uuid.UUID { return m.id }
func (m *mockTask) Key() string   { return m.key }
func (m *mockTask) Type() string  { return "mock" }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockTask(key string, fn func(ctx context.Context) error) *mockTask {
	return &mockTask{id: uuid.New(), key: key, execFn: fn}
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())
	assert.Equal(t, 10, cap(queue.tasks))
	assert.False(t, queue.closed)

	// a zero size still yields a usable queue
	queue = NewTaskQueue(0, nil)
	assert.Equal(t, 1, cap(queue.tasks))
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, queue.Enqueue(newMockTask("a", nil)))
	require.NoError(t, queue.Enqueue(newMockTask("a", nil)))
	assert.Equal(t, 2, queue.Len())

	err := queue.Enqueue(newMockTask("a", nil))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestClose(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())
	first := newMockTask("a", nil)
	require.NoError(t, queue.Enqueue(first))

	queue.Close()
	queue.Close()

	assert.ErrorIs(t, queue.Enqueue(newMockTask("a", nil)), ErrQueueClosed)

	// queued work survives the close
	got, ok := <-queue.GetChannel()
	require.True(t, ok)
	assert.Equal(t, first.ID(), got.ID())

	_, ok = <-queue.GetChannel()
	assert.False(t, ok)
}
