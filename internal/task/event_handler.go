package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pokepc/internal/events"
)

// eventTask runs one ActivityEvent through a handler.
type eventTask struct {
	event   *events.ActivityEvent
	handler events.EventHandler
}

func (t *eventTask) ID() uuid.UUID { return t.event.ID }
func (t *eventTask) Key() string   { return t.event.UserID }
func (t *eventTask) Type() string  { return string(t.event.Type) }

func (t *eventTask) Execute(ctx context.Context) error {
	return t.handler.HandleEvent(ctx, t.event)
}

// EventHandler implements events.EventHandler by queueing each event on a
// Submitter and delivering it to target from a worker. The gateway goroutine
// never waits on the database or the cache.
type EventHandler struct {
	pool   Submitter
	target events.EventHandler
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(pool Submitter, target events.EventHandler, logger *slog.Logger) *EventHandler {
	if pool == nil {
		panic("task submitter cannot be nil")
	}
	if target == nil {
		panic("target event handler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{
		pool:   pool,
		target: target,
		logger: logger.With("component", "task_event_handler"),
	}
}

// HandleEvent submits event for asynchronous processing. A full queue drops
// the event and reports the error.
func (h *EventHandler) HandleEvent(_ context.Context, event *events.ActivityEvent) error {
	if err := h.pool.Submit(&eventTask{event: event, handler: h.target}); err != nil {
		h.logger.Error("failed to submit event task",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
			"user_id", event.UserID)
		return fmt.Errorf("failed to submit event task: %w", err)
	}
	return nil
}

var _ events.EventHandler = (*EventHandler)(nil)
