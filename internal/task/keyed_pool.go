package task

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"
)

// KeyedPoolConfig holds configuration options for the pool
type KeyedPoolConfig struct {
	// WorkerCount determines how many queues and workers exist.
	// If zero or negative, defaults to 1
	WorkerCount int

	// QueueSize bounds each worker's queue
	QueueSize int

	// TaskTimeout bounds a single task's execution. Zero disables it.
	TaskTimeout time.Duration
}

// DefaultKeyedPoolConfig returns a KeyedPoolConfig with reasonable defaults
func DefaultKeyedPoolConfig() KeyedPoolConfig {
	return KeyedPoolConfig{
		WorkerCount: 4,
		QueueSize:   256,
		TaskTimeout: 30 * time.Second,
	}
}

// KeyedPool manages worker goroutines that each drain a private queue.
// Tasks sharing a key always land on the same worker.
type KeyedPool struct {
	queues      []*TaskQueue
	taskTimeout time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is the parent of every task context; cancel aborts running tasks
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	logger    *slog.Logger

	// errorHandler is called when a task execution fails
	errorHandler func(task Task, err error)
}

var _ Submitter = (*KeyedPool)(nil)

// NewKeyedPool creates a pool. Workers do not run until Start is called;
// tasks submitted before that are buffered.
func NewKeyedPool(config KeyedPoolConfig, logger *slog.Logger) *KeyedPool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "keyed_pool")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	queues := make([]*TaskQueue, workerCount)
	for i := range queues {
		queues[i] = NewTaskQueue(config.QueueSize, logger.With("worker_id", i))
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &KeyedPool{
		queues:      queues,
		taskTimeout: config.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
	p.errorHandler = func(task Task, err error) {
		p.logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"task_key", task.Key(),
			"error", err)
	}
	return p
}

// SetErrorHandler replaces the handler called for failed tasks. It must be
// called before Start.
func (p *KeyedPool) SetErrorHandler(handler func(task Task, err error)) {
	if handler != nil {
		p.errorHandler = handler
	}
}

// WorkerCount returns the number of workers.
func (p *KeyedPool) WorkerCount() int {
	return len(p.queues)
}

// Start launches the workers. Calling it more than once has no effect.
func (p *KeyedPool) Start() {
	p.startOnce.Do(func() {
		for i, q := range p.queues {
			p.wg.Add(1)
			go p.worker(i, q)
		}
		p.logger.Info("keyed pool started", "worker_count", len(p.queues))
	})
}

// Submit routes task to the worker owning its key.
func (p *KeyedPool) Submit(task Task) error {
	if err := p.queues[p.route(task.Key())].Enqueue(task); err != nil {
		return fmt.Errorf("submitting task %s: %w", task.ID(), err)
	}
	return nil
}

// route maps a key to a worker index.
func (p *KeyedPool) route(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(p.queues)))
}

// Stop closes every queue and waits for the workers to drain them. If ctx
// ends first, running tasks are cancelled and ctx's error is returned.
func (p *KeyedPool) Stop(ctx context.Context) error {
	for _, q := range p.queues {
		q.Close()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("keyed pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("keyed pool stop timed out, cancelling running tasks")
		return ctx.Err()
	}
}

func (p *KeyedPool) worker(id int, queue TaskQueueReader) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for task := range queue.GetChannel() {
		p.run(id, task)
	}
	p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

func (p *KeyedPool) run(workerID int, task Task) {
	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return task.Execute(ctx)
	}()
	if err != nil {
		p.errorHandler(task, err)
		return
	}

	p.logger.Debug("task completed",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID)
}
