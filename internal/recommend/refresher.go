package recommend

import (
	"context"
	"sync"

	"github.com/stylhelpr/styliq/internal/database/dbretry"
	"go.uber.org/zap"
)

// refreshScheduler accepts detached recomputation tasks. Satisfied by
// Refresher; tests substitute a recording fake.
type refreshScheduler interface {
	Submit(name string, run func(context.Context) error) bool
}

// refreshTask is one queued recomputation.
type refreshTask struct {
	name string
	run  func(context.Context) error
}

// Refresher runs signal recomputation detached from the read path. Tasks are
// fire-and-forget: failures are retried with backoff for transient database
// errors, then logged, and never reach the caller that triggered them.
type Refresher struct {
	tasks   chan refreshTask
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
	logger  *zap.Logger
}

// NewRefresher starts a refresher with the given queue and worker bounds.
func NewRefresher(queueSize, workers int, logger *zap.Logger) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Refresher{
		tasks:  make(chan refreshTask, queueSize),
		ctx:    ctx,
		cancel: cancel,
		logger: logger.Named("refresher"),
	}

	for range workers {
		r.wg.Add(1)
		go r.worker()
	}

	return r
}

// Submit enqueues a task without blocking. When the queue is full the task
// is dropped: the next staleness check will re-trigger it, so dropping is
// safe and keeps the read path unblocked. Safe to call concurrently with
// Stop; tasks submitted during or after shutdown are dropped.
func (r *Refresher) Submit(name string, run func(context.Context) error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		r.logger.Warn("Refresher stopped, dropping task", zap.String("task", name))
		return false
	}

	select {
	case r.tasks <- refreshTask{name: name, run: run}:
		return true
	default:
		r.logger.Warn("Refresh queue full, dropping task", zap.String("task", name))
		return false
	}
}

// Stop drains queued tasks, waits for in-flight work, then releases the
// task context. Idempotent.
func (r *Refresher) Stop() {
	r.mu.Lock()

	if !r.stopped {
		r.stopped = true
		close(r.tasks)
	}

	r.mu.Unlock()

	r.wg.Wait()
	r.cancel()
}

// worker consumes tasks until the queue is closed.
func (r *Refresher) worker() {
	defer r.wg.Done()

	for task := range r.tasks {
		r.runTask(task)
	}
}

// runTask executes one task with panic recovery and transient-error retries.
func (r *Refresher) runTask(task refreshTask) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Refresh task panicked",
				zap.String("task", task.name),
				zap.Any("panic", rec))
		}
	}()

	if err := dbretry.NoResult(r.ctx, task.run); err != nil {
		r.logger.Warn("Refresh task failed",
			zap.String("task", task.name),
			zap.Error(err))

		return
	}

	r.logger.Debug("Refresh task completed", zap.String("task", task.name))
}
