package signals

import (
	"context"
	"time"

	"github.com/stylhelpr/styliq/internal/database"
	"github.com/stylhelpr/styliq/internal/recommend"
	"github.com/stylhelpr/styliq/internal/setup"
	"github.com/stylhelpr/styliq/internal/worker/core"
	"go.uber.org/zap"
)

// Worker sweeps stale signal rows and recomputes their preferences in
// batches. The read path already refreshes signals it touches; the sweep
// guarantees rows converge even for users who are never read.
type Worker struct {
	db        database.Client
	engine    *recommend.Engine
	reporter  *core.StatusReporter
	logger    *zap.Logger
	threshold time.Duration
	batchSize int
	interval  time.Duration
}

// New creates a new signal sweep worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:        app.DB,
		engine:    app.Engine,
		reporter:  core.NewStatusReporter(app.StatusClient, "signals", logger),
		logger:    logger,
		threshold: app.Config.Common.Recommendation.StalenessThreshold(),
		batchSize: app.Config.Worker.SweepBatchSize,
		interval:  time.Duration(app.Config.Worker.SweepInterval) * time.Second,
	}
}

// Start begins the sweep worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Signal sweep worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)
	defer w.reporter.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Context cancelled, stopping signal sweep worker")
			return
		default:
		}

		w.reporter.SetHealthy(true)
		w.sweepOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

// sweepOnce refreshes one batch of stale signal rows, oldest first.
func (w *Worker) sweepOnce(ctx context.Context) {
	w.reporter.UpdateStatus("Finding stale signal rows", 0)

	cutoff := time.Now().Add(-w.threshold)

	userIDs, err := w.db.Model().Signal().StaleUserIDs(ctx, cutoff, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list stale signal rows", zap.Error(err))
		w.reporter.SetHealthy(false)

		return
	}

	if len(userIDs) == 0 {
		w.reporter.UpdateStatus("No stale signal rows", 100)
		return
	}

	for i, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}

		w.reporter.UpdateStatus("Refreshing user preferences", (i*100)/len(userIDs))

		if err := w.engine.RefreshUserSignals(ctx, userID); err != nil {
			// Keep sweeping; the row stays stale and the next pass retries it.
			w.logger.Warn("Failed to refresh user signals",
				zap.Uint64("userID", userID),
				zap.Error(err))
		}
	}

	w.reporter.UpdateStatus("Sweep complete", 100)
	w.logger.Info("Signal sweep complete", zap.Int("refreshed", len(userIDs)))
}
