package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/newslens/alignment-notifier/internal/service"
)

// RetryWorker periodically resets a bounded batch of failed notifications
// back to pending so the dispatch worker picks them up again.
//
// Because statuses are persisted, retries survive server restarts.
type RetryWorker struct {
	svc      *service.NotificationService
	interval time.Duration
	limit    int
	logger   *zap.Logger
}

func NewRetryWorker(
	svc *service.NotificationService,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) *RetryWorker {
	return &RetryWorker{svc: svc, interval: interval, limit: limit, logger: logger}
}

// Run ticks every interval and sweeps failed records back to pending.
// Stops cleanly when ctx is cancelled.
func (rw *RetryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("retry worker started",
		zap.Duration("interval", rw.interval),
		zap.Int("limit", rw.limit),
	)

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("retry worker stopping")
			return
		case <-ticker.C:
			if n := rw.svc.RetryFailed(ctx, rw.limit); n > 0 {
				rw.logger.Info("retry sweep requeued notifications", zap.Int("count", n))
			}
		}
	}
}
