package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/newslens/alignment-notifier/internal/metrics"
	"github.com/newslens/alignment-notifier/internal/service"
)

// DispatchWorker periodically drains a batch of pending notifications.
//
// It runs as a single goroutine, so dispatcher cycles never overlap: the
// service assumes one run at a time rather than row locking, and this loop
// is what enforces it.
type DispatchWorker struct {
	svc       *service.NotificationService
	m         *metrics.Metrics
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

func NewDispatchWorker(
	svc *service.NotificationService,
	m *metrics.Metrics,
	interval time.Duration,
	batchSize int,
	logger *zap.Logger,
) *DispatchWorker {
	return &DispatchWorker{svc: svc, m: m, interval: interval, batchSize: batchSize, logger: logger}
}

// Run ticks every interval and processes one batch per tick.
// Stops cleanly when ctx is cancelled.
func (dw *DispatchWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	dw.logger.Info("dispatch worker started",
		zap.Duration("interval", dw.interval),
		zap.Int("batch_size", dw.batchSize),
	)

	for {
		select {
		case <-ctx.Done():
			dw.logger.Info("dispatch worker stopping")
			return
		case <-ticker.C:
			dw.poll(ctx)
		}
	}
}

func (dw *DispatchWorker) poll(ctx context.Context) {
	start := time.Now()
	res, err := dw.svc.ProcessPending(ctx, dw.batchSize)
	if err != nil {
		dw.logger.Error("dispatch poll error", zap.Error(err))
		return
	}

	if res.Sent+res.Failed > 0 {
		dw.m.ObserveDispatch(res, time.Since(start))
	}
	dw.m.SetQueueDepth(dw.svc.PendingCounts(ctx))
}
