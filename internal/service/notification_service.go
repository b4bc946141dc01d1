package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newslens/alignment-notifier/internal/domain"
	"github.com/newslens/alignment-notifier/internal/push"
	"github.com/newslens/alignment-notifier/internal/ratelimiter"
	"github.com/newslens/alignment-notifier/internal/repository"
)

const (
	// DefaultDispatchBatchSize bounds how many pending records one
	// dispatcher run processes.
	DefaultDispatchBatchSize = 50

	// DefaultRetryLimit bounds how many failed records one retry sweep
	// resets, so a persistently broken transport cannot resurrect an
	// unbounded backlog in a single cycle.
	DefaultRetryLimit = 20
)

// NotificationService owns the alignment-change notification queue: fan-out
// on score changes, batch dispatch of pending records, and the monitoring
// and retry accessors. HTTP handlers and workers depend on this service,
// not on each other.
//
// Fan-out errors propagate to the caller (the scoring process wants to know
// the enqueue failed); dispatch, count, and retry degrade per-record or to
// zero instead, because their caller is a scheduler, not an interactive user.
type NotificationService struct {
	repo    repository.NotificationRepository
	subs    repository.SubscriberRepository
	prov    push.Provider
	limiter *ratelimiter.PushLimiter
	logger  *zap.Logger
}

// NewNotificationService constructs the service. limiter may be nil to
// disable outbound rate limiting (tests do this).
func NewNotificationService(
	repo repository.NotificationRepository,
	subs repository.SubscriberRepository,
	prov push.Provider,
	limiter *ratelimiter.PushLimiter,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, subs: subs, prov: prov, limiter: limiter, logger: logger}
}

// QueueAlignmentChange fans an alignment-change event out to every eligible
// follower of the source, inserting one pending record per follower, and
// returns how many records were enqueued.
//
// A follower is eligible unless they have an explicit preference row with
// alignment-change notifications disabled. Absence of a row means eligible:
// a user who never touched their settings still gets notified.
func (s *NotificationService) QueueAlignmentChange(ctx context.Context, event domain.AlignmentChangeEvent) (int, error) {
	if err := event.Validate(); err != nil {
		return 0, err
	}

	followers, err := s.subs.GetFollowers(ctx, event.SourceID)
	if err != nil {
		return 0, fmt.Errorf("follower lookup: %w", err)
	}
	if len(followers) == 0 {
		return 0, nil
	}

	userIDs := make([]string, len(followers))
	for i, f := range followers {
		userIDs[i] = f.UserID
	}

	prefs, err := s.subs.GetPreferences(ctx, userIDs)
	if err != nil {
		return 0, fmt.Errorf("preference lookup: %w", err)
	}

	optedOut := make(map[string]bool)
	for _, p := range prefs {
		if !p.AlignmentChanges {
			optedOut[p.UserID] = true
		}
	}

	now := time.Now().UTC()
	var records []*domain.NotificationRecord
	for _, uid := range userIDs {
		if optedOut[uid] {
			continue
		}
		records = append(records, &domain.NotificationRecord{
			ID:           uuid.New().String(),
			UserID:       uid,
			SourceID:     event.SourceID,
			SourceName:   event.SourceName,
			OldScore:     event.OldScore,
			NewScore:     event.NewScore,
			OldLabel:     event.OldLabel,
			NewLabel:     event.NewLabel,
			ChangeReason: event.Reason,
			Status:       domain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if len(records) == 0 {
		return 0, nil
	}

	if err := s.repo.InsertMany(ctx, records); err != nil {
		return 0, fmt.Errorf("insert notifications: %w", err)
	}

	s.logger.Info("alignment change queued",
		zap.String("source_id", event.SourceID),
		zap.Int("followers", len(followers)),
		zap.Int("queued", len(records)),
	)
	return len(records), nil
}

// ProcessPending drains up to batchSize pending records, delivering each
// independently. batchSize <= 0 falls back to DefaultDispatchBatchSize.
//
// One record failing never aborts the batch: its error is logged, the
// record is marked failed, and the loop continues. Only the initial
// pending select can return an error.
func (s *NotificationService) ProcessPending(ctx context.Context, batchSize int) (domain.DispatchResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultDispatchBatchSize
	}

	var res domain.DispatchResult

	records, err := s.repo.FindByStatus(ctx, domain.StatusPending, batchSize)
	if err != nil {
		return res, fmt.Errorf("fetch pending: %w", err)
	}
	if len(records) == 0 {
		return res, nil
	}

	for _, n := range records {
		// An abandoned batch is safe: unprocessed records stay pending
		// and the next run picks them up.
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if err := s.deliver(ctx, n); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("id", n.ID),
				zap.String("user_id", n.UserID),
				zap.Error(err),
			)
			if err := s.repo.UpdateStatus(ctx, n.ID, domain.StatusFailed); err != nil {
				s.logger.Error("failed to mark notification as failed",
					zap.String("id", n.ID), zap.Error(err))
			}
			res.Failed++
			continue
		}

		if err := s.repo.UpdateStatus(ctx, n.ID, domain.StatusSent); err != nil {
			// Push already went out; the record will be re-dispatched and
			// the user may see a duplicate. Accepted: delivery is
			// at-least-once.
			s.logger.Error("failed to mark notification as sent",
				zap.String("id", n.ID), zap.Error(err))
		}
		res.Sent++
	}

	s.logger.Info("dispatch batch complete",
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}

// deliver resolves the recipient's devices, pushes to each, and writes the
// delivery-audit entry. Any error leaves the record for the caller to mark
// failed.
func (s *NotificationService) deliver(ctx context.Context, n *domain.NotificationRecord) error {
	devices, err := s.subs.GetDevices(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("device lookup: %w", err)
	}

	payload := push.NewAlignmentPayload(n)
	for _, d := range devices {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if err := s.prov.Send(ctx, d, payload); err != nil {
			return fmt.Errorf("push send: %w", err)
		}
	}

	entry := &domain.DeliveryEntry{
		ID:             uuid.New().String(),
		NotificationID: n.ID,
		UserID:         n.UserID,
		DeviceCount:    len(devices),
		DeliveredAt:    time.Now().UTC(),
	}
	if err := s.repo.InsertDelivery(ctx, entry); err != nil {
		return fmt.Errorf("delivery audit: %w", err)
	}
	return nil
}

// PendingCounts reports queue depth by status for dashboards. A query error
// degrades to zero counts instead of propagating — this is a monitoring
// signal, not a correctness-critical read.
func (s *NotificationService) PendingCounts(ctx context.Context) domain.QueueCounts {
	pending, err := s.repo.CountByStatus(ctx, domain.StatusPending)
	if err != nil {
		s.logger.Warn("pending count query failed", zap.Error(err))
		return domain.QueueCounts{}
	}
	failed, err := s.repo.CountByStatus(ctx, domain.StatusFailed)
	if err != nil {
		s.logger.Warn("failed count query failed", zap.Error(err))
		return domain.QueueCounts{}
	}
	return domain.QueueCounts{Pending: pending, Failed: failed}
}

// RetryFailed resets up to limit failed records back to pending and returns
// how many were reset. limit <= 0 falls back to DefaultRetryLimit.
//
// Errors degrade to 0, the same policy as PendingCounts. Callers therefore
// cannot tell "nothing to retry" from "sweep failed"; the growing failed
// gauge is the signal for the latter.
func (s *NotificationService) RetryFailed(ctx context.Context, limit int) int {
	if limit <= 0 {
		limit = DefaultRetryLimit
	}

	records, err := s.repo.FindByStatus(ctx, domain.StatusFailed, limit)
	if err != nil {
		s.logger.Warn("retry sweep fetch failed", zap.Error(err))
		return 0
	}
	if len(records) == 0 {
		return 0
	}

	ids := make([]string, len(records))
	for i, n := range records {
		ids[i] = n.ID
	}

	if err := s.repo.UpdateStatusMany(ctx, ids, domain.StatusPending); err != nil {
		s.logger.Warn("retry sweep reset failed", zap.Error(err))
		return 0
	}

	s.logger.Info("failed notifications requeued", zap.Int("count", len(ids)))
	return len(ids)
}
