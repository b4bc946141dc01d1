package repository

import (
	"context"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// NotificationRepository defines all persistence operations on the
// notification queue and its delivery-audit log — the only tables this
// service owns. The pgx implementation is in pg_notification_repo.go.
// Tests use a hand-written mock (mock_notification_repo.go).
type NotificationRepository interface {
	InsertMany(ctx context.Context, records []*domain.NotificationRecord) error
	FindByStatus(ctx context.Context, status domain.Status, limit int) ([]*domain.NotificationRecord, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	UpdateStatusMany(ctx context.Context, ids []string, status domain.Status) error
	CountByStatus(ctx context.Context, status domain.Status) (int, error)
	InsertDelivery(ctx context.Context, entry *domain.DeliveryEntry) error
}
