package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newslens/alignment-notifier/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) InsertMany(ctx context.Context, records []*domain.NotificationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, n := range records {
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications
				(id, user_id, source_id, source_name, old_score, new_score,
				 old_label, new_label, change_reason, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			n.ID, n.UserID, n.SourceID, n.SourceName, n.OldScore, n.NewScore,
			n.OldLabel, n.NewLabel, n.ChangeReason, n.Status, n.CreatedAt, n.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit notifications: %w", err)
	}
	return nil
}

// FindByStatus selects the oldest matching records first so the dispatcher
// drains the queue in insertion order and no record starves.
func (r *pgNotificationRepository) FindByStatus(ctx context.Context, status domain.Status, limit int) ([]*domain.NotificationRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, source_id, source_name, old_score, new_score,
		       old_label, new_label, change_reason, status, created_at, updated_at
		FROM notifications
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("find by status: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *pgNotificationRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (r *pgNotificationRepository) UpdateStatusMany(ctx context.Context, ids []string, status domain.Status) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = $1, updated_at = NOW() WHERE id = ANY($2)`, status, ids)
	return err
}

func (r *pgNotificationRepository) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return count, nil
}

func (r *pgNotificationRepository) InsertDelivery(ctx context.Context, entry *domain.DeliveryEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_deliveries
			(id, notification_id, user_id, device_count, delivered_at)
		VALUES ($1,$2,$3,$4,$5)`,
		entry.ID, entry.NotificationID, entry.UserID, entry.DeviceCount, entry.DeliveredAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery entry: %w", err)
	}
	return nil
}

// ---- helpers ----

func scanRecord(row pgx.Row) (*domain.NotificationRecord, error) {
	var n domain.NotificationRecord
	err := row.Scan(
		&n.ID, &n.UserID, &n.SourceID, &n.SourceName,
		&n.OldScore, &n.NewScore, &n.OldLabel, &n.NewLabel,
		&n.ChangeReason, &n.Status, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func scanRecords(rows pgx.Rows) ([]*domain.NotificationRecord, error) {
	var result []*domain.NotificationRecord
	for rows.Next() {
		n, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
