package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newslens/alignment-notifier/internal/domain"
)

type pgSubscriberRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubscriberRepository returns a SubscriberRepository that reads the
// news app's source_followers, notification_preferences, and user_devices
// tables. All three are owned by the main application; this service only
// selects from them.
func NewPgSubscriberRepository(pool *pgxpool.Pool) SubscriberRepository {
	return &pgSubscriberRepository{pool: pool}
}

func (r *pgSubscriberRepository) GetFollowers(ctx context.Context, sourceID string) ([]domain.Follower, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM source_followers WHERE source_id = $1`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}
	defer rows.Close()

	var followers []domain.Follower
	for rows.Next() {
		var f domain.Follower
		if err := rows.Scan(&f.UserID); err != nil {
			return nil, err
		}
		followers = append(followers, f)
	}
	return followers, rows.Err()
}

func (r *pgSubscriberRepository) GetPreferences(ctx context.Context, userIDs []string) ([]domain.NotificationPreference, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, notif_alignment_changes
		FROM notification_preferences
		WHERE user_id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()

	var prefs []domain.NotificationPreference
	for rows.Next() {
		var p domain.NotificationPreference
		if err := rows.Scan(&p.UserID, &p.AlignmentChanges); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

func (r *pgSubscriberRepository) GetDevices(ctx context.Context, userID string) ([]domain.Device, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT fcm_token, device_type FROM user_devices WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get devices: %w", err)
	}
	defer rows.Close()

	var devices []domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.FCMToken, &d.DeviceType); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}
