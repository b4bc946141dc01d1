package repository

import (
	"context"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// SubscriberRepository reads follower, preference, and device facts from
// the wider news app's schema. This service never writes through it; the
// rows are fetched fresh per operation and never cached.
type SubscriberRepository interface {
	GetFollowers(ctx context.Context, sourceID string) ([]domain.Follower, error)
	GetPreferences(ctx context.Context, userIDs []string) ([]domain.NotificationPreference, error)
	GetDevices(ctx context.Context, userID string) ([]domain.Device, error)
}
