package repository

import (
	"context"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// MockSubscriberRepository is an in-memory SubscriberRepository for tests.
// Lookups are keyed the same way the SQL implementation queries them.
type MockSubscriberRepository struct {
	Followers   map[string][]domain.Follower // keyed by source ID
	Preferences []domain.NotificationPreference
	Devices     map[string][]domain.Device // keyed by user ID

	// Optional error overrides.
	GetFollowersErr   error
	GetPreferencesErr error
	GetDevicesErr     error

	// DeviceErrFor simulates a lookup failure for specific users only,
	// so tests can mix failing and succeeding records in one batch.
	DeviceErrFor map[string]error
}

func NewMockSubscriberRepository() *MockSubscriberRepository {
	return &MockSubscriberRepository{
		Followers:    make(map[string][]domain.Follower),
		Devices:      make(map[string][]domain.Device),
		DeviceErrFor: make(map[string]error),
	}
}

func (m *MockSubscriberRepository) GetFollowers(_ context.Context, sourceID string) ([]domain.Follower, error) {
	if m.GetFollowersErr != nil {
		return nil, m.GetFollowersErr
	}
	return m.Followers[sourceID], nil
}

func (m *MockSubscriberRepository) GetPreferences(_ context.Context, userIDs []string) ([]domain.NotificationPreference, error) {
	if m.GetPreferencesErr != nil {
		return nil, m.GetPreferencesErr
	}
	want := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		want[id] = true
	}
	var result []domain.NotificationPreference
	for _, p := range m.Preferences {
		if want[p.UserID] {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *MockSubscriberRepository) GetDevices(_ context.Context, userID string) ([]domain.Device, error) {
	if err := m.DeviceErrFor[userID]; err != nil {
		return nil, err
	}
	if m.GetDevicesErr != nil {
		return nil, m.GetDevicesErr
	}
	return m.Devices[userID], nil
}
