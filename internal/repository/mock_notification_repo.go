package repository

import (
	"context"
	"sync"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// MockNotificationRepository is a hand-written, in-memory implementation of
// NotificationRepository used in unit tests. No mock-generation library needed.
// Records are kept in insertion order so FindByStatus behaves like the
// FIFO-ordered SQL implementation.
type MockNotificationRepository struct {
	mu         sync.RWMutex
	records    []*domain.NotificationRecord
	deliveries []*domain.DeliveryEntry

	// Call counters — asserted by tests that care whether a write happened.
	InsertManyCalls       int
	UpdateStatusManyCalls int

	// Optional error overrides — set in tests to simulate failure paths.
	InsertManyErr       error
	FindByStatusErr     error
	UpdateStatusErr     error
	UpdateStatusManyErr error
	CountByStatusErr    error
	InsertDeliveryErr   error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) InsertMany(_ context.Context, records []*domain.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertManyCalls++
	if m.InsertManyErr != nil {
		return m.InsertManyErr
	}
	for _, n := range records {
		clone := *n
		m.records = append(m.records, &clone)
	}
	return nil
}

func (m *MockNotificationRepository) FindByStatus(_ context.Context, status domain.Status, limit int) ([]*domain.NotificationRecord, error) {
	if m.FindByStatusErr != nil {
		return nil, m.FindByStatusErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.NotificationRecord
	for _, n := range m.records {
		if n.Status != status {
			continue
		}
		clone := *n
		result = append(result, &clone)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	if m.UpdateStatusErr != nil {
		return m.UpdateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.records {
		if n.ID == id {
			n.Status = status
		}
	}
	return nil
}

func (m *MockNotificationRepository) UpdateStatusMany(_ context.Context, ids []string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateStatusManyCalls++
	if m.UpdateStatusManyErr != nil {
		return m.UpdateStatusManyErr
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, n := range m.records {
		if want[n.ID] {
			n.Status = status
		}
	}
	return nil
}

func (m *MockNotificationRepository) CountByStatus(_ context.Context, status domain.Status) (int, error) {
	if m.CountByStatusErr != nil {
		return 0, m.CountByStatusErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.records {
		if n.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) InsertDelivery(_ context.Context, entry *domain.DeliveryEntry) error {
	if m.InsertDeliveryErr != nil {
		return m.InsertDeliveryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *entry
	m.deliveries = append(m.deliveries, &clone)
	return nil
}

// Records returns a snapshot of every stored record, in insertion order.
func (m *MockNotificationRepository) Records() []*domain.NotificationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.NotificationRecord, 0, len(m.records))
	for _, n := range m.records {
		clone := *n
		result = append(result, &clone)
	}
	return result
}

// Deliveries returns a snapshot of the delivery-audit log.
func (m *MockNotificationRepository) Deliveries() []*domain.DeliveryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.DeliveryEntry, 0, len(m.deliveries))
	for _, d := range m.deliveries {
		clone := *d
		result = append(result, &clone)
	}
	return result
}

// Seed inserts a record directly, bypassing the call counter. Tests use it
// to arrange queue state without going through the enqueuer.
func (m *MockNotificationRepository) Seed(n *domain.NotificationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *n
	m.records = append(m.records, &clone)
}
