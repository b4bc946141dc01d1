package push

import (
	"context"
	"sync"

	"github.com/newslens/alignment-notifier/internal/domain"
)

// SentPush records one Send call made against the mock.
type SentPush struct {
	Device  domain.Device
	Payload Payload
}

// MockProvider is an in-memory Provider for tests.
type MockProvider struct {
	mu   sync.Mutex
	sent []SentPush

	// SendErr makes every Send fail. ErrForToken fails only the matching
	// device token, for mixed-outcome batches.
	SendErr     error
	ErrForToken map[string]error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{ErrForToken: make(map[string]error)}
}

func (m *MockProvider) Send(_ context.Context, device domain.Device, payload Payload) error {
	if err := m.ErrForToken[device.FCMToken]; err != nil {
		return err
	}
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentPush{Device: device, Payload: payload})
	return nil
}

// Sent returns a snapshot of every successful Send call.
func (m *MockProvider) Sent() []SentPush {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]SentPush, len(m.sent))
	copy(result, m.sent)
	return result
}

var _ Provider = (*MockProvider)(nil)
