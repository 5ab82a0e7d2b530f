package cmd

import (
	"context"
	"sync"

	"github.com/anicoll/linky-integration/internal/pkg/tic"
)

// MockReaderService is a mock implementation of the ReaderService interface.
type MockReaderService struct {
	RunFunc   func(ctx context.Context) error
	Values    map[string]string
	FullFrame bool
	Connected bool

	mu   sync.Mutex
	subs map[string]int
}

type mockSubscription struct{}

func (mockSubscription) Close() {}

func (m *MockReaderService) Run(ctx context.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *MockReaderService) GetValue(label string) (string, bool) {
	v, ok := m.Values[label]
	return v, ok
}

func (m *MockReaderService) HasReadFullFrame() bool { return m.FullFrame }
func (m *MockReaderService) IsConnected() bool      { return m.Connected }

func (m *MockReaderService) Subscribe(tag string, fn func(bool)) tic.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs == nil {
		m.subs = map[string]int{}
	}
	m.subs[tag]++
	return mockSubscription{}
}

func (m *MockReaderService) Identification() tic.Identification {
	return tic.ParseIdentification("041876097289")
}
