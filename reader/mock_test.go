package reader

import (
	"context"
	"sync"
)

type MockModel struct {
	Replies []string
	Errs    []error

	mu       sync.Mutex
	Messages [][]string
}

func (m *MockModel) Chat(_ context.Context, messages []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.Messages)
	m.Messages = append(m.Messages, messages)

	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Replies) {
		return m.Replies[i], nil
	}
	return m.Replies[len(m.Replies)-1], nil
}

func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}
