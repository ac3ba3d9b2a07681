package skyqa_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MegaGrindStone/skyqa"
)

type MockCatalog struct {
	objects   []skyqa.SkyObject
	listErr   error
	lookupErr error

	// For tracking interactions
	listCalls   atomic.Int32
	lookupCalls []string
	mu          sync.Mutex
}

type MockReader struct {
	answer  skyqa.Answer
	readErr error

	// For tracking interactions
	questions []string
	contexts  []string
}

type MockLister struct {
	names   []string
	listErr error

	calls atomic.Int32
	// release, when set, blocks ListNames until it is closed.
	release chan struct{}
	started chan struct{}
}

type MockRecorder struct {
	outcomes []skyqa.Outcome
}

func (m *MockCatalog) ListNames(context.Context) ([]string, error) {
	m.listCalls.Add(1)
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, len(m.objects))
	for i, obj := range m.objects {
		names[i] = obj.Name
	}
	return names, nil
}

func (m *MockCatalog) Lookup(_ context.Context, name string) (skyqa.SkyObject, error) {
	m.mu.Lock()
	m.lookupCalls = append(m.lookupCalls, name)
	m.mu.Unlock()

	if m.lookupErr != nil {
		return skyqa.SkyObject{}, m.lookupErr
	}
	for _, obj := range m.objects {
		if strings.EqualFold(obj.Name, name) {
			return obj, nil
		}
	}
	return skyqa.SkyObject{}, skyqa.ErrObjectNotFound
}

func (m *MockReader) Read(_ context.Context, question, context string) (skyqa.Answer, error) {
	m.questions = append(m.questions, question)
	m.contexts = append(m.contexts, context)

	if m.readErr != nil {
		return skyqa.Answer{}, m.readErr
	}
	return m.answer, nil
}

func (m *MockLister) ListNames(context.Context) ([]string, error) {
	m.calls.Add(1)
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.names...), nil
}

func (m *MockRecorder) ObserveAnswer(outcome skyqa.Outcome, _ time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}
