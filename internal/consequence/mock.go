package consequence

import (
	"context"
	"slices"
	"sync"
)

type mockResult struct {
	value any
	err   error
}

// MockManager records consequences instead of applying them.
// Results are programmed per consequence name and returned in FIFO order;
// the last programmed result for a name repeats once the queue is drained.
// Unprogrammed consequences return (nil, nil).
type MockManager struct {
	mu      sync.Mutex
	added   []Consequence
	results map[string][]mockResult
}

// NewMockManager creates an empty MockManager.
func NewMockManager() *MockManager {
	return &MockManager{results: make(map[string][]mockResult)}
}

// Program queues a result for the next consequence named name.
func (m *MockManager) Program(name string, value any, err error) *MockManager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[name] = append(m.results[name], mockResult{value: value, err: err})
	return m
}

// Add records c and returns the next programmed result for its name.
func (m *MockManager) Add(_ context.Context, c Consequence) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.added = append(m.added, c)

	queue := m.results[c.Name()]
	if len(queue) == 0 {
		return nil, nil
	}
	r := queue[0]
	if len(queue) > 1 {
		m.results[c.Name()] = queue[1:]
	}
	return r.value, r.err
}

// Consequences returns every recorded consequence in order.
func (m *MockManager) Consequences() []Consequence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.added)
}

// Names returns the names of the recorded consequences in order.
func (m *MockManager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.added))
	for i, c := range m.added {
		names[i] = c.Name()
	}
	return names
}

// Reset forgets recorded consequences and programmed results.
func (m *MockManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = nil
	m.results = make(map[string][]mockResult)
}
