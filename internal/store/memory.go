package store

import (
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and demo sessions.
//
// SetWriteLag makes writes invisible to Get until the lag elapses, modelling
// the write/read visibility delay some private-browsing storage
// implementations exhibit. The callback handler's retry poll is tested
// against this.
type Memory struct {
	mu       sync.Mutex
	values   map[string]entry
	writeLag time.Duration
}

type entry struct {
	value     string
	visibleAt time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]entry)}
}

// SetWriteLag configures the artificial visibility delay applied to
// subsequent writes. Zero disables the lag.
func (m *Memory) SetWriteLag(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeLag = d
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.values[key]
	if !ok || time.Now().Before(e.visibleAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = entry{value: value, visibleAt: time.Now().Add(m.writeLag)}
	return nil
}

func (m *Memory) RemoveAll(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
