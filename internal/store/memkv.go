package store

import (
	"context"
	"sync"
)

// MemKV is an in-memory KV for tests and throwaway runs.
type MemKV struct {
	mu   sync.RWMutex
	data map[string][]byte
	// FailWrites makes Set return the given error.
	FailWrites error
}

func NewMemKV() *MemKV { return &MemKV{data: map[string][]byte{}} }

func memKey(sessionID, key string) string { return sessionID + "\x00" + key }

func (m *MemKV) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[memKey(sessionID, key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemKV) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data[memKey(sessionID, key)] = append([]byte(nil), value...)
	return nil
}
