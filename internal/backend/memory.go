package backend

import (
	"context"
	"errors"
)

// ErrClosed is returned by Memory after Close.
var ErrClosed = errors.New("backend closed")

// Memory keeps values in a map. It backs tests and throwaway sessions.
type Memory struct {
	values map[string][]byte
	closed bool

	// FailWrites makes every Write return the given error.
	FailWrites error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Read implements Backend.
func (m *Memory) Read(_ context.Context, key string) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), v...), nil
}

// Write implements Backend.
func (m *Memory) Write(_ context.Context, entries ...Entry) error {
	if m.closed {
		return ErrClosed
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}
	for _, e := range entries {
		m.values[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

// Set stores a raw value, bypassing FailWrites.
func (m *Memory) Set(key string, value []byte) {
	m.values[key] = append([]byte(nil), value...)
}

// Keys returns the stored keys in no particular order.
func (m *Memory) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

// WatchPaths implements Backend. Memory has nothing to watch.
func (m *Memory) WatchPaths() []string { return nil }

// Close implements Backend.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}
