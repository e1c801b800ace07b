package kv

import (
	"context"
	"sync"
)

// Memory is an in-memory Store. It is not persistent and is safe for
// concurrent use by multiple goroutines.
type Memory struct {
	values sync.Map
}

// NewMemory creates and returns a new Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.values.Delete(key)
	return nil
}
