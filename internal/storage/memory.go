package storage

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local backend for dev/testing.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memItem
}

type memItem struct {
	value   string
	expires time.Time
}

// NewMemory creates an empty in-memory backend.
func NewMemory(opts Options) *Memory {
	return &Memory{ttl: opts.TTL, now: time.Now, items: make(map[string]memItem)}
}

// Scope returns storage for one visitor.
func (m *Memory) Scope(visitorID string) Storage {
	return &memScope{m: m, prefix: visitorID + ":"}
}

// Healthy always reports true.
func (m *Memory) Healthy(context.Context) bool { return true }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

type memScope struct {
	m      *Memory
	prefix string
}

func (s *memScope) Get(_ context.Context, key string) (string, bool, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	it, ok := s.m.items[s.prefix+key]
	if !ok {
		return "", false, nil
	}
	if !it.expires.IsZero() && s.m.now().After(it.expires) {
		delete(s.m.items, s.prefix+key)
		return "", false, nil
	}
	return it.value, true, nil
}

func (s *memScope) Set(_ context.Context, key, value string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	it := memItem{value: value}
	if s.m.ttl > 0 {
		it.expires = s.m.now().Add(s.m.ttl)
	}
	s.m.items[s.prefix+key] = it
	return nil
}

func (s *memScope) Delete(_ context.Context, key string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.items, s.prefix+key)
	return nil
}
