package codestore

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a process-local Store. Expired entries are dropped lazily on read.
type Memory struct {
	mu    sync.Mutex
	clock clock.Clocker
	items map[string]entry
}

// NewMemory returns an empty Memory store reading time from c.
func NewMemory(c clock.Clocker) *Memory {
	return &Memory{clock: c, items: make(map[string]entry)}
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		delete(m.items, key)
		return "", ErrNotFound
	}

	return e.value, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
