package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. It is unbounded, which is fine for the
// small symbol set a single deployment sees.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]Entry
	now   func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		items: make(map[Key]Entry),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key Key) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	e.Payload = append([]byte(nil), e.Payload...)
	return &e, nil
}

func (s *MemoryStore) Put(ctx context.Context, key Key, payload []byte) error {
	e := Entry{
		Kind:      key.Kind,
		Symbol:    key.Symbol,
		Payload:   append([]byte(nil), payload...),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, valid or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
