package cache

import (
	"context"
	"time"
)

// TTL is how long a cached provider payload stays valid.
const TTL = 300 * time.Second

// Kind identifies the type of provider request a payload belongs to.
type Kind string

const (
	KindQuote   Kind = "quote"
	KindDaily   Kind = "daily"
	KindProfile Kind = "profile"
)

type Key struct {
	Kind   Kind
	Symbol string
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.Symbol
}

// Entry is a normalized payload plus the time it was stored.
type Entry struct {
	Kind      Kind      `json:"kind"`
	Symbol    string    `json:"symbol"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a TTL-less mapping from Key to Entry. Validity is decided by the
// reader with IsValid; stale entries are overwritten, never evicted.
type Store interface {
	// Get returns nil, nil when the key is absent.
	Get(ctx context.Context, key Key) (*Entry, error)
	Put(ctx context.Context, key Key, payload []byte) error
}

// IsValid reports whether e exists and is younger than ttl at now.
func IsValid(e *Entry, now time.Time, ttl time.Duration) bool {
	if e == nil {
		return false
	}
	return now.Sub(e.CreatedAt) < ttl
}
