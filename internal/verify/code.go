// Package verify implements verification-code delivery: 6-digit codes stored
// with a 10-minute expiry keyed by user and channel, sent through a primary
// delivery provider with one fallback.
package verify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Channel identifies the delivery mechanism a code is sent through.
type Channel string

// Supported delivery channels.
const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ValidChannel reports whether c names a supported delivery channel.
func ValidChannel(c Channel) bool {
	return c == ChannelEmail || c == ChannelSMS
}

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 10 * time.Minute

// Code is an issued verification code awaiting confirmation.
type Code struct {
	UserID    string    `json:"user_id"`
	Channel   Channel   `json:"channel"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CodeStore persists issued codes. Put replaces any prior code stored under
// the same user and channel.
type CodeStore interface {
	Put(ctx context.Context, code Code) error
	Get(ctx context.Context, userID string, channel Channel) (Code, bool, error)
	Delete(ctx context.Context, userID string, channel Channel) error
}

// GenerateCode returns a random zero-padded 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type codeKey struct {
	userID  string
	channel Channel
}

// MemoryStore is an in-process CodeStore used for tests and single-node runs.
type MemoryStore struct {
	mu    sync.RWMutex
	codes map[codeKey]Code
	nowFn func() time.Time
}

// NewMemoryStore constructs an empty in-memory code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes: make(map[codeKey]Code),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time provider for deterministic expiry tests.
func (m *MemoryStore) SetNowFunc(fn func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn != nil {
		m.nowFn = fn
	}
}

// Put stores code, replacing any prior code for the same user and channel.
func (m *MemoryStore) Put(_ context.Context, code Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[codeKey{code.UserID, code.Channel}] = code
	return nil
}

// Get returns the live code for user and channel. Expired codes are treated
// as absent and evicted.
func (m *MemoryStore) Get(_ context.Context, userID string, channel Channel) (Code, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := codeKey{userID, channel}
	code, ok := m.codes[key]
	if !ok {
		return Code{}, false, nil
	}
	if !code.ExpiresAt.After(m.nowFn()) {
		delete(m.codes, key)
		return Code{}, false, nil
	}
	return code, true, nil
}

// Delete removes the code for user and channel, if any.
func (m *MemoryStore) Delete(_ context.Context, userID string, channel Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, codeKey{userID, channel})
	return nil
}

var _ CodeStore = (*MemoryStore)(nil)
