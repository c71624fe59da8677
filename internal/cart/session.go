package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/joao-fontenele/hotwheels-storefront/internal/money"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the state owned by one browsing session: its cart and the
// selected display currency.
type Session struct {
	ID       string         `json:"id"`
	Cart     *Ledger        `json:"cart"`
	Currency money.Currency `json:"currency"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:       id,
		Cart:     NewLedger(),
		Currency: money.USD,
	}
}

// SessionStore persists sessions between requests. Implementations must
// return ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

func encodeSession(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(data []byte) (*Session, error) {
	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.Cart == nil {
		s.Cart = NewLedger()
	}
	if s.Currency == "" {
		s.Currency = money.USD
	}
	return s, nil
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore keeps encoded sessions in process memory.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemorySessionStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && m.now().After(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(entry.data)
}

func (m *MemorySessionStore) Save(_ context.Context, session *Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[session.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
