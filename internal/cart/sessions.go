package cart

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const SessionCookie = "sf_session"

type sessionIDKey struct{}

// Sessions serializes access to each session so concurrent requests from the
// same browser never interleave a load/modify/save cycle.
type Sessions struct {
	store SessionStore

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessions(store SessionStore) *Sessions {
	return &Sessions{
		store: store,
		locks: make(map[string]*sessionLock),
	}
}

// Get returns the stored session, or a fresh one when none exists yet.
func (s *Sessions) Get(ctx context.Context, id string) (*Session, error) {
	unlock := s.lock(id)
	defer unlock()
	return s.load(ctx, id)
}

// Update applies fn to the session and saves it. Nothing is saved when fn
// returns an error.
func (s *Sessions) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// End tears the session down.
func (s *Sessions) End(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	return s.store.Delete(ctx, id)
}

func (s *Sessions) load(ctx context.Context, id string) (*Session, error) {
	session, err := s.store.Load(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return NewSession(id), nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Sessions) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// SessionMiddleware makes sure every request carries a session id, issuing
// a new cookie when the browser has none.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
	})
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
