package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

const MinPasswordLength = 6

type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// SignIn is the result of a successful login or signup.
type SignIn struct {
	Identity  *domain.Identity `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type ChangeKind string

const (
	SignedIn  ChangeKind = "signed-in"
	SignedOut ChangeKind = "signed-out"
)

type IdentityChange struct {
	Kind     ChangeKind
	Identity *domain.Identity
}

// Provider owns accounts and identity tokens. The admin role is granted at
// signup to the configured admin email and carried in the token from then on.
type Provider struct {
	users       UserStore
	tokens      *Tokens
	revocations Revocations
	adminEmail  string
	hashCost    int
	now         func() time.Time
	logger      *slog.Logger

	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(IdentityChange)
}

func NewProvider(users UserStore, tokens *Tokens, revocations Revocations, adminEmail string, logger *slog.Logger) *Provider {
	return &Provider{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		adminEmail:  normalizeEmail(adminEmail),
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
		logger:      logger,
		listeners:   make(map[int]func(IdentityChange)),
	}
}

func (p *Provider) Signup(ctx context.Context, email, password string) (*SignIn, error) {
	email = normalizeEmail(email)
	if !domain.ValidEmail(email) {
		return nil, newError(KindInvalidEmail, nil)
	}
	if len(password) < MinPasswordLength {
		return nil, newError(KindWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         p.roleFor(email),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, newError(KindEmailInUse, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	p.logger.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return p.signIn(user)
}

func (p *Provider) Login(ctx context.Context, email, password string) (*SignIn, error) {
	email = normalizeEmail(email)
	if !domain.ValidEmail(email) {
		return nil, newError(KindInvalidEmail, nil)
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, newError(KindUserNotFound, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(KindWrongPassword, err)
	}

	return p.signIn(user)
}

// Logout revokes token. Logging out with an already invalid token is not an
// error.
func (p *Provider) Logout(ctx context.Context, token string) error {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := p.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}
	p.notify(IdentityChange{Kind: SignedOut, Identity: claims.Identity()})
	return nil
}

// Authenticate verifies token and returns the identity it carries.
func (p *Provider) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := p.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, newError(KindInvalidToken, errors.New("token revoked"))
	}
	return claims.Identity(), nil
}

// Subscribe registers fn for sign-in and sign-out events. The returned func
// removes it.
func (p *Provider) Subscribe(fn func(IdentityChange)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) signIn(user *User) (*SignIn, error) {
	identity := &domain.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	token, claims, err := p.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	p.notify(IdentityChange{Kind: SignedIn, Identity: identity})
	return &SignIn{
		Identity:  identity,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (p *Provider) notify(change IdentityChange) {
	p.mu.RLock()
	listeners := make([]func(IdentityChange), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.RUnlock()

	for _, fn := range listeners {
		fn(change)
	}
}

func (p *Provider) roleFor(email string) domain.Role {
	if p.adminEmail != "" && email == p.adminEmail {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
