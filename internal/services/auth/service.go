package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/vzeefun/vzee/internal/dependencies/clock"
	"github.com/vzeefun/vzee/internal/dependencies/random"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// Errors
var (
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidIdentity    = errors.New("identity is missing an email")
	ErrDevLoginDisabled   = errors.New("dev login is disabled")
	ErrIDTokensDisabled   = errors.New("identity tokens are not configured")
	ErrInvalidIDToken     = errors.New("invalid identity token")
	ErrProviderNotEnabled = errors.New("sign-in provider is not configured")
)

// Session represents an authenticated session
type Session struct {
	Token     string
	UserID    model.UserID
	User      model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles sign-in and session management. One instance is created
// at start-up; there is no package-level current user.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
	devLogin        bool
	tokens          *TokenVerifier
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration

	// DevLogin allows signing in with just an email address
	DevLogin bool

	// IDTokenSecret enables HS256 identity tokens when non-empty
	IDTokenSecret string
	IDTokenIssuer string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		IDTokenIssuer:   "vzee",
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	s := &Service{
		storage:         storage,
		clock:           clock,
		random:          random,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
		devLogin:        cfg.DevLogin,
	}
	if cfg.IDTokenSecret != "" {
		s.tokens = NewTokenVerifier([]byte(cfg.IDTokenSecret), cfg.IDTokenIssuer, clock)
	}
	return s
}

// DevLoginEnabled reports whether DevSignIn is allowed
func (s *Service) DevLoginEnabled() bool {
	return s.devLogin
}

// SignIn records the identity and opens a session. The user is created on
// first sign-in (matched by email) and its display fields refreshed after.
func (s *Service) SignIn(ctx context.Context, identity model.Identity) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, ErrInvalidIdentity
	}
	now := s.clock.Now()

	user, err := s.storage.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		user = &model.User{
			ID:        model.UserID("u_" + s.random.UUID()),
			Email:     email,
			CreatedAt: now,
		}
	case err != nil:
		return nil, err
	}

	if identity.DisplayName != "" {
		user.DisplayName = identity.DisplayName
	}
	if identity.PictureURL != "" {
		user.PictureURL = identity.PictureURL
	}
	if user.DisplayName == "" {
		user.DisplayName, _, _ = strings.Cut(email, "@")
	}
	user.UpdatedAt = now

	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	return s.createSession(user), nil
}

// DevSignIn signs in with a bare email address when dev login is enabled
func (s *Service) DevSignIn(ctx context.Context, email, displayName string) (*Session, error) {
	if !s.devLogin {
		return nil, ErrDevLoginDisabled
	}
	return s.SignIn(ctx, model.Identity{
		Subject:     "dev:" + email,
		Email:       email,
		DisplayName: displayName,
	})
}

// SignInWithIDToken verifies an identity token and signs its subject in
func (s *Service) SignInWithIDToken(ctx context.Context, raw string) (*Session, error) {
	if s.tokens == nil {
		return nil, ErrIDTokensDisabled
	}
	identity, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	return s.SignIn(ctx, identity)
}

// Tokens returns the identity token verifier, or nil when tokens are disabled
func (s *Service) Tokens() *TokenVerifier {
	return s.tokens
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session (sign-out)
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetUser returns the user for a session token
func (s *Service) GetUser(token string) (*model.User, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	user := session.User
	return &user, nil
}

func (s *Service) createSession(user *model.User) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     s.random.Token("sess_"),
		UserID:    user.ID,
		User:      *user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// ActiveSessions reports how many sessions are held
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
