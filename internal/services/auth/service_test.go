package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vzeefun/vzee/internal/dependencies/mocks"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	cfg := DefaultConfig()
	cfg.DevLogin = true
	cfg.IDTokenSecret = "test-secret"
	s.service = New(s.storage, s.clock, s.random, cfg)
	s.ctx = context.Background()
}

func (s *ServiceSuite) identity(email string) model.Identity {
	return model.Identity{Subject: "test:" + email, Email: email, DisplayName: "Alice"}
}

// SignIn tests

func (s *ServiceSuite) TestSignInCreatesUser() {
	s.random.QueueUUID("abc")

	session, err := s.service.SignIn(s.ctx, s.identity("alice@example.com"))
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal(model.UserID("u_abc"), session.UserID)

	user, err := s.storage.GetUserByEmail(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal("Alice", user.DisplayName)
	s.Equal(s.clock.Now(), user.CreatedAt)
}

func (s *ServiceSuite) TestSignInAgainKeepsUserAndRefreshesProfile() {
	first, err := s.service.SignIn(s.ctx, s.identity("alice@example.com"))
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	second, err := s.service.SignIn(s.ctx, model.Identity{
		Email:       "Alice@Example.com",
		DisplayName: "Alice Renamed",
		PictureURL:  "https://example.com/a.png",
	})
	s.Require().NoError(err)

	s.Equal(first.UserID, second.UserID)
	s.NotEqual(first.Token, second.Token)

	user, err := s.storage.GetUser(s.ctx, first.UserID)
	s.Require().NoError(err)
	s.Equal("Alice Renamed", user.DisplayName)
	s.Equal("https://example.com/a.png", user.PictureURL)
	s.True(user.UpdatedAt.After(user.CreatedAt))
}

func (s *ServiceSuite) TestSignInDefaultsDisplayNameToEmailLocalPart() {
	session, err := s.service.SignIn(s.ctx, model.Identity{Email: "bob@example.com"})
	s.Require().NoError(err)
	s.Equal("bob", session.User.DisplayName)
}

func (s *ServiceSuite) TestSignInRequiresEmail() {
	_, err := s.service.SignIn(s.ctx, model.Identity{Subject: "x"})
	s.ErrorIs(err, ErrInvalidIdentity)
}

func (s *ServiceSuite) TestDevSignInDisabled() {
	service := New(s.storage, s.clock, s.random, DefaultConfig())

	_, err := service.DevSignIn(s.ctx, "alice@example.com", "")
	s.ErrorIs(err, ErrDevLoginDisabled)
}

// Identity token tests

func (s *ServiceSuite) TestSignInWithIDToken() {
	raw, err := s.service.Tokens().Mint(s.identity("alice@example.com"), time.Hour)
	s.Require().NoError(err)

	session, err := s.service.SignInWithIDToken(s.ctx, raw)
	s.Require().NoError(err)
	s.Equal("alice@example.com", session.User.Email)
}

func (s *ServiceSuite) TestSignInWithExpiredIDToken() {
	raw, err := s.service.Tokens().Mint(s.identity("alice@example.com"), time.Minute)
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)
	_, err = s.service.SignInWithIDToken(s.ctx, raw)
	s.ErrorIs(err, ErrInvalidIDToken)
}

func (s *ServiceSuite) TestSignInWithForeignIDToken() {
	other := NewTokenVerifier([]byte("other-secret"), "vzee", s.clock)
	raw, err := other.Mint(s.identity("alice@example.com"), time.Hour)
	s.Require().NoError(err)

	_, err = s.service.SignInWithIDToken(s.ctx, raw)
	s.ErrorIs(err, ErrInvalidIDToken)
}

func (s *ServiceSuite) TestIDTokensDisabled() {
	service := New(s.storage, s.clock, s.random, DefaultConfig())
	_, err := service.SignInWithIDToken(s.ctx, "anything")
	s.ErrorIs(err, ErrIDTokensDisabled)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	session, _ := s.service.DevSignIn(s.ctx, "alice@example.com", "Alice")

	validated, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.UserID, validated.UserID)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("nope")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionExpires() {
	session, _ := s.service.DevSignIn(s.ctx, "alice@example.com", "Alice")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
	s.Equal(0, s.service.ActiveSessions())
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, _ := s.service.DevSignIn(s.ctx, "alice@example.com", "Alice")

	s.service.InvalidateSession(session.Token)

	_, err := s.service.GetUser(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	_, _ = s.service.DevSignIn(s.ctx, "alice@example.com", "Alice")
	s.clock.Advance(12 * time.Hour)
	fresh, _ := s.service.DevSignIn(s.ctx, "bob@example.com", "Bob")
	s.clock.Advance(13 * time.Hour)

	s.Equal(1, s.service.CleanExpiredSessions())
	s.Equal(1, s.service.ActiveSessions())

	_, err := s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
