// Package identity manages username reservations: availability checks,
// the atomic claim and renames.
package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vzeefun/vzee/internal/dependencies/clock"
	"github.com/vzeefun/vzee/internal/events"
	"github.com/vzeefun/vzee/internal/metrics"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// Availability reasons
const (
	ReasonTaken    = "taken"
	ReasonReserved = "reserved"
)

// Service handles username operations
type Service struct {
	storage   storage.Storage
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates a new identity Service
func New(storage storage.Storage, clock clock.Clock, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		storage:   storage,
		clock:     clock,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "identity")),
	}
}

// CheckAvailability reports whether username could be claimed right now.
// The answer is advisory; only Claim decides.
func (s *Service) CheckAvailability(ctx context.Context, username string) (model.Availability, error) {
	name := model.CanonicalUsername(username)
	result := model.Availability{Name: name}

	if err := model.ValidateUsername(name); err != nil {
		result.Reason = err.Error()
		return result, nil
	}
	if model.IsReservedUsername(name) {
		result.Reason = ReasonReserved
		return result, nil
	}

	_, err := s.storage.GetProfile(ctx, name)
	switch {
	case err == nil:
		result.Reason = ReasonTaken
	case errors.Is(err, model.ErrProfileNotFound):
		result.Available = true
	default:
		return model.Availability{}, err
	}
	return result, nil
}

// Claim reserves username for the user in a single atomic store operation
func (s *Service) Claim(ctx context.Context, userID model.UserID, username string) (*model.Profile, error) {
	profile, err := s.claim(ctx, userID, username)
	metrics.UsernameClaimsTotal.WithLabelValues(claimResult(err)).Inc()
	return profile, err
}

func claimResult(err error) string {
	switch {
	case err == nil:
		return "claimed"
	case errors.Is(err, model.ErrUsernameTaken):
		return "taken"
	case errors.Is(err, model.ErrAlreadyHasUsername):
		return "owned"
	case errors.Is(err, model.ErrUsernameReserved):
		return "reserved"
	case errors.Is(err, model.ErrInvalidUsername):
		return "invalid"
	default:
		return "error"
	}
}

func (s *Service) claim(ctx context.Context, userID model.UserID, username string) (*model.Profile, error) {
	name := model.CanonicalUsername(username)
	if err := model.ValidateUsername(name); err != nil {
		return nil, err
	}
	if model.IsReservedUsername(name) {
		return nil, model.ErrUsernameReserved
	}

	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	profile := &model.Profile{
		Username:    name,
		OwnerID:     userID,
		DisplayName: user.DisplayName,
		PictureURL:  user.PictureURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.storage.ClaimUsername(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("username claimed",
		slog.String("username", name),
		slog.String("user", string(userID)))
	return profile, nil
}

// Rename moves the user's reservation to newName, carrying every clip along
func (s *Service) Rename(ctx context.Context, userID model.UserID, newName string) (*model.Profile, error) {
	current, err := s.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := model.CanonicalUsername(newName)
	if err := model.ValidateUsername(name); err != nil {
		return nil, err
	}
	if model.IsReservedUsername(name) {
		return nil, model.ErrUsernameReserved
	}
	if name == current.Username {
		return current, nil
	}

	renamed, err := s.storage.RenameUsername(ctx, userID, current.Username, name, s.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.UsernameRenamesTotal.Inc()
	s.logger.Info("username renamed",
		slog.String("from", current.Username),
		slog.String("to", name))

	s.publisher.Publish(ctx, model.Event{
		Type:      model.EventUsernameChanged,
		Timestamp: s.clock.Now(),
		Username:  current.Username,
		Payload: model.UsernameChangedPayload{
			OldUsername: current.Username,
			NewUsername: name,
		},
	})
	return renamed, nil
}

// ProfileForUser returns the reservation held by userID, or ErrNoUsername
func (s *Service) ProfileForUser(ctx context.Context, userID model.UserID) (*model.Profile, error) {
	profile, err := s.storage.GetProfileByOwner(ctx, userID)
	if errors.Is(err, model.ErrProfileNotFound) {
		return nil, model.ErrNoUsername
	}
	return profile, err
}

// Profile returns the reservation for username
func (s *Service) Profile(ctx context.Context, username string) (*model.Profile, error) {
	return s.storage.GetProfile(ctx, model.CanonicalUsername(username))
}
