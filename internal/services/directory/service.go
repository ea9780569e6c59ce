// Package directory resolves public share links to clips.
package directory

import (
	"context"
	"errors"

	"github.com/vzeefun/vzee/internal/metrics"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// ProfileView is a public profile page: the reservation plus its clips
type ProfileView struct {
	Profile *model.Profile `json:"profile"`
	Clips   []*model.Clip  `json:"clips"`
}

// Service answers lookups by username and title
type Service struct {
	storage storage.Storage
}

// New creates a new directory Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Lookup finds the clip at @username/title. It is a single point query in
// the owner's namespace; other owners are never consulted.
func (s *Service) Lookup(ctx context.Context, username, title string) (*model.Clip, error) {
	username = model.CanonicalUsername(username)
	title = model.CanonicalTitle(title)

	if model.ValidateUsername(username) != nil || model.ValidateTitle(title) != nil {
		metrics.DirectoryLookupsTotal.WithLabelValues("miss").Inc()
		return nil, model.ErrClipNotFound
	}

	clip, err := s.storage.GetClip(ctx, username, title)
	if err != nil {
		if errors.Is(err, model.ErrClipNotFound) {
			metrics.DirectoryLookupsTotal.WithLabelValues("miss").Inc()
		}
		return nil, err
	}
	metrics.DirectoryLookupsTotal.WithLabelValues("hit").Inc()
	return clip, nil
}

// Profile returns the public profile for username with clips newest first
func (s *Service) Profile(ctx context.Context, username string) (*ProfileView, error) {
	username = model.CanonicalUsername(username)
	if model.ValidateUsername(username) != nil {
		return nil, model.ErrProfileNotFound
	}

	profile, err := s.storage.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	clips, err := s.storage.ListClips(ctx, username)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: profile, Clips: clips}, nil
}
