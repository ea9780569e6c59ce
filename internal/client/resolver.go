package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vzeefun/vzee/internal/localcache"
	"github.com/vzeefun/vzee/internal/model"
)

// Resolver maps a signed-in user to their username and manages claims.
// The server decides; the cache answers only while the server is unreachable.
type Resolver struct {
	api    *Client
	cache  *localcache.Cache
	logger *slog.Logger
}

// NewResolver creates a resolver
func NewResolver(api *Client, cache *localcache.Cache, logger *slog.Logger) *Resolver {
	return &Resolver{api: api, cache: cache, logger: logger}
}

// Resolve returns user's username, or model.ErrNoUsername if they have none
func (r *Resolver) Resolve(ctx context.Context, user User) (string, error) {
	me, err := r.api.Me(ctx)
	switch {
	case err == nil:
		if me.Profile == nil {
			// Authoritative: drop anything stale
			if err := r.cache.ForgetUsername(ctx, user.Email); err != nil {
				r.logger.Warn("failed to clear cached username", slog.String("error", err.Error()))
			}
			return "", model.ErrNoUsername
		}
		if err := r.cache.RememberUsername(ctx, user.Email, me.Profile.Username); err != nil {
			r.logger.Warn("failed to cache username", slog.String("error", err.Error()))
		}
		return me.Profile.Username, nil

	case IsUnavailable(err):
		r.logger.Debug("resolving username from cache", slog.String("error", err.Error()))
		if name, ok, cerr := r.cache.UsernameFor(ctx, user.Email); cerr == nil && ok {
			return name, nil
		}
		if name, ok, cerr := r.cache.LegacyUsername(ctx); cerr == nil && ok {
			return name, nil
		}
		return "", err

	default:
		return "", err
	}
}

// Check reports whether username can be claimed. Invalid and reserved
// names are answered locally. When the server is unreachable the answer
// comes from the cached username list and is not confirmed.
func (r *Resolver) Check(ctx context.Context, username string) (*Availability, error) {
	name := model.CanonicalUsername(username)
	if err := model.ValidateUsername(name); err != nil {
		return &Availability{Name: name, Reason: err.Error(), Confirmed: true}, nil
	}
	if model.IsReservedUsername(name) {
		return &Availability{Name: name, Reason: "reserved", Confirmed: true}, nil
	}

	a, err := r.api.CheckUsername(ctx, name)
	if err == nil {
		return a, nil
	}
	if !IsUnavailable(err) {
		return nil, err
	}

	known, cerr := r.cache.IsKnownUsername(ctx, name)
	if cerr != nil {
		return nil, errors.Join(err, cerr)
	}
	local := &Availability{Name: name, Available: !known}
	if known {
		local.Reason = "taken"
	}
	return local, nil
}

// Claim claims username for user. Nothing is cached unless the server
// accepted the claim.
func (r *Resolver) Claim(ctx context.Context, user User, username string) (*Profile, error) {
	name := model.CanonicalUsername(username)
	if err := model.ValidateUsername(name); err != nil {
		return nil, err
	}
	if model.IsReservedUsername(name) {
		return nil, model.ErrUsernameReserved
	}

	profile, err := r.api.ClaimUsername(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.cache.RememberUsername(ctx, user.Email, profile.Username); err != nil {
		r.logger.Warn("failed to cache username", slog.String("error", err.Error()))
	}
	return profile, nil
}

// Rename moves user's username to newName, then migrates the cache
func (r *Resolver) Rename(ctx context.Context, user User, newName string) (*Profile, error) {
	name := model.CanonicalUsername(newName)
	if err := model.ValidateUsername(name); err != nil {
		return nil, err
	}
	if model.IsReservedUsername(name) {
		return nil, model.ErrUsernameReserved
	}

	me, err := r.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if me.Profile == nil {
		return nil, model.ErrNoUsername
	}
	oldName := me.Profile.Username

	profile, err := r.api.RenameUsername(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.cache.RenameUsername(ctx, user.Email, oldName, profile.Username); err != nil {
		return profile, fmt.Errorf("renamed to %s but cache migration failed: %w", profile.Username, err)
	}
	return profile, nil
}

// SignOut ends the session and forgets the user locally. The local state
// is cleared even if the server could not be reached.
func (r *Resolver) SignOut(ctx context.Context, user User) error {
	remoteErr := r.api.Logout(ctx)
	r.api.SetToken("")

	if err := r.cache.Forget(ctx, user.Email); err != nil {
		return errors.Join(remoteErr, err)
	}
	if remoteErr != nil && !IsUnavailable(remoteErr) {
		return remoteErr
	}
	return nil
}

// Remember stores the signed-in user in the cache
func (r *Resolver) Remember(ctx context.Context, result *AuthResult) error {
	user := localcache.User{
		ID:       result.User.ID,
		Email:    result.User.Email,
		Name:     result.User.DisplayName,
		Picture:  result.User.PictureURL,
		Username: result.Username,
	}
	if err := r.cache.SetUser(ctx, user); err != nil {
		return err
	}
	if result.Username != "" {
		return r.cache.RememberUsername(ctx, result.User.Email, result.Username)
	}
	return nil
}
