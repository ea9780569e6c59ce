package client

import (
	"context"
	"log/slog"

	"github.com/vzeefun/vzee/internal/localcache"
	"github.com/vzeefun/vzee/internal/model"
)

// Directory resolves share links to clips
type Directory struct {
	api    *Client
	cache  *localcache.Cache
	logger *slog.Logger
}

// NewDirectory creates a directory
func NewDirectory(api *Client, cache *localcache.Cache, logger *slog.Logger) *Directory {
	return &Directory{api: api, cache: cache, logger: logger}
}

// Lookup finds the clip username published under title. While the server
// is unreachable only username's own cached list is consulted.
func (d *Directory) Lookup(ctx context.Context, username, title string) (*Clip, error) {
	username = model.CanonicalUsername(username)
	title = model.CanonicalTitle(title)

	clip, err := d.api.LookupClip(ctx, username, title)
	switch {
	case err == nil:
		return clip, nil
	case IsNotFound(err):
		return nil, model.ErrClipNotFound
	case !IsUnavailable(err):
		return nil, err
	}

	d.logger.Debug("looking up clip in cache", slog.String("username", username), slog.String("error", err.Error()))
	cached, ok, cerr := d.cache.Clips(ctx, username)
	if cerr != nil || !ok {
		return nil, model.ErrClipNotFound
	}
	for _, c := range cached {
		if model.CanonicalTitle(c.Title) == title {
			return fromCached(username, c), nil
		}
	}
	return nil, model.ErrClipNotFound
}

// List returns username's clips, newest first, refreshing the cache.
// While the server is unreachable the cached list is returned.
func (d *Directory) List(ctx context.Context, username string) ([]Clip, error) {
	username = model.CanonicalUsername(username)

	list, err := d.api.ListClips(ctx, username)
	if err == nil {
		if cerr := d.cache.PutClips(ctx, username, toCached(list.Clips)); cerr != nil {
			d.logger.Warn("failed to cache clips", slog.String("username", username), slog.String("error", cerr.Error()))
		}
		return list.Clips, nil
	}
	if IsNotFound(err) {
		return nil, model.ErrProfileNotFound
	}
	if !IsUnavailable(err) {
		return nil, err
	}

	cached, ok, cerr := d.cache.Clips(ctx, username)
	if cerr != nil || !ok {
		return nil, err
	}
	clips := make([]Clip, len(cached))
	for i, c := range cached {
		clips[i] = *fromCached(username, c)
	}
	return clips, nil
}

func toCached(clips []Clip) []localcache.Clip {
	cached := make([]localcache.Clip, len(clips))
	for i, c := range clips {
		cached[i] = localcache.Clip{
			Title:       c.Title,
			AudioURL:    c.AudioURL,
			ContentType: c.ContentType,
			Size:        c.Size,
			CreatedAt:   c.CreatedAt.UnixMilli(),
		}
	}
	return cached
}

func fromCached(username string, c localcache.Clip) *Clip {
	return &Clip{
		Username:    username,
		Title:       c.Title,
		ContentType: c.ContentType,
		Size:        c.Size,
		AudioURL:    c.AudioURL,
		CreatedAt:   c.Created().UTC(),
	}
}
