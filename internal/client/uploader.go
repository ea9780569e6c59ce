package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vzeefun/vzee/internal/localcache"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/playback"
)

// Upload is a published clip plus the object URL staged for the local file.
// The caller owns LocalURL and must revoke it or hand it to a player.
type Upload struct {
	Clip     *Clip
	LocalURL string
}

// Uploader validates and publishes local audio files
type Uploader struct {
	api    *Client
	cache  *localcache.Cache
	urls   *playback.ObjectURLs
	logger *slog.Logger
}

// NewUploader creates an uploader
func NewUploader(api *Client, cache *localcache.Cache, urls *playback.ObjectURLs, logger *slog.Logger) *Uploader {
	return &Uploader{api: api, cache: cache, urls: urls, logger: logger}
}

// LocalFile is an opened, validated upload candidate
type LocalFile struct {
	Path        string
	Title       string
	ContentType string
	Size        int64
	file        *os.File
}

// Close closes the file
func (f *LocalFile) Close() error {
	return f.file.Close()
}

// Prepare validates title and the file at path without contacting the
// server: title shape, size limits and sniffed audio type.
func Prepare(title, path string) (*LocalFile, error) {
	title = model.CanonicalTitle(title)
	if err := model.ValidateTitle(title); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", model.ErrInvalidUpload, path)
	}

	// Size first so an oversized file is never read
	if err := model.ValidateUpload("audio/", info.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sniff %s: %w", path, err)
	}
	if err := model.ValidateUpload(detected.String(), info.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &LocalFile{
		Path:        path,
		Title:       title,
		ContentType: detected.String(),
		Size:        info.Size(),
		file:        f,
	}, nil
}

// Upload validates, checks the title with the server, stages a local
// object URL and publishes. A failed upload leaves nothing behind.
func (u *Uploader) Upload(ctx context.Context, title, path string) (*Upload, error) {
	local, err := Prepare(title, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = local.Close() }()

	availability, err := u.api.CheckTitle(ctx, local.Title)
	if err != nil {
		return nil, err
	}
	if !availability.Available {
		if availability.Reason == "taken" {
			return nil, model.ErrClipExists
		}
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidTitle, availability.Reason)
	}

	staged := u.urls.Create(local.Path)

	clip, err := u.api.UploadClip(ctx, local.Title, filepath.Base(local.Path), local.ContentType, local.file)
	if err != nil {
		u.urls.Revoke(staged)
		return nil, err
	}

	if err := u.cache.InvalidateClips(ctx, clip.Username); err != nil {
		u.logger.Warn("failed to invalidate cached clips",
			slog.String("username", clip.Username),
			slog.String("error", err.Error()),
		)
	}

	u.logger.Info("clip uploaded",
		slog.String("username", clip.Username),
		slog.String("title", clip.Title),
		slog.Int64("size", clip.Size),
	)
	return &Upload{Clip: clip, LocalURL: staged}, nil
}
