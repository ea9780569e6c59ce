// Package clips stores audio clips: upload, listing, deletion and media access.
package clips

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/blake2b"

	"github.com/vzeefun/vzee/internal/blob"
	"github.com/vzeefun/vzee/internal/dependencies/clock"
	"github.com/vzeefun/vzee/internal/dependencies/random"
	"github.com/vzeefun/vzee/internal/events"
	"github.com/vzeefun/vzee/internal/metrics"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// sniffLen is how much of an upload is inspected to detect its type
const sniffLen = 3072

// Config holds clip service settings
type Config struct {
	// BaseURL is the public origin used to build audio URLs
	BaseURL string

	// PresignExpiry bounds direct download links when the blob store supports them
	PresignExpiry time.Duration
}

// DefaultConfig returns default clip configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8080",
		PresignExpiry: 15 * time.Minute,
	}
}

// UploadRequest is a clip upload as received from a client
type UploadRequest struct {
	OwnerID     model.UserID
	Title       string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service handles clip operations
type Service struct {
	storage   storage.Storage
	blobs     blob.Store
	clock     clock.Clock
	random    random.Random
	publisher events.Publisher
	logger    *slog.Logger
	cfg       Config
}

// New creates a new clip Service
func New(
	storage storage.Storage,
	blobs blob.Store,
	clock clock.Clock,
	random random.Random,
	publisher events.Publisher,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = DefaultConfig().PresignExpiry
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{
		storage:   storage,
		blobs:     blobs,
		clock:     clock,
		random:    random,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "clips")),
		cfg:       cfg,
	}
}

// CheckTitle reports whether title is free in username's clip namespace.
// Invalid titles return their validation error.
func (s *Service) CheckTitle(ctx context.Context, username, title string) (bool, error) {
	title = model.CanonicalTitle(title)
	if err := model.ValidateTitle(title); err != nil {
		return false, err
	}

	_, err := s.storage.GetClip(ctx, model.CanonicalUsername(username), title)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, model.ErrClipNotFound):
		return true, nil
	default:
		return false, err
	}
}

// Upload validates and stores a clip. Every precondition is checked before
// the blob store is touched; if the metadata write fails the stored object
// is removed again.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*model.Clip, error) {
	clip, err := s.upload(ctx, req)
	switch {
	case err == nil:
		metrics.ClipUploadsTotal.WithLabelValues("stored").Inc()
		metrics.ClipUploadBytes.Observe(float64(clip.Size))
	case errors.Is(err, model.ErrInvalidTitle), errors.Is(err, model.ErrInvalidUpload),
		errors.Is(err, model.ErrClipExists), errors.Is(err, model.ErrNoUsername):
		metrics.ClipUploadsTotal.WithLabelValues("rejected").Inc()
	default:
		metrics.ClipUploadsTotal.WithLabelValues("error").Inc()
	}
	return clip, err
}

func (s *Service) upload(ctx context.Context, req UploadRequest) (*model.Clip, error) {
	title := model.CanonicalTitle(req.Title)
	if err := model.ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := model.ValidateUpload(req.ContentType, req.Size); err != nil {
		return nil, err
	}

	profile, err := s.storage.GetProfileByOwner(ctx, req.OwnerID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return nil, model.ErrNoUsername
		}
		return nil, err
	}

	if free, err := s.CheckTitle(ctx, profile.Username, title); err != nil {
		return nil, err
	} else if !free {
		return nil, model.ErrClipExists
	}

	body, contentType, err := sniff(req.Body, req.ContentType)
	if err != nil {
		return nil, err
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	counter := &countingReader{r: io.TeeReader(io.LimitReader(body, model.MaxClipSize+1), hasher)}

	key := "clips/" + s.random.UUID()
	if err := s.blobs.Put(ctx, key, counter, req.Size, contentType); err != nil {
		s.discard(ctx, key)
		return nil, fmt.Errorf("store audio: %w", err)
	}
	// Stores that stop at the declared size leave trailing bytes unread
	_, _ = io.Copy(io.Discard, io.LimitReader(counter, 1))
	if counter.n != req.Size {
		s.discard(ctx, key)
		if counter.n > model.MaxClipSize {
			return nil, model.ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: received %d of %d bytes", model.ErrInvalidUpload, counter.n, req.Size)
	}

	clip := &model.Clip{
		ID:            model.ClipID(s.random.UUID()),
		OwnerUsername: profile.Username,
		Title:         title,
		ObjectKey:     key,
		ContentType:   contentType,
		Size:          counter.n,
		Checksum:      hex.EncodeToString(hasher.Sum(nil)),
		AudioURL:      s.MediaURL(key),
		CreatedAt:     s.clock.Now(),
	}
	if err := s.storage.CreateClip(ctx, clip); err != nil {
		s.discard(ctx, key)
		// A rename committed after the profile was read
		if errors.Is(err, model.ErrProfileNotFound) {
			return nil, model.ErrUsernameChanged
		}
		return nil, err
	}

	s.logger.Info("clip uploaded",
		slog.String("username", clip.OwnerUsername),
		slog.String("title", clip.Title),
		slog.Int64("size", clip.Size))

	s.publisher.Publish(ctx, model.Event{
		Type:      model.EventClipAdded,
		Timestamp: clip.CreatedAt,
		Username:  clip.OwnerUsername,
		Title:     clip.Title,
		Payload:   clip,
	})
	return clip, nil
}

// discard removes an object that no clip will reference
func (s *Service) discard(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error("failed to remove orphaned object",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// sniff inspects the head of body. A detected non-audio type rejects the
// upload; otherwise the detected audio type wins over the declared one.
func sniff(body io.Reader, declared string) (io.Reader, string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, "", model.ErrEmptyFile
	}

	contentType := declared
	detected := mimetype.Detect(head)
	switch {
	case isAudio(detected):
		contentType = detected.String()
	case detected.Is("application/octet-stream"), detected.Is("text/plain"):
		// Nothing recognisable; trust the declared audio type
	default:
		return nil, "", model.ErrNotAudio
	}

	return io.MultiReader(bytes.NewReader(head), body), contentType, nil
}

func isAudio(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if model.IsAudioContentType(m.String()) {
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// List returns username's clips, newest first
func (s *Service) List(ctx context.Context, username string) ([]*model.Clip, error) {
	return s.storage.ListClips(ctx, model.CanonicalUsername(username))
}

// Delete removes one of the owner's clips and its audio
func (s *Service) Delete(ctx context.Context, ownerID model.UserID, title string) error {
	profile, err := s.storage.GetProfileByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return model.ErrNoUsername
		}
		return err
	}

	title = model.CanonicalTitle(title)
	clip, err := s.storage.GetClip(ctx, profile.Username, title)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteClip(ctx, profile.Username, title); err != nil {
		return err
	}
	s.discard(ctx, clip.ObjectKey)
	metrics.ClipDeletesTotal.Inc()

	s.publisher.Publish(ctx, model.Event{
		Type:      model.EventClipRemoved,
		Timestamp: s.clock.Now(),
		Username:  profile.Username,
		Title:     title,
	})
	return nil
}

// MediaURL is the stable public URL for an object key
func (s *Service) MediaURL(key string) string {
	return s.cfg.BaseURL + "/media/" + key
}

// OpenMedia opens an object for streaming
func (s *Service) OpenMedia(ctx context.Context, key string) (*blob.Object, error) {
	if !strings.HasPrefix(key, "clips/") {
		return nil, model.ErrObjectNotFound
	}
	return s.blobs.Open(ctx, key)
}

// DirectURL returns a presigned link for key when the blob store can make one
func (s *Service) DirectURL(ctx context.Context, key string) (*url.URL, bool, error) {
	presigner, ok := s.blobs.(blob.Presigner)
	if !ok || !strings.HasPrefix(key, "clips/") {
		return nil, false, nil
	}
	u, err := presigner.PresignGet(ctx, key, s.cfg.PresignExpiry)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
