package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/vzeefun/vzee/internal/blob"
	blobmemory "github.com/vzeefun/vzee/internal/blob/memory"
	"github.com/vzeefun/vzee/internal/blob/miniostore"
	"github.com/vzeefun/vzee/internal/dependencies/clock"
	"github.com/vzeefun/vzee/internal/dependencies/random"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/directory"
	"github.com/vzeefun/vzee/internal/services/identity"
	"github.com/vzeefun/vzee/internal/storage"
	"github.com/vzeefun/vzee/internal/storage/memory"
	"github.com/vzeefun/vzee/internal/storage/postgres"
	redisstorage "github.com/vzeefun/vzee/internal/storage/redis"
	"github.com/vzeefun/vzee/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Blob type constants
const (
	BlobTypeMemory = "memory"
	BlobTypeMinio  = "minio"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Blobs   blob.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService      *auth.Service
	IdentityService  *identity.Service
	ClipService      *clips.Service
	DirectoryService *directory.Service
	Google           *auth.GoogleProvider // nil unless configured

	// Live updates
	HubManager  *sse.HubManager
	Broadcaster *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the metadata backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
	// BlobType selects the audio backend ("memory" or "minio")
	// If empty, defaults to "memory"
	BlobType string
	// MinioConfig holds object storage settings (required if BlobType is "minio")
	MinioConfig *miniostore.Config
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// ClipConfig holds configuration for the clip service (optional)
	ClipConfig clips.Config
	// Google enables Google sign-in when ClientID is set
	Google auth.GoogleConfig
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobs(ctx, cfg)
	if err != nil {
		closeStorage(store)
		return nil, err
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Use default configs if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}
	clipCfg := cfg.ClipConfig
	if clipCfg.BaseURL == "" {
		clipCfg.BaseURL = clips.DefaultConfig().BaseURL
	}

	app := newWithDependencies(store, blobs, clk, rnd, authCfg, clipCfg, logger)
	app.Google = auth.NewGoogleProvider(cfg.Google)
	return app, nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		return postgres.New(ctx, *cfg.PostgresConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

func newBlobs(ctx context.Context, cfg Config) (blob.Store, error) {
	blobType := cfg.BlobType
	if blobType == "" {
		blobType = BlobTypeMemory
	}

	switch blobType {
	case BlobTypeMemory:
		return blobmemory.New(), nil
	case BlobTypeMinio:
		if cfg.MinioConfig == nil {
			return nil, errors.New("MinioConfig required when BlobType is minio")
		}
		return miniostore.New(ctx, *cfg.MinioConfig)
	default:
		return nil, errors.New("invalid BlobType: must be 'memory' or 'minio'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	blobs blob.Store,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	clipCfg clips.Config,
	logger *slog.Logger,
) *App {
	// Live updates fan out to profile pages; the broadcaster is the
	// services' event publisher
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, clipCfg.BaseURL, logger)

	// Create services
	authService := auth.New(store, clk, rnd, authCfg)
	identityService := identity.New(store, clk, broadcaster, logger)
	clipService := clips.New(store, blobs, clk, rnd, broadcaster, logger, clipCfg)
	directoryService := directory.New(store)

	return &App{
		Storage:          store,
		Blobs:            blobs,
		Clock:            clk,
		Random:           rnd,
		AuthService:      authService,
		IdentityService:  identityService,
		ClipService:      clipService,
		DirectoryService: directoryService,
		HubManager:       hubManager,
		Broadcaster:      broadcaster,
	}
}

// Close stops live updates and releases storage connections
func (a *App) Close() {
	a.HubManager.Close()
	closeStorage(a.Storage)
}

func closeStorage(store storage.Storage) {
	if c, ok := store.(io.Closer); ok {
		_ = c.Close()
	}
}
