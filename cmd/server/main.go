package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vzeefun/vzee/internal/api"
	"github.com/vzeefun/vzee/internal/blob/miniostore"
	"github.com/vzeefun/vzee/internal/config"
	"github.com/vzeefun/vzee/internal/factory"
	"github.com/vzeefun/vzee/internal/metrics"
	httpmw "github.com/vzeefun/vzee/internal/middleware"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/storage/postgres"
	redisstorage "github.com/vzeefun/vzee/internal/storage/redis"
	"github.com/vzeefun/vzee/internal/web"
)

// How often expired sessions are swept
const sessionSweepInterval = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer app.Close()

	rateLimit := httpmw.RateLimitConfig{
		RPS:   cfg.HTTP.RateLimitRPS,
		Burst: cfg.HTTP.RateLimitBurst,
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		IdentityService:  app.IdentityService,
		ClipService:      app.ClipService,
		DirectoryService: app.DirectoryService,
		BaseURL:          cfg.BaseURL,
		CORSOrigins:      cfg.HTTP.CORSOrigins,
		RateLimit:        rateLimit,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		IdentityService:  app.IdentityService,
		ClipService:      app.ClipService,
		DirectoryService: app.DirectoryService,
		HubManager:       app.HubManager,
		Google:           app.Google,
		Random:           app.Random,
		BaseURL:          cfg.BaseURL,
		StaticDir:        findStaticDir(),
		RateLimit:        rateLimit,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	server := api.NewServer(mux, serverConfig, logger)

	go sweepSessions(ctx, app.AuthService, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.String("blobs", cfg.BlobType),
		slog.Bool("dev_login", cfg.Auth.DevLogin),
		slog.Bool("google", app.Google != nil),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// factoryConfig maps environment configuration onto the factory's backends
func factoryConfig(cfg *config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		BlobType:    cfg.BlobType,
		AuthConfig: auth.Config{
			SessionDuration: cfg.Auth.SessionDuration,
			DevLogin:        cfg.Auth.DevLogin,
			IDTokenSecret:   cfg.Auth.IDTokenSecret,
			IDTokenIssuer:   cfg.Auth.IDTokenIssuer,
		},
		Google: auth.GoogleConfig{
			ClientID:     cfg.Auth.GoogleClientID,
			ClientSecret: cfg.Auth.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL(),
		},
	}

	clipCfg := clips.DefaultConfig()
	clipCfg.BaseURL = cfg.BaseURL
	fc.ClipConfig = clipCfg

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		redisCfg.PoolSize = cfg.Redis.PoolSize
		fc.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = cfg.Postgres.DSN
		pgCfg.MaxOpenConns = cfg.Postgres.MaxOpenConns
		fc.PostgresConfig = &pgCfg
	}

	if cfg.BlobType == factory.BlobTypeMinio {
		fc.MinioConfig = &miniostore.Config{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		}
	}

	return fc
}

// sweepSessions drops expired sessions until ctx is done
func sweepSessions(ctx context.Context, authService *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := authService.CleanExpiredSessions(); n > 0 {
				logger.Debug("expired sessions removed", slog.Int("count", n))
			}
			metrics.ActiveSessions.Set(float64(authService.ActiveSessions()))
		}
	}
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}
