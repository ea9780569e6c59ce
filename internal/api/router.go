package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/api/apierr"
	"github.com/vzeefun/vzee/internal/api/handler"
	"github.com/vzeefun/vzee/internal/api/middleware"
	"github.com/vzeefun/vzee/internal/api/response"
	httpmw "github.com/vzeefun/vzee/internal/middleware"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/directory"
	"github.com/vzeefun/vzee/internal/services/identity"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	IdentityService  *identity.Service
	ClipService      *clips.Service
	DirectoryService *directory.Service

	// BaseURL is the public origin used for share links
	BaseURL string

	// CORSOrigins lists allowed browser origins; empty allows none
	CORSOrigins []string

	// RateLimit applies to sign-in, claims, renames and uploads
	RateLimit httpmw.RateLimitConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.IdentityService)
	usernameHandler := handler.NewUsernameHandler(cfg.IdentityService)
	usersHandler := handler.NewUsersHandler(cfg.DirectoryService, cfg.ClipService, cfg.BaseURL)
	clipHandler := handler.NewClipHandler(cfg.ClipService, cfg.IdentityService, cfg.BaseURL)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	limited := httpmw.NewRateLimiter(cfg.RateLimit).Middleware(middleware.RateLimited)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(httpmw.Logging(cfg.Logger))
	api.Use(httpmw.Metrics("api"))

	// Sign-in routes (no auth required)
	api.Handle("/auth/dev", limited(http.HandlerFunc(authHandler.DevLogin))).Methods(http.MethodPost)
	api.Handle("/auth/token", limited(http.HandlerFunc(authHandler.TokenLogin))).Methods(http.MethodPost)
	api.Handle("/auth/logout", optionalAuthMiddleware(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)

	// Public lookups
	api.HandleFunc("/usernames/{username}", usernameHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}", usersHandler.Profile).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}/clips", usersHandler.ListClips).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}/clips/{title}", usersHandler.Lookup).Methods(http.MethodGet)

	// Claims require auth
	claims := api.PathPrefix("/usernames").Subrouter()
	claims.Use(authMiddleware)
	claims.Handle("", limited(http.HandlerFunc(usernameHandler.Claim))).Methods(http.MethodPost)

	// The caller's own account and clips
	me := api.PathPrefix("/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", authHandler.GetMe).Methods(http.MethodGet)
	me.Handle("/username", limited(http.HandlerFunc(usernameHandler.Rename))).Methods(http.MethodPatch)
	me.HandleFunc("/clips/{title}/available", clipHandler.CheckTitle).Methods(http.MethodGet)
	me.Handle("/clips", limited(http.HandlerFunc(clipHandler.Upload))).Methods(http.MethodPost)
	me.HandleFunc("/clips/{title}", clipHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, apierr.NewNotFoundError())
	})

	// CORS wraps the router so preflight requests never reach method matching
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
