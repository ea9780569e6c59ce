package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/dependencies/random"
	httpmw "github.com/vzeefun/vzee/internal/middleware"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/directory"
	"github.com/vzeefun/vzee/internal/services/identity"
	"github.com/vzeefun/vzee/internal/web/handler"
	"github.com/vzeefun/vzee/internal/web/middleware"
	"github.com/vzeefun/vzee/internal/web/sse"
)

// usernamePattern keeps profile routes from swallowing paths that can
// never be usernames (favicon.ico, robots.txt)
const usernamePattern = "{username:@?[A-Za-z0-9_-]+}"

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	IdentityService  *identity.Service
	ClipService      *clips.Service
	DirectoryService *directory.Service
	HubManager       *sse.HubManager
	Google           *auth.GoogleProvider // nil disables Google sign-in
	Random           random.Random
	BaseURL          string
	StaticDir        string // Path to static files directory
	RateLimit        httpmw.RateLimitConfig
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	profileMiddleware := middleware.CurrentProfile(cfg.IdentityService)
	limited := httpmw.NewRateLimiter(cfg.RateLimit).Middleware(handler.RateLimited)

	// Apply global middleware to all routes
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	// Create SSE hub manager if not provided
	hubManager := cfg.HubManager
	if hubManager == nil {
		hubManager = sse.NewHubManager(cfg.Logger)
	}
	rnd := cfg.Random
	if rnd == nil {
		rnd = random.New()
	}

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.AuthService.DevLoginEnabled(), cfg.Google != nil)
	staticHandler := handler.NewStaticHandler()
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Google, rnd, cfg.Logger)
	profileHandler := handler.NewProfileHandler(cfg.DirectoryService, cfg.ClipService, hubManager, cfg.BaseURL, cfg.Logger)
	dashboardHandler := handler.NewDashboardHandler(cfg.IdentityService, cfg.ClipService, cfg.BaseURL, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(fileServer)
	}

	// Clip audio
	r.HandleFunc("/media/{key:.+}", profileHandler.Media).Methods(http.MethodGet, http.MethodHead)

	// Auth actions (no auth required)
	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.Use(flashMiddleware)
	authRoutes.Use(optionalAuthMiddleware)
	authRoutes.Handle("/dev", limited(http.HandlerFunc(authHandler.DevLogin))).Methods(http.MethodPost)
	authRoutes.HandleFunc("/google", authHandler.GoogleStart).Methods(http.MethodGet)
	authRoutes.HandleFunc("/google/callback", authHandler.GoogleCallback).Methods(http.MethodGet)
	authRoutes.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)

	// Protected routes (require auth)
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(authMiddleware)
	protected.Use(profileMiddleware)
	protected.HandleFunc("/dashboard", dashboardHandler.View).Methods(http.MethodGet)
	protected.HandleFunc("/username/check", dashboardHandler.CheckUsername).Methods(http.MethodGet)
	protected.Handle("/username", limited(http.HandlerFunc(dashboardHandler.Claim))).Methods(http.MethodPost)
	protected.Handle("/username/rename", limited(http.HandlerFunc(dashboardHandler.Rename))).Methods(http.MethodPost)
	protected.Handle("/clips", limited(http.HandlerFunc(dashboardHandler.Upload))).Methods(http.MethodPost)
	protected.HandleFunc("/clips/{title}/delete", dashboardHandler.Delete).Methods(http.MethodPost)

	// Public routes (optional auth for showing the user in the nav).
	// Fixed paths are registered before the profile patterns that would
	// otherwise match them.
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(optionalAuthMiddleware)
	public.Use(profileMiddleware)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	for _, path := range staticHandler.Paths() {
		public.HandleFunc(path, staticHandler.Page).Methods(http.MethodGet)
	}
	public.HandleFunc("/"+usernamePattern+"/events", profileHandler.Events).Methods(http.MethodGet)
	public.HandleFunc("/"+usernamePattern+"/{title}", profileHandler.Clip).Methods(http.MethodGet)
	public.HandleFunc("/"+usernamePattern, profileHandler.Profile).Methods(http.MethodGet)

	// Everything else
	notFound := flashMiddleware(optionalAuthMiddleware(profileMiddleware(http.HandlerFunc(homeHandler.NotFound))))
	r.NotFoundHandler = recoveryMiddleware(loggingMiddleware(notFound))

	return r
}
