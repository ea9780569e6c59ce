package handler

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vzeefun/vzee/internal/dependencies/random"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/web/middleware"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	authService *auth.Service
	google      *auth.GoogleProvider
	random      random.Random
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. google may be nil.
func NewAuthHandler(authService *auth.Service, google *auth.GoogleProvider, random random.Random, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		google:      google,
		random:      random,
		logger:      logger,
	}
}

// DevLogin signs in with the development form
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"), "/dashboard")

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		middleware.SetFlash(w, middleware.FlashError, "Email is required")
		http.Redirect(w, r, "/#sign-in", http.StatusSeeOther)
		return
	}

	session, err := h.authService.DevSignIn(r.Context(), email, strings.TrimSpace(r.FormValue("display_name")))
	if err != nil {
		if errors.Is(err, auth.ErrDevLoginDisabled) {
			renderNotFound(w, r, "Page Not Found", "The page you're looking for doesn't exist.")
			return
		}
		h.logger.Error("dev sign-in failed", slog.String("error", err.Error()))
		middleware.SetFlash(w, middleware.FlashError, "Sign-in failed, please try again")
		http.Redirect(w, r, "/#sign-in", http.StatusSeeOther)
		return
	}

	h.setSessionCookie(w, session)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// GoogleStart redirects to the provider's consent page
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		renderNotFound(w, r, "Page Not Found", "Google sign-in is not configured.")
		return
	}

	state := h.random.Token("st_")
	next := safeNext(r.URL.Query().Get("next"), "/dashboard")

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state + "|" + url.QueryEscape(next),
		Path:     "/auth",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback completes the authorization code flow
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		renderNotFound(w, r, "Page Not Found", "Google sign-in is not configured.")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth", MaxAge: -1})
	if err != nil {
		h.failSignIn(w, r, "Your sign-in expired, please try again")
		return
	}

	state, escapedNext, _ := strings.Cut(cookie.Value, "|")
	got := r.URL.Query().Get("state")
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(got)) != 1 {
		h.failSignIn(w, r, "Your sign-in expired, please try again")
		return
	}

	if r.URL.Query().Get("error") != "" {
		h.failSignIn(w, r, "Sign-in was cancelled")
		return
	}

	identity, err := h.google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Warn("google exchange failed", slog.String("error", err.Error()))
		h.failSignIn(w, r, "Sign-in failed, please try again")
		return
	}

	session, err := h.authService.SignIn(r.Context(), identity)
	if err != nil {
		h.logger.Error("sign-in failed", slog.String("error", err.Error()))
		h.failSignIn(w, r, "Sign-in failed, please try again")
		return
	}

	next, err := url.QueryUnescape(escapedNext)
	if err != nil {
		next = ""
	}
	h.setSessionCookie(w, session)
	http.Redirect(w, r, safeNext(next, "/dashboard"), http.StatusSeeOther)
}

// Logout ends the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.authService.InvalidateSession(session.Token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, middleware.FlashSuccess, "You have been signed out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) failSignIn(w http.ResponseWriter, r *http.Request, message string) {
	middleware.SetFlash(w, middleware.FlashError, message)
	http.Redirect(w, r, "/#sign-in", http.StatusSeeOther)
}
