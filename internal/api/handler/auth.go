package handler

import (
	"errors"
	"net/http"

	"github.com/vzeefun/vzee/internal/api/middleware"
	"github.com/vzeefun/vzee/internal/api/request"
	"github.com/vzeefun/vzee/internal/api/response"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/identity"
)

// AuthHandler handles sign-in, sign-out and the caller's own account
type AuthHandler struct {
	authService     *auth.Service
	identityService *identity.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, identityService *identity.Service) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		identityService: identityService,
	}
}

// DevLogin handles POST /api/v1/auth/dev
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	var req request.DevLoginRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.DevSignIn(r.Context(), req.Email, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeSession(w, r, session)
}

// TokenLogin handles POST /api/v1/auth/token
func (h *AuthHandler) TokenLogin(w http.ResponseWriter, r *http.Request) {
	var req request.TokenLoginRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.SignInWithIDToken(r.Context(), req.IDToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeSession(w, r, session)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, session *auth.Session) {
	var username string
	profile, err := h.identityService.ProfileForUser(r.Context(), session.UserID)
	switch {
	case err == nil:
		username = profile.Username
	case errors.Is(err, model.ErrNoUsername):
	default:
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session, username))
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	resp := response.MeResponse{User: response.UserFromModel(user)}
	profile, err := h.identityService.ProfileForUser(r.Context(), user.ID)
	switch {
	case err == nil:
		resp.Profile = response.ProfileFromModel(profile)
	case errors.Is(err, model.ErrNoUsername):
	default:
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
