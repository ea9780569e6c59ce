package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/api/middleware"
	"github.com/vzeefun/vzee/internal/api/request"
	"github.com/vzeefun/vzee/internal/api/response"
	"github.com/vzeefun/vzee/internal/services/identity"
)

// UsernameHandler handles username availability, claims and renames
type UsernameHandler struct {
	identityService *identity.Service
}

// NewUsernameHandler creates a new username handler
func NewUsernameHandler(identityService *identity.Service) *UsernameHandler {
	return &UsernameHandler{identityService: identityService}
}

// Check handles GET /api/v1/usernames/{username}
func (h *UsernameHandler) Check(w http.ResponseWriter, r *http.Request) {
	availability, err := h.identityService.CheckAvailability(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AvailabilityFromModel(availability))
}

// Claim handles POST /api/v1/usernames
func (h *UsernameHandler) Claim(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.ClaimUsernameRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	profile, err := h.identityService.Claim(r.Context(), user.ID, req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ProfileFromModel(profile))
}

// Rename handles PATCH /api/v1/me/username
func (h *UsernameHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.RenameUsernameRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	profile, err := h.identityService.Rename(r.Context(), user.ID, req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}
