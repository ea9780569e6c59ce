package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/api/response"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/directory"
)

// UsersHandler serves public profiles and directory lookups
type UsersHandler struct {
	directoryService *directory.Service
	clipService      *clips.Service
	baseURL          string
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(directoryService *directory.Service, clipService *clips.Service, baseURL string) *UsersHandler {
	return &UsersHandler{
		directoryService: directoryService,
		clipService:      clipService,
		baseURL:          baseURL,
	}
}

// Profile handles GET /api/v1/users/{username}
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	view, err := h.directoryService.Profile(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileResponseFromView(view, h.baseURL))
}

// ListClips handles GET /api/v1/users/{username}/clips
func (h *UsersHandler) ListClips(w http.ResponseWriter, r *http.Request) {
	username := model.CanonicalUsername(mux.Vars(r)["username"])

	list, err := h.clipService.List(r.Context(), username)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClipsResponse{
		Username: username,
		Clips:    response.ClipsFromModel(list, h.baseURL),
	})
}

// Lookup handles GET /api/v1/users/{username}/clips/{title}
func (h *UsersHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	clip, err := h.directoryService.Lookup(r.Context(), vars["username"], vars["title"])
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClipFromModel(clip, h.baseURL))
}
