package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/api/middleware"
	"github.com/vzeefun/vzee/internal/api/request"
	"github.com/vzeefun/vzee/internal/api/response"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/identity"
)

// Multipart overhead allowed on top of the largest clip
const (
	uploadOverhead  = 1 << 20
	uploadMemoryMax = 1 << 20
)

// ClipHandler handles the caller's own clips
type ClipHandler struct {
	clipService     *clips.Service
	identityService *identity.Service
	baseURL         string
}

// NewClipHandler creates a new clip handler
func NewClipHandler(clipService *clips.Service, identityService *identity.Service, baseURL string) *ClipHandler {
	return &ClipHandler{
		clipService:     clipService,
		identityService: identityService,
		baseURL:         baseURL,
	}
}

// CheckTitle handles GET /api/v1/me/clips/{title}/available
func (h *ClipHandler) CheckTitle(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	title := model.CanonicalTitle(mux.Vars(r)["title"])

	profile, err := h.identityService.ProfileForUser(r.Context(), user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	result := response.Availability{Name: title}
	free, err := h.clipService.CheckTitle(r.Context(), profile.Username, title)
	switch {
	case err == nil:
		result.Available = free
		if !free {
			result.Reason = "taken"
		}
	case errors.Is(err, model.ErrInvalidTitle):
		result.Reason = err.Error()
	default:
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Upload handles POST /api/v1/me/clips (multipart: title, file)
func (h *ClipHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxClipSize+uploadOverhead)
	if err := r.ParseMultipartForm(uploadMemoryMax); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, model.ErrFileTooLarge)
			return
		}
		WriteError(w, NewInvalidRequestError("expected a multipart form with title and file"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := request.UploadClipForm{Title: r.FormValue("title")}
	if err := request.Validate(&form); err != nil {
		WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, NewInvalidRequestError("file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	clip, err := h.clipService.Upload(r.Context(), clips.UploadRequest{
		OwnerID:     user.ID,
		Title:       form.Title,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.ClipFromModel(clip, h.baseURL)
	response.Created(w, resp.ShareURL, resp)
}

// Delete handles DELETE /api/v1/me/clips/{title}
func (h *ClipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	if err := h.clipService.Delete(r.Context(), user.ID, mux.Vars(r)["title"]); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
