package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/identity"
	"github.com/vzeefun/vzee/internal/web/middleware"
	"github.com/vzeefun/vzee/internal/web/templates/components"
	"github.com/vzeefun/vzee/internal/web/templates/pages"
)

// multipartMemory is how much of an upload form is buffered in memory
const multipartMemory = 1 << 20

// DashboardHandler handles the signed-in user's username and clips
type DashboardHandler struct {
	identity *identity.Service
	clips    *clips.Service
	baseURL  string
	logger   *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(identityService *identity.Service, clipService *clips.Service, baseURL string, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		identity: identityService,
		clips:    clipService,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// View renders the dashboard
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, http.StatusOK, "", "")
}

// CheckUsername renders the availability fragment for the claim form
func (h *DashboardHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	name := model.NormalizeInput(r.URL.Query().Get("username"))

	availability, err := h.identity.CheckAvailability(r.Context(), name)
	if err != nil {
		h.logger.Error("availability check failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render(w, r, http.StatusOK, components.Availability(availability))
}

// Claim reserves the submitted username
func (h *DashboardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	name := model.NormalizeInput(r.FormValue("username"))

	profile, err := h.identity.Claim(r.Context(), user.ID, name)
	if err != nil {
		h.formError(w, r, err, name)
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "You are now @"+profile.Username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Rename moves the user's profile and clips to a new username
func (h *DashboardHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	name := model.NormalizeInput(r.FormValue("username"))

	profile, err := h.identity.Rename(r.Context(), user.ID, name)
	if err != nil {
		h.formError(w, r, err, name)
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Your username is now @"+profile.Username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Upload stores a clip from the upload form
func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxClipSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.formError(w, r, model.ErrFileTooLarge, "")
			return
		}
		h.formError(w, r, model.ErrInvalidUpload, "")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.formError(w, r, model.ErrEmptyFile, "")
		return
	}
	defer func() { _ = file.Close() }()

	clip, err := h.clips.Upload(r.Context(), clips.UploadRequest{
		OwnerID:     user.ID,
		Title:       model.NormalizeInput(r.FormValue("title")),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.formError(w, r, err, "")
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Uploaded "+clip.Title)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete removes one of the user's clips
func (h *DashboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	title := mux.Vars(r)["title"]

	if err := h.clips.Delete(r.Context(), user.ID, title); err != nil {
		if !isUserError(err) {
			h.logger.Error("delete clip failed", slog.String("title", title), slog.String("error", err.Error()))
		}
		middleware.SetFlash(w, middleware.FlashError, userMessage(err))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Deleted "+model.CanonicalTitle(title))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// formError re-renders the dashboard with the failure shown above the forms
func (h *DashboardHandler) formError(w http.ResponseWriter, r *http.Request, err error, input string) {
	status := http.StatusUnprocessableEntity
	if !isUserError(err) {
		h.logger.Error("dashboard action failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		status = http.StatusInternalServerError
	} else if errors.Is(err, model.ErrUsernameTaken) || errors.Is(err, model.ErrClipExists) {
		status = http.StatusConflict
	}
	h.renderDashboard(w, r, status, input, userMessage(err))
}

func (h *DashboardHandler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, input, message string) {
	user := middleware.GetUser(r.Context())

	data := pages.DashboardData{
		PageData:      pageData(r, "Dashboard"),
		BaseURL:       h.baseURL,
		UsernameInput: input,
		Error:         message,
	}

	profile, err := h.identity.ProfileForUser(r.Context(), user.ID)
	switch {
	case err == nil:
		data.Profile = profile
		data.Username = profile.Username
		data.Clips, err = h.clips.List(r.Context(), profile.Username)
		if err != nil {
			h.logger.Error("list clips failed", slog.String("error", err.Error()))
			renderError(w, r, http.StatusInternalServerError, "Failed to load your clips")
			return
		}
	case errors.Is(err, model.ErrNoUsername):
	default:
		h.logger.Error("load profile failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load your profile")
		return
	}

	render(w, r, status, pages.Dashboard(data))
}
