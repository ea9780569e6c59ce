package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/services/directory"
	"github.com/vzeefun/vzee/internal/web/middleware"
	"github.com/vzeefun/vzee/internal/web/sse"
	"github.com/vzeefun/vzee/internal/web/templates/pages"
)

// ProfileHandler serves public profiles, share links and clip audio
type ProfileHandler struct {
	directory  *directory.Service
	clips      *clips.Service
	hubManager *sse.HubManager
	baseURL    string
	logger     *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(
	directoryService *directory.Service,
	clipService *clips.Service,
	hubManager *sse.HubManager,
	baseURL string,
	logger *slog.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		directory:  directoryService,
		clips:      clipService,
		hubManager: hubManager,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// usernameVar reads the username route variable without its optional @
func usernameVar(r *http.Request) string {
	return model.CanonicalUsername(strings.TrimPrefix(mux.Vars(r)["username"], "@"))
}

// Profile renders a user's public page
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := usernameVar(r)

	view, err := h.directory.Profile(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			renderNotFound(w, r, "User Not Found", "There's no one called @"+username+" here.")
			return
		}
		h.logger.Error("load profile failed", slog.String("username", username), slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	data := pages.ProfileData{
		PageData: pageData(r, "@"+view.Profile.Username),
		Profile:  view.Profile,
		Clips:    view.Clips,
		BaseURL:  h.baseURL,
		Owner:    middleware.GetUsername(r.Context()) == view.Profile.Username,
	}
	data.SSEPath = "/" + view.Profile.Username + "/events"
	data.Description = "Audio clips by @" + view.Profile.Username

	render(w, r, http.StatusOK, pages.Profile(data))
}

// Clip renders the page behind a share link
func (h *ProfileHandler) Clip(w http.ResponseWriter, r *http.Request) {
	username := usernameVar(r)
	title := model.CanonicalTitle(mux.Vars(r)["title"])

	clip, err := h.directory.Lookup(r.Context(), username, title)
	if err != nil {
		if errors.Is(err, model.ErrClipNotFound) {
			renderNotFound(w, r, "Clip Not Found", "@"+username+" has no clip called "+title+".")
			return
		}
		h.logger.Error("lookup failed", slog.String("username", username), slog.String("title", title), slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load clip")
		return
	}

	data := pages.ClipData{
		PageData: pageData(r, clip.Title+" by @"+clip.OwnerUsername),
		Clip:     clip,
	}
	data.Description = "Listen to " + clip.Title + " on vzee.fun"

	render(w, r, http.StatusOK, pages.Clip(data))
}

// Events streams live updates for a profile page
func (h *ProfileHandler) Events(w http.ResponseWriter, r *http.Request) {
	username := usernameVar(r)

	if _, err := h.directory.Profile(r.Context(), username); err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	viewer := "anonymous"
	if user := middleware.GetUser(r.Context()); user != nil {
		viewer = string(user.ID)
	}

	hub := h.hubManager.GetOrCreateHub(username)
	sse.ServeSSE(w, r, hub, viewer)
}

// Media streams clip audio, or redirects to a direct link when the blob
// store can issue one
func (h *ProfileHandler) Media(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if u, ok, err := h.clips.DirectURL(r.Context(), key); err != nil {
		h.logger.Error("presign failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		http.Redirect(w, r, u.String(), http.StatusFound)
		return
	}

	obj, err := h.clips.OpenMedia(r.Context(), key)
	if err != nil {
		if errors.Is(err, model.ErrObjectNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("open media failed", slog.String("key", key), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = obj.Close() }()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Debug("media stream interrupted", slog.String("key", key), slog.String("error", err.Error()))
	}
}
