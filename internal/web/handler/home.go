package handler

import (
	"net/http"

	"github.com/vzeefun/vzee/internal/web/templates/pages"
)

// HomeHandler handles the home page
type HomeHandler struct {
	devLogin    bool
	googleLogin bool
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(devLogin, googleLogin bool) *HomeHandler {
	return &HomeHandler{
		devLogin:    devLogin,
		googleLogin: googleLogin,
	}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{
		PageData:    pageData(r, "Home"),
		DevLogin:    h.devLogin,
		GoogleLogin: h.googleLogin,
		Next:        r.URL.Query().Get("next"),
	}
	data.Description = "Share short audio clips at vzee.fun/@you/title"

	render(w, r, http.StatusOK, pages.Home(data))
}

// NotFound renders the catch-all 404 page
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, r, "Page Not Found", "The page you're looking for doesn't exist.")
}
