package handler

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/web/middleware"
	"github.com/vzeefun/vzee/internal/web/templates/layout"
	"github.com/vzeefun/vzee/internal/web/templates/pages"
)

// render writes an HTML component with the given status
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// pageData builds the shell data every page needs from the request context
func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:    title,
		User:     middleware.GetUser(r.Context()),
		Username: middleware.GetUsername(r.Context()),
		Flash:    middleware.GetFlash(r.Context()),
	}
}

// renderNotFound renders the 404 page
func renderNotFound(w http.ResponseWriter, r *http.Request, heading, message string) {
	render(w, r, http.StatusNotFound, pages.NotFound(pages.NotFoundData{
		PageData: pageData(r, "Not Found"),
		Heading:  heading,
		Message:  message,
	}))
}

// renderError renders the generic error page
func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, status, pages.Error(pageData(r, "Error"), message))
}

// RateLimited renders the too-many-requests page
func RateLimited(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusTooManyRequests, "You're doing that too often. Please wait a moment and try again.")
}

// userMessage turns a service error into text for a form or flash
func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidUsername),
		errors.Is(err, model.ErrInvalidTitle),
		errors.Is(err, model.ErrInvalidUpload):
		return err.Error()
	case errors.Is(err, model.ErrUsernameTaken):
		return "That username is already taken"
	case errors.Is(err, model.ErrUsernameReserved):
		return "That username is reserved"
	case errors.Is(err, model.ErrAlreadyHasUsername):
		return "You already have a username"
	case errors.Is(err, model.ErrNoUsername):
		return "Claim a username first"
	case errors.Is(err, model.ErrClipExists):
		return "You already have a clip with this title"
	case errors.Is(err, model.ErrClipNotFound):
		return "Clip not found"
	default:
		return "Something went wrong, please try again"
	}
}

// isUserError reports whether err is the user's to fix
func isUserError(err error) bool {
	return userMessage(err) != userMessage(nil)
}

// safeNext returns next when it is a local path, otherwise fallback
func safeNext(next, fallback string) string {
	if len(next) > 1 && next[0] == '/' && next[1] != '/' && next[1] != '\\' {
		return next
	}
	if next == "/" {
		return next
	}
	return fallback
}
