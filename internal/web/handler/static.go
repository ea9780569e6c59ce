package handler

import (
	"net/http"

	"github.com/vzeefun/vzee/internal/web/templates/pages"
)

type legalPage struct {
	title    string
	heading  string
	sections []pages.LegalSection
}

var legalPages = map[string]legalPage{
	"/terms": {"Terms", "Terms and Conditions", []pages.LegalSection{
		{Heading: "1. Acceptance of Terms", Body: "By using vzee.fun you agree to these terms."},
		{Heading: "2. User Content", Body: "You are responsible for the audio you upload and must hold the rights to share it."},
		{Heading: "3. Service Changes", Body: "We may change or discontinue the service at any time."},
	}},
	"/privacy": {"Privacy", "Privacy Policy", []pages.LegalSection{
		{Heading: "What we collect", Body: "Your email address, display name and picture from your sign-in provider, and the clips you upload."},
		{Heading: "How it is used", Body: "To run your profile and serve your clips. Clips on a profile are public."},
	}},
	"/disclaimer": {"Disclaimer", "Disclaimer", []pages.LegalSection{
		{Heading: "Content", Body: "Clips are uploaded by users and do not reflect the views of vzee.fun."},
	}},
	"/cookie-policy": {"Cookie Policy", "Cookie Policy", []pages.LegalSection{
		{Heading: "Cookies we set", Body: "A session cookie keeps you signed in; a short-lived cookie carries one-time notices."},
	}},
	"/copyright": {"Copyright", "Copyright", []pages.LegalSection{
		{Heading: "Takedown requests", Body: "If a clip infringes your copyright, contact us with the share link and we will remove it."},
	}},
	"/contact": {"Contact", "Contact", []pages.LegalSection{
		{Heading: "Get in touch", Body: "Email hello@vzee.fun."},
	}},
}

// StaticHandler serves the legal and contact pages
type StaticHandler struct{}

// NewStaticHandler creates a new StaticHandler
func NewStaticHandler() *StaticHandler {
	return &StaticHandler{}
}

// Paths lists the routes this handler serves
func (h *StaticHandler) Paths() []string {
	paths := make([]string, 0, len(legalPages))
	for p := range legalPages {
		paths = append(paths, p)
	}
	return paths
}

// Page renders the page for the request path
func (h *StaticHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, ok := legalPages[r.URL.Path]
	if !ok {
		renderNotFound(w, r, "Page Not Found", "The page you're looking for doesn't exist.")
		return
	}

	render(w, r, http.StatusOK, pages.Legal(pages.LegalData{
		PageData: pageData(r, page.title),
		Heading:  page.heading,
		Sections: page.sections,
	}))
}
