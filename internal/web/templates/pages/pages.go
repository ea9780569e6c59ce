// Package pages holds the full-page templates rendered by the web handlers.
package pages

import (
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/web/templates/layout"
)

// HomeData holds data for the home page
type HomeData struct {
	layout.PageData
	DevLogin    bool
	GoogleLogin bool
	Next        string
}

// DashboardData holds data for the signed-in user's dashboard
type DashboardData struct {
	layout.PageData
	Profile *model.Profile
	Clips   []*model.Clip
	BaseURL string

	// UsernameInput echoes a rejected claim back into the form
	UsernameInput string
	Error         string
}

// ProfileData holds data for a public profile page
type ProfileData struct {
	layout.PageData
	Profile *model.Profile
	Clips   []*model.Clip
	BaseURL string
	Owner   bool
}

// ClipData holds data for the single clip page
type ClipData struct {
	layout.PageData
	Clip *model.Clip
}

// LegalSection is one numbered section of a legal page
type LegalSection struct {
	Heading string
	Body    string
}

// LegalData holds data for the legal and contact pages
type LegalData struct {
	layout.PageData
	Heading  string
	Sections []LegalSection
}

// NotFoundData holds data for not-found pages
type NotFoundData struct {
	layout.PageData
	Heading string
	Message string
}
