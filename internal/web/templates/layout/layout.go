// Package layout holds the page shell shared by every web page.
package layout

import "github.com/vzeefun/vzee/internal/model"

// FlashMessage is a one-shot notice shown at the top of the next page
type FlashMessage struct {
	Type    string
	Message string
}

// PageData carries what the shell needs on every page
type PageData struct {
	Title       string
	Description string
	User        *model.User
	Username    string
	Flash       *FlashMessage

	// SSEPath subscribes the page to live updates when set
	SSEPath string
}

func pageTitle(title string) string {
	if title == "" {
		return "vzee.fun"
	}
	return title + " | vzee.fun"
}
