// Package components holds page fragments that are also pushed over SSE.
package components

import "github.com/vzeefun/vzee/internal/model"

// ClipRowID is the DOM id of a clip's row
func ClipRowID(title string) string {
	return "clip-" + title
}

func clipPath(clip *model.Clip) string {
	return "/@" + clip.OwnerUsername + "/" + clip.Title
}
