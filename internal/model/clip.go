package model

import (
	"sort"
	"time"
)

// ClipID uniquely identifies an uploaded clip
type ClipID string

// Clip is an uploaded audio file under a username.
// (OwnerUsername, Title) is unique; clips are never edited in place apart from
// the owner migration performed by a username rename.
type Clip struct {
	ID            ClipID    `json:"id"`
	OwnerUsername string    `json:"owner_username"`
	Title         string    `json:"title"`
	ObjectKey     string    `json:"object_key"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	Checksum      string    `json:"checksum,omitempty"`
	AudioURL      string    `json:"audio_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// ShareURL returns the public share link for the clip on the given base URL
func (c *Clip) ShareURL(baseURL string) string {
	return baseURL + "/@" + c.OwnerUsername + "/" + c.Title
}

// SortClipsNewestFirst orders clips by creation time, newest first.
// Ties are broken by title so the order is stable.
func SortClipsNewestFirst(clips []*Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		if clips[i].CreatedAt.Equal(clips[j].CreatedAt) {
			return clips[i].Title < clips[j].Title
		}
		return clips[i].CreatedAt.After(clips[j].CreatedAt)
	})
}
