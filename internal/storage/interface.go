package storage

import (
	"context"
	"time"

	"github.com/vzeefun/vzee/internal/model"
)

// Storage defines the interface for data persistence.
// It is the remote profile store and remote clip store: the single source of
// truth for usernames and clip metadata.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Profile operations

	// ClaimUsername atomically reserves profile.Username for profile.OwnerID.
	// Returns model.ErrUsernameTaken if the username already exists and
	// model.ErrAlreadyHasUsername if the owner already holds a profile.
	ClaimUsername(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, username string) (*model.Profile, error)
	GetProfileByOwner(ctx context.Context, owner model.UserID) (*model.Profile, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) error
	// RenameUsername atomically moves owner's profile from oldName to newName,
	// migrating every clip keyed by oldName. at becomes the profile's UpdatedAt.
	RenameUsername(ctx context.Context, owner model.UserID, oldName, newName string, at time.Time) (*model.Profile, error)

	// Clip operations

	// CreateClip inserts a clip under a reserved username. Returns
	// model.ErrProfileNotFound if clip.OwnerUsername is not reserved and
	// model.ErrClipExists if (username, title) exists.
	CreateClip(ctx context.Context, clip *model.Clip) error
	GetClip(ctx context.Context, username, title string) (*model.Clip, error)
	// ListClips returns the clips of one username, newest first
	ListClips(ctx context.Context, username string) ([]*model.Clip, error)
	DeleteClip(ctx context.Context, username, title string) error
}
