package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users      map[model.UserID]*model.User
	emailIndex map[string]model.UserID
	profiles   map[string]*model.Profile
	ownerIndex map[model.UserID]string
	clips      map[clipKey]*model.Clip
}

type clipKey struct {
	username string
	title    string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:      make(map[model.UserID]*model.User),
		emailIndex: make(map[string]model.UserID),
		profiles:   make(map[string]*model.Profile),
		ownerIndex: make(map[model.UserID]string),
		clips:      make(map[clipKey]*model.Clip),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.ID] = &u
	s.emailIndex[user.Email] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// Profile operations

func (s *Storage) ClaimUsername(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.profiles[profile.Username]; taken {
		return model.ErrUsernameTaken
	}
	if _, has := s.ownerIndex[profile.OwnerID]; has {
		return model.ErrAlreadyHasUsername
	}
	p := *profile
	s.profiles[profile.Username] = &p
	s.ownerIndex[profile.OwnerID] = profile.Username
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[username]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	p := *profile
	return &p, nil
}

func (s *Storage) GetProfileByOwner(ctx context.Context, owner model.UserID) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.ownerIndex[owner]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	p := *s.profiles[username]
	return &p, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.profiles[profile.Username]
	if !ok {
		return model.ErrProfileNotFound
	}
	if existing.OwnerID != profile.OwnerID {
		return model.ErrNotOwner
	}
	p := *profile
	s.profiles[profile.Username] = &p
	return nil
}

func (s *Storage) RenameUsername(ctx context.Context, owner model.UserID, oldName, newName string, at time.Time) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[oldName]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	if existing.OwnerID != owner {
		return nil, model.ErrNotOwner
	}
	if _, taken := s.profiles[newName]; taken {
		return nil, model.ErrUsernameTaken
	}

	renamed := *existing
	renamed.Username = newName
	renamed.UpdatedAt = at
	s.profiles[newName] = &renamed
	s.ownerIndex[owner] = newName
	delete(s.profiles, oldName)

	for key, clip := range s.clips {
		if key.username != oldName {
			continue
		}
		moved := *clip
		moved.OwnerUsername = newName
		s.clips[clipKey{username: newName, title: key.title}] = &moved
		delete(s.clips, key)
	}

	p := renamed
	return &p, nil
}

// Clip operations

func (s *Storage) CreateClip(ctx context.Context, clip *model.Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, reserved := s.profiles[clip.OwnerUsername]; !reserved {
		return model.ErrProfileNotFound
	}
	key := clipKey{username: clip.OwnerUsername, title: clip.Title}
	if _, exists := s.clips[key]; exists {
		return model.ErrClipExists
	}
	c := *clip
	s.clips[key] = &c
	return nil
}

func (s *Storage) GetClip(ctx context.Context, username, title string) (*model.Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clip, ok := s.clips[clipKey{username: username, title: title}]
	if !ok {
		return nil, model.ErrClipNotFound
	}
	c := *clip
	return &c, nil
}

func (s *Storage) ListClips(ctx context.Context, username string) ([]*model.Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clips := make([]*model.Clip, 0)
	for key, clip := range s.clips {
		if key.username == username {
			c := *clip
			clips = append(clips, &c)
		}
	}
	model.SortClipsNewestFirst(clips)
	return clips, nil
}

func (s *Storage) DeleteClip(ctx context.Context, username, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := clipKey{username: username, title: title}
	if _, ok := s.clips[key]; !ok {
		return model.ErrClipNotFound
	}
	delete(s.clips, key)
	return nil
}
