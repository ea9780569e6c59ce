package localcache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Keys used by the browser client
const (
	KeyUsername     = "vzeeUsername"
	KeyUsernameMap  = "vzeeUsernameMap"
	KeyAllUsernames = "vzeeAllUsernames"
	KeyAllUsers     = "vzeeAllUsers"
	KeyUser         = "vzeeUser"

	clipsSuffix = "_audioFiles"
)

// ClipsKey returns the key holding username's clip list
func ClipsKey(username string) string {
	return username + clipsSuffix
}

// User is the cached signed-in user
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Username string `json:"username,omitempty"`
}

// Clip is a cached clip entry
type Clip struct {
	Title       string `json:"title"`
	AudioURL    string `json:"audioURL"`
	ContentType string `json:"type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	// CreatedAt is Unix milliseconds
	CreatedAt int64 `json:"createdAt"`
}

// Created returns the creation time
func (c Clip) Created() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// Cache is a typed view over a Store. The remote store is authoritative;
// nothing here is written unless the remote accepted it first.
type Cache struct {
	store Store

	// Serializes read-modify-write of the JSON documents
	mu sync.Mutex
}

// New wraps store
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Close closes the underlying store
func (c *Cache) Close() error {
	return c.store.Close()
}

// Clips returns the cached clip list for username
func (c *Cache) Clips(ctx context.Context, username string) ([]Clip, bool, error) {
	var clips []Clip
	ok, err := c.getJSON(ctx, ClipsKey(username), &clips)
	if err != nil || !ok {
		return nil, false, err
	}
	return clips, true, nil
}

// PutClips replaces the cached clip list for username
func (c *Cache) PutClips(ctx context.Context, username string, clips []Clip) error {
	if clips == nil {
		clips = []Clip{}
	}
	return c.setJSON(ctx, ClipsKey(username), clips)
}

// InvalidateClips drops the cached clip list for username
func (c *Cache) InvalidateClips(ctx context.Context, username string) error {
	return c.store.Delete(ctx, ClipsKey(username))
}

// UsernameFor returns the cached username for email
func (c *Cache) UsernameFor(ctx context.Context, email string) (string, bool, error) {
	usernames, err := c.usernameMap(ctx)
	if err != nil {
		return "", false, err
	}
	name, ok := usernames[email]
	return name, ok && name != "", nil
}

// LegacyUsername returns the scalar username the browser client kept for
// the last signed-in user
func (c *Cache) LegacyUsername(ctx context.Context) (string, bool, error) {
	name, ok, err := c.store.Get(ctx, KeyUsername)
	if err != nil {
		return "", false, err
	}
	return name, ok && name != "", nil
}

// IsKnownUsername reports whether username appears in the global list
func (c *Cache) IsKnownUsername(ctx context.Context, username string) (bool, error) {
	names, err := c.allUsernames(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, username), nil
}

// RememberUsername records a username the remote confirmed for email
func (c *Cache) RememberUsername(ctx context.Context, email, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	usernames, err := c.usernameMap(ctx)
	if err != nil {
		return err
	}
	usernames[email] = username
	if err := c.setJSON(ctx, KeyUsernameMap, usernames); err != nil {
		return err
	}

	names, err := c.allUsernames(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(names, username) {
		if err := c.setJSON(ctx, KeyAllUsernames, append(names, username)); err != nil {
			return err
		}
	}

	if err := c.updateUser(ctx, email, func(u *User) { u.Username = username }); err != nil {
		return err
	}
	return c.store.Set(ctx, KeyUsername, username)
}

// ForgetUsername drops the email's username after the remote said it has none
func (c *Cache) ForgetUsername(ctx context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	usernames, err := c.usernameMap(ctx)
	if err != nil {
		return err
	}
	stale, ok := usernames[email]
	if !ok {
		return nil
	}
	delete(usernames, email)
	if err := c.setJSON(ctx, KeyUsernameMap, usernames); err != nil {
		return err
	}

	if err := c.removeFromAllUsernames(ctx, stale); err != nil {
		return err
	}
	if err := c.updateUser(ctx, email, func(u *User) { u.Username = "" }); err != nil {
		return err
	}

	legacy, _, err := c.LegacyUsername(ctx)
	if err != nil {
		return err
	}
	if legacy == stale {
		return c.store.Delete(ctx, KeyUsername)
	}
	return nil
}

// RenameUsername migrates everything cached under oldName to newName: the
// clip list key, the email map entry, the global list and the scalar.
func (c *Cache) RenameUsername(ctx context.Context, email, oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.store.Get(ctx, ClipsKey(oldName))
	if err != nil {
		return err
	}
	if ok {
		if err := c.store.Set(ctx, ClipsKey(newName), raw); err != nil {
			return err
		}
		if err := c.store.Delete(ctx, ClipsKey(oldName)); err != nil {
			return err
		}
	}

	usernames, err := c.usernameMap(ctx)
	if err != nil {
		return err
	}
	usernames[email] = newName
	if err := c.setJSON(ctx, KeyUsernameMap, usernames); err != nil {
		return err
	}

	names, err := c.allUsernames(ctx)
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == oldName || n == newName })
	if err := c.setJSON(ctx, KeyAllUsernames, append(names, newName)); err != nil {
		return err
	}

	if err := c.updateUser(ctx, email, func(u *User) { u.Username = newName }); err != nil {
		return err
	}

	legacy, ok, err := c.LegacyUsername(ctx)
	if err != nil {
		return err
	}
	if !ok || legacy == oldName {
		return c.store.Set(ctx, KeyUsername, newName)
	}
	return nil
}

// SetUser records the signed-in user, also indexing it by email
func (c *Cache) SetUser(ctx context.Context, user User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setJSON(ctx, KeyUser, user); err != nil {
		return err
	}
	users, err := c.allUsers(ctx)
	if err != nil {
		return err
	}
	users[user.Email] = user
	return c.setJSON(ctx, KeyAllUsers, users)
}

// User returns the cached signed-in user
func (c *Cache) User(ctx context.Context) (*User, bool, error) {
	var user User
	ok, err := c.getJSON(ctx, KeyUser, &user)
	if err != nil || !ok {
		return nil, false, err
	}
	return &user, true, nil
}

// Forget drops the signed-in user after sign-out: the current user, their
// vzeeAllUsers entry and their username's clip list. The email map stays:
// it mirrors public remote facts and is revalidated on the next resolve.
func (c *Cache) Forget(ctx context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	user, ok, err := c.User(ctx)
	if err != nil {
		return err
	}
	if ok && user.Email != email {
		return nil
	}

	username := ""
	if ok {
		username = user.Username
	}
	if username == "" {
		usernames, err := c.usernameMap(ctx)
		if err != nil {
			return err
		}
		username = usernames[email]
	}
	if username != "" {
		if err := c.store.Delete(ctx, ClipsKey(username)); err != nil {
			return err
		}
	}

	users, err := c.allUsers(ctx)
	if err != nil {
		return err
	}
	if _, known := users[email]; known {
		delete(users, email)
		if err := c.setJSON(ctx, KeyAllUsers, users); err != nil {
			return err
		}
	}

	if err := c.store.Delete(ctx, KeyUser); err != nil {
		return err
	}
	return c.store.Delete(ctx, KeyUsername)
}

func (c *Cache) updateUser(ctx context.Context, email string, fn func(*User)) error {
	users, err := c.allUsers(ctx)
	if err != nil {
		return err
	}
	if u, ok := users[email]; ok {
		fn(&u)
		users[email] = u
		if err := c.setJSON(ctx, KeyAllUsers, users); err != nil {
			return err
		}
	}

	current, ok, err := c.User(ctx)
	if err != nil || !ok || current.Email != email {
		return err
	}
	fn(current)
	return c.setJSON(ctx, KeyUser, current)
}

func (c *Cache) removeFromAllUsernames(ctx context.Context, username string) error {
	names, err := c.allUsernames(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(names, func(n string) bool { return n == username })
	return c.setJSON(ctx, KeyAllUsernames, kept)
}

func (c *Cache) usernameMap(ctx context.Context) (map[string]string, error) {
	usernames := make(map[string]string)
	if _, err := c.getJSON(ctx, KeyUsernameMap, &usernames); err != nil {
		return nil, err
	}
	if usernames == nil {
		usernames = make(map[string]string)
	}
	return usernames, nil
}

func (c *Cache) allUsernames(ctx context.Context) ([]string, error) {
	var names []string
	if _, err := c.getJSON(ctx, KeyAllUsernames, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Cache) allUsers(ctx context.Context) (map[string]User, error) {
	users := make(map[string]User)
	if _, err := c.getJSON(ctx, KeyAllUsers, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = make(map[string]User)
	}
	return users, nil
}

func (c *Cache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.Set(ctx, key, string(data))
}
