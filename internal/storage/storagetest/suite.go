// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and supply a fresh store per test.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/storage"
)

// Suite runs the shared storage behaviour against Store
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *Suite) user(id, email string) *model.User {
	return &model.User{
		ID:          model.UserID(id),
		Email:       email,
		DisplayName: id,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}

func (s *Suite) profile(username, owner string) *model.Profile {
	return &model.Profile{
		Username:  username,
		OwnerID:   model.UserID(owner),
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

// claim reserves each username for an owner derived from it
func (s *Suite) claim(usernames ...string) {
	for _, name := range usernames {
		s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile(name, "owner-"+name)))
	}
}

func (s *Suite) clip(username, title string, age time.Duration) *model.Clip {
	return &model.Clip{
		ID:            model.ClipID("clip-" + username + "-" + title),
		OwnerUsername: username,
		Title:         title,
		ObjectKey:     "clips/" + username + "-" + title,
		ContentType:   "audio/mpeg",
		Size:          2_000_000,
		AudioURL:      "http://localhost/media/clips/" + username + "-" + title,
		CreatedAt:     baseTime.Add(-age),
	}
}

// User tests

func (s *Suite) TestSaveAndGetUser() {
	s.Require().NoError(s.Store.SaveUser(s.Ctx, s.user("u1", "alice@example.com")))

	got, err := s.Store.GetUser(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("alice@example.com", got.Email)

	byEmail, err := s.Store.GetUserByEmail(s.Ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), byEmail.ID)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Store.GetUser(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Store.GetUserByEmail(s.Ctx, "missing@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Profile tests

func (s *Suite) TestClaimUsername() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))

	got, err := s.Store.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), got.OwnerID)

	byOwner, err := s.Store.GetProfileByOwner(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("alice", byOwner.Username)
}

func (s *Suite) TestClaimUsernameTaken() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))

	err := s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u2"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	got, err := s.Store.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), got.OwnerID)
}

func (s *Suite) TestClaimSecondUsernameForSameOwner() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))

	err := s.Store.ClaimUsername(s.Ctx, s.profile("alice-two", "u1"))
	s.ErrorIs(err, model.ErrAlreadyHasUsername)

	_, err = s.Store.GetProfile(s.Ctx, "alice-two")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

// TestConcurrentClaimsHaveOneWinner races many owners for the same name.
// Exactly one claim may succeed and every other must observe "taken".
func (s *Suite) TestConcurrentClaimsHaveOneWinner() {
	const claimants = 16

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		taken  int
		others []error
		start  = make(chan struct{})
	)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			err := s.Store.ClaimUsername(s.Ctx, s.profile("popular", fmt.Sprintf("user-%d", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, model.ErrUsernameTaken):
				taken++
			default:
				others = append(others, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	s.Empty(others)
	s.Equal(1, wins)
	s.Equal(claimants-1, taken)

	winner, err := s.Store.GetProfile(s.Ctx, "popular")
	s.Require().NoError(err)
	owned, err := s.Store.GetProfileByOwner(s.Ctx, winner.OwnerID)
	s.Require().NoError(err)
	s.Equal("popular", owned.Username)
}

func (s *Suite) TestGetProfileNotFound() {
	_, err := s.Store.GetProfile(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrProfileNotFound)

	_, err = s.Store.GetProfileByOwner(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestUpdateProfile() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))

	p, err := s.Store.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	p.DisplayName = "Alice A."
	s.Require().NoError(s.Store.UpdateProfile(s.Ctx, p))

	got, err := s.Store.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice A.", got.DisplayName)
}

func (s *Suite) TestRenameUsernameMigratesClips() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "demo-1", time.Hour)))
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "demo-2", 0)))

	renamedAt := baseTime.Add(time.Hour)
	renamed, err := s.Store.RenameUsername(s.Ctx, "u1", "alice", "alice2", renamedAt)
	s.Require().NoError(err)
	s.Equal("alice2", renamed.Username)
	s.True(renamedAt.Equal(renamed.UpdatedAt))

	_, err = s.Store.GetProfile(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrProfileNotFound)

	byOwner, err := s.Store.GetProfileByOwner(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("alice2", byOwner.Username)

	old, err := s.Store.ListClips(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Empty(old)

	moved, err := s.Store.ListClips(s.Ctx, "alice2")
	s.Require().NoError(err)
	s.Require().Len(moved, 2)
	s.Equal("demo-2", moved[0].Title)
	s.Equal("alice2", moved[0].OwnerUsername)

	clip, err := s.Store.GetClip(s.Ctx, "alice2", "demo-1")
	s.Require().NoError(err)
	s.Equal("alice2", clip.OwnerUsername)
}

func (s *Suite) TestRenameUsernameToTakenName() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("bob", "u2")))

	_, err := s.Store.RenameUsername(s.Ctx, "u1", "alice", "bob", baseTime)
	s.ErrorIs(err, model.ErrUsernameTaken)

	got, err := s.Store.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), got.OwnerID)
}

func (s *Suite) TestRenameUsernameNotOwner() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))

	_, err := s.Store.RenameUsername(s.Ctx, "u2", "alice", "mallory", baseTime)
	s.ErrorIs(err, model.ErrNotOwner)
}

// TestCreateClipAfterRenameRejected covers an upload that read the profile
// before a rename committed. The freed name must not receive the clip.
func (s *Suite) TestCreateClipAfterRenameRejected() {
	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u1")))
	_, err := s.Store.RenameUsername(s.Ctx, "u1", "alice", "alice2", baseTime)
	s.Require().NoError(err)

	err = s.Store.CreateClip(s.Ctx, s.clip("alice", "late", 0))
	s.ErrorIs(err, model.ErrProfileNotFound)

	s.Require().NoError(s.Store.ClaimUsername(s.Ctx, s.profile("alice", "u2")))
	clips, err := s.Store.ListClips(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Empty(clips)

	_, err = s.Store.GetClip(s.Ctx, "alice", "late")
	s.ErrorIs(err, model.ErrClipNotFound)
}

func (s *Suite) TestCreateClipWithoutReservation() {
	err := s.Store.CreateClip(s.Ctx, s.clip("ghost", "demo-1", 0))
	s.ErrorIs(err, model.ErrProfileNotFound)

	clips, err := s.Store.ListClips(s.Ctx, "ghost")
	s.Require().NoError(err)
	s.Empty(clips)
}

// Clip tests

func (s *Suite) TestCreateAndGetClip() {
	s.claim("alice")
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "demo-1", 0)))

	got, err := s.Store.GetClip(s.Ctx, "alice", "demo-1")
	s.Require().NoError(err)
	s.Equal("audio/mpeg", got.ContentType)
	s.Equal(int64(2_000_000), got.Size)
	s.Equal("http://localhost/media/clips/alice-demo-1", got.AudioURL)
}

func (s *Suite) TestCreateClipDuplicateTitle() {
	s.claim("alice", "bob")
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "demo-1", 0)))

	err := s.Store.CreateClip(s.Ctx, s.clip("alice", "demo-1", 0))
	s.ErrorIs(err, model.ErrClipExists)

	// Same title under another username is fine
	s.NoError(s.Store.CreateClip(s.Ctx, s.clip("bob", "demo-1", 0)))
}

func (s *Suite) TestGetClipScopedToOwner() {
	s.claim("bob")
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("bob", "demo-1", 0)))

	_, err := s.Store.GetClip(s.Ctx, "alice", "demo-1")
	s.ErrorIs(err, model.ErrClipNotFound)
}

func (s *Suite) TestListClipsNewestFirst() {
	s.claim("alice", "bob")
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "oldest", 2*time.Hour)))
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "newest", 0)))
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "middle", time.Hour)))
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("bob", "other", 0)))

	clips, err := s.Store.ListClips(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(clips, 3)
	s.Equal("newest", clips[0].Title)
	s.Equal("middle", clips[1].Title)
	s.Equal("oldest", clips[2].Title)
}

func (s *Suite) TestListClipsEmpty() {
	clips, err := s.Store.ListClips(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(clips)
}

func (s *Suite) TestDeleteClip() {
	s.claim("alice")
	s.Require().NoError(s.Store.CreateClip(s.Ctx, s.clip("alice", "demo-1", 0)))

	s.Require().NoError(s.Store.DeleteClip(s.Ctx, "alice", "demo-1"))

	_, err := s.Store.GetClip(s.Ctx, "alice", "demo-1")
	s.ErrorIs(err, model.ErrClipNotFound)

	err = s.Store.DeleteClip(s.Ctx, "alice", "demo-1")
	s.ErrorIs(err, model.ErrClipNotFound)
}
