package factory

import (
	"bytes"
	"context"
	"time"

	blobmemory "github.com/vzeefun/vzee/internal/blob/memory"
	"github.com/vzeefun/vzee/internal/dependencies/mocks"
	"github.com/vzeefun/vzee/internal/model"
	"github.com/vzeefun/vzee/internal/services/auth"
	"github.com/vzeefun/vzee/internal/services/clips"
	"github.com/vzeefun/vzee/internal/storage/memory"
	"github.com/vzeefun/vzee/internal/testutil"
)

// TestBaseURL is the public origin test apps build links against
const TestBaseURL = "https://vzee.test"

// TestIDTokenSecret signs identity tokens accepted by test apps
const TestIDTokenSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	BlobStore  *blobmemory.Store
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Dev login and identity tokens are enabled.
func NewTestApp() *TestApp {
	store := memory.New()
	blobs := blobmemory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.DevLogin = true
	authCfg.IDTokenSecret = TestIDTokenSecret

	clipCfg := clips.DefaultConfig()
	clipCfg.BaseURL = TestBaseURL

	app := newWithDependencies(store, blobs, mockClock, mockRandom, authCfg, clipCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		BlobStore:  blobs,
	}
}

// SignIn creates (or reuses) the user for email and returns a live session
func (t *TestApp) SignIn(ctx context.Context, email string) (*auth.Session, error) {
	return t.AuthService.DevSignIn(ctx, email, "")
}

// SignInAs signs in and claims username for the new user
func (t *TestApp) SignInAs(ctx context.Context, email, username string) (*auth.Session, error) {
	session, err := t.SignIn(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := t.IdentityService.Claim(ctx, session.UserID, username); err != nil {
		return nil, err
	}
	return session, nil
}

// UploadMP3 stores a small audio clip for owner under title
func (t *TestApp) UploadMP3(ctx context.Context, owner model.UserID, title string) (*model.Clip, error) {
	data := testutil.MP3(1024)
	return t.ClipService.Upload(ctx, clips.UploadRequest{
		OwnerID:     owner,
		Title:       title,
		ContentType: "audio/mpeg",
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
}
