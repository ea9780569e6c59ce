package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vzeefun/vzee/internal/api"
	"github.com/vzeefun/vzee/internal/factory"
	"github.com/vzeefun/vzee/internal/localcache"
	"github.com/vzeefun/vzee/internal/playback"
	"github.com/vzeefun/vzee/internal/testutil"
)

// switchTransport counts requests and can simulate an unreachable server
type switchTransport struct {
	base  http.RoundTripper
	down  atomic.Bool
	calls atomic.Int64

	// dropWrites fails only POST requests
	dropWrites atomic.Bool
}

func (s *switchTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls.Add(1)
	if s.down.Load() || (s.dropWrites.Load() && req.Method == http.MethodPost) {
		return nil, errors.New("dial tcp: connection refused")
	}
	return s.base.RoundTrip(req)
}

type harness struct {
	t         *testing.T
	ctx       context.Context
	app       *factory.TestApp
	transport *switchTransport
	api       *Client
	cache     *localcache.Cache
	urls      *playback.ObjectURLs
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(app.Close)

	server := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		IdentityService:  app.IdentityService,
		ClipService:      app.ClipService,
		DirectoryService: app.DirectoryService,
		BaseURL:          factory.TestBaseURL,
	}))
	t.Cleanup(server.Close)

	transport := &switchTransport{base: http.DefaultTransport}
	cache := localcache.New(localcache.NewMemoryStore())
	t.Cleanup(func() { _ = cache.Close() })

	return &harness{
		t:         t,
		ctx:       context.Background(),
		app:       app,
		transport: transport,
		api:       NewClient(server.URL, "", WithHTTPClient(&http.Client{Transport: transport})),
		cache:     cache,
		urls:      playback.NewObjectURLs(),
	}
}

func (h *harness) resolver() *Resolver {
	return NewResolver(h.api, h.cache, testutil.Logger(h.t))
}

func (h *harness) uploader() *Uploader {
	return NewUploader(h.api, h.cache, h.urls, testutil.Logger(h.t))
}

func (h *harness) directory() *Directory {
	return NewDirectory(h.api, h.cache, testutil.Logger(h.t))
}

// signIn signs in over the API and returns the user
func (h *harness) signIn(email string) User {
	h.t.Helper()
	result, err := h.api.DevLogin(h.ctx, email, "")
	require.NoError(h.t, err)
	return result.User
}

// signInAs signs in and claims username through the resolver
func (h *harness) signInAs(email, username string) User {
	h.t.Helper()
	user := h.signIn(email)
	_, err := h.resolver().Claim(h.ctx, user, username)
	require.NoError(h.t, err)
	return user
}

func (h *harness) writeFile(name string, data []byte) string {
	h.t.Helper()
	path := filepath.Join(h.t.TempDir(), name)
	require.NoError(h.t, os.WriteFile(path, data, 0o600))
	return path
}
