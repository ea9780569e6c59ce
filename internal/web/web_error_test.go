package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vzeefun/vzee/internal/factory"
	"github.com/vzeefun/vzee/internal/middleware"
	"github.com/vzeefun/vzee/internal/testutil"
	"github.com/vzeefun/vzee/internal/web"
)

func TestNotFoundPage(t *testing.T) {
	ts := newWebTestServer(t)

	for _, path := range []string{"/favicon.ico", "/a/b/c", "/@alice/demo/extra"} {
		t.Run(path, func(t *testing.T) {
			rr := ts.get(path)
			assert.Equal(t, http.StatusNotFound, rr.Code)

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, "main", "404")
			assertContainsElement(t, doc, "main a[href='/']")
		})
	}
}

func TestNotFoundPageKeepsSession(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signInAs("alice@example.com", "alice")

	doc := parseHTML(ts.get("/no/such/page").Body)
	assertContainsText(t, doc, "header .nav-profile", "@alice")
}

func TestFlashMessageShownOnce(t *testing.T) {
	ts := newWebTestServer(t)
	ts.signIn("alice@example.com")

	rr := ts.post("/username", url.Values{"username": {"alice"}})
	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, ".flash-success")

	// The flash cookie is consumed by the first render
	doc = parseHTML(ts.get("/dashboard").Body)
	assertNotContainsElement(t, doc, ".flash")
}

func TestRateLimitedSignIn(t *testing.T) {
	app := factory.NewTestApp()
	t.Cleanup(app.Close)

	router := web.NewRouter(web.RouterConfig{
		Logger:           testutil.NopLogger(),
		AuthService:      app.AuthService,
		IdentityService:  app.IdentityService,
		ClipService:      app.ClipService,
		DirectoryService: app.DirectoryService,
		HubManager:       app.HubManager,
		BaseURL:          factory.TestBaseURL,
		RateLimit:        middleware.RateLimitConfig{RPS: 0.001, Burst: 2},
	})
	ts := &webTestServer{t: t, handler: router, app: app, cookies: newCookieJar()}

	form := url.Values{"email": {"alice@example.com"}}
	assert.Equal(t, http.StatusSeeOther, ts.post("/auth/dev", form).Code)
	assert.Equal(t, http.StatusSeeOther, ts.post("/auth/dev", form).Code)

	rr := ts.post("/auth/dev", form)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}
