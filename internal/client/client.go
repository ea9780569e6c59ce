// Package client is the Go SDK for the vzee API. Besides the typed HTTP
// client it carries the client-side flows: username resolution, uploads
// and directory lookups with a local cache fallback.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/vzeefun/vzee/internal/model"
)

// ErrUnavailable marks transport failures and gateway errors: the server
// could not give an authoritative answer.
var ErrUnavailable = errors.New("server unavailable")

// APIError is an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 from the API
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsUnavailable reports whether the server could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// ErrorCode returns the API error code carried by err, if any
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	for _, c := range localCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	if IsUnavailable(err) {
		return "UNAVAILABLE"
	}
	return ""
}

// localCodes names errors raised before a request is sent, using the
// server's codes for the same conditions
var localCodes = []struct {
	err  error
	code string
}{
	{model.ErrInvalidUsername, "INVALID_USERNAME"},
	{model.ErrUsernameReserved, "USERNAME_RESERVED"},
	{model.ErrNoUsername, "NO_USERNAME"},
	{model.ErrUsernameChanged, "USERNAME_CHANGED"},
	{model.ErrInvalidTitle, "INVALID_TITLE"},
	{model.ErrClipExists, "CLIP_EXISTS"},
	{model.ErrClipNotFound, "CLIP_NOT_FOUND"},
	{model.ErrProfileNotFound, "PROFILE_NOT_FOUND"},
	{model.ErrNotAudio, "NOT_AUDIO"},
	{model.ErrFileTooLarge, "FILE_TOO_LARGE"},
	{model.ErrEmptyFile, "EMPTY_FILE"},
	{model.ErrInvalidUpload, "INVALID_UPLOAD"},
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new API client
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken updates the client's session token
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current session token
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the server origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs a JSON request and decodes the response into result
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.send(ctx, method, path, contentType, bodyReader, result)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body io.Reader, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			errResp.Error.Status = resp.StatusCode
			return &errResp.Error
		}
		return &APIError{
			Status:  resp.StatusCode,
			Code:    http.StatusText(resp.StatusCode),
			Message: strings.TrimSpace(string(respBody)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// Health checks the server
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.Do(ctx, http.MethodGet, "/api/v1/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// DevLogin signs in with an email address and stores the session token
func (c *Client) DevLogin(ctx context.Context, email, displayName string) (*AuthResult, error) {
	req := map[string]string{"email": email}
	if displayName != "" {
		req["display_name"] = displayName
	}
	return c.login(ctx, "/api/v1/auth/dev", req)
}

// TokenLogin signs in with an identity token and stores the session token
func (c *Client) TokenLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	return c.login(ctx, "/api/v1/auth/token", map[string]string{"id_token": idToken})
}

func (c *Client) login(ctx context.Context, path string, req any) (*AuthResult, error) {
	var result AuthResult
	if err := c.Do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	c.token = result.SessionToken
	return &result, nil
}

// Logout ends the current session
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// Me returns the caller
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.Do(ctx, http.MethodGet, "/api/v1/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// CheckUsername asks whether username can be claimed
func (c *Client) CheckUsername(ctx context.Context, username string) (*Availability, error) {
	var a Availability
	if err := c.Do(ctx, http.MethodGet, "/api/v1/usernames/"+url.PathEscape(username), nil, &a); err != nil {
		return nil, err
	}
	a.Confirmed = true
	return &a, nil
}

// ClaimUsername claims username for the caller
func (c *Client) ClaimUsername(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	if err := c.Do(ctx, http.MethodPost, "/api/v1/usernames", map[string]string{"username": username}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RenameUsername moves the caller's username and clips to username
func (c *Client) RenameUsername(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	if err := c.Do(ctx, http.MethodPatch, "/api/v1/me/username", map[string]string{"username": username}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CheckTitle asks whether the caller can use title
func (c *Client) CheckTitle(ctx context.Context, title string) (*Availability, error) {
	var a Availability
	path := "/api/v1/me/clips/" + url.PathEscape(title) + "/available"
	if err := c.Do(ctx, http.MethodGet, path, nil, &a); err != nil {
		return nil, err
	}
	a.Confirmed = true
	return &a, nil
}

// UploadClip sends audio as a multipart upload
func (c *Client) UploadClip(ctx context.Context, title, filename, contentType string, audio io.Reader) (*Clip, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(mw, title, filename, contentType, audio)
		_ = pw.CloseWithError(err)
	}()

	var clip Clip
	if err := c.send(ctx, http.MethodPost, "/api/v1/me/clips", mw.FormDataContentType(), pr, &clip); err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	return &clip, nil
}

func writeUploadForm(mw *multipart.Writer, title, filename, contentType string, audio io.Reader) error {
	if err := mw.WriteField("title", title); err != nil {
		return err
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return err
	}
	return mw.Close()
}

// DeleteClip removes one of the caller's clips
func (c *Client) DeleteClip(ctx context.Context, title string) error {
	return c.Do(ctx, http.MethodDelete, "/api/v1/me/clips/"+url.PathEscape(title), nil, nil)
}

// GetProfile returns a public profile with its clips
func (c *Client) GetProfile(ctx context.Context, username string) (*ProfilePage, error) {
	var p ProfilePage
	if err := c.Do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(username), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListClips returns username's clips, newest first
func (c *Client) ListClips(ctx context.Context, username string) (*ClipList, error) {
	var list ClipList
	if err := c.Do(ctx, http.MethodGet, "/api/v1/users/"+url.PathEscape(username)+"/clips", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// LookupClip returns the clip username published under title
func (c *Client) LookupClip(ctx context.Context, username, title string) (*Clip, error) {
	var clip Clip
	path := "/api/v1/users/" + url.PathEscape(username) + "/clips/" + url.PathEscape(title)
	if err := c.Do(ctx, http.MethodGet, path, nil, &clip); err != nil {
		return nil, err
	}
	return &clip, nil
}
