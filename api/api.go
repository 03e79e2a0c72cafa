// Package api is the typed client for the gacha-sub011 game backend. It
// rides on the gacha HTTP client, so reads are cached and de-duplicated per
// credential; every mutation here evicts the cached reads it stales, and auth
// transitions clear the cache outright.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	gacha "github.com/kille250/gacha-sub011"
)

// Client is the game API client. Safe for concurrent use.
type Client struct {
	http    *gacha.Client
	baseURL string

	mu    sync.RWMutex
	token string
}

// APIError is a non-2xx backend response decoded into an error.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// New creates a game API client for baseURL. Options are passed through to
// the underlying gacha client; an unauthorized handler that drops the session
// is always installed last.
func New(baseURL string, opts ...gacha.Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	opts = append(opts, gacha.WithUnauthorizedHandler(func(req *http.Request, resp *http.Response) {
		// Auth endpoints answer 401 for bad credentials; that is not a
		// session expiry.
		if strings.Contains(req.URL.Path, "/auth/") {
			return
		}
		c.clearSession()
	}))

	c.http = gacha.New(opts...)
	return c
}

// HTTP exposes the underlying gacha client (middleware, metrics, direct
// invalidation).
func (c *Client) HTTP() *gacha.Client {
	return c.http
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken resumes a stored session. Every cached entry is credential-scoped,
// so switching credentials clears the cache in full.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	c.http.Invalidate()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	c.http.Invalidate()
}

// Login authenticates and stores the session token.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// Register creates an account and stores the session token.
func (c *Client) Register(ctx context.Context, username, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &sess); err != nil {
		return nil, err
	}
	c.SetToken(sess.Token)
	return &sess, nil
}

// Logout ends the session server-side and drops it locally either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.clearSession()
	return err
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else if payload.Message != "" {
			apiErr.Message = payload.Message
		}
	}

	return apiErr
}
