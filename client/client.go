// Package client talks to a running storefront service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/users"
	"golang.org/x/oauth2"
)

const (
	RefreshSessionPath = "/api/auth/refresh-session"
	SessionPath        = "/api/auth/session"
	SettingsPath       = "/api/settings"

	maxResponseBytes = 1 << 20
)

// APIError is a non-2xx response from the storefront service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront responded %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the matching sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return sferrors.ErrNoSession
	case http.StatusMethodNotAllowed:
		return sferrors.ErrMethodNotAllowed
	case http.StatusTooManyRequests:
		return sferrors.ErrRateLimited
	case http.StatusServiceUnavailable:
		return sferrors.ErrSettingsUnavailable
	default:
		return sferrors.ErrInternal
	}
}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	sessionToken string
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithSessionToken authenticates requests with a signed session token sent as a bearer header.
func WithSessionToken(token string) ClientOption {
	return func(c *Client) {
		c.sessionToken = token
	}
}

func New(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// RefreshSession asks the service to fetch the session user's current profile.
func (c *Client) RefreshSession(ctx context.Context) (*users.User, error) {
	var resp api.RefreshSessionResponse
	if err := c.do(ctx, http.MethodPost, RefreshSessionPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("[Client RefreshSession] %w", err)
	}
	if !resp.Success || resp.User == nil {
		return nil, fmt.Errorf("[Client RefreshSession] %w: %s", sferrors.ErrInternal, resp.Message)
	}
	return resp.User, nil
}

// Session returns the service's view of the current session.
func (c *Client) Session(ctx context.Context) (*api.SessionResponse, error) {
	var resp api.SessionResponse
	if err := c.do(ctx, http.MethodGet, SessionPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("[Client Session] %w", err)
	}
	return &resp, nil
}

// UpdateSession asks the service to revalidate the session user and re-issue the session.
func (c *Client) UpdateSession(ctx context.Context) (*api.SessionResponse, error) {
	var resp api.SessionResponse
	if err := c.do(ctx, http.MethodPost, SessionPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("[Client UpdateSession] %w", err)
	}
	return &resp, nil
}

// Settings returns the general settings for locale; an empty locale lets the service negotiate.
func (c *Client) Settings(ctx context.Context, locale string) (*api.SettingsResponse, error) {
	query := url.Values{}
	if locale != "" {
		query.Set("locale", locale)
	}
	var resp api.SettingsResponse
	if err := c.do(ctx, http.MethodGet, SettingsPath, query, &resp); err != nil {
		return nil, fmt.Errorf("[Client Settings] %w", err)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.transport(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", sferrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", sferrors.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg api.MessageResponse
		if json.Unmarshal(body, &msg) != nil || msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if err := json.NewDecoder(bytes.NewReader(body)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", sferrors.ErrBackendPayload, err)
	}
	return nil
}

// transport adds the session bearer header when a session token is configured.
func (c *Client) transport(ctx context.Context) *http.Client {
	if c.sessionToken == "" {
		return c.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.sessionToken, TokenType: "Bearer"}))
}
