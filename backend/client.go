// Package backend is the HTTP client for the remote storefront API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/metrics"
	"github.com/jrsteele09/go-storefront/settings"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

const (
	ProfilePath         = "/user/profile"
	GeneralSettingsPath = "/general-settings"

	maxBodyBytes     = 1 << 20
	maxErrorBodySize = 512
)

var _ settings.Fetcher = (*Client)(nil)

// StatusError reports a non-success backend response.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: status %d", e.Operation, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return sferrors.ErrBackendStatus
}

// Client talks to the backend API. The base URL is resolved on every request.
type Client struct {
	baseURL    func() string
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Metrics
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL func() string, timeout time.Duration, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		timeout:    timeout,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetProfile fetches the profile of the user owning token.
func (c *Client) GetProfile(ctx context.Context, token string) (*users.User, error) {
	if token == "" {
		return nil, fmt.Errorf("[Backend GetProfile] %w: empty bearer token", sferrors.ErrNoSession)
	}

	// oauth2's transport adds the "Authorization: Bearer <token>" header.
	authCtx := context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	httpClient := oauth2.NewClient(authCtx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))

	body, err := c.get(ctx, httpClient, "profile", ProfilePath, nil, "")
	if err != nil {
		return nil, fmt.Errorf("[Backend GetProfile] %w", err)
	}

	var user users.User
	if err := decodeEnvelope(body, &user, "data.user", "data", "user"); err != nil {
		return nil, fmt.Errorf("[Backend GetProfile] %w", err)
	}
	return &user, nil
}

// GetGeneralSettings fetches the general site settings for locale.
func (c *Client) GetGeneralSettings(ctx context.Context, locale string) (*settings.General, error) {
	query := url.Values{}
	if locale != "" {
		query.Set("lang", locale)
	}
	body, err := c.get(ctx, c.httpClient, "general_settings", GeneralSettingsPath, query, locale)
	if err != nil {
		return nil, fmt.Errorf("[Backend GetGeneralSettings] %w", err)
	}

	var general settings.General
	if err := decodeEnvelope(body, &general, "data.settings", "data", "settings"); err != nil {
		return nil, fmt.Errorf("[Backend GetGeneralSettings] %w", err)
	}
	return &general, nil
}

func (c *Client) get(ctx context.Context, httpClient *http.Client, operation, path string, query url.Values, locale string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL() + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if locale != "" {
		req.Header.Set("Accept-Language", locale)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.metrics.BackendRequest(operation, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", sferrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	c.metrics.BackendRequest(operation, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", sferrors.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Operation: operation, StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBodySize)}
		log.Warn().Str("operation", operation).Int("status", resp.StatusCode).Str("body", statusErr.Body).Msg("backend request failed")
		return nil, statusErr
	}
	return body, nil
}

// decodeEnvelope unmarshals the first object found at paths, or the document itself.
// The backend wraps resources inconsistently ({"data":{...}}, {"user":{...}} or bare).
func decodeEnvelope(body []byte, v any, paths ...string) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("%w: invalid JSON", sferrors.ErrBackendPayload)
	}
	raw := body
	for _, path := range paths {
		if result := gjson.GetBytes(body, path); result.Exists() && result.IsObject() {
			raw = []byte(result.Raw)
			break
		}
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return fmt.Errorf("%w: expected an object", sferrors.ErrBackendPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", sferrors.ErrBackendPayload, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
