// Package client talks to the gamebridge backend the way the game does: it
// posts the one-time auth code, keeps the session cookie the server hands
// back and sends it on later requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// StatusNetworkFailure is reported when no HTTP response arrived at all.
const StatusNetworkFailure = 555

const defaultTimeout = 30 * time.Second

// Player is the record the backend returns.
type Player struct {
	PlayerID         string `json:"playerId"`
	DisplayName      string `json:"displayName"`
	VisibleProfile   bool   `json:"visibleProfile"`
	Title            string `json:"title"`
	NeedRefreshToken bool   `json:"needRefreshToken"`
}

// StatusError is a failed call. Status is the HTTP status, or
// StatusNetworkFailure when the server could not be reached.
type StatusError struct {
	Status  int
	Message string
	Cause   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.Cause
}

// StatusOf returns the status carried by err, or 0 when err is not a StatusError.
func StatusOf(err error) int {
	if se, ok := errors.AsType[*StatusError](err); ok {
		return se.Status
	}
	return 0
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTransport replaces the HTTP transport, e.g. for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// New creates a client for the backend at baseURL with an empty cookie jar.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SendAuthCode posts authCode for playerID. An empty code is sent as null,
// which the server answers with 204 and no record when it already holds a
// credential; the returned player is nil in that case. Codes are single use,
// so the request is never retried.
func (c *Client) SendAuthCode(ctx context.Context, playerID, authCode string) (*Player, error) {
	var body []byte
	if authCode == "" {
		body = []byte("null")
	} else {
		encoded, err := json.Marshal(authCode)
		if err != nil {
			return nil, fmt.Errorf("failed to encode auth code: %w", err)
		}
		body = encoded
	}

	var p Player
	found, err := c.do(ctx, http.MethodPost, playerPath(playerID), body, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// GetPlayer fetches the record the current session is bound to.
func (c *Client) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	var p Player
	if _, err := c.do(ctx, http.MethodGet, playerPath(playerID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Health returns the readiness report of the server.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var report map[string]any
	if _, err := c.do(ctx, http.MethodGet, "/health/ready", nil, &report); err != nil {
		return nil, err
	}
	return report, nil
}

// SessionCookies returns the cookies the server has set for this client.
func (c *Client) SessionCookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// RestoreSession puts previously saved cookies back into the jar.
func (c *Client) RestoreSession(cookies []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
}

func playerPath(playerID string) string {
	return "/player/" + url.PathEscape(playerID)
}

// do sends the request and decodes a 2xx body into result. It reports false
// when the server answered without a body.
func (c *Client) do(ctx context.Context, method, path string, body []byte, result any) (bool, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, bodyReader)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &StatusError{Status: StatusNetworkFailure, Message: err.Error(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, &StatusError{Status: StatusNetworkFailure, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode >= 400 {
		return false, &StatusError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, respBody)}
	}

	if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	return true, nil
}

func errorMessage(status int, body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return http.StatusText(status)
}
