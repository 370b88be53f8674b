package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the API root used when none is configured.
	DefaultBaseURL = "http://localhost:8000/api"
	// DefaultTimeout bounds each request.
	DefaultTimeout = 30 * time.Second

	templatesPrefix = "clinical-templates/"
	refreshPath     = "auth/token/refresh/"
)

// ErrUnauthorized is returned when the backend rejects the credentials and
// no refresh succeeds.
var ErrUnauthorized = errors.New("client: unauthorized")

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.RWMutex
	access  string
	refresh string

	Templates *TemplateService
	Notes     *NoteService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. The default is a plain http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer access token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.access = strings.TrimSpace(token)
	}
}

// WithRefreshToken enables one token refresh per request after a 401.
func WithRefreshToken(token string) Option {
	return func(c *Client) {
		c.refresh = strings.TrimSpace(token)
	}
}

// WithTimeout bounds each request; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the request logger. The default discards.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for the API rooted at baseURL, e.g.
// "https://pms.example.com/api". An empty baseURL uses DefaultBaseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/") + "/",
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.Templates = &TemplateService{client: c}
	c.Notes = &NoteService{client: c}
	return c, nil
}

// Token returns the current access token, which may have been refreshed.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

func (c *Client) endpoint(path string, query url.Values) string {
	out := c.baseURL + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		out += "?" + query.Encode()
	}
	return out
}

// do sends one JSON request and decodes a 2xx response into out. A 401 is
// retried once after a token refresh.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	err := c.send(ctx, method, path, query, body, out)
	var status *StatusError
	if !errors.As(err, &status) || status.Status != http.StatusUnauthorized {
		return err
	}
	if refreshErr := c.refreshAccess(ctx); refreshErr != nil {
		c.logger.Warn().Err(refreshErr).Msg("token refresh failed")
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return c.send(ctx, method, path, query, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}
	target := c.endpoint(path, query)
	req, err := http.NewRequestWithContext(reqCtx, method, target, payload)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: %s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(method, path, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: %s %s: decode: %w", method, path, err)
	}
	return nil
}

func (c *Client) refreshAccess(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.refresh
	c.mu.RUnlock()
	if refresh == "" {
		return errors.New("no refresh token")
	}
	var resp struct {
		Access string `json:"access"`
	}
	if err := c.send(ctx, http.MethodPost, refreshPath, nil, map[string]string{"refresh": refresh}, &resp); err != nil {
		return err
	}
	if resp.Access == "" {
		return errors.New("refresh response has no access token")
	}
	c.mu.Lock()
	c.access = resp.Access
	c.mu.Unlock()
	return nil
}

// decodeList accepts a paginated {"results": [...]}, a {"data": [...]}
// envelope or a bare array.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var envelope struct {
		Results *[]T `json:"results"`
		Data    *[]T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	switch {
	case envelope.Results != nil:
		return *envelope.Results, nil
	case envelope.Data != nil:
		return *envelope.Data, nil
	default:
		return []T{}, nil
	}
}
