package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nerrad567/cloudbridge/internal/session"
)

// Client defaults.
const (
	defaultTimeout       = 30 * time.Second
	maxResponseBodyBytes = 4 << 20
)

// Logger is the logging interface used by the Client.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Config contains the settings needed to reach the cloud device API.
type Config struct {
	// BaseURL is the API root, e.g. "https://cloud.example.com".
	BaseURL string

	// UserAgent is the fixed User-Agent string sent on every request.
	UserAgent string

	// Timeout bounds each request. Zero uses the default (30s).
	Timeout time.Duration
}

// Client is the authenticated HTTP client for the cloud device API.
type Client struct {
	baseURL    string
	userAgent  string
	session    *session.Manager
	httpClient *http.Client
	logger     Logger
}

// New creates a cloud API client.
//
// Parameters:
//   - cfg: Endpoint configuration
//   - sess: Session manager supplying the bearer token
//
// Returns:
//   - *Client: Client ready for use
//   - error: If the base URL is empty or unparseable
func New(cfg Config, sess *session.Manager) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cloud: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("cloud: invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		session:    sess,
		httpClient: &http.Client{Timeout: timeout},
		logger:     noopLogger{},
	}, nil
}

// SetLogger sets the logger for the client. Tokens are never logged.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// put performs an authenticated PUT with a JSON body and decodes the
// response into out (out may be nil to discard).
func (c *Client) put(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("cloud: encoding request body: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, body, out)
}

// do validates the session, attaches the bearer token and User-Agent,
// and executes one request. Non-2xx responses map to ErrDeviceNotFound
// (404) or ErrRequestFailed.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	if err := c.session.ValidateAuthenticated(); err != nil {
		return err
	}
	token, ok := c.session.Token()
	if !ok {
		return session.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("cloud: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Value)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrDeviceNotFound, method, path)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		c.logger.Warn("cloud request failed", "method", method, "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s %s returned %s", ErrRequestFailed, method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", ErrRequestFailed, err)
	}
	return nil
}
