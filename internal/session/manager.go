package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Session timing constants.
const (
	// refreshThreshold is how long before expiry a token is reported as
	// needing refresh. Re-authenticating early keeps device commands
	// from landing on a just-expired token mid-flight.
	refreshThreshold = 300 * time.Second

	// defaultHTTPTimeout bounds the credential exchange when the caller
	// does not supply an http.Client.
	defaultHTTPTimeout = 30 * time.Second

	// maxAuthResponseBytes caps how much of the auth response is read.
	maxAuthResponseBytes = 1 << 20
)

// Logger is the logging interface used by the Manager.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Token is an immutable snapshot of the cached session credential.
type Token struct {
	// Value is the opaque bearer token presented on API calls.
	Value string

	// ExpiresAt is the UTC instant the token stops being valid.
	ExpiresAt time.Time
}

// Manager owns the session lifecycle against the cloud credential
// endpoint: Unauthenticated → Authenticating → Authenticated → Expired,
// with Clear() returning to Unauthenticated.
type Manager struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	logger     Logger

	// now is the clock source; overridable in tests.
	now func() time.Time

	// mu guards current. The pair is only ever replaced wholesale.
	mu      sync.Mutex
	current *Token
}

// authRequest is the JSON body of the credential exchange.
type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the JSON body the credential endpoint returns.
type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// New creates a session Manager for the given credential endpoint URL.
//
// Parameters:
//   - endpoint: Full URL of the credential exchange (HTTPS POST)
//   - userAgent: Fixed User-Agent string the cloud expects
//   - httpClient: Optional client; nil uses a default with a 30s timeout
//
// Returns:
//   - *Manager: Manager in the Unauthenticated state
func New(endpoint, userAgent string, httpClient *http.Client) *Manager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Manager{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: httpClient,
		logger:     noopLogger{},
		now:        time.Now,
	}
}

// SetLogger sets the logger for the manager. Credentials and token
// values are never logged.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Authenticate performs the credential exchange and caches the result.
//
// The network call runs outside the lock; only the final commit of the
// (token, expiry) pair is serialised. Concurrent calls race on network
// completion order and the last commit wins.
//
// Parameters:
//   - ctx: Context for cancellation and deadline of the exchange
//   - username: Cloud account username
//   - password: Cloud account password (plaintext, already decrypted)
//
// Returns:
//   - Token: The freshly issued token snapshot
//   - error: ErrAuth wrapping the underlying failure
func (m *Manager) Authenticate(ctx context.Context, username, password string) (Token, error) {
	body, err := json.Marshal(authRequest{Username: username, Password: password})
	if err != nil {
		return Token{}, fmt.Errorf("%w: encoding request: %w", ErrAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return Token{}, fmt.Errorf("%w: building request: %w", ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Token{}, fmt.Errorf("%w: endpoint returned %s", ErrAuth, resp.Status)
	}

	var parsed authResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAuthResponseBytes)).Decode(&parsed); err != nil {
		return Token{}, fmt.Errorf("%w: decoding response: %w", ErrAuth, err)
	}
	if parsed.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: response missing access_token", ErrAuth)
	}

	token := Token{
		Value:     parsed.AccessToken,
		ExpiresAt: m.now().UTC().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}

	m.mu.Lock()
	m.current = &token
	m.mu.Unlock()

	m.logger.Debug("session authenticated", "expires_at", token.ExpiresAt)
	return token, nil
}

// Token returns a snapshot of the cached pair and whether one exists.
// The snapshot may already be expired; callers wanting a hard guarantee
// use ValidateAuthenticated first.
func (m *Manager) Token() (Token, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Token{}, false
	}
	return *m.current, true
}

// NeedsRefresh reports whether a re-authentication is due: no token is
// cached, or expiry is within the 300-second refresh threshold.
func (m *Manager) NeedsRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return true
	}
	return !m.now().Add(refreshThreshold).Before(m.current.ExpiresAt)
}

// ValidateAuthenticated confirms the cached token is present and still
// valid. Every authenticated cloud call checks this first.
//
// Returns:
//   - error: ErrNotAuthenticated with no cached token,
//     ErrTokenExpired when now >= expiry, nil otherwise
func (m *Manager) ValidateAuthenticated() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotAuthenticated
	}
	if !m.now().Before(m.current.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

// Clear drops the cached token, returning to the Unauthenticated state.
// There is no server-side revocation; the old token simply ages out.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.logger.Debug("session cleared")
}
