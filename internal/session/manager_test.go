package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable clock for driving expiry without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newAuthServer returns an httptest server answering the credential
// exchange with the given token and lifetime, and asserting the request
// shape along the way.
func newAuthServer(t *testing.T, token string, expiresIn int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding auth body: %v", err)
		}
		if body.Username == "" || body.Password == "" {
			t.Error("auth body missing credentials")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck // test writer
			"access_token": token,
			"expires_in":   expiresIn,
		})
	}))
}

func newTestManager(t *testing.T, endpoint string) (*Manager, *fakeClock) {
	t.Helper()
	m := New(endpoint, "cloudbridge-test/1.0", nil)
	clock := newFakeClock()
	m.now = clock.Now
	return m, clock
}

func TestAuthenticate_CachesToken(t *testing.T) {
	srv := newAuthServer(t, "abc123", 3600)
	defer srv.Close()

	m, clock := newTestManager(t, srv.URL)

	token, err := m.Authenticate(context.Background(), "u", "p")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if token.Value != "abc123" {
		t.Errorf("token = %q, want abc123", token.Value)
	}

	wantExpiry := clock.Now().Add(3600 * time.Second)
	if !token.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", token.ExpiresAt, wantExpiry)
	}

	cached, ok := m.Token()
	if !ok {
		t.Fatal("Token() reports no cached token after Authenticate")
	}
	if cached != token {
		t.Errorf("cached token %+v differs from returned token %+v", cached, token)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "rejected credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad credentials", http.StatusUnauthorized)
			},
		},
		{
			name: "missing token field",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"expires_in": 3600}`)) //nolint:errcheck // test writer
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("<html>maintenance</html>")) //nolint:errcheck // test writer
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			m, _ := newTestManager(t, srv.URL)

			_, err := m.Authenticate(context.Background(), "u", "p")
			if !errors.Is(err, ErrAuth) {
				t.Errorf("Authenticate() error = %v, want ErrAuth", err)
			}

			// A failed exchange must not disturb the cached state.
			if _, ok := m.Token(); ok {
				t.Error("failed Authenticate() should leave no cached token")
			}
		})
	}
}

func TestAuthenticate_TransportFailure(t *testing.T) {
	// Closed server: connection refused.
	srv := newAuthServer(t, "x", 1)
	srv.Close()

	m, _ := newTestManager(t, srv.URL)
	if _, err := m.Authenticate(context.Background(), "u", "p"); !errors.Is(err, ErrAuth) {
		t.Errorf("Authenticate() error = %v, want ErrAuth", err)
	}
}

func TestNeedsRefresh_Threshold(t *testing.T) {
	srv := newAuthServer(t, "abc123", 3600)
	defer srv.Close()

	m, clock := newTestManager(t, srv.URL)

	if !m.NeedsRefresh() {
		t.Error("NeedsRefresh() = false before any Authenticate, want true")
	}

	if _, err := m.Authenticate(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if m.NeedsRefresh() {
		t.Error("NeedsRefresh() = true immediately after Authenticate, want false")
	}

	// 250s before expiry is inside the 300s threshold.
	clock.Advance(3350 * time.Second)
	if !m.NeedsRefresh() {
		t.Error("NeedsRefresh() = false at expiresAt-250s, want true")
	}
}

func TestValidateAuthenticated_Lifecycle(t *testing.T) {
	srv := newAuthServer(t, "abc123", 3600)
	defer srv.Close()

	m, clock := newTestManager(t, srv.URL)

	if err := m.ValidateAuthenticated(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("ValidateAuthenticated() = %v before auth, want ErrNotAuthenticated", err)
	}

	if _, err := m.Authenticate(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if err := m.ValidateAuthenticated(); err != nil {
		t.Errorf("ValidateAuthenticated() = %v after auth, want nil", err)
	}

	// One second past the 3600s lifetime.
	clock.Advance(3601 * time.Second)
	if err := m.ValidateAuthenticated(); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ValidateAuthenticated() = %v after expiry, want ErrTokenExpired", err)
	}
}

func TestClear_ReturnsToUnauthenticated(t *testing.T) {
	srv := newAuthServer(t, "abc123", 3600)
	defer srv.Close()

	m, _ := newTestManager(t, srv.URL)
	if _, err := m.Authenticate(context.Background(), "u", "p"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	m.Clear()

	if err := m.ValidateAuthenticated(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("ValidateAuthenticated() = %v after Clear, want ErrNotAuthenticated", err)
	}
	if !m.NeedsRefresh() {
		t.Error("NeedsRefresh() = false after Clear, want true")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	srv := newAuthServer(t, "abc123", 3600)
	defer srv.Close()

	m, _ := newTestManager(t, srv.URL)

	// Writers re-authenticate while readers snapshot; run under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := m.Authenticate(context.Background(), "u", "p"); err != nil {
				t.Errorf("Authenticate() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if tok, ok := m.Token(); ok {
					// A snapshot is always internally consistent:
					// token and expiry came from one exchange.
					if tok.Value == "" || tok.ExpiresAt.IsZero() {
						t.Error("observed half-written token snapshot")
					}
				}
				m.NeedsRefresh()
			}
		}()
	}
	wg.Wait()
}
