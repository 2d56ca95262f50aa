package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/alc/leasing-form/internal/forms"
	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/middleware"
	"github.com/alc/leasing-form/internal/server"
	"github.com/alc/leasing-form/internal/vehicles"
)

// AdminToken is the static token accepted by servers built with NewServer.
const AdminToken = "test-admin-token"

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*server.Config)

// WithVehicles overrides the vehicle repository.
func WithVehicles(repo vehicles.Repository) ServerOption {
	return func(cfg *server.Config) {
		cfg.Vehicles = repo
	}
}

// WithFormStore overrides the form state store.
func WithFormStore(store forms.Store) ServerOption {
	return func(cfg *server.Config) {
		cfg.Forms = store
	}
}

// WithCalculator overrides the price calculator.
func WithCalculator(calc *leasing.Calculator) ServerOption {
	return func(cfg *server.Config) {
		cfg.Calculator = calc
	}
}

// WithMessenger overrides the handoff messenger.
func WithMessenger(m leasing.Messenger) ServerOption {
	return func(cfg *server.Config) {
		cfg.Messenger = m
	}
}

// WithAdminBasePath sets a custom base path for the admin routes.
func WithAdminBasePath(path string) ServerOption {
	return func(cfg *server.Config) {
		cfg.AdminBasePath = path
	}
}

// WithReady installs a readiness probe for /healthz.
func WithReady(ready func() error) ServerOption {
	return func(cfg *server.Config) {
		cfg.Ready = ready
	}
}

// NewServer constructs an httptest server running the full HTTP stack with the bundled seed.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := server.Config{
		Address:       ":0",
		Forms:         forms.NewMemoryStore(forms.DefaultTTL),
		Messenger:     leasing.Messenger{BaseURL: leasing.DefaultMessagingBaseURL},
		Session:       middleware.SessionConfig{SigningKey: []byte("testutil-signing-key")},
		AdminBasePath: "/admin",
		Authenticator: middleware.StaticTokenAuthenticator{Token: AdminToken},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := server.New(cfg)
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

// NewClient returns a client with a cookie jar that does not follow redirects.
func NewClient(t testing.TB) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
