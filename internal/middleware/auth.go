package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alc/leasing-form/internal/observability"
)

const userContextKey contextKey = "auth.user"

// AdminTokenCookie carries the admin token for browser sessions.
const AdminTokenCookie = "leasing_admin_token"

// User represents the authenticated operator.
type User struct {
	UID   string
	Roles []string
}

// Authenticator resolves an incoming bearer token into a User.
type Authenticator interface {
	Authenticate(r *http.Request, token string) (*User, error)
}

// ErrUnauthorized is returned when authentication fails.
var ErrUnauthorized = errors.New("unauthorized")

const (
	// ReasonMissingToken indicates an auth attempt without credentials.
	ReasonMissingToken = "missing_token"
	// ReasonTokenInvalid indicates a token that does not match.
	ReasonTokenInvalid = "token_invalid"
)

// StaticTokenAuthenticator accepts a single shared token.
type StaticTokenAuthenticator struct {
	Token string
}

// Authenticate implements Authenticator.
func (a StaticTokenAuthenticator) Authenticate(_ *http.Request, token string) (*User, error) {
	if a.Token == "" || subtle.ConstantTimeCompare([]byte(a.Token), []byte(token)) != 1 {
		return nil, ErrUnauthorized
	}
	return &User{UID: "admin", Roles: []string{"admin"}}, nil
}

// Auth validates incoming requests and either attaches a User to context or redirects to login.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if authenticator == nil {
		panic("authenticator is required")
	}
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())
			token := parseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				if c, err := r.Cookie(AdminTokenCookie); err == nil {
					token = strings.TrimSpace(c.Value)
				}
			}
			if token == "" {
				logger.Warn("auth failure", zap.String("reason", ReasonMissingToken))
				handleUnauthorized(w, r, loginPath)
				return
			}

			user, err := authenticator.Authenticate(r, token)
			if err != nil || user == nil {
				if err == nil {
					err = ErrUnauthorized
				}
				logger.Warn("auth failure", zap.String("reason", ReasonTokenInvalid), zap.Error(err))
				handleUnauthorized(w, r, loginPath)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}

func parseBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}
