package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const csrfContextKey contextKey = "csrf.token"

// CSRFConfig controls where the token is read from on unsafe requests.
type CSRFConfig struct {
	HeaderName string
	FormField  string
	// Exempt skips verification for routes that check the token themselves.
	Exempt func(*http.Request) bool
}

// CSRF ties a token to the session and verifies unsafe requests carry it in the header or form
// field. Requires Session upstream.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-CSRF-Token"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r)
			if s.CSRFToken == "" {
				s.CSRFToken = newCSRFToken()
				s.MarkDirty()
			}
			ctx := context.WithValue(r.Context(), csrfContextKey, s.CSRFToken)
			r = r.WithContext(ctx)

			if !isSafeMethod(r.Method) && (cfg.Exempt == nil || !cfg.Exempt(r)) {
				submitted := r.Header.Get(cfg.HeaderName)
				if submitted == "" && cfg.FormField != "" {
					submitted = r.PostFormValue(cfg.FormField)
				}
				if !ValidCSRFToken(ctx, submitted) {
					WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromContext returns the token issued for the current request.
func CSRFTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(csrfContextKey).(string); ok {
		return token
	}
	return ""
}

// ValidCSRFToken reports whether submitted matches the request's token.
func ValidCSRFToken(ctx context.Context, submitted string) bool {
	token := CSRFTokenFromContext(ctx)
	if token == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) == 1
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
