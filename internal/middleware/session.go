package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	defaultSessionCookie = "LEASING_SESSION"
	defaultSessionMaxAge = 30 * 24 * time.Hour
)

const sessionContextKey contextKey = "session"

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	CookieName string
	SigningKey []byte
	Secure     bool
	MaxAge     time.Duration
}

// SessionData is the payload carried in the signed cookie.
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	dirty     bool
}

// MarkDirty flags the session for writing at end of request.
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// Session loads or initializes a session and stores it in request context. A nil signing key
// is replaced with a process-ephemeral one.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = defaultSessionCookie
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultSessionMaxAge
	}
	if len(cfg.SigningKey) == 0 {
		cfg.SigningKey = make([]byte, 32)
		if _, err := rand.Read(cfg.SigningKey); err != nil {
			panic("session: generate signing key: " + err.Error())
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sd, fromCookie := cfg.read(r)
			if sd.ID == "" {
				sd.ID = randID()
				sd.CreatedAt = time.Now().UTC()
				sd.UpdatedAt = sd.CreatedAt
				sd.CSRFToken = newCSRFToken()
				sd.dirty = true
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sd)
			rw := NewResponseRecorder(w)
			rw.SetBeforeWrite(func(w http.ResponseWriter) {
				if sd.dirty || !fromCookie {
					cfg.write(w, sd)
				}
			})
			next.ServeHTTP(rw, r.WithContext(ctx))
			if !rw.Written() && (sd.dirty || !fromCookie) {
				cfg.write(w, sd)
			}
		})
	}
}

// GetSession returns session data from context.
func GetSession(r *http.Request) *SessionData {
	return SessionFromContext(r.Context())
}

// SessionFromContext returns the session attached to ctx or an empty one.
func SessionFromContext(ctx context.Context) *SessionData {
	if sd, ok := ctx.Value(sessionContextKey).(*SessionData); ok && sd != nil {
		return sd
	}
	return &SessionData{}
}

func (cfg SessionConfig) read(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(cfg.CookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sigB, cfg.sign(payloadB)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func (cfg SessionConfig) write(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(cfg.sign(b))
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cfg.MaxAge.Seconds()),
	})
}

func (cfg SessionConfig) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, cfg.SigningKey)
	mac.Write(payload)
	return mac.Sum(nil)
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
