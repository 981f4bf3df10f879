// internal/handlers/middleware/session.go
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/storefront-be/internal/pkg/logger"
)

// SessionHeader lets non-browser clients pick their cart without cookies
const SessionHeader = "X-Session-ID"

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// SessionConfig controls the anonymous session cookie
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Session resolves the shopper's session id from the X-Session-ID header or
// the session cookie, issuing a new cookie when neither carries a usable id.
// The id is stored in the request context under logger.ContextKeySessionID.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if !sessionPattern.MatchString(id) {
				id = ""
				if c, err := r.Cookie(cfg.CookieName); err == nil && sessionPattern.MatchString(c.Value) {
					id = c.Value
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)

			ctx := context.WithValue(r.Context(), logger.ContextKeySessionID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the id set by Session, or "" outside it
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(logger.ContextKeySessionID).(string)
	return id
}
