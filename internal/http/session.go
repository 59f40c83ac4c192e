package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookie = "nexus_session"
	SessionHeader = "X-Session-ID"
)

type sessionKey struct{}

// Session identifies the shopper by an opaque id taken from the session cookie
// or the X-Session-ID header. Requests without a valid id get a fresh one,
// returned in both places.
func Session(ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id = c.Value
				}
			}

			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, id)

			ctx := context.WithValue(r.Context(), sessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
