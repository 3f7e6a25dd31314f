package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/abgdnv/shopease/internal/session"
	"github.com/abgdnv/shopease/pkg/web/ctxkeys"
)

type sessionKey struct{}

// SessionManager is what the handler needs from *session.Manager.
type SessionManager interface {
	GetOrCreate(ctx context.Context, id string) (*session.Session, bool)
}

// SessionCookie resolves the shopper session from the cookie, starting a new
// one when it is missing, and refreshes the cookie on every response.
func SessionCookie(manager SessionManager, name string, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(name); err == nil {
				id = c.Value
			}
			s, _ := manager.GetOrCreate(r.Context(), id)
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    s.ID(),
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			ctx := context.WithValue(r.Context(), sessionKey{}, s)
			ctx = ctxkeys.WithSessionID(ctx, s.ID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*session.Session)
	return s, ok
}
