package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/secrets/internal/services/session"
)

const flashContextKey contextKey = "flash"

// GetFlash retrieves the flash message from the request context
// Returns "" if no flash message is pending
func GetFlash(ctx context.Context) string {
	flash, _ := ctx.Value(flashContextKey).(string)
	return flash
}

// Flash returns middleware that pops the pending flash message from the
// session into the request context. GET requests only, so a form post
// doesn't swallow the message meant for the page it redirects to.
func Flash(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			flash := sessions.PopFlash(r.Context())
			ctx := context.WithValue(r.Context(), flashContextKey, flash)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
