package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/session"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
)

// GetAccount retrieves the signed-in account from the request context
// Returns nil if the request is anonymous
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// WithAccount returns a copy of ctx carrying account
func WithAccount(ctx context.Context, account *model.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// Auth returns middleware that requires a signed-in account
// Redirects to the login page if the session is anonymous
func Auth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := sessions.Resolve(r.Context())
			if account == nil {
				sessions.Flash(r.Context(), "Please log in to continue.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// OptionalAuth returns middleware that resolves the session but doesn't require it
// Sets the account in context if signed in, nil otherwise
func OptionalAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := sessions.Resolve(r.Context())
			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}
