package middleware

import (
	"context"
	"net/http"

	"github.com/mcoot/secrets/internal/api/apierr"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/services/session"
)

type contextKey string

const (
	accountContextKey contextKey = "account"
)

// Auth creates authentication middleware backed by the browser session
func Auth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := sessions.Resolve(r.Context())
			if account == nil {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAccount retrieves the account from context
func GetAccount(ctx context.Context) *model.Account {
	account, _ := ctx.Value(accountContextKey).(*model.Account)
	return account
}

// MustGetAccount retrieves the account from context, panics if not found
// Only use in handlers protected by Auth middleware
func MustGetAccount(ctx context.Context) *model.Account {
	account := GetAccount(ctx)
	if account == nil {
		panic("account not found in context - ensure Auth middleware is applied")
	}
	return account
}
