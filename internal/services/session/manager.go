package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

const (
	accountIDKey = "account_id"
	flashKey     = "flash"
)

// Config holds configuration for the session manager
type Config struct {
	CookieName string
	Lifetime   time.Duration
	// Secure marks the cookie HTTPS-only
	Secure bool
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName: "session",
		Lifetime:   24 * time.Hour,
	}
}

// Manager maps browser sessions to accounts. Only the account id is kept in
// the session; the account itself is loaded from storage on every request.
type Manager struct {
	sessions *scs.SessionManager
	storage  storage.Storage
	logger   *slog.Logger
}

// New creates a session manager persisting sessions in store
func New(store scs.Store, cfg Config, storage storage.Storage, logger *slog.Logger) *Manager {
	defaults := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = defaults.CookieName
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = defaults.Lifetime
	}

	sessions := scs.New()
	sessions.Store = store
	sessions.Lifetime = cfg.Lifetime
	sessions.Cookie.Name = cfg.CookieName
	sessions.Cookie.Path = "/"
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = cfg.Secure
	// Cleared when the browser session ends
	sessions.Cookie.Persist = false

	m := &Manager{
		sessions: sessions,
		storage:  storage,
		logger:   logger,
	}
	sessions.ErrorFunc = m.handleError
	return m
}

// LoadAndSave loads the session for each request and commits it afterwards
func (m *Manager) LoadAndSave(next http.Handler) http.Handler {
	return m.sessions.LoadAndSave(next)
}

// Establish binds the session to account, issuing a fresh token
func (m *Manager) Establish(ctx context.Context, account *model.Account) error {
	if err := m.sessions.RenewToken(ctx); err != nil {
		return err
	}
	m.sessions.Put(ctx, accountIDKey, string(account.ID))

	m.logger.Debug("session established", slog.String("account_id", string(account.ID)))
	return nil
}

// Resolve returns the account bound to the session, or nil when anonymous.
// A session naming an unknown account, or a storage failure, resolves to
// anonymous.
func (m *Manager) Resolve(ctx context.Context) *model.Account {
	id := m.sessions.GetString(ctx, accountIDKey)
	if id == "" {
		return nil
	}

	account, err := m.storage.GetAccount(ctx, model.AccountID(id))
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			m.logger.Warn("session references unknown account", slog.String("account_id", id))
			m.sessions.Remove(ctx, accountIDKey)
		} else {
			m.logger.Error("failed to resolve session account",
				slog.String("account_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return account
}

// Flash stores a one-off message shown on the next rendered page
func (m *Manager) Flash(ctx context.Context, message string) {
	m.sessions.Put(ctx, flashKey, message)
}

// PopFlash returns and clears the pending flash message
func (m *Manager) PopFlash(ctx context.Context) string {
	return m.sessions.PopString(ctx, flashKey)
}

// End destroys the session
func (m *Manager) End(ctx context.Context) error {
	return m.sessions.Destroy(ctx)
}

func (m *Manager) handleError(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Error("session store error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
