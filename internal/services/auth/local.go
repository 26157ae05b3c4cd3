package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// LocalStrategy verifies a username and password against the stored bcrypt hash
type LocalStrategy struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewLocalStrategy creates a LocalStrategy
func NewLocalStrategy(storage storage.Storage, logger *slog.Logger) *LocalStrategy {
	return &LocalStrategy{
		storage: storage,
		logger:  logger,
	}
}

var _ Strategy = (*LocalStrategy)(nil)

// Name returns the strategy name
func (s *LocalStrategy) Name() string {
	return string(model.ProviderLocal)
}

// Authenticate looks the account up by username and compares the password
func (s *LocalStrategy) Authenticate(ctx context.Context, cred Credential) (*model.Account, error) {
	username := normalizeUsername(cred.Username)
	if username == "" || cred.Password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// OAuth-only accounts have no password
	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(cred.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// normalizeUsername is applied on registration and on login so both look up
// the same stored name
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
