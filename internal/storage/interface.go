package storage

import (
	"context"
	"fmt"

	"github.com/mcoot/secrets/internal/model"
)

// Storage defines the interface for account persistence.
//
// Every method is a single atomic operation against the backend. Backend
// failures are wrapped with model.ErrStorageUnavailable so callers can tell
// them apart from model.ErrAccountNotFound.
type Storage interface {
	// CreateAccount inserts a new local account.
	// Returns model.ErrUsernameTaken if the username is already registered
	// and model.ErrAccountExists if the id is already in use.
	CreateAccount(ctx context.Context, account *model.Account) error

	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// FindOrCreateByProvider looks up the account linked to the candidate's
	// external identity, inserting the candidate if none exists. The bool
	// result reports whether the candidate was inserted. A candidate whose id
	// is already in use yields model.ErrAccountExists.
	FindOrCreateByProvider(ctx context.Context, candidate *model.Account) (*model.Account, bool, error)

	// SaveAccount overwrites an existing account.
	SaveAccount(ctx context.Context, account *model.Account) error

	// ListAccountsWithSecret returns every account whose secret is non-nil,
	// oldest first. Never returns a nil slice on success.
	ListAccountsWithSecret(ctx context.Context) ([]*model.Account, error)

	Close() error
}

// Unavailable wraps a backend error as model.ErrStorageUnavailable
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrStorageUnavailable, err)
}
