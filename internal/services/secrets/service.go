package secrets

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/secrets/internal/dependencies/clock"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// MaxSecretLength caps a secret, in characters
const MaxSecretLength = 2000

// Errors
var (
	ErrEmptySecret   = errors.New("secret must not be empty")
	ErrSecretTooLong = errors.New("secret is too long")
)

// Notifier is told about every stored secret. Implementations must not block.
type Notifier interface {
	SecretSubmitted(ctx context.Context, account *model.Account)
}

// Service manages the secrets submitted by accounts
type Service struct {
	storage   storage.Storage
	clock     clock.Clock
	logger    *slog.Logger
	notifiers []Notifier
}

// New creates a new secrets service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Notify registers n to hear about submitted secrets
func (s *Service) Notify(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// Submit overwrites the account's secret with text
func (s *Service) Submit(ctx context.Context, accountID model.AccountID, text string) (*model.Account, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySecret
	}
	if utf8.RuneCountInString(text) > MaxSecretLength {
		return nil, ErrSecretTooLong
	}

	account, err := s.storage.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	replaced := account.HasSecret()
	account.SetSecret(text, s.clock.Now())

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("secret submitted",
		slog.String("account_id", string(account.ID)),
		slog.Bool("replaced", replaced),
	)

	for _, n := range s.notifiers {
		n.SecretSubmitted(ctx, account)
	}
	return account, nil
}

// List returns every account that has submitted a secret, oldest first
func (s *Service) List(ctx context.Context) ([]*model.Account, error) {
	return s.storage.ListAccountsWithSecret(ctx)
}

// Texts returns the submitted secret texts, oldest first
func (s *Service) Texts(ctx context.Context) ([]string, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(accounts))
	for _, account := range accounts {
		texts = append(texts, account.SecretText())
	}
	return texts, nil
}
