package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/secrets/internal/dependencies/clock"
	"github.com/mcoot/secrets/internal/dependencies/random"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// Config holds configuration for the auth service
type Config struct {
	// BcryptCost is the work factor for new password hashes
	BcryptCost int
	// Providers lists the OAuth2 providers; disabled ones are skipped
	Providers []OAuthConfig
	// HTTPClient is used for provider calls (optional)
	HTTPClient *http.Client
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles registration and dispatches authentication to strategies
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
	bcryptCost int

	strategies map[string]Strategy
}

// New creates a new auth service with the local strategy and every enabled
// OAuth provider registered
func New(storage storage.Storage, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}

	s := &Service{
		storage:    storage,
		clock:      clock,
		random:     random,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		strategies: make(map[string]Strategy),
	}

	s.Register(NewLocalStrategy(storage, logger))
	for _, pc := range cfg.Providers {
		if !pc.Enabled() {
			logger.Info("oauth provider disabled", slog.String("provider", string(pc.Provider)))
			continue
		}
		s.Register(NewOAuthStrategy(pc, storage, clock, random, cfg.HTTPClient, logger))
	}

	return s
}

// Register adds or replaces a strategy under its name
func (s *Service) Register(strategy Strategy) {
	s.strategies[strategy.Name()] = strategy
}

// Strategy returns the named strategy
func (s *Service) Strategy(name string) (Strategy, bool) {
	strategy, ok := s.strategies[name]
	return strategy, ok
}

// Redirector returns the named strategy if it begins with a provider redirect
func (s *Service) Redirector(name string) (Redirector, bool) {
	redirector, ok := s.strategies[name].(Redirector)
	return redirector, ok
}

// Providers returns the names of the registered redirecting strategies, sorted
func (s *Service) Providers() []string {
	var names []string
	for name, strategy := range s.strategies {
		if _, ok := strategy.(Redirector); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Authenticate resolves cred with the named strategy
func (s *Service) Authenticate(ctx context.Context, name string, cred Credential) (*model.Account, error) {
	strategy, ok := s.Strategy(name)
	if !ok {
		return nil, ErrUnknownStrategy
	}
	return strategy.Authenticate(ctx, cred)
}

// RegisterAccount creates a local account. Returns model.ErrUsernameTaken if
// the username is already registered.
func (s *Service) RegisterAccount(ctx context.Context, username, password string) (*model.Account, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &model.Account{
		ID:           model.AccountID(s.random.ID()),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		slog.String("provider", string(model.ProviderLocal)),
		slog.String("account_id", string(account.ID)),
	)
	return account, nil
}
