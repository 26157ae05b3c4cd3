package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts      map[model.AccountID]*model.Account
	usernameIndex map[string]model.AccountID
	externalIndex map[externalKey]model.AccountID
}

type externalKey struct {
	provider   model.Provider
	externalID string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts:      make(map[model.AccountID]*model.Account),
		usernameIndex: make(map[string]model.AccountID),
		externalIndex: make(map[externalKey]model.AccountID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return model.ErrAccountExists
	}
	if _, exists := s.usernameIndex[account.Username]; exists {
		return model.ErrUsernameTaken
	}

	s.accounts[account.ID] = account.Clone()
	s.usernameIndex[account.Username] = account.ID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *Storage) FindOrCreateByProvider(ctx context.Context, candidate *model.Account) (*model.Account, bool, error) {
	provider, externalID, err := candidate.ExternalIdentity()
	if err != nil {
		return nil, false, err
	}
	key := externalKey{provider: provider, externalID: externalID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.externalIndex[key]; ok {
		return s.accounts[id].Clone(), false, nil
	}
	if _, exists := s.accounts[candidate.ID]; exists {
		return nil, false, model.ErrAccountExists
	}

	s.accounts[candidate.ID] = candidate.Clone()
	s.externalIndex[key] = candidate.ID
	return candidate.Clone(), true, nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return model.ErrAccountNotFound
	}
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *Storage) ListAccountsWithSecret(ctx context.Context) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Account, 0)
	for _, account := range s.accounts {
		if account.HasSecret() {
			result = append(result, account.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}
