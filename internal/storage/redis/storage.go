package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Accounts are JSON documents. Username and provider-id uniqueness is
// enforced with SETNX on index keys, which makes account creation and
// find-or-create atomic without transactions.
type Storage struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg), nil
}

// NewClient parses the URL and verifies connectivity. The client is shared
// with the session store.
func NewClient(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Write the document first so the index never points at a missing account
	stored, err := s.client.SetNX(ctx, accountKey(account.ID), data, 0).Result()
	if err != nil {
		return storage.Unavailable("create account", err)
	}
	if !stored {
		return model.ErrAccountExists
	}

	claimed, err := s.client.SetNX(ctx, usernameIndexKey(account.Username), string(account.ID), 0).Result()
	if err != nil {
		return storage.Unavailable("create account", err)
	}
	if !claimed {
		s.discard(ctx, account.ID, "create account")
		return model.ErrUsernameTaken
	}

	return s.indexSecret(ctx, account)
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, storage.Unavailable("get account", err)
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.getByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) FindOrCreateByProvider(ctx context.Context, candidate *model.Account) (*model.Account, bool, error) {
	provider, externalID, err := candidate.ExternalIdentity()
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, false, err
	}

	indexKey := providerIndexKey(provider, externalID)

	// An already linked identity wins over an id collision
	if existing, err := s.getByIndex(ctx, indexKey); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, false, err
	}

	stored, err := s.client.SetNX(ctx, accountKey(candidate.ID), data, 0).Result()
	if err != nil {
		return nil, false, storage.Unavailable("find or create account", err)
	}
	if !stored {
		return nil, false, model.ErrAccountExists
	}

	claimed, err := s.client.SetNX(ctx, indexKey, string(candidate.ID), 0).Result()
	if err != nil {
		return nil, false, storage.Unavailable("find or create account", err)
	}
	if claimed {
		return candidate.Clone(), true, nil
	}

	// Someone else owns this provider id; drop our speculative document
	s.discard(ctx, candidate.ID, "find or create account")

	existing, err := s.getByIndex(ctx, indexKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// XX: only overwrite an existing document
	ok, err := s.client.SetXX(ctx, accountKey(account.ID), data, 0).Result()
	if err != nil {
		return storage.Unavailable("save account", err)
	}
	if !ok {
		return model.ErrAccountNotFound
	}

	return s.indexSecret(ctx, account)
}

func (s *Storage) ListAccountsWithSecret(ctx context.Context) ([]*model.Account, error) {
	ids, err := s.client.SMembers(ctx, withSecretIndexKey()).Result()
	if err != nil {
		return nil, storage.Unavailable("list accounts", err)
	}

	accounts := make([]*model.Account, 0, len(ids))
	if len(ids) == 0 {
		return accounts, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = accountKey(model.AccountID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storage.Unavailable("list accounts", err)
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Account document missing
		}
		var account model.Account
		if err := json.Unmarshal([]byte(str), &account); err != nil {
			continue // Skip invalid data
		}
		if account.HasSecret() {
			accounts = append(accounts, &account)
		}
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// discard removes a document whose index claim failed. The caller's outcome
// stands either way; a leftover document is unreachable through any index.
func (s *Storage) discard(ctx context.Context, id model.AccountID, op string) {
	if err := s.client.Del(ctx, accountKey(id)).Err(); err != nil {
		s.logger.Error("failed to roll back account document",
			slog.String("op", op),
			slog.String("account_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Storage) getByIndex(ctx context.Context, indexKey string) (*model.Account, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, storage.Unavailable("lookup index", err)
	}
	return s.GetAccount(ctx, model.AccountID(id))
}

func (s *Storage) indexSecret(ctx context.Context, account *model.Account) error {
	if !account.HasSecret() {
		return nil
	}
	if err := s.client.SAdd(ctx, withSecretIndexKey(), string(account.ID)).Err(); err != nil {
		return storage.Unavailable("index secret", err)
	}
	return nil
}
