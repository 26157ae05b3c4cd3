// Package storagetest provides a conformance suite run against every
// storage backend.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// Suite exercises the storage.Storage contract. Backends embed it and set
// NewStorage, which is called once per test.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
	now     time.Time
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) tick() time.Time {
	s.now = s.now.Add(time.Minute)
	return s.now
}

func (s *Suite) localAccount(id, username string) *model.Account {
	now := s.tick()
	return &model.Account{
		ID:           model.AccountID(id),
		Username:     username,
		PasswordHash: "hash-" + username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Suite) googleAccount(id, googleID string) *model.Account {
	now := s.tick()
	return &model.Account{
		ID:        model.AccountID(id),
		GoogleID:  googleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateAccount tests

func (s *Suite) TestCreateAndGetAccount() {
	err := s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "alice"))
	s.Require().NoError(err)

	retrieved, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acct-1"), retrieved.ID)
	s.Equal("alice", retrieved.Username)
	s.Equal("hash-alice", retrieved.PasswordHash)
	s.False(retrieved.HasSecret())
}

func (s *Suite) TestCreateAccountRejectsDuplicateUsername() {
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "alice")))

	err := s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-2", "alice"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	// The rejected account must not be retrievable
	_, err = s.Storage.GetAccount(s.Ctx, "acct-2")
	s.ErrorIs(err, model.ErrAccountNotFound)

	// The original still resolves by username
	existing, err := s.Storage.GetAccountByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acct-1"), existing.ID)
}

func (s *Suite) TestCreateAccountRejectsDuplicateID() {
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "alice")))

	err := s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "bob"))
	s.ErrorIs(err, model.ErrAccountExists)
	s.NotErrorIs(err, model.ErrUsernameTaken)

	// Neither the first account nor its username changed hands
	existing, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal("alice", existing.Username)

	_, err = s.Storage.GetAccountByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestConcurrentRegistrationCreatesOneAccount() {
	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	accounts := make([]*model.Account, attempts)
	for i := range accounts {
		accounts[i] = s.localAccount(fmt.Sprintf("acct-%d", i), "racer")
	}

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Storage.CreateAccount(s.Ctx, accounts[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrUsernameTaken)
		}
	}
	s.Equal(1, succeeded)
}

// Lookup tests

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccount(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestGetAccountByUsername() {
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "alice")))
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-2", "bob")))

	retrieved, err := s.Storage.GetAccountByUsername(s.Ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.AccountID("acct-2"), retrieved.ID)
}

func (s *Suite) TestGetAccountByUsernameNotFound() {
	_, err := s.Storage.GetAccountByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

// FindOrCreateByProvider tests

func (s *Suite) TestFindOrCreateCreatesOnFirstLogin() {
	account, created, err := s.Storage.FindOrCreateByProvider(s.Ctx, s.googleAccount("acct-1", "g-123"))
	s.Require().NoError(err)
	s.True(created)
	s.Equal(model.AccountID("acct-1"), account.ID)
	s.Equal("g-123", account.GoogleID)
	s.Empty(account.Username)
	s.Empty(account.FacebookID)

	retrieved, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal("g-123", retrieved.GoogleID)
}

func (s *Suite) TestFindOrCreateReusesExistingAccount() {
	first, created, err := s.Storage.FindOrCreateByProvider(s.Ctx, s.googleAccount("acct-1", "g-123"))
	s.Require().NoError(err)
	s.True(created)

	second, created, err := s.Storage.FindOrCreateByProvider(s.Ctx, s.googleAccount("acct-2", "g-123"))
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)

	// The losing candidate was not persisted
	_, err = s.Storage.GetAccount(s.Ctx, "acct-2")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestFindOrCreateKeepsProvidersSeparate() {
	google, _, err := s.Storage.FindOrCreateByProvider(s.Ctx, s.googleAccount("acct-1", "same-id"))
	s.Require().NoError(err)

	now := s.tick()
	facebook, created, err := s.Storage.FindOrCreateByProvider(s.Ctx, &model.Account{
		ID:         "acct-2",
		FacebookID: "same-id",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	s.Require().NoError(err)
	s.True(created)
	s.NotEqual(google.ID, facebook.ID)
}

func (s *Suite) TestFindOrCreateRequiresExternalIdentity() {
	_, _, err := s.Storage.FindOrCreateByProvider(s.Ctx, s.localAccount("acct-1", "alice"))
	s.ErrorIs(err, model.ErrNoExternalIdentity)
}

func (s *Suite) TestFindOrCreateRejectsDuplicateID() {
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "alice")))

	_, created, err := s.Storage.FindOrCreateByProvider(s.Ctx, &model.Account{ID: "acct-1", GoogleID: "g-1"})
	s.ErrorIs(err, model.ErrAccountExists)
	s.False(created)

	existing, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal("alice", existing.Username)
	s.Empty(existing.GoogleID)
}

func (s *Suite) TestConcurrentFindOrCreateCreatesOneAccount() {
	const attempts = 8
	var wg sync.WaitGroup
	ids := make([]model.AccountID, attempts)
	createdCount := make([]bool, attempts)

	candidates := make([]*model.Account, attempts)
	for i := range candidates {
		candidates[i] = s.googleAccount(fmt.Sprintf("acct-%d", i), "g-race")
	}

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account, created, err := s.Storage.FindOrCreateByProvider(s.Ctx, candidates[i])
			if err == nil {
				ids[i] = account.ID
				createdCount[i] = created
			}
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range ids {
		s.Equal(ids[0], ids[i], "all logins must resolve to the same account")
		if createdCount[i] {
			created++
		}
	}
	s.Equal(1, created)
}

// SaveAccount tests

func (s *Suite) TestSaveAccountOverwritesSecret() {
	account := s.localAccount("acct-1", "alice")
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, account))

	account.SetSecret("first", s.tick())
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, account))

	account.SetSecret("second", s.tick())
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, account))

	retrieved, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	s.Equal("second", retrieved.SecretText())
	s.Equal("alice", retrieved.Username)
}

func (s *Suite) TestSaveAccountNotFound() {
	err := s.Storage.SaveAccount(s.Ctx, s.localAccount("ghost", "ghost"))
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *Suite) TestReturnedAccountsAreCopies() {
	account := s.localAccount("acct-1", "alice")
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, account))

	retrieved, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	retrieved.SetSecret("not saved", s.tick())

	again, err := s.Storage.GetAccount(s.Ctx, "acct-1")
	s.Require().NoError(err)
	s.False(again.HasSecret())
}

// ListAccountsWithSecret tests

func (s *Suite) TestListAccountsWithSecretEmpty() {
	s.Require().NoError(s.Storage.CreateAccount(s.Ctx, s.localAccount("acct-1", "alice")))

	accounts, err := s.Storage.ListAccountsWithSecret(s.Ctx)
	s.Require().NoError(err)
	s.NotNil(accounts)
	s.Empty(accounts)
}

func (s *Suite) TestListAccountsWithSecretFiltersAndOrders() {
	alice := s.localAccount("acct-1", "alice")
	bob := s.localAccount("acct-2", "bob")
	carol := s.localAccount("acct-3", "carol")
	for _, a := range []*model.Account{alice, bob, carol} {
		s.Require().NoError(s.Storage.CreateAccount(s.Ctx, a))
	}
	google, _, err := s.Storage.FindOrCreateByProvider(s.Ctx, s.googleAccount("acct-4", "g-1"))
	s.Require().NoError(err)

	carol.SetSecret("carol's secret", s.tick())
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, carol))
	alice.SetSecret("alice's secret", s.tick())
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, alice))
	google.SetSecret("", s.tick())
	s.Require().NoError(s.Storage.SaveAccount(s.Ctx, google))

	accounts, err := s.Storage.ListAccountsWithSecret(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(accounts, 3)

	// Oldest account first, regardless of when the secret was submitted
	s.Equal(model.AccountID("acct-1"), accounts[0].ID)
	s.Equal("alice's secret", accounts[0].SecretText())
	s.Equal(model.AccountID("acct-3"), accounts[1].ID)
	s.Equal(model.AccountID("acct-4"), accounts[2].ID)
	s.True(accounts[2].HasSecret())
}
