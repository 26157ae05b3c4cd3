package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/secrets/internal/dependencies/mocks"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage/memory"
	"github.com/mcoot/secrets/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, Config{
		BcryptCost: bcrypt.MinCost,
		Providers: []OAuthConfig{
			GoogleConfig("google-client", "google-secret", "http://localhost:3000/auth/google/secrets"),
			FacebookConfig("", "", "http://localhost:3000/auth/facebook/secrets"),
		},
	}, testutil.NopLogger())
	s.ctx = context.Background()
}

// RegisterAccount tests

func (s *ServiceSuite) TestRegisterAccountSucceeds() {
	s.random.QueueID("account-1")

	account, err := s.service.RegisterAccount(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.Equal(model.AccountID("account-1"), account.ID)
	s.Equal("alice", account.Username)
	s.Equal(s.clock.Now(), account.CreatedAt)
	s.False(account.HasSecret())
}

func (s *ServiceSuite) TestRegisterAccountHashesPassword() {
	_, _ = s.service.RegisterAccount(s.ctx, "alice", "password123")

	account, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEmpty(account.PasswordHash)
	s.NotEqual("password123", account.PasswordHash) // Should be hashed
	s.NoError(bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("password123")))
}

func (s *ServiceSuite) TestRegisterAccountTrimsUsername() {
	account, err := s.service.RegisterAccount(s.ctx, "  alice ", "password123")
	s.Require().NoError(err)
	s.Equal("alice", account.Username)
}

func (s *ServiceSuite) TestRegisterAccountFailsIfUsernameTaken() {
	_, _ = s.service.RegisterAccount(s.ctx, "alice", "password123")

	_, err := s.service.RegisterAccount(s.ctx, "alice", "different")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRegisterAccountRequiresCredentials() {
	_, err := s.service.RegisterAccount(s.ctx, "", "password123")
	s.ErrorIs(err, ErrMissingCredentials)

	_, err = s.service.RegisterAccount(s.ctx, "   ", "password123")
	s.ErrorIs(err, ErrMissingCredentials)

	_, err = s.service.RegisterAccount(s.ctx, "alice", "")
	s.ErrorIs(err, ErrMissingCredentials)
}

// Local strategy tests

func (s *ServiceSuite) TestAuthenticateLocalSucceeds() {
	registered, _ := s.service.RegisterAccount(s.ctx, "alice", "password123")

	account, err := s.service.Authenticate(s.ctx, "local", Credential{Username: "alice", Password: "password123"})
	s.Require().NoError(err)
	s.Equal(registered.ID, account.ID)
}

func (s *ServiceSuite) TestAuthenticateLocalMatchesPaddedUsername() {
	registered, err := s.service.RegisterAccount(s.ctx, " alice@example.com ", "password123")
	s.Require().NoError(err)

	for _, username := range []string{" alice@example.com ", "alice@example.com", "\talice@example.com"} {
		account, err := s.service.Authenticate(s.ctx, "local", Credential{Username: username, Password: "password123"})
		s.Require().NoError(err, username)
		s.Equal(registered.ID, account.ID)
	}

	_, err = s.service.Authenticate(s.ctx, "local", Credential{Username: "   ", Password: "password123"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateLocalFailsWithWrongPassword() {
	_, _ = s.service.RegisterAccount(s.ctx, "alice", "password123")

	_, err := s.service.Authenticate(s.ctx, "local", Credential{Username: "alice", Password: "wrongpassword"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateLocalFailsWithUnknownUser() {
	_, err := s.service.Authenticate(s.ctx, "local", Credential{Username: "nobody", Password: "password123"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateLocalFailsForOAuthAccount() {
	// An OAuth account that somehow carries a username still has no password
	_ = s.storage.CreateAccount(s.ctx, &model.Account{ID: "acct-1", Username: "oauth-user", GoogleID: "g-1"})

	_, err := s.service.Authenticate(s.ctx, "local", Credential{Username: "oauth-user", Password: ""})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Authenticate(s.ctx, "local", Credential{Username: "oauth-user", Password: "anything"})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestAuthenticateUnknownStrategy() {
	_, err := s.service.Authenticate(s.ctx, "github", Credential{Code: "abc"})
	s.ErrorIs(err, ErrUnknownStrategy)
}

// Registry tests

func (s *ServiceSuite) TestOnlyEnabledProvidersAreRegistered() {
	s.Equal([]string{"google"}, s.service.Providers())

	_, ok := s.service.Redirector("google")
	s.True(ok)

	_, ok = s.service.Redirector("facebook")
	s.False(ok)

	// The local strategy is a strategy but not a redirector
	_, ok = s.service.Strategy("local")
	s.True(ok)
	_, ok = s.service.Redirector("local")
	s.False(ok)
}
