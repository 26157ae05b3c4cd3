package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/secrets/internal/dependencies/mocks"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage/memory"
	"github.com/mcoot/secrets/internal/testutil"
)

type OAuthSuite struct {
	suite.Suite
	provider *testutil.FakeProvider
	storage  *memory.Storage
	google   *OAuthStrategy
	facebook *OAuthStrategy
	ctx      context.Context
}

func TestOAuthSuite(t *testing.T) {
	suite.Run(t, new(OAuthSuite))
}

func (s *OAuthSuite) SetupTest() {
	s.provider = testutil.NewFakeProvider(s.T())
	s.storage = memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	googleCfg := GoogleConfig("client", "secret", "http://localhost:3000/auth/google/secrets")
	googleCfg.Endpoint = s.provider.Endpoint()
	googleCfg.ProfileURL = s.provider.ProfileURL()
	s.google = NewOAuthStrategy(googleCfg, s.storage, clk, mocks.NewMockRandom(), nil, testutil.NopLogger())

	facebookCfg := FacebookConfig("app", "secret", "http://localhost:3000/auth/facebook/secrets")
	facebookCfg.Endpoint = s.provider.Endpoint()
	facebookCfg.ProfileURL = s.provider.ProfileURL()
	s.facebook = NewOAuthStrategy(facebookCfg, s.storage, clk, mocks.NewMockRandom(), nil, testutil.NopLogger())

	s.ctx = context.Background()
}

func (s *OAuthSuite) TestGoogleConfigDefaults() {
	cfg := GoogleConfig("id", "secret", "cb")
	s.Equal(model.ProviderGoogle, cfg.Provider)
	s.Equal([]string{"profile"}, cfg.Scopes)
	s.True(cfg.Enabled())

	s.False(GoogleConfig("", "secret", "cb").Enabled())
	s.False(FacebookConfig("id", "", "cb").Enabled())
	s.Empty(FacebookConfig("id", "secret", "cb").Scopes)
}

func (s *OAuthSuite) TestAuthCodeURLCarriesStateAndScope() {
	raw := s.google.AuthCodeURL("state-123")

	u, err := url.Parse(raw)
	s.Require().NoError(err)
	s.Equal("/authorize", u.Path)
	s.Equal("state-123", u.Query().Get("state"))
	s.Equal("profile", u.Query().Get("scope"))
	s.Equal("client", u.Query().Get("client_id"))
	s.Equal("http://localhost:3000/auth/google/secrets", u.Query().Get("redirect_uri"))
}

func (s *OAuthSuite) TestFirstLoginCreatesAccountWithOnlyProviderID() {
	s.provider.AddCode("code-1", "g-123")

	account, err := s.google.Authenticate(s.ctx, Credential{Code: "code-1"})
	s.Require().NoError(err)

	s.Equal("g-123", account.GoogleID)
	s.Empty(account.Username)
	s.Empty(account.PasswordHash)
	s.Empty(account.FacebookID)
	s.False(account.HasSecret())

	stored, err := s.storage.GetAccount(s.ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("g-123", stored.GoogleID)
}

func (s *OAuthSuite) TestRepeatLoginReusesAccount() {
	s.provider.AddCode("code-1", "g-123")
	s.provider.AddCode("code-2", "g-123")

	first, err := s.google.Authenticate(s.ctx, Credential{Code: "code-1"})
	s.Require().NoError(err)

	second, err := s.google.Authenticate(s.ctx, Credential{Code: "code-2"})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
}

func (s *OAuthSuite) TestProvidersDoNotShareAccounts() {
	s.provider.AddCode("code-1", "same-id")

	google, err := s.google.Authenticate(s.ctx, Credential{Code: "code-1"})
	s.Require().NoError(err)

	facebook, err := s.facebook.Authenticate(s.ctx, Credential{Code: "code-1"})
	s.Require().NoError(err)

	s.NotEqual(google.ID, facebook.ID)
	s.Equal("same-id", facebook.FacebookID)
	s.Empty(facebook.GoogleID)
}

func (s *OAuthSuite) TestMissingCodeFailsWithoutCallingProvider() {
	_, err := s.google.Authenticate(s.ctx, Credential{})
	s.ErrorIs(err, ErrProviderFailure)
	s.Equal(0, s.provider.Exchanges())
}

func (s *OAuthSuite) TestRejectedCodeFails() {
	_, err := s.google.Authenticate(s.ctx, Credential{Code: "bogus"})
	s.ErrorIs(err, ErrProviderFailure)
	s.Equal(1, s.provider.Exchanges())
}

func (s *OAuthSuite) TestProfileWithoutIDFails() {
	s.provider.AddCode("code-1", "")

	_, err := s.google.Authenticate(s.ctx, Credential{Code: "code-1"})
	s.ErrorIs(err, ErrProviderFailure)
}
