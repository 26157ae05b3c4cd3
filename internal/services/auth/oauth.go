package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/mcoot/secrets/internal/dependencies/clock"
	"github.com/mcoot/secrets/internal/dependencies/random"
	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

const (
	googleProfileURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookProfileURL = "https://graph.facebook.com/me?fields=id"

	// maxProfileBytes caps the provider profile response
	maxProfileBytes = 1 << 20
)

// OAuthConfig describes one OAuth2 identity provider
type OAuthConfig struct {
	Provider     model.Provider
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string
	Endpoint     oauth2.Endpoint
	// ProfileURL returns a JSON object with the provider-assigned "id"
	ProfileURL string
}

// Enabled reports whether client credentials are configured
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// GoogleConfig returns the Google provider configuration requesting the "profile" scope
func GoogleConfig(clientID, clientSecret, callbackURL string) OAuthConfig {
	return OAuthConfig{
		Provider:     model.ProviderGoogle,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackURL:  callbackURL,
		Scopes:       []string{"profile"},
		Endpoint:     google.Endpoint,
		ProfileURL:   googleProfileURL,
	}
}

// FacebookConfig returns the Facebook provider configuration
func FacebookConfig(clientID, clientSecret, callbackURL string) OAuthConfig {
	return OAuthConfig{
		Provider:     model.ProviderFacebook,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackURL:  callbackURL,
		Endpoint:     facebook.Endpoint,
		ProfileURL:   facebookProfileURL,
	}
}

// OAuthStrategy completes an authorization-code flow and finds or creates
// the account linked to the provider-assigned id
type OAuthStrategy struct {
	provider   model.Provider
	oauth      oauth2.Config
	profileURL string
	storage    storage.Storage
	clock      clock.Clock
	random     random.Random
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOAuthStrategy creates an OAuthStrategy. httpClient may be nil to use
// http.DefaultClient for token exchange and profile requests.
func NewOAuthStrategy(cfg OAuthConfig, storage storage.Storage, clock clock.Clock, random random.Random, httpClient *http.Client, logger *slog.Logger) *OAuthStrategy {
	return &OAuthStrategy{
		provider: cfg.Provider,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint:     cfg.Endpoint,
		},
		profileURL: cfg.ProfileURL,
		storage:    storage,
		clock:      clock,
		random:     random,
		httpClient: httpClient,
		logger:     logger,
	}
}

var _ Redirector = (*OAuthStrategy)(nil)

// Name returns the provider name
func (s *OAuthStrategy) Name() string {
	return string(s.provider)
}

// AuthCodeURL returns the provider consent URL carrying state
func (s *OAuthStrategy) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Authenticate exchanges the authorization code, reads the provider id and
// finds or creates the linked account
func (s *OAuthStrategy) Authenticate(ctx context.Context, cred Credential) (*model.Account, error) {
	if cred.Code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrProviderFailure)
	}

	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	token, err := s.oauth.Exchange(ctx, cred.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %w", ErrProviderFailure, err)
	}

	externalID, err := s.fetchProfileID(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	candidate := &model.Account{
		ID:        model.AccountID(s.random.ID()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := candidate.SetExternalID(s.provider, externalID); err != nil {
		return nil, err
	}

	account, created, err := s.storage.FindOrCreateByProvider(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("account created",
			slog.String("provider", string(s.provider)),
			slog.String("account_id", string(account.ID)),
		)
	}
	return account, nil
}

func (s *OAuthStrategy) fetchProfileID(ctx context.Context, token *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.profileURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: profile request: %w", ErrProviderFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: profile request returned HTTP %d", ErrProviderFailure, resp.StatusCode)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&profile); err != nil {
		return "", fmt.Errorf("%w: decode profile: %w", ErrProviderFailure, err)
	}
	if profile.ID == "" {
		return "", fmt.Errorf("%w: profile has no id", ErrProviderFailure)
	}
	return profile.ID, nil
}
