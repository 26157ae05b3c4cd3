package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"
)

// FakeProvider is an OAuth2 identity provider for tests. Authorization codes
// registered with AddCode exchange for an access token whose profile returns
// the associated external id.
type FakeProvider struct {
	Server *httptest.Server

	mu        sync.Mutex
	codes     map[string]string
	exchanges int
}

// NewFakeProvider starts a provider that is shut down when the test ends
func NewFakeProvider(t testing.TB) *FakeProvider {
	t.Helper()

	p := &FakeProvider{codes: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", p.handleToken)
	mux.HandleFunc("GET /profile", p.handleProfile)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)

	return p
}

// AddCode registers an authorization code for externalID
func (p *FakeProvider) AddCode(code, externalID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[code] = externalID
}

// Exchanges returns how many token exchanges were attempted
func (p *FakeProvider) Exchanges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exchanges
}

// Endpoint returns the provider's oauth2 endpoint
func (p *FakeProvider) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   p.Server.URL + "/authorize",
		TokenURL:  p.Server.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// ProfileURL returns the provider's profile endpoint
func (p *FakeProvider) ProfileURL() string {
	return p.Server.URL + "/profile"
}

func (p *FakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.exchanges++
	_, ok := p.codes[r.FormValue("code")]
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": "at-" + r.FormValue("code"),
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (p *FakeProvider) handleProfile(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer at-")

	p.mu.Lock()
	externalID, ok := p.codes[code]
	p.mu.Unlock()

	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": externalID, "name": "Test User"})
}
