package response

import (
	"time"

	"github.com/mcoot/secrets/internal/model"
)

// SecretList is the response for GET /api/v1/secrets
type SecretList struct {
	Secrets []string `json:"secrets"`
	Count   int      `json:"count"`
}

// Account represents the signed-in account. Credentials and provider ids
// are never exposed.
type Account struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Username  string    `json:"username,omitempty"`
	HasSecret bool      `json:"has_secret"`
	Secret    *string   `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	provider := model.ProviderLocal
	if p, _, err := a.ExternalIdentity(); err == nil {
		provider = p
	}

	return Account{
		ID:        string(a.ID),
		Provider:  string(provider),
		Username:  a.Username,
		HasSecret: a.HasSecret(),
		Secret:    a.Secret,
		CreatedAt: a.CreatedAt,
	}
}

// Health is the response for GET /api/v1/health
type Health struct {
	Status string `json:"status"`
}
